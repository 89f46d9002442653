package record_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/record"
)

func drawSample(c fl.Canvas) {
	fill := fl.RGB(240, 245, 252)
	c.Rect(fl.Rect{X: 40, Y: 600, W: 515, H: 100}, 8, fl.Paint{Fill: &fill})
	c.Line(fl.Pt(40, 598), fl.Pt(555, 598), fl.Stroke{Color: fl.Gray(0.85), Width: 1})
	c.Text(fl.Pt(40, 600), "Datum:", fl.TextStyle{Font: fl.Font{Family: "Helvetica", Size: 12}})
	c.Widget(fl.Field{Name: "Datum", Rect: fl.Rect{X: 100, Y: 598, W: 455, H: 18}})
}

func TestRecorderCapturesOps(t *testing.T) {
	r := record.New(595.28, 841.89, nil)
	r.BeginRegion("body")
	drawSample(r)

	ops := r.Ops()
	require.Len(t, ops, 4)
	kinds := []record.Kind{ops[0].Kind, ops[1].Kind, ops[2].Kind, ops[3].Kind}
	assert.Equal(t, []record.Kind{record.KindRect, record.KindLine, record.KindText, record.KindWidget}, kinds)
	assert.Len(t, r.Region("body"), 4)
	assert.Empty(t, r.Region("badge"))
	assert.Equal(t, "Datum", ops[3].Field.Name)
}

func TestRecorderCopiesPaint(t *testing.T) {
	r := record.New(100, 100, nil)
	fill := fl.RGB(1, 2, 3)
	r.Rect(fl.Rect{W: 10, H: 10}, 0, fl.Paint{Fill: &fill})
	fill.R = 99
	assert.Equal(t, uint8(1), r.Ops()[0].Paint.Fill.R)
}

func TestReplayReproducesDisplayList(t *testing.T) {
	src := record.New(595.28, 841.89, nil)
	src.BeginRegion("base")
	drawSample(src)
	list := src.Snapshot()

	dst := record.New(595.28, 841.89, nil)
	list.Replay(dst)
	if diff := cmp.Diff(src.Ops(), dst.Ops()); diff != "" {
		t.Errorf("replay mismatch (-want +got):\n%s", diff)
	}

	// The snapshot is unaffected by later drawing.
	src.Text(fl.Pt(0, 0), "later", fl.TextStyle{})
	assert.Equal(t, 4, list.Len())
}

func TestApproxMeasurer(t *testing.T) {
	r := record.New(100, 100, nil)
	f := fl.Font{Family: "Helvetica", Size: 10}
	assert.Equal(t, 30.0, r.TextWidth("äbc", f))
}

func TestWriteToAndFinalize(t *testing.T) {
	r := record.New(595.28, 841.89, nil)
	r.SetMetadata(fl.Metadata{Title: "Bewirtungsformular"})
	drawSample(r)

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)

	var doc struct {
		Metadata fl.Metadata `json:"metadata"`
		Ops      []record.Op `json:"ops"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Bewirtungsformular", doc.Metadata.Title)
	assert.Len(t, doc.Ops, 4)

	path := filepath.Join(t.TempDir(), "form.json")
	require.NoError(t, r.Finalize(path))
	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Finalize(path), fl.ErrFinalized)

	r.Text(fl.Pt(0, 0), "ignored", fl.TextStyle{})
	assert.Len(t, r.Ops(), 4)
}
