package field_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/field"
)

func textField(name string, x, y, w, h float64) fl.Field {
	return fl.Field{Name: name, Label: name, Kind: fl.SingleLine, Rect: fl.Rect{X: x, Y: y, W: w, H: h}}
}

func TestRegisterAndExport(t *testing.T) {
	r := field.New()
	require.NoError(t, r.Register(textField("Datum", 40, 700, 200, 18)))
	require.NoError(t, r.Register(textField("Restaurant", 40, 660, 200, 18)))

	got := r.Export()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Datum", "Restaurant"}, r.Names())
	assert.Equal(t, 1, got[0].Page, "page defaults to 1")

	f, ok := r.Lookup("Restaurant")
	require.True(t, ok)
	assert.Equal(t, 660.0, f.Rect.Y)

	// Export is a copy.
	got[0].Name = "changed"
	_, ok = r.Lookup("changed")
	assert.False(t, ok)
	assert.Equal(t, "Datum", r.Export()[0].Name)
}

func TestRegisterDuplicateLeavesRegistryUnchanged(t *testing.T) {
	r := field.New()
	require.NoError(t, r.Register(textField("Datum", 40, 700, 200, 18)))
	before := r.Export()

	err := r.Register(textField("Datum", 40, 500, 200, 18))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fl.ErrDuplicateFieldName))

	var le *fl.LayoutError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "Datum", le.Field)

	if diff := cmp.Diff(before, r.Export()); diff != "" {
		t.Errorf("registry changed after failed register (-before +after):\n%s", diff)
	}
}

func TestRegisterOverlap(t *testing.T) {
	tests := []struct {
		name    string
		rect    fl.Rect
		wantErr bool
	}{
		{"disjoint", fl.Rect{X: 40, Y: 600, W: 100, H: 18}, false},
		{"touching edge", fl.Rect{X: 40, Y: 682, W: 100, H: 18}, false},
		{"overlapping", fl.Rect{X: 100, Y: 690, W: 100, H: 18}, true},
		{"contained", fl.Rect{X: 50, Y: 702, W: 20, H: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := field.New()
			require.NoError(t, r.Register(textField("a", 40, 700, 200, 18)))
			err := r.Register(fl.Field{Name: "b", Rect: tt.rect})
			if tt.wantErr {
				assert.ErrorIs(t, err, fl.ErrOverlappingGeometry)
				assert.Equal(t, 1, r.Len())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 2, r.Len())
			}
		})
	}
}

func TestRegisterOtherPageDoesNotOverlap(t *testing.T) {
	r := field.New()
	require.NoError(t, r.Register(textField("a", 40, 700, 200, 18)))
	f := textField("b", 40, 700, 200, 18)
	f.Page = 2
	assert.NoError(t, r.Register(f))
}

func TestRegisterInvalid(t *testing.T) {
	r := field.New()
	assert.ErrorIs(t, r.Register(textField("", 0, 0, 10, 10)), fl.ErrInvalidParam)
	assert.ErrorIs(t, r.Register(textField("x", 0, 0, 0, 10)), fl.ErrInvalidParam)
	assert.Zero(t, r.Len())
}

func TestRegisterAllIsAtomic(t *testing.T) {
	r := field.New()
	require.NoError(t, r.Register(textField("Datum", 40, 700, 200, 18)))

	batch := []fl.Field{
		textField("Netto", 40, 600, 100, 18),
		textField("MwSt.", 300, 600, 100, 18),
		textField("Netto", 40, 500, 100, 18),
	}
	err := r.RegisterAll(batch)
	assert.ErrorIs(t, err, fl.ErrDuplicateFieldName)
	assert.Equal(t, []string{"Datum"}, r.Names())

	batch[2].Name = "Trinkgeld"
	batch[2].Rect.X = 120
	batch[2].Rect.Y = 605
	assert.ErrorIs(t, r.RegisterAll(batch), fl.ErrOverlappingGeometry)
	assert.Equal(t, 1, r.Len())

	batch[2].Rect.Y = 500
	require.NoError(t, r.RegisterAll(batch))
	assert.Equal(t, []string{"Datum", "Netto", "MwSt.", "Trinkgeld"}, r.Names())
}
