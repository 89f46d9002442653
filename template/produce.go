package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/record"
)

// documentNamespace scopes the deterministic document ids.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/lvillar/formlayout"))

// Factory creates one fresh document per variant. Its measurer must match
// the documents it creates.
type Factory interface {
	fl.TextMeasurer
	NewDocument(g fl.Geometry) (fl.Document, error)
}

// Result is the outcome of producing one variant.
type Result struct {
	Variant  Variant
	Document fl.Document // nil when Err is set
	Fields   []fl.Field
	Badge    Badge
	Err      error
}

// DocumentID returns the stable id of a template variant.
func DocumentID(template, variant string) string {
	return uuid.NewSHA1(documentNamespace, []byte(template+"/"+variant)).String()
}

// Produce renders tpl once and stamps every variant onto its own document
// created by f. The returned error covers the shared base only; failures of
// single variants are reported in their Result and do not stop the batch.
// Documents are returned unfinalised; persisting them is up to the caller.
func (e *Engine) Produce(ctx context.Context, tpl *Template, variants []Variant, f Factory) ([]Result, error) {
	g := e.geometry
	base, err := e.Render(ctx, tpl, record.New(g.Width, g.Height, f))
	if err != nil {
		e.logger.Error("base layout failed", zap.String("template", tpl.Name), zap.Error(err))
		return nil, err
	}

	results := make([]Result, 0, len(variants))
	seen := make(map[string]bool)
	for _, v := range variants {
		res := Result{Variant: v}
		switch {
		case ctx.Err() != nil:
			res.Err = ctx.Err()
		case seen[v.Name]:
			res.Err = fl.NewLayoutError("Produce", "", "", fmt.Errorf("variant %q requested twice: %w", v.Name, fl.ErrInvalidParam))
		default:
			seen[v.Name] = true
			res.Document, res.Badge, res.Err = e.produceOne(tpl, base, v, f)
			res.Fields = base.Fields()
		}
		if res.Err != nil {
			res.Document = nil
			e.logger.Error("variant failed", zap.String("template", tpl.Name), zap.String("variant", v.Name), zap.Error(res.Err))
		} else {
			e.logger.Info("variant produced", zap.String("template", tpl.Name), zap.String("variant", v.Name), zap.Int("fields", len(res.Fields)))
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) produceOne(tpl *Template, base *BaseState, v Variant, f Factory) (fl.Document, Badge, error) {
	if err := v.validate(); err != nil {
		return nil, Badge{}, err
	}
	doc, err := f.NewDocument(e.geometry)
	if err != nil {
		return nil, Badge{}, fmt.Errorf("template: creating document for %q: %w", v.Name, err)
	}
	doc.SetMetadata(fl.Metadata{
		Title:      tpl.Header.Title,
		Subject:    v.Label,
		Creator:    e.creator,
		Keywords:   tpl.Name + " " + v.Name,
		DocumentID: DocumentID(tpl.Name, v.Name),
	})
	base.Display.Replay(doc)
	badge, err := e.ApplyVariant(base, v, doc)
	if err != nil {
		return nil, Badge{}, err
	}
	return doc, badge, nil
}
