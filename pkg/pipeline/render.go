package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/observability"
	"github.com/matzehuels/algotrace/pkg/render"
	"github.com/matzehuels/algotrace/pkg/render/dot"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// PNGScale is the scale factor used for PNG output.
const PNGScale = 2.0

// RenderStep renders step index of doc in the given format (dot, svg, png or
// pdf). It returns a *errors.StepRangeError for an index outside the log.
func RenderStep(ctx context.Context, doc *trace.Document, index int, format string) ([]byte, error) {
	if err := render.ValidateFormat(format); err != nil {
		return nil, err
	}
	if index < 0 || index >= doc.Steps.Len() {
		return nil, &errors.StepRangeError{Index: index, Len: doc.Steps.Len()}
	}

	src := dot.ToDOT(doc.Steps.At(index), dot.Options{Narrative: true})
	if format == render.FormatDOT {
		return []byte(src), nil
	}

	svg, err := dot.RenderSVG(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("render step %d: %w", index, err)
	}
	switch format {
	case render.FormatPNG:
		return render.ToPNG(ctx, svg, PNGScale)
	case render.FormatPDF:
		return render.ToPDF(ctx, svg)
	}
	return svg, nil
}

// RenderStep renders one step of a document produced by Execute, caching the
// artifact under a key derived from traceKey. An empty traceKey (a document
// that did not come from Execute) disables caching.
func (r *Runner) RenderStep(ctx context.Context, doc *trace.Document, traceKey string, index int, format string) ([]byte, error) {
	var key string
	if traceKey != "" {
		key = r.Keyer.RenderKey(traceKey, index, format)
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyTypeRender)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeRender)
	}

	data, err := RenderStep(ctx, doc, index, format)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeRender, len(data))
		}
	}
	r.Logger.Debug("rendered step", "engine", doc.Engine, "step", index, "format", format, "bytes", len(data))
	return data, nil
}
