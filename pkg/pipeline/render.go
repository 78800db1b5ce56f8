package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/heatmap/sink"
	hio "github.com/matzehuels/heatmap/pkg/io"
	"github.com/matzehuels/heatmap/pkg/observability"
)

// Render generates output artifacts in the requested formats. opts must
// already be validated with ValidateForRender.
func Render(ctx context.Context, l *heatmap.Layout, opts Options) (map[string][]byte, error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	artifacts, err := render(l, opts)

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func render(l *heatmap.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(l, format, opts.Scale)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders l in a single format.
func RenderFormat(l *heatmap.Layout, format string, scale float64) ([]byte, error) {
	var data []byte
	var err error

	switch format {
	case FormatSVG:
		data = sink.RenderSVG(l)
	case FormatPNG:
		data, err = sink.RenderPNG(l, sink.WithScale(scale))
	case FormatPDF:
		data, err = sink.RenderPDF(l)
	case FormatJSON:
		data, err = sink.RenderJSON(l)
	case FormatXLSX:
		var buf bytes.Buffer
		err = hio.WriteLayoutXLSX(&buf, l)
		data = buf.Bytes()
	default:
		return nil, herrors.New(herrors.ErrCodeUnsupported, "unsupported format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

// RenderFromLayoutData renders a layout serialized with [heatmap.Marshal].
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := heatmap.Unmarshal(layoutData)
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidInput, err, "parse layout")
	}
	return Render(ctx, l, opts)
}
