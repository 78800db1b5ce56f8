package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/observability"
	"github.com/matzehuels/heatmap/pkg/portfolio"
)

// GenerateLayout validates p and lays it out according to opts. opts must
// already be validated with ValidateForLayout.
func GenerateLayout(ctx context.Context, p portfolio.Portfolio, opts Options) (*heatmap.Layout, error) {
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(p.Positions))

	l, err := generateLayout(p, opts)

	cells := 0
	if l != nil {
		cells = len(l.Cells)
	}
	observability.Pipeline().OnLayoutComplete(ctx, cells, time.Since(start), err)
	return l, err
}

func generateLayout(p portfolio.Portfolio, opts Options) (*heatmap.Layout, error) {
	if err := ValidatePortfolio(p, opts.ClampNegative); err != nil {
		return nil, err
	}
	return heatmap.Build(p, opts.Width, opts.Height, opts.HeatmapOptions()...)
}
