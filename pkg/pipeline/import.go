package pipeline

import (
	"context"
	"time"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	hio "github.com/matzehuels/heatmap/pkg/io"
	"github.com/matzehuels/heatmap/pkg/observability"
	"github.com/matzehuels/heatmap/pkg/portfolio"
)

// Import reads the portfolio file at path.
func Import(ctx context.Context, path string) (portfolio.Portfolio, error) {
	if err := herrors.ValidatePath(path); err != nil {
		return portfolio.Portfolio{}, err
	}
	format, err := hio.FormatFromPath(path)
	if err != nil {
		return portfolio.Portfolio{}, err
	}

	start := time.Now()
	observability.Pipeline().OnImportStart(ctx, string(format), path)
	p, err := hio.ImportPortfolio(path)
	observability.Pipeline().OnImportComplete(ctx, string(format), path, len(p.Positions), time.Since(start), err)
	return p, err
}

// ValidatePortfolio checks that p can be laid out. Negative market values are
// rejected unless clampNegative is set.
func ValidatePortfolio(p portfolio.Portfolio, clampNegative bool) error {
	weights := make([]float64, len(p.Positions))
	for i, pos := range p.Positions {
		weights[i] = pos.MarketValue()
		if clampNegative && weights[i] < 0 {
			weights[i] = 0
		}
	}
	return herrors.ValidateWeights(weights)
}
