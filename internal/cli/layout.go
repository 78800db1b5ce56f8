package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing heatmap layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout <portfolio>",
		Short: "Compute a heatmap layout from a portfolio",
		Long: `Compute a heatmap layout from a portfolio.

The portfolio may be JSON, TOML, CSV or XLSX. CSV and XLSX files need a header
row with the columns symbol, name, sector, quantity, price and cost_basis.

The result is written to <portfolio>.layout.json and can be rendered with
'heatmap render' or browsed with 'heatmap view'. Layouts are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.layoutOptions(cmd, &opts); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <portfolio>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	addLayoutFlags(cmd.Flags(), &opts)

	return cmd
}

// runLayout imports the portfolio, computes the layout and writes it.
func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	path, err := absInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Input = path
	p, err := runner.Import(ctx, opts)
	if err != nil {
		return fmt.Errorf("import %s: %w", input, err)
	}

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()
	l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, p, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + layoutSuffix
	}
	if err := writeLayout(l, outputPath); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(p.Positions), len(l.Cells), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

func writeLayout(l *heatmap.Layout, path string) error {
	data, err := heatmap.Marshal(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// readLayout loads a layout written by the layout command.
func readLayout(path string) (*heatmap.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	l, err := heatmap.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	return l, nil
}
