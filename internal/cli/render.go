package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		opts       pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render <portfolio|layout.json>",
		Short: "Render a portfolio or layout to SVG, PNG, PDF, JSON or XLSX",
		Long: `Render a portfolio or a saved layout.

Inputs ending in .layout.json are rendered as they are; anything else is read
as a portfolio and laid out first. With a single format, --output names the
file; with several, it is the base path and each format adds its extension.`,
		Example: `  heatmap render portfolio.csv
  heatmap render portfolio.csv -f svg,png --scale 3 -o out/heatmap
  heatmap render portfolio.layout.json -f pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.Formats = formats
			if err := c.layoutOptions(cmd, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (one format) or base path (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", pipeline.FormatSVG, "output format(s): svg, png, pdf, json, xlsx (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	addLayoutFlags(cmd.Flags(), &opts)

	return cmd
}

// runRender renders input to every requested format and writes the files.
func (c *CLI) runRender(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	path, err := absInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()

	var (
		l         *heatmap.Layout
		artifacts map[string][]byte
		positions int
		cached    bool
	)
	if strings.HasSuffix(input, layoutSuffix) {
		l, err = readLayout(path)
		if err == nil {
			if err = opts.ValidateForRender(); err == nil {
				artifacts, cached, err = runner.RenderWithCacheInfo(ctx, l, opts)
			}
		}
	} else {
		opts.Input = path
		var result *pipeline.Result
		result, err = runner.Execute(ctx, opts)
		if err == nil {
			l, artifacts, positions = result.Layout, result.Artifacts, result.Stats.Positions
			cached = result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, output, input)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(paths)))

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(positions, len(l.Cells), cached)
	printSummary(l)
	return nil
}

// writeArtifacts writes each artifact and returns the paths in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return nil, fmt.Errorf("renderer produced no %s output", format)
		}
		path := outputPath(output, input, format, len(formats))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath returns output itself for a single format and base.format
// otherwise. JSON derived from the input name gets the layout suffix so that
// a JSON portfolio is never overwritten.
func outputPath(output, input, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	if output == "" && format == pipeline.FormatJSON {
		return basePath("", input) + layoutSuffix
	}
	return basePath(output, input) + "." + format
}
