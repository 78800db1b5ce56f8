package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	hio "github.com/matzehuels/heatmap/pkg/io"
	"github.com/matzehuels/heatmap/pkg/pipeline"
	"github.com/matzehuels/heatmap/pkg/treemap"
)

// squarifyCommand lays out generic JSON records.
func (c *CLI) squarifyCommand() *cobra.Command {
	var (
		weightKey string
		width     float64
		height    float64
		output    string
	)

	cmd := &cobra.Command{
		Use:   "squarify <records.json|->",
		Short: "Lay out arbitrary JSON records as a treemap",
		Long: `Lay out arbitrary JSON records as a treemap.

The input is a JSON array of objects. Each object is weighted by the numeric
field named by --weight-key and returned with x, y, w and h added, largest
first. Use - to read from stdin.`,
		Example: `  echo '[{"name":"a","value":3},{"name":"b","value":1}]' | heatmap squarify - --width 400 --height 200`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			laidOut, err := squarify(records, weightKey, width, height)
			if err != nil {
				return err
			}
			c.Logger.Debug("squarified records", "records", len(laidOut))

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(laidOut)
		},
	}

	cmd.Flags().StringVarP(&weightKey, "weight-key", "k", "value", "numeric field used as weight")
	cmd.Flags().Float64Var(&width, "width", pipeline.DefaultWidth, "container width")
	cmd.Flags().Float64Var(&height, "height", pipeline.DefaultHeight, "container height")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func readRecords(stdin io.Reader, name string) ([]treemap.Record, error) {
	if name == "-" {
		return hio.ReadRecords(stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.Wrap(herrors.ErrCodeFileNotFound, err, "open %s", name)
		}
		return nil, err
	}
	defer f.Close()
	return hio.ReadRecords(f)
}

// squarify validates the inputs and lays the records out.
func squarify(records []treemap.Record, weightKey string, width, height float64) ([]treemap.Record, error) {
	if err := herrors.ValidateWeightKey(weightKey); err != nil {
		return nil, err
	}
	if err := herrors.ValidateContainer(width, height); err != nil {
		return nil, err
	}
	weights := make([]float64, len(records))
	for i, r := range records {
		weights[i], _ = treemap.Number(r[weightKey])
	}
	if err := herrors.ValidateWeights(weights); err != nil {
		return nil, err
	}
	return treemap.SquarifyRecords(records, weightKey, width, height), nil
}
