package sink

import "github.com/matzehuels/heatmap/pkg/heatmap"

// RenderJSON encodes l as indented JSON. The output reads back with
// [heatmap.Unmarshal], so a rendered layout can be re-rendered to any other
// format without the source portfolio.
func RenderJSON(l *heatmap.Layout) ([]byte, error) {
	return heatmap.Marshal(l)
}
