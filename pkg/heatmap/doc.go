// Package heatmap turns a portfolio into a colored treemap layout.
//
// [Build] weights each position by market value, lays the positions out with
// [treemap.Squarify] and colors each cell by its gain or loss:
//
//	l, err := heatmap.Build(p, 800, 600,
//	    heatmap.WithPalette("bluered"),
//	    heatmap.WithGroupBySector(true),
//	)
//
// With sector grouping the layout is two-level: sectors are squarified in the
// container first, then the positions of each sector are squarified inside
// the sector's rectangle. Each sector is also recorded as a [Frame] so sinks
// can draw its outline and name.
//
// A [Layout] is plain data. It serializes to JSON with [Marshal] and back with
// [Unmarshal], which lets the pipeline cache layouts and the CLI render a
// saved layout without the original portfolio.
package heatmap
