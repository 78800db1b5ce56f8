// Package sink renders heatmap layouts to output formats.
//
// Each sink takes a [heatmap.Layout] and produces bytes (or a string for the
// terminal). Sinks never move cells: everything geometric was decided by
// [heatmap.Build], so the same layout looks the same in every format.
//
// # Formats
//
//   - [RenderSVG]: vector output with hover highlighting and a tooltip per
//     cell. The default and the richest format.
//   - [RenderPNG]: raster output drawn with gg and the embedded Go font.
//   - [RenderPDF]: a single page sized to the layout, drawn with fpdf.
//   - [RenderJSON]: the layout itself as indented JSON.
//   - [RenderTerminal]: a colored character grid for the console.
//
// # Labels
//
// A cell shows its label when it is at least [MinLabelWidth] by
// [MinLabelHeight]. Tall enough cells show the gain or loss percentage on a
// second line. Font size follows the cell size between 8 and 24 points, and
// labels that do not fit are truncated with "..".
package sink
