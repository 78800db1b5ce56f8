// Package pkg holds the libraries behind the heatmap CLI and HTTP API.
//
// # Overview
//
// A heatmap shows a portfolio as a squarified treemap: every position is a
// rectangle whose area is proportional to its market value and whose color
// encodes its gain or loss. The data flow is:
//
//	portfolio file (JSON, TOML, CSV, XLSX)
//	         ↓
//	    [io] import → [portfolio]
//	         ↓
//	    [heatmap] build (uses [treemap] and [color])
//	         ↓
//	    [heatmap/sink] SVG, PNG, PDF, JSON, terminal
//
// [pipeline] wires these steps together behind a [cache] so that the CLI and
// [server] behave the same way.
//
// # Quick Start
//
//	p, _ := io.ImportPortfolio("book.csv")
//	l, _ := heatmap.Build(p, 1200, 800, heatmap.WithGroupBySector(true))
//	svg := sink.RenderSVG(l)
//
// Lay out arbitrary weighted items without the portfolio model:
//
//	cells := treemap.Squarify([]treemap.Item[string]{
//	    {Weight: 6, Data: "a"},
//	    {Weight: 2, Data: "b"},
//	}, 400, 200)
//
// # Packages
//
//   - [treemap]: the squarified treemap algorithm and generic record layout
//   - [portfolio]: positions, sectors and derived values
//   - [color]: gain/loss palettes
//   - [heatmap]: layouts of portfolios; [heatmap/sink] renders them
//   - [io]: portfolio import and XLSX export
//   - [pipeline]: import → layout → render with caching
//   - [cache]: file, Redis and null caches
//   - [storage]: saved layouts in memory, on disk or in MongoDB
//   - [server]: the HTTP API
//   - [errors]: coded errors and input validation
//   - [observability]: hooks for pipeline and HTTP events
//
// [treemap]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/treemap
// [portfolio]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/portfolio
// [color]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/color
// [heatmap]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/heatmap
// [heatmap/sink]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/heatmap/sink
// [io]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/storage
// [server]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/observability
package pkg
