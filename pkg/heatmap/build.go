package heatmap

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/heatmap/pkg/color"
	"github.com/matzehuels/heatmap/pkg/portfolio"
	"github.com/matzehuels/heatmap/pkg/treemap"
)

// DefaultSectorHeader is the height reserved for a sector's name in grouped
// layouts.
const DefaultSectorHeader = 16.0

type config struct {
	palette       string
	limit         float64
	padding       float64
	groupBySector bool
	sectorHeader  float64
	preserveOrder bool
	title         string
}

// Option configures Build.
type Option func(*config)

// WithPalette selects a color palette by name (see color.Palettes).
func WithPalette(name string) Option {
	return func(c *config) { c.palette = name }
}

// WithLimit sets the percent change at which colors saturate.
func WithLimit(pct float64) Option {
	return func(c *config) { c.limit = pct }
}

// WithPadding insets every cell by half of px on each side, leaving a gap of
// px between neighbors. Cells never shrink below zero size.
func WithPadding(px float64) Option {
	return func(c *config) { c.padding = px }
}

// WithGroupBySector enables the two-level sector layout.
func WithGroupBySector(on bool) Option {
	return func(c *config) { c.groupBySector = on }
}

// WithSectorHeader sets the header height reserved above each sector's cells.
// Sectors shorter than three headers get none.
func WithSectorHeader(px float64) Option {
	return func(c *config) { c.sectorHeader = px }
}

// WithPreserveOrder returns cells in portfolio order instead of layout order.
func WithPreserveOrder(on bool) Option {
	return func(c *config) { c.preserveOrder = on }
}

// WithTitle sets the layout title. The portfolio name is used otherwise.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// Build lays out p in a width × height container.
//
// Positions are weighted by market value; negative values count as zero.
// Build fails only for an unknown palette. Callers that want to reject bad
// weights or containers validate them first.
func Build(p portfolio.Portfolio, width, height float64, opts ...Option) (*Layout, error) {
	cfg := config{sectorHeader: DefaultSectorHeader}
	for _, opt := range opts {
		opt(&cfg)
	}

	scale, err := color.NewScale(cfg.palette, cfg.limit)
	if err != nil {
		return nil, err
	}

	l := &Layout{
		Width:    width,
		Height:   height,
		Title:    cmp.Or(cfg.title, p.Name),
		Currency: p.Currency,
		Palette:  scale.Palette.Name,
		Limit:    scale.Limit,
		Cells:    make([]Cell, 0, len(p.Positions)),
	}
	b := builder{cfg: cfg, scale: scale, layout: l, ids: make(map[string]int)}

	bounds := treemap.Rect{W: width, H: height}
	if cfg.groupBySector {
		b.sectors(p, bounds)
	} else {
		positions := make([]int, len(p.Positions))
		for i := range positions {
			positions[i] = i
		}
		b.positions(p.Positions, positions, bounds)
	}

	if cfg.preserveOrder {
		slices.SortStableFunc(l.Cells, func(a, b Cell) int { return cmp.Compare(a.Index, b.Index) })
	}
	return l, nil
}

type builder struct {
	cfg    config
	scale  color.Scale
	layout *Layout
	ids    map[string]int
}

// positions squarifies the given positions into bounds. index maps each
// position to its place in the full portfolio.
func (b *builder) positions(ps []portfolio.Position, index []int, bounds treemap.Rect) {
	items := portfolio.Items(portfolio.Portfolio{Positions: ps})

	for _, c := range treemap.Squarify(items, bounds.W, bounds.H) {
		pos := c.Data
		fill := b.scale.Hex(pos.GainLossPct())
		r := c.Rect
		r.X += bounds.X
		r.Y += bounds.Y
		b.layout.Cells = append(b.layout.Cells, Cell{
			Rect:        inset(r, b.cfg.padding/2),
			ID:          b.id(pos.Label(), index[c.Index]),
			Label:       pos.Label(),
			Name:        pos.Name,
			Sector:      pos.Sector,
			Index:       index[c.Index],
			Value:       pos.MarketValue(),
			GainLoss:    pos.GainLoss(),
			GainLossPct: pos.GainLossPct(),
			Color:       fill,
			TextColor:   color.TextColor(fill),
		})
	}
}

// sectors squarifies sectors into bounds, then each sector's positions into
// its frame below the header.
func (b *builder) sectors(p portfolio.Portfolio, bounds treemap.Rect) {
	// sector position lists in portfolio order, to recover global indexes
	order := make(map[string][]int)
	for i, pos := range p.Positions {
		order[pos.SectorName()] = append(order[pos.SectorName()], i)
	}

	for _, sc := range treemap.Squarify(portfolio.BySector(p), bounds.W, bounds.H) {
		s := sc.Data
		frame := Frame{
			Rect:        inset(sc.Rect, b.cfg.padding/2),
			Name:        s.Name,
			Value:       s.Value,
			GainLossPct: s.GainLossPct(),
			Color:       b.scale.Hex(s.GainLossPct()),
		}

		inner := frame.Rect
		if h := b.cfg.sectorHeader; h > 0 && inner.H >= 3*h {
			frame.Header = h
			inner.Y += h
			inner.H -= h
		}
		b.layout.Sectors = append(b.layout.Sectors, frame)
		b.positions(s.Positions, order[s.Name], inner)
	}
}

// id returns label, or "pos-<index>" for unlabeled positions. Repeated
// labels get a numeric suffix.
func (b *builder) id(label string, index int) string {
	if label == "" {
		label = "pos-" + strconv.Itoa(index)
	}
	n := b.ids[label]
	b.ids[label] = n + 1
	if n == 0 {
		return label
	}
	return label + "-" + strconv.Itoa(n+1)
}

func inset(r treemap.Rect, d float64) treemap.Rect {
	if d <= 0 {
		return r
	}
	dx := math.Max(0, math.Min(d, r.W/2))
	dy := math.Max(0, math.Min(d, r.H/2))
	return treemap.Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}
