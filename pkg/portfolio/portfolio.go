// Package portfolio models the holdings rendered as a heatmap.
//
// A [Portfolio] is a list of [Position] values. Each position contributes its
// market value as the treemap weight and its gain or loss as the heat:
//
//	p := portfolio.Portfolio{Positions: []portfolio.Position{
//	    {Symbol: "AAPL", Quantity: 10, Price: 190, CostBasis: 1500},
//	}}
//	items := portfolio.Items(p) // treemap.Item[Position], weight = 1900
package portfolio

import (
	"cmp"
	"slices"

	"github.com/matzehuels/heatmap/pkg/treemap"
)

// UnknownSector groups positions without a sector.
const UnknownSector = "Other"

// Position is a single holding.
type Position struct {
	Symbol    string  `json:"symbol" toml:"symbol"`
	Name      string  `json:"name,omitempty" toml:"name"`
	Sector    string  `json:"sector,omitempty" toml:"sector"`
	Quantity  float64 `json:"quantity" toml:"quantity"`
	Price     float64 `json:"price" toml:"price"`
	CostBasis float64 `json:"cost_basis" toml:"cost_basis"`
}

// MarketValue returns Quantity × Price.
func (p Position) MarketValue() float64 { return p.Quantity * p.Price }

// Weight returns the market value used for layout: negative and NaN values
// count as zero.
func (p Position) Weight() float64 {
	if v := p.MarketValue(); v > 0 {
		return v
	}
	return 0
}

// GainLoss returns the unrealized gain (negative for a loss).
func (p Position) GainLoss() float64 { return p.MarketValue() - p.CostBasis }

// GainLossPct returns GainLoss as a percentage of CostBasis, or 0 when there
// is no cost basis.
func (p Position) GainLossPct() float64 {
	if p.CostBasis == 0 {
		return 0
	}
	return p.GainLoss() / p.CostBasis * 100
}

// Label returns the symbol, falling back to the name.
func (p Position) Label() string {
	if p.Symbol != "" {
		return p.Symbol
	}
	return p.Name
}

// SectorName returns the sector or UnknownSector.
func (p Position) SectorName() string {
	if p.Sector == "" {
		return UnknownSector
	}
	return p.Sector
}

// Portfolio is a named set of positions.
type Portfolio struct {
	Name      string     `json:"name,omitempty" toml:"name"`
	Currency  string     `json:"currency,omitempty" toml:"currency"`
	Positions []Position `json:"positions" toml:"positions"`
}

// TotalValue sums the market value of every position.
func (p Portfolio) TotalValue() float64 {
	var total float64
	for _, pos := range p.Positions {
		total += pos.MarketValue()
	}
	return total
}

// TotalCost sums the cost basis of every position.
func (p Portfolio) TotalCost() float64 {
	var total float64
	for _, pos := range p.Positions {
		total += pos.CostBasis
	}
	return total
}

// Weights returns the market value of every position in order.
func (p Portfolio) Weights() []float64 {
	w := make([]float64, len(p.Positions))
	for i, pos := range p.Positions {
		w[i] = pos.MarketValue()
	}
	return w
}

// Items converts positions to treemap items weighted by Position.Weight.
func Items(p Portfolio) []treemap.Item[Position] {
	items := make([]treemap.Item[Position], len(p.Positions))
	for i, pos := range p.Positions {
		items[i] = treemap.Item[Position]{Weight: pos.Weight(), Data: pos}
	}
	return items
}

// Sector aggregates the positions of one sector.
type Sector struct {
	Name  string
	Value float64
	// Weight sums Position.Weight, so a sector's area equals the areas its
	// positions get in an ungrouped layout.
	Weight    float64
	CostBasis float64
	Positions []Position
}

// GainLoss returns the sector's unrealized gain.
func (s Sector) GainLoss() float64 { return s.Value - s.CostBasis }

// GainLossPct returns GainLoss relative to the sector's cost basis.
func (s Sector) GainLossPct() float64 {
	if s.CostBasis == 0 {
		return 0
	}
	return s.GainLoss() / s.CostBasis * 100
}

// Sub returns a portfolio holding only this sector's positions.
func (s Sector) Sub() Portfolio {
	return Portfolio{Name: s.Name, Positions: s.Positions}
}

// BySector groups positions by sector, one treemap item per sector weighted
// by Sector.Weight. Sectors are returned in the order they
// first appear.
func BySector(p Portfolio) []treemap.Item[Sector] {
	index := make(map[string]int)
	var sectors []Sector
	for _, pos := range p.Positions {
		name := pos.SectorName()
		i, ok := index[name]
		if !ok {
			i = len(sectors)
			index[name] = i
			sectors = append(sectors, Sector{Name: name})
		}
		s := &sectors[i]
		s.Value += pos.MarketValue()
		s.Weight += pos.Weight()
		s.CostBasis += pos.CostBasis
		s.Positions = append(s.Positions, pos)
	}

	items := make([]treemap.Item[Sector], len(sectors))
	for i, s := range sectors {
		items[i] = treemap.Item[Sector]{Weight: s.Weight, Data: s}
	}
	return items
}

// Sorted returns a copy of p with positions ordered by market value,
// largest first. Ties are ordered by symbol.
func Sorted(p Portfolio) Portfolio {
	out := p
	out.Positions = slices.Clone(p.Positions)
	slices.SortStableFunc(out.Positions, func(a, b Position) int {
		if c := cmp.Compare(b.MarketValue(), a.MarketValue()); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return out
}
