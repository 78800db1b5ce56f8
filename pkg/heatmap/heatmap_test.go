package heatmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/heatmap/pkg/color"
	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/portfolio"
	"github.com/matzehuels/heatmap/pkg/treemap"
)

func testPortfolio() portfolio.Portfolio {
	return portfolio.Portfolio{
		Name:     "growth",
		Currency: "USD",
		Positions: []portfolio.Position{
			{Symbol: "XOM", Sector: "Energy", Quantity: 10, Price: 100, CostBasis: 1100},
			{Symbol: "AAPL", Sector: "Tech", Quantity: 10, Price: 300, CostBasis: 2000},
			{Symbol: "MSFT", Sector: "Tech", Quantity: 10, Price: 200, CostBasis: 2000},
			{Symbol: "JNJ", Sector: "Health", Quantity: 10, Price: 100, CostBasis: 1000},
		},
	}
}

func TestBuild(t *testing.T) {
	l, err := Build(testPortfolio(), 400, 200)
	require.NoError(t, err)

	assert.Equal(t, 400.0, l.Width)
	assert.Equal(t, 200.0, l.Height)
	assert.Equal(t, "growth", l.Title)
	assert.Equal(t, "USD", l.Currency)
	assert.Equal(t, color.DefaultPalette, l.Palette)
	assert.Equal(t, color.DefaultLimit, l.Limit)
	require.Len(t, l.Cells, 4)
	assert.Empty(t, l.Sectors)

	// largest first
	assert.Equal(t, "AAPL", l.Cells[0].ID)
	assert.Equal(t, 1, l.Cells[0].Index)
	assert.InDelta(t, 3000, l.Cells[0].Value, 1e-9)
	assert.InDelta(t, 50, l.Cells[0].GainLossPct, 1e-9)

	var area float64
	for _, c := range l.Cells {
		area += c.Area()
		assert.InDelta(t, c.Value/7000*80000, c.Area(), 1e-6, c.ID)
	}
	assert.InDelta(t, 80000, area, 1e-6)
}

func TestBuildColors(t *testing.T) {
	l, err := Build(testPortfolio(), 400, 200, WithPalette("bluered"), WithLimit(5))
	require.NoError(t, err)

	scale, err := color.NewScale("bluered", 5)
	require.NoError(t, err)

	for _, c := range l.Cells {
		assert.Equal(t, scale.Hex(c.GainLossPct), c.Color, c.ID)
		assert.Equal(t, color.TextColor(c.Color), c.TextColor, c.ID)
	}
	jnj, ok := l.Find("JNJ")
	require.True(t, ok)
	assert.Equal(t, scale.Palette.Neutral.Hex(), jnj.Color)
}

func TestBuildUnknownPalette(t *testing.T) {
	_, err := Build(testPortfolio(), 400, 200, WithPalette("neon"))
	require.Error(t, err)
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidPalette))
}

func TestBuildPreserveOrder(t *testing.T) {
	l, err := Build(testPortfolio(), 400, 200, WithPreserveOrder(true))
	require.NoError(t, err)

	var ids []string
	for i, c := range l.Cells {
		assert.Equal(t, i, c.Index)
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"XOM", "AAPL", "MSFT", "JNJ"}, ids)
}

func TestBuildTitle(t *testing.T) {
	l, err := Build(testPortfolio(), 10, 10, WithTitle("Q3"))
	require.NoError(t, err)
	assert.Equal(t, "Q3", l.Title)
}

func TestBuildIDs(t *testing.T) {
	p := portfolio.Portfolio{Positions: []portfolio.Position{
		{Symbol: "AAA", Quantity: 3, Price: 1},
		{Symbol: "AAA", Quantity: 2, Price: 1},
		{Name: "", Quantity: 1, Price: 1},
	}}
	l, err := Build(p, 100, 100, WithPreserveOrder(true))
	require.NoError(t, err)
	require.Len(t, l.Cells, 3)

	assert.Equal(t, "AAA", l.Cells[0].ID)
	assert.Equal(t, "AAA-2", l.Cells[1].ID)
	assert.Equal(t, "pos-2", l.Cells[2].ID, "unlabeled positions are named by input index")
}

func TestBuildDeterministic(t *testing.T) {
	p := portfolio.Portfolio{Positions: []portfolio.Position{
		{Quantity: 3, Price: 1},
		{Quantity: 1, Price: 1},
	}}
	first, err := Build(p, 100, 100)
	require.NoError(t, err)
	second, err := Build(p, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildPadding(t *testing.T) {
	plain, err := Build(testPortfolio(), 400, 200)
	require.NoError(t, err)
	padded, err := Build(testPortfolio(), 400, 200, WithPadding(4))
	require.NoError(t, err)

	for i := range plain.Cells {
		p, q := plain.Cells[i], padded.Cells[i]
		assert.InDelta(t, p.X+2, q.X, 1e-9)
		assert.InDelta(t, p.Y+2, q.Y, 1e-9)
		assert.InDelta(t, p.W-4, q.W, 1e-9)
		assert.InDelta(t, p.H-4, q.H, 1e-9)
	}
}

func TestInsetNeverInverts(t *testing.T) {
	r := inset(treemap.Rect{X: 1, Y: 1, W: 2, H: 30}, 5)
	assert.Equal(t, 0.0, r.W)
	assert.Equal(t, 20.0, r.H)
	assert.Equal(t, 2.0, r.X)
}

func TestBuildGroupBySector(t *testing.T) {
	l, err := Build(testPortfolio(), 400, 300, WithGroupBySector(true), WithSectorHeader(10))
	require.NoError(t, err)
	require.Len(t, l.Cells, 4)
	require.Len(t, l.Sectors, 3)

	assert.Equal(t, "Tech", l.Sectors[0].Name)
	assert.InDelta(t, 5000, l.Sectors[0].Value, 1e-9)

	frames := make(map[string]Frame)
	var frameArea float64
	for _, f := range l.Sectors {
		frames[f.Name] = f
		frameArea += f.Area()
		assert.Equal(t, 10.0, f.Header, f.Name)
	}
	assert.InDelta(t, 120000, frameArea, 1e-6)

	const eps = 1e-9
	for _, c := range l.Cells {
		f, ok := frames[c.Sector]
		require.True(t, ok, c.ID)
		assert.GreaterOrEqual(t, c.X, f.X-eps, c.ID)
		assert.GreaterOrEqual(t, c.Y, f.Y+10-eps, "%s must sit below the header", c.ID)
		assert.LessOrEqual(t, c.Right(), f.Right()+eps, c.ID)
		assert.LessOrEqual(t, c.Bottom(), f.Bottom()+eps, c.ID)
	}

	aapl, ok := l.Find("AAPL")
	require.True(t, ok)
	assert.Equal(t, 1, aapl.Index, "index refers to the full portfolio")
}

func TestBuildEmptyAndZero(t *testing.T) {
	l, err := Build(portfolio.Portfolio{}, 100, 100)
	require.NoError(t, err)
	assert.NotNil(t, l.Cells)
	assert.Empty(t, l.Cells)

	zero := portfolio.Portfolio{Positions: []portfolio.Position{{Symbol: "A"}, {Symbol: "B"}}}
	l, err = Build(zero, 100, 100)
	require.NoError(t, err)
	require.Len(t, l.Cells, 2)
	assert.Equal(t, "A", l.Cells[0].ID)
	assert.Zero(t, l.Cells[0].Area())
}

func TestSummary(t *testing.T) {
	l, err := Build(testPortfolio(), 100, 100)
	require.NoError(t, err)

	s := l.Summary()
	assert.Equal(t, 4, s.Cells)
	assert.Equal(t, 1, s.Gainers)
	assert.Equal(t, 1, s.Losers)
	assert.InDelta(t, 7000, s.Value, 1e-9)
	assert.InDelta(t, 900, s.GainLoss, 1e-9)
}

func TestCellAt(t *testing.T) {
	l, err := Build(testPortfolio(), 400, 200)
	require.NoError(t, err)

	for i, c := range l.Cells {
		assert.Equal(t, i, l.CellAt(c.CenterX(), c.CenterY()), c.ID)
	}
	assert.Equal(t, -1, l.CellAt(-1, 5))
	assert.Equal(t, -1, l.CellAt(400, 5))
}

func TestMarshalRoundTrip(t *testing.T) {
	l, err := Build(testPortfolio(), 400, 300, WithGroupBySector(true))
	require.NoError(t, err)

	data, err := Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gain_loss_pct"`)
	assert.Contains(t, string(data), `"x"`)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, l, back)
}

func TestUnmarshalRejectsBadInput(t *testing.T) {
	_, err := Unmarshal([]byte(`{"cells": []}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}

func TestBuildGroupedAreasMatchFlat(t *testing.T) {
	p := portfolio.Portfolio{Positions: []portfolio.Position{
		{Symbol: "A", Sector: "Tech", Quantity: 10, Price: 1},
		{Symbol: "SHORT", Sector: "Tech", Quantity: -5, Price: 1},
		{Symbol: "B", Sector: "Energy", Quantity: 5, Price: 1},
	}}

	flat, err := Build(p, 100, 100)
	require.NoError(t, err)
	grouped, err := Build(p, 100, 100, WithGroupBySector(true), WithSectorHeader(0))
	require.NoError(t, err)

	for _, id := range []string{"A", "SHORT", "B"} {
		f, ok := flat.Find(id)
		require.True(t, ok, id)
		g, ok := grouped.Find(id)
		require.True(t, ok, id)
		assert.InDelta(t, f.Area(), g.Area(), 1e-6, id)
	}

	a, _ := flat.Find("A")
	assert.InDelta(t, 10000.0*2/3, a.Area(), 1e-6)
}

func TestBuildNaNSafe(t *testing.T) {
	p := portfolio.Portfolio{Positions: []portfolio.Position{
		{Symbol: "A", Quantity: 1, Price: 10},
		{Symbol: "B", Quantity: -1, Price: 10},
	}}
	l, err := Build(p, 0, 100)
	require.NoError(t, err)
	for _, c := range l.Cells {
		assert.False(t, math.IsNaN(c.X+c.Y+c.W+c.H), c.ID)
	}
}
