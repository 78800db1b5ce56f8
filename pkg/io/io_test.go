package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/portfolio"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"book.json", FormatJSON, false},
		{"dir/Book.TOML", FormatTOML, false},
		{"book.csv", FormatCSV, false},
		{"book.xlsx", FormatXLSX, false},
		{"book.xls", "", true},
		{"book", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadPortfolioJSON(t *testing.T) {
	in := `{
	  "name": "main",
	  "currency": "EUR",
	  "positions": [
	    {"symbol": "SAP", "sector": "Tech", "quantity": 4, "price": 150.5, "cost_basis": 500}
	  ]
	}`
	p, err := ReadPortfolio(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "main", p.Name)
	assert.Equal(t, "EUR", p.Currency)
	require.Len(t, p.Positions, 1)
	assert.Equal(t, portfolio.Position{Symbol: "SAP", Sector: "Tech", Quantity: 4, Price: 150.5, CostBasis: 500}, p.Positions[0])
}

func TestReadPortfolioJSONArray(t *testing.T) {
	in := `[{"symbol": "A", "quantity": 1, "price": 2}, {"symbol": "B", "quantity": 3, "price": 4}]`
	p, err := ReadPortfolio(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	require.Len(t, p.Positions, 2)
	assert.Equal(t, "B", p.Positions[1].Symbol)
}

func TestReadPortfolioJSONInvalid(t *testing.T) {
	_, err := ReadPortfolio(strings.NewReader(`{"positions": "nope"}`), FormatJSON)
	require.Error(t, err)
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidInput))
}

func TestReadPortfolioTOML(t *testing.T) {
	in := `
name = "retirement"
currency = "USD"

[[positions]]
symbol = "VTI"
sector = "Index"
quantity = 12
price = 250.25
cost_basis = 2800

[[positions]]
symbol = "BND"
quantity = 30
price = 72
`
	p, err := ReadPortfolio(strings.NewReader(in), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "retirement", p.Name)
	require.Len(t, p.Positions, 2)
	assert.Equal(t, 12.0, p.Positions[0].Quantity)
	assert.Equal(t, 250.25, p.Positions[0].Price)
	assert.Equal(t, 72.0, p.Positions[1].Price)
	assert.Zero(t, p.Positions[1].CostBasis)
}

func TestReadPortfolioCSV(t *testing.T) {
	in := "Ticker,Shares,Price,Cost,Sector,Name\n" +
		"AAPL,10,190.5,\"1,500\",Tech,Apple Inc.\n" +
		"\n" +
		"XOM, 5, $100, 600, Energy, Exxon\n"

	p, err := ReadPortfolio(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)
	require.Len(t, p.Positions, 2)

	assert.Equal(t, portfolio.Position{
		Symbol: "AAPL", Name: "Apple Inc.", Sector: "Tech",
		Quantity: 10, Price: 190.5, CostBasis: 1500,
	}, p.Positions[0])
	assert.Equal(t, 100.0, p.Positions[1].Price)
	assert.Equal(t, "Energy", p.Positions[1].Sector)
}

func TestReadPortfolioCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMsg string
	}{
		{"empty", "", "no header row"},
		{"missing columns", "symbol,name\nA,a\n", "missing required columns: quantity, price"},
		{"bad number", "symbol,quantity,price\nA,1,2\nB,1,12.5x\n", `row 3, column "price": invalid number "12.5x"`},
		{"missing symbol", "symbol,quantity,price\n,1,2\n", "row 2: missing symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPortfolio(strings.NewReader(tt.in), FormatCSV)
			require.Error(t, err)
			assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidInput), err.Error())
			assert.Contains(t, herrors.UserMessage(err), tt.wantMsg)
		})
	}
}

func TestReadPortfolioXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"symbol", "quantity", "price", "cost_basis", "sector"},
		{"NVDA", 3, 450.5, 900, "Tech"},
		{"KO", 20, 60, 1300, "Staples"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	p, err := ReadPortfolio(&buf, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, p.Positions, 2)
	assert.Equal(t, portfolio.Position{Symbol: "NVDA", Sector: "Tech", Quantity: 3, Price: 450.5, CostBasis: 900}, p.Positions[0])
	assert.Equal(t, "KO", p.Positions[1].Symbol)
}

func TestReadPortfolioUnknownFormat(t *testing.T) {
	_, err := ReadPortfolio(strings.NewReader(""), Format("yaml"))
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidFormat))
}

func TestImportPortfolio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brokerage.csv")
	require.NoError(t, os.WriteFile(path, []byte("symbol,quantity,price\nA,1,2\n"), 0o644))

	p, err := ImportPortfolio(path)
	require.NoError(t, err)
	assert.Equal(t, "brokerage", p.Name, "file name is the fallback portfolio name")
	require.Len(t, p.Positions, 1)

	_, err = ImportPortfolio(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, herrors.Is(err, herrors.ErrCodeFileNotFound))
}

func TestReadRecords(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(`[{"id": "a", "value": 12.50}, {"id": "b", "value": 3}]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, json.Number("12.50"), records[0]["value"])

	_, err = ReadRecords(strings.NewReader(`{"id": "a"}`))
	require.Error(t, err)
	assert.True(t, herrors.Is(err, herrors.ErrCodeInvalidInput))
}

func TestWriteLayoutXLSX(t *testing.T) {
	p := portfolio.Portfolio{Positions: []portfolio.Position{
		{Symbol: "UP", Quantity: 10, Price: 12, CostBasis: 100},
		{Symbol: "DOWN", Quantity: 10, Price: 5, CostBasis: 100},
	}}
	l, err := heatmap.Build(p, 200, 100)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteLayoutXLSX(&buf, l))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(layoutSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "color", rows[0][10])
	assert.Equal(t, "UP", rows[1][0])
	assert.Equal(t, l.Cells[0].Color, rows[1][10])
	assert.Equal(t, "DOWN", rows[2][0])

	up, err := f.GetCellStyle(layoutSheet, "A2")
	require.NoError(t, err)
	down, err := f.GetCellStyle(layoutSheet, "K3")
	require.NoError(t, err)
	assert.NotZero(t, up)
	assert.NotZero(t, down)
	assert.NotEqual(t, up, down, "rows with different colors get different styles")
}

func TestWritePortfolioJSONRoundTrip(t *testing.T) {
	p := portfolio.Portfolio{Name: "x", Positions: []portfolio.Position{{Symbol: "A", Quantity: 1, Price: 2, CostBasis: 1}}}

	var buf bytes.Buffer
	require.NoError(t, WritePortfolioJSON(&buf, p))

	back, err := ReadPortfolio(&buf, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}
