package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/portfolio"
)

const layoutSheet = "Layout"

var layoutHeader = []any{"id", "label", "sector", "value", "gain_loss", "gain_loss_pct", "x", "y", "w", "h", "color"}

// WriteLayoutXLSX writes one row per cell of l to w as an .xlsx workbook.
// Each row is filled with its cell's color.
func WriteLayoutXLSX(w io.Writer, l *heatmap.Layout) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", layoutSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetSheetRow(layoutSheet, "A1", &layoutHeader); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	if err := f.SetRowStyle(layoutSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(layoutHeader))
	styles := make(map[string]int)
	for i, c := range l.Cells {
		row := i + 2
		values := []any{c.ID, c.Label, c.Sector, c.Value, c.GainLoss, c.GainLossPct, c.X, c.Y, c.W, c.H, c.Color}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(layoutSheet, start, &values); err != nil {
			return fmt.Errorf("xlsx row %d: %w", row, err)
		}

		style, ok := styles[c.Color]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(c.Color, "#")}},
				Font: &excelize.Font{Color: strings.TrimPrefix(c.TextColor, "#")},
			})
			if err != nil {
				return fmt.Errorf("xlsx style: %w", err)
			}
			styles[c.Color] = style
		}
		end := fmt.Sprintf("%s%d", lastCol, row)
		if err := f.SetCellStyle(layoutSheet, start, end, style); err != nil {
			return fmt.Errorf("xlsx style: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// ExportLayoutXLSX writes l to the file at path.
func ExportLayoutXLSX(l *heatmap.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayoutXLSX(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePortfolioJSON encodes p as indented JSON. The output reads back with
// ReadPortfolio(r, FormatJSON).
func WritePortfolioJSON(w io.Writer, p portfolio.Portfolio) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}
	return nil
}
