package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/portfolio"
	"github.com/matzehuels/heatmap/pkg/treemap"
)

// Format identifies a portfolio file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath returns the format implied by path's extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", herrors.New(herrors.ErrCodeInvalidFormat,
			"unsupported portfolio file %q (want .json, .toml, .csv or .xlsx)", filepath.Base(path))
	}
}

// ImportPortfolio reads the portfolio file at path. When the file does not
// name the portfolio, the base name without extension is used.
func ImportPortfolio(path string) (portfolio.Portfolio, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return portfolio.Portfolio{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return portfolio.Portfolio{}, herrors.Wrap(herrors.ErrCodeFileNotFound, err, "portfolio %s", path)
		}
		return portfolio.Portfolio{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	p, err := ReadPortfolio(f, format)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ReadPortfolio decodes a portfolio in the given format from r.
// ReadPortfolio does not close r.
func ReadPortfolio(r io.Reader, format Format) (portfolio.Portfolio, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatTOML:
		var p portfolio.Portfolio
		if _, err := toml.NewDecoder(r).Decode(&p); err != nil {
			return p, herrors.Wrap(herrors.ErrCodeInvalidInput, err, "decode toml")
		}
		return p, nil
	case FormatCSV:
		rows, err := readCSV(r)
		if err != nil {
			return portfolio.Portfolio{}, err
		}
		return fromRows(rows)
	case FormatXLSX:
		rows, err := readXLSX(r)
		if err != nil {
			return portfolio.Portfolio{}, err
		}
		return fromRows(rows)
	default:
		return portfolio.Portfolio{}, herrors.New(herrors.ErrCodeInvalidFormat, "unknown portfolio format %q", format)
	}
}

func readJSON(r io.Reader) (portfolio.Portfolio, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("read: %w", err)
	}

	var p portfolio.Portfolio
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &p.Positions)
	} else {
		err = json.Unmarshal(trimmed, &p)
	}
	if err != nil {
		return portfolio.Portfolio{}, herrors.Wrap(herrors.ErrCodeInvalidInput, err, "decode json")
	}
	return p, nil
}

// ReadRecords decodes a JSON array of objects.
func ReadRecords(r io.Reader) ([]treemap.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []treemap.Record
	if err := dec.Decode(&records); err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidInput, err, "decode records: expected a JSON array of objects")
	}
	return records, nil
}

// =============================================================================
// Tabular input
// =============================================================================

const (
	colSymbol = iota
	colName
	colSector
	colQuantity
	colPrice
	colCost
	numCols
)

var colNames = [numCols]string{"symbol", "name", "sector", "quantity", "price", "cost_basis"}

var headerAliases = map[string]int{
	"symbol":     colSymbol,
	"ticker":     colSymbol,
	"name":       colName,
	"sector":     colSector,
	"quantity":   colQuantity,
	"qty":        colQuantity,
	"shares":     colQuantity,
	"price":      colPrice,
	"cost_basis": colCost,
	"cost basis": colCost,
	"cost":       colCost,
	"basis":      colCost,
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidInput, err, "read csv")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidInput, err, "open xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, herrors.New(herrors.ErrCodeInvalidInput, "xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, herrors.Wrap(herrors.ErrCodeInvalidInput, err, "read sheet %q", sheets[0])
	}
	return rows, nil
}

// fromRows maps a header row plus data rows to positions. Blank rows are
// skipped; row numbers in errors are 1-based and count the header.
func fromRows(rows [][]string) (portfolio.Portfolio, error) {
	var p portfolio.Portfolio
	if len(rows) == 0 {
		return p, herrors.New(herrors.ErrCodeInvalidInput, "no header row")
	}

	var cols [numCols]int
	for i := range cols {
		cols[i] = -1
	}
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if c, ok := headerAliases[key]; ok && cols[c] == -1 {
			cols[c] = i
		}
	}

	var missing []string
	for _, c := range []int{colSymbol, colQuantity, colPrice} {
		if cols[c] == -1 {
			missing = append(missing, colNames[c])
		}
	}
	if len(missing) > 0 {
		return p, herrors.New(herrors.ErrCodeInvalidInput, "missing required columns: %s", strings.Join(missing, ", "))
	}

	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := i + 2
		pos := portfolio.Position{
			Symbol: cell(row, cols[colSymbol]),
			Name:   cell(row, cols[colName]),
			Sector: cell(row, cols[colSector]),
		}
		if pos.Symbol == "" {
			return p, herrors.New(herrors.ErrCodeInvalidInput, "row %d: missing symbol", line)
		}

		var err error
		if pos.Quantity, err = number(row, cols[colQuantity], line, colQuantity); err != nil {
			return p, err
		}
		if pos.Price, err = number(row, cols[colPrice], line, colPrice); err != nil {
			return p, err
		}
		if cols[colCost] != -1 {
			if pos.CostBasis, err = number(row, cols[colCost], line, colCost); err != nil {
				return p, err
			}
		}
		p.Positions = append(p.Positions, pos)
	}
	return p, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// number parses a numeric cell. Empty cells are zero; thousands separators
// and a leading currency sign are tolerated.
func number(row []string, idx, line, col int) (float64, error) {
	s := cell(row, idx)
	if s == "" {
		return 0, nil
	}
	clean := strings.TrimPrefix(strings.ReplaceAll(s, ",", ""), "$")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, herrors.New(herrors.ErrCodeInvalidInput, "row %d, column %q: invalid number %q", line, colNames[col], s)
	}
	return v, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
