package heatmap

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/heatmap/pkg/treemap"
)

// Cell is one position's rectangle in a heatmap.
type Cell struct {
	treemap.Rect

	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Name        string  `json:"name,omitempty"`
	Sector      string  `json:"sector,omitempty"`
	Index       int     `json:"index"`
	Value       float64 `json:"value"`
	GainLoss    float64 `json:"gain_loss"`
	GainLossPct float64 `json:"gain_loss_pct"`
	Color       string  `json:"color"`
	TextColor   string  `json:"text_color"`
}

// Frame outlines a sector in a grouped layout.
type Frame struct {
	treemap.Rect

	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	GainLossPct float64 `json:"gain_loss_pct"`
	Color       string  `json:"color"`
	// Header is the height of the title band at the top of the frame, or 0
	// when the frame was too short for one.
	Header float64 `json:"header,omitempty"`
}

// Layout is a fully positioned and colored heatmap.
type Layout struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Title    string  `json:"title,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Palette  string  `json:"palette"`
	Limit    float64 `json:"limit"`
	Cells    []Cell  `json:"cells"`
	Sectors  []Frame `json:"sectors,omitempty"`
}

// Summary aggregates a layout for status lines.
type Summary struct {
	Cells    int
	Gainers  int
	Losers   int
	Value    float64
	GainLoss float64
}

// Summary counts cells and totals their value and gain.
func (l *Layout) Summary() Summary {
	var s Summary
	s.Cells = len(l.Cells)
	for _, c := range l.Cells {
		s.Value += c.Value
		s.GainLoss += c.GainLoss
		switch {
		case c.GainLoss > 0:
			s.Gainers++
		case c.GainLoss < 0:
			s.Losers++
		}
	}
	return s
}

// CellAt returns the index of the cell containing (x, y), or -1.
// Edges shared by two cells belong to the cell that starts there.
func (l *Layout) CellAt(x, y float64) int {
	for i, c := range l.Cells {
		if c.W <= 0 || c.H <= 0 {
			continue
		}
		if x >= c.X && x < c.Right() && y >= c.Y && y < c.Bottom() {
			return i
		}
	}
	return -1
}

// Find returns the cell with the given ID.
func (l *Layout) Find(id string) (Cell, bool) {
	for _, c := range l.Cells {
		if c.ID == id {
			return c, true
		}
	}
	return Cell{}, false
}

// Marshal encodes l as indented JSON.
func Marshal(l *Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a layout produced by Marshal.
func Unmarshal(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("decode layout: missing or invalid dimensions %gx%g", l.Width, l.Height)
	}
	return &l, nil
}
