package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// Cells smaller than this carry no label.
const (
	MinLabelWidth  = 24.0
	MinLabelHeight = 12.0
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 24.0

	pctSizeRatio   = 0.75
	twoLineHeights = 2.6
)

// cellText is the text placed in one cell.
type cellText struct {
	Symbol  string
	Size    float64
	Pct     string
	PctSize float64
}

// labelFor sizes the label for c. ok is false for cells too small to label.
func labelFor(c heatmap.Cell) (t cellText, ok bool) {
	if c.W < MinLabelWidth || c.H < MinLabelHeight || c.Label == "" {
		return cellText{}, false
	}
	size := fontSizeFor(c.W, c.H, utf8.RuneCountInString(c.Label))
	t = cellText{Symbol: truncateLabel(c.Label, c.W, size), Size: size}
	if c.H >= twoLineHeights*size {
		t.Pct = formatPct(c.GainLossPct)
		t.PctSize = math.Max(fontSizeMin, size*pctSizeRatio)
	}
	return t, true
}

// baselines returns the vertical centers of the symbol and percent lines.
func (t cellText) baselines(c heatmap.Cell) (symbolY, pctY float64) {
	cy := c.CenterY()
	if t.Pct == "" {
		return cy, 0
	}
	gap := (t.Size + t.PctSize) / 2
	return cy - gap*0.5, cy + gap*0.6
}

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

func truncateLabel(label string, width, size float64) string {
	maxChars := max(3, int(width*fontWidthRatio/(size*fontCharWidth)))
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

func formatPct(pct float64) string {
	if math.IsNaN(pct) || math.Abs(pct) < 0.005 {
		pct = 0
	}
	return fmt.Sprintf("%+.2f%%", pct)
}

func formatMoney(v float64, currency string) string {
	s := fmt.Sprintf("%.2f", v)
	if currency != "" {
		s += " " + currency
	}
	return s
}

// tooltip is the hover text for c.
func tooltip(c heatmap.Cell, currency string) string {
	var buf bytes.Buffer
	buf.WriteString(c.Label)
	if c.Name != "" && c.Name != c.Label {
		fmt.Fprintf(&buf, " (%s)", c.Name)
	}
	if c.Sector != "" {
		fmt.Fprintf(&buf, "\n%s", c.Sector)
	}
	fmt.Fprintf(&buf, "\nValue: %s", formatMoney(c.Value, currency))
	fmt.Fprintf(&buf, "\nChange: %s (%s)", formatMoney(c.GainLoss, currency), formatPct(c.GainLossPct))
	return buf.String()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
