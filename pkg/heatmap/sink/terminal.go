package sink

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// RenderTerminal draws l as a cols × rows grid of colored characters. Each
// character shows the cell under its center; labels are written into the top
// left of cells wide enough to hold them.
func RenderTerminal(l *heatmap.Layout, cols, rows int) string {
	return RenderTerminalSelected(l, cols, rows, -1)
}

// RenderTerminalSelected is [RenderTerminal] with the cell at index selected
// drawn in reverse video.
func RenderTerminalSelected(l *heatmap.Layout, cols, rows, selected int) string {
	if cols <= 0 || rows <= 0 || l.Width <= 0 || l.Height <= 0 {
		return ""
	}
	g := sampleGrid(l, cols, rows)
	g.label(l)

	styles := make(map[int]lipgloss.Style)
	style := func(idx int) lipgloss.Style {
		if s, ok := styles[idx]; ok {
			return s
		}
		s := lipgloss.NewStyle().Background(lipgloss.Color(DefaultBackground))
		if idx >= 0 {
			c := l.Cells[idx]
			s = lipgloss.NewStyle().
				Background(lipgloss.Color(c.Color)).
				Foreground(lipgloss.Color(c.TextColor))
			if idx == selected {
				s = s.Reverse(true).Bold(true)
			}
		}
		styles[idx] = s
		return s
	}

	var b strings.Builder
	for r := range rows {
		// one styled run per stretch of the same cell
		start := 0
		for c := 1; c <= cols; c++ {
			if c < cols && g.idx[r][c] == g.idx[r][start] {
				continue
			}
			b.WriteString(style(g.idx[r][start]).Render(string(g.text[r][start:c])))
			start = c
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// CellAtChar returns the cell index under terminal position (col, row) of a
// cols × rows render of l, or -1.
func CellAtChar(l *heatmap.Layout, cols, rows, col, row int) int {
	if cols <= 0 || rows <= 0 {
		return -1
	}
	x := (float64(col) + 0.5) * l.Width / float64(cols)
	y := (float64(row) + 0.5) * l.Height / float64(rows)
	return l.CellAt(x, y)
}

type charGrid struct {
	idx  [][]int
	text [][]rune
}

func sampleGrid(l *heatmap.Layout, cols, rows int) charGrid {
	g := charGrid{idx: make([][]int, rows), text: make([][]rune, rows)}
	for r := range rows {
		g.idx[r] = make([]int, cols)
		g.text[r] = []rune(strings.Repeat(" ", cols))
		for c := range cols {
			g.idx[r][c] = CellAtChar(l, cols, rows, c, r)
		}
	}
	return g
}

// label writes each cell's symbol, and its percentage on the next row when
// there is room, starting at the cell's first character.
func (g charGrid) label(l *heatmap.Layout) {
	placed := make([]bool, len(l.Cells))
	for r := range g.idx {
		for c, idx := range g.idx[r] {
			if idx < 0 || placed[idx] {
				continue
			}
			placed[idx] = true
			cell := l.Cells[idx]
			if g.write(r, c, idx, cell.Label) && r+1 < len(g.idx) && g.idx[r+1][c] == idx {
				g.write(r+1, c, idx, formatPct(cell.GainLossPct))
			}
		}
	}
}

// write places s at (r, c) if the cell's run on that row is wide enough.
func (g charGrid) write(r, c, idx int, s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	width := 0
	for k := c; k < len(g.idx[r]) && g.idx[r][k] == idx; k++ {
		width++
	}
	if width < len(runes) {
		if width < 4 {
			return false
		}
		runes = append(runes[:width-1], '…')
	}
	copy(g.text[r][c:], runes)
	return true
}
