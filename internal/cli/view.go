package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/heatmap/sink"
	"github.com/matzehuels/heatmap/pkg/pipeline"
)

// viewCommand opens the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "view <portfolio|layout.json>",
		Short: "Browse a heatmap in the terminal",
		Long: `Browse a heatmap in the terminal.

Arrow keys (or h/j/k/l) move to the neighboring cell, tab cycles through cells
from largest to smallest, and clicking selects the cell under the pointer.
Press q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.layoutOptions(cmd, &opts); err != nil {
				return err
			}
			l, err := c.loadForView(cmd.Context(), args[0], noCache, opts)
			if err != nil {
				return err
			}
			if len(l.Cells) == 0 {
				printWarning("Nothing to show: the portfolio has no positions")
				return nil
			}
			p := tea.NewProgram(newViewModel(l),
				tea.WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd.Flags(), &opts)
	return cmd
}

func (c *CLI) loadForView(ctx context.Context, input string, noCache bool, opts pipeline.Options) (*heatmap.Layout, error) {
	path, err := absInput(input)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(input, layoutSuffix) {
		return readLayout(path)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Input = path
	p, err := runner.Import(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", input, err)
	}
	return runner.ComputeLayout(ctx, p, opts)
}

// =============================================================================
// viewModel - bubbletea model
// =============================================================================

// statusLines is the number of rows below the heatmap.
const statusLines = 2

var (
	viewStatusStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	viewHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

type viewModel struct {
	layout   *heatmap.Layout
	cols     int
	rows     int
	selected int
}

func newViewModel(l *heatmap.Layout) viewModel {
	return viewModel{layout: l, cols: 80, rows: 24}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.selected = neighbor(m.layout, m.selected, -1, 0)
		case "right", "l":
			m.selected = neighbor(m.layout, m.selected, 1, 0)
		case "up", "k":
			m.selected = neighbor(m.layout, m.selected, 0, -1)
		case "down", "j":
			m.selected = neighbor(m.layout, m.selected, 0, 1)
		case "tab", "n":
			m.selected = (m.selected + 1) % len(m.layout.Cells)
		case "shift+tab", "p":
			m.selected = (m.selected - 1 + len(m.layout.Cells)) % len(m.layout.Cells)
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if idx := sink.CellAtChar(m.layout, m.cols, m.mapRows(), msg.X, msg.Y); idx >= 0 {
				m.selected = idx
			}
		}
	}
	return m, nil
}

func (m viewModel) mapRows() int {
	return max(m.rows-statusLines, 1)
}

func (m viewModel) View() string {
	var b strings.Builder
	b.WriteString(sink.RenderTerminalSelected(m.layout, m.cols, m.mapRows(), m.selected))
	b.WriteString("\n")
	b.WriteString(viewStatusStyle.Render(m.status()))
	b.WriteString("\n")
	b.WriteString(viewHelpStyle.Render("←↑↓→ move  tab next  click select  q quit"))
	return b.String()
}

// status describes the selected cell.
func (m viewModel) status() string {
	if m.selected < 0 || m.selected >= len(m.layout.Cells) {
		return ""
	}
	c := m.layout.Cells[m.selected]
	parts := []string{c.Label}
	if c.Name != "" && c.Name != c.Label {
		parts = append(parts, c.Name)
	}
	if c.Sector != "" {
		parts = append(parts, c.Sector)
	}
	parts = append(parts,
		formatAmount(c.Value, m.layout.Currency),
		fmt.Sprintf("%+.2f%%", c.GainLossPct))
	return strings.Join(parts, "  ")
}

// neighbor returns the cell nearest to from in direction (dx, dy), or from
// when there is none. Distance along the direction counts once; drift
// across it counts twice.
func neighbor(l *heatmap.Layout, from, dx, dy int) int {
	if from < 0 || from >= len(l.Cells) {
		return from
	}
	src := l.Cells[from]
	best, bestScore := from, math.Inf(1)
	for i, c := range l.Cells {
		if i == from || c.W <= 0 || c.H <= 0 {
			continue
		}
		var along, across float64
		if dx != 0 {
			if dx > 0 && c.X < src.Right()-1e-9 || dx < 0 && c.Right() > src.X+1e-9 {
				continue
			}
			along = math.Abs(c.CenterX() - src.CenterX())
			across = math.Abs(c.CenterY() - src.CenterY())
		} else {
			if dy > 0 && c.Y < src.Bottom()-1e-9 || dy < 0 && c.Bottom() > src.Y+1e-9 {
				continue
			}
			along = math.Abs(c.CenterY() - src.CenterY())
			across = math.Abs(c.CenterX() - src.CenterX())
		}
		if score := along + 2*across; score < bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
