package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// out receives all user-facing output. Logs go to stderr.
var out io.Writer = os.Stdout

// =============================================================================
// Colors & Styles
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleGain and StyleLoss color signed amounts.
	StyleGain = lipgloss.NewStyle().Foreground(colorGreen)
	StyleLoss = lipgloss.NewStyle().Foreground(colorRed)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(18)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(out, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(out, StyleWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output file line.
func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printNewline() {
	fmt.Fprintln(out)
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Heatmap Summaries
// =============================================================================

// printStats prints position and cell counts on one line.
func printStats(positions, cells int, cached bool) {
	var parts []string
	if positions > 0 {
		parts = append(parts, fmt.Sprintf("%d positions", positions))
	}
	parts = append(parts, fmt.Sprintf("%d cells", cells))

	status, style := iconFresh, styleComputed
	if cached {
		status, style = iconCached, styleCached
	}

	sep := StyleDim.Render(" · ")
	line := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		line = append(line, StyleDim.Render(p))
	}
	line = append(line, style.Render(status))
	fmt.Fprintln(out, "  "+strings.Join(line, sep))
}

// printSummary prints the total value and gain of a layout.
func printSummary(l *heatmap.Layout) {
	s := l.Summary()
	printKeyValue("value", formatAmount(s.Value, l.Currency))
	printKeyValue("gain/loss", signed(s.GainLoss, formatAmount(s.GainLoss, l.Currency)))
	printKeyValue("gainers/losers", fmt.Sprintf("%d / %d", s.Gainers, s.Losers))
}

func formatAmount(v float64, currency string) string {
	s := fmt.Sprintf("%.2f", v)
	if currency != "" {
		s += " " + currency
	}
	return s
}

// signed colors s by the sign of v.
func signed(v float64, s string) string {
	switch {
	case v > 0:
		return StyleGain.Render("+" + s)
	case v < 0:
		return StyleLoss.Render(s)
	default:
		return s
	}
}
