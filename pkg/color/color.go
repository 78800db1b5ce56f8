// Package color maps gains and losses to heatmap fill colors.
//
// A [Scale] is a diverging palette: losses blend from a neutral gray toward
// the palette's loss color, gains toward its gain color. Blending happens in
// CIE L*a*b* so that equal steps in percent look like equal steps in color.
// Changes at or beyond ±Limit percent use the full color.
package color

import (
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
)

// DefaultLimit is the percent change at which colors saturate.
const DefaultLimit = 3.0

// DefaultPalette names the palette used when none is requested.
const DefaultPalette = "redgreen"

// Palette is a three-stop diverging color scheme.
type Palette struct {
	Name    string
	Loss    colorful.Color
	Neutral colorful.Color
	Gain    colorful.Color
}

var palettes = map[string]Palette{
	"redgreen": {
		Name:    "redgreen",
		Loss:    mustHex("#f63538"),
		Neutral: mustHex("#414554"),
		Gain:    mustHex("#30cc5a"),
	},
	// Red/blue stays distinguishable for red-green color blindness.
	"bluered": {
		Name:    "bluered",
		Loss:    mustHex("#d6604d"),
		Neutral: mustHex("#4d4d4d"),
		Gain:    mustHex("#4393c3"),
	},
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Palettes returns the names of the built-in palettes, sorted.
func Palettes() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// LookupPalette returns the named palette. Lookup is case-insensitive and
// the empty name selects DefaultPalette.
func LookupPalette(name string) (Palette, error) {
	if name == "" {
		name = DefaultPalette
	}
	p, ok := palettes[strings.ToLower(name)]
	if !ok {
		return Palette{}, herrors.New(herrors.ErrCodeInvalidPalette,
			"unknown palette %q (available: %s)", name, strings.Join(Palettes(), ", "))
	}
	return p, nil
}

// Scale maps percent changes to colors.
type Scale struct {
	Palette Palette
	Limit   float64
}

// NewScale builds a scale from a palette name. A non-positive limit selects
// DefaultLimit.
func NewScale(palette string, limit float64) (Scale, error) {
	p, err := LookupPalette(palette)
	if err != nil {
		return Scale{}, err
	}
	if !(limit > 0) || math.IsInf(limit, 0) {
		limit = DefaultLimit
	}
	return Scale{Palette: p, Limit: limit}, nil
}

// Color returns the fill for a change of pct percent. NaN maps to neutral.
func (s Scale) Color(pct float64) colorful.Color {
	if math.IsNaN(pct) || pct == 0 {
		return s.Palette.Neutral
	}
	limit := s.Limit
	if !(limit > 0) {
		limit = DefaultLimit
	}
	t := math.Min(math.Abs(pct)/limit, 1)
	if pct > 0 {
		return s.Palette.Neutral.BlendLab(s.Palette.Gain, t).Clamped()
	}
	return s.Palette.Neutral.BlendLab(s.Palette.Loss, t).Clamped()
}

// Hex returns Color(pct) as "#rrggbb".
func (s Scale) Hex(pct float64) string {
	return s.Color(pct).Hex()
}

// TextColor returns "#000000" or "#ffffff", whichever reads better on the
// background hex color bg. Unparseable input gets white.
func TextColor(bg string) string {
	c, err := colorful.Hex(bg)
	if err != nil {
		return "#ffffff"
	}
	if l, _, _ := c.Lab(); l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}

// RGB parses a hex color into 8-bit channels. Unparseable input is black.
func RGB(hex string) (r, g, b uint8) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, 0, 0
	}
	return c.Clamped().RGB255()
}
