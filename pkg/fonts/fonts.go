// Package fonts provides the fonts used to draw heatmap labels.
//
// The Go font family (golang.org/x/image/font/gofont) is compiled into the
// binary, so raster output looks the same on every machine and SVG output can
// embed the font instead of relying on what the viewer has installed.
package fonts

import (
	"encoding/base64"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name used for the embedded font.
const FontFamily = "Go"

// FallbackFontFamily lists the CSS fallbacks for viewers that ignore the
// embedded font.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Helvetica, Arial, sans-serif`

// RegularTTF returns the regular weight as TrueType data.
func RegularTTF() []byte { return goregular.TTF }

// BoldTTF returns the bold weight as TrueType data.
func BoldTTF() []byte { return gobold.TTF }

var (
	parseOnce sync.Once
	regular   *truetype.Font
	bold      *truetype.Font
	parseErr  error
)

func parse() error {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			return
		}
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
	return parseErr
}

// Face returns a face of the given point size at 72 DPI, so one point maps
// to one layout unit.
func Face(size float64, isBold bool) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	f := regular
	if isBold {
		f = bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

var (
	b64Once sync.Once
	b64     string
)

// BoldBase64 returns the bold TrueType data base64-encoded for an SVG
// @font-face rule. The encoding is computed once.
func BoldBase64() string {
	b64Once.Do(func() {
		b64 = base64.StdEncoding.EncodeToString(gobold.TTF)
	})
	return b64
}
