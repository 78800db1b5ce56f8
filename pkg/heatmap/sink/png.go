package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/heatmap/pkg/fonts"
	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// MaxPNGPixels bounds the raster size of a PNG render.
const MaxPNGPixels = 64 << 20

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGBackground sets the color behind the cells.
func WithPNGBackground(hex string) PNGOption {
	return func(r *pngRenderer) { r.background = hex }
}

// RenderPNG rasterizes l. Label fonts are compiled in, so no system fonts
// or external converters are needed.
func RenderPNG(l *heatmap.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: DefaultBackground}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.scale > 0) || math.IsInf(r.scale, 0) {
		return nil, fmt.Errorf("png: invalid scale %v", r.scale)
	}

	w := int(math.Ceil(l.Width * r.scale))
	h := int(math.Ceil(l.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png: empty canvas %dx%d", w, h)
	}
	if w*h > MaxPNGPixels {
		return nil, fmt.Errorf("png: canvas %dx%d exceeds %d pixels", w, h, MaxPNGPixels)
	}

	dc := gg.NewContext(w, h)
	dc.SetHexColor(r.background)
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	faces := make(faceCache)
	for _, f := range l.Sectors {
		if err := drawFrame(dc, faces, f, r.background); err != nil {
			return nil, err
		}
	}
	for _, c := range l.Cells {
		if err := drawCell(dc, faces, c, r.background); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("png: encode: %w", err)
	}
	return buf.Bytes(), nil
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache reuses font faces across cells of the same label size.
type faceCache map[faceKey]font.Face

func (fc faceCache) get(size float64, bold bool) (font.Face, error) {
	k := faceKey{math.Round(size*2) / 2, bold}
	if f, ok := fc[k]; ok {
		return f, nil
	}
	f, err := fonts.Face(k.size, bold)
	if err != nil {
		return nil, fmt.Errorf("png: load font: %w", err)
	}
	fc[k] = f
	return f, nil
}

func drawFrame(dc *gg.Context, faces faceCache, f heatmap.Frame, background string) error {
	dc.DrawRectangle(f.X, f.Y, f.W, f.H)
	dc.SetHexColor(sectorFill)
	dc.FillPreserve()
	dc.SetHexColor(background)
	dc.SetLineWidth(1)
	dc.Stroke()

	if f.Header <= 0 || f.W < MinLabelWidth {
		return nil
	}
	size := min(12, f.Header*0.75)
	face, err := faces.get(size, false)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetHexColor("#d0d0d0")
	text := truncateLabel(fmt.Sprintf("%s %s", f.Name, formatPct(f.GainLossPct)), f.W-8, size)
	dc.DrawStringAnchored(text, f.X+4, f.Y+f.Header/2, 0, 0.5)
	return nil
}

func drawCell(dc *gg.Context, faces faceCache, c heatmap.Cell, background string) error {
	if c.W <= 0 || c.H <= 0 {
		return nil
	}
	dc.DrawRectangle(c.X, c.Y, c.W, c.H)
	dc.SetHexColor(c.Color)
	dc.FillPreserve()
	dc.SetHexColor(background)
	dc.SetLineWidth(1)
	dc.Stroke()

	t, ok := labelFor(c)
	if !ok {
		return nil
	}
	symY, pctY := t.baselines(c)
	face, err := faces.get(t.Size, true)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetHexColor(c.TextColor)
	dc.DrawStringAnchored(t.Symbol, c.CenterX(), symY, 0.5, 0.5)

	if t.Pct != "" {
		face, err := faces.get(t.PctSize, false)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.DrawStringAnchored(t.Pct, c.CenterX(), pctY, 0.5, 0.5)
	}
	return nil
}
