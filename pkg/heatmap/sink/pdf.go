package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/heatmap/pkg/color"
	"github.com/matzehuels/heatmap/pkg/fonts"
	"github.com/matzehuels/heatmap/pkg/heatmap"
)

const (
	pdfPageWidth  = 842.0 // A4 landscape, points
	pdfPageHeight = 595.0
	pdfMargin     = 24.0
	pdfTitleSize  = 14.0
	pdfFont       = "go"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	background string
	pageW      float64
	pageH      float64
	title      bool
}

// WithPageSize overrides the A4 page, in points. The page is always
// landscape.
func WithPageSize(w, h float64) PDFOption {
	return func(r *pdfRenderer) { r.pageW, r.pageH = w, h }
}

// WithoutPDFTitle omits the title line above the heatmap.
func WithoutPDFTitle() PDFOption { return func(r *pdfRenderer) { r.title = false } }

// RenderPDF draws l on a single landscape page, scaled to fit inside the
// margins with its aspect ratio kept.
func RenderPDF(l *heatmap.Layout, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{background: DefaultBackground, pageW: pdfPageWidth, pageH: pdfPageHeight, title: true}
	for _, opt := range opts {
		opt(&r)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("pdf: empty layout %gx%g", l.Width, l.Height)
	}

	// fpdf takes the portrait size and swaps it for "L".
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: math.Min(r.pageW, r.pageH), Ht: math.Max(r.pageW, r.pageH)},
	})
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddUTF8FontFromBytes(pdfFont, "", fonts.RegularTTF())
	pdf.AddUTF8FontFromBytes(pdfFont, "B", fonts.BoldTTF())
	if l.Title != "" {
		pdf.SetTitle(l.Title, true)
	}
	pdf.SetCreator("heatmap", true)
	pdf.AddPage()

	top := pdfMargin
	if r.title && l.Title != "" {
		pdf.SetFont(pdfFont, "B", pdfTitleSize)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(pdfMargin, pdfMargin+pdfTitleSize*0.8, l.Title)
		top += pdfTitleSize * 1.6
	}

	pageW, pageH := pdf.GetPageSize()
	availW := pageW - 2*pdfMargin
	availH := pageH - top - pdfMargin
	scale := math.Min(availW/l.Width, availH/l.Height)
	p := pdfPainter{
		pdf:   pdf,
		scale: scale,
		ox:    pdfMargin + (availW-l.Width*scale)/2,
		oy:    top,
	}

	p.fill(r.background)
	p.rect(0, 0, l.Width, l.Height, "F")
	for _, f := range l.Sectors {
		p.frame(f, r.background)
	}
	for _, c := range l.Cells {
		p.cell(c, r.background)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfPainter maps layout coordinates onto the page.
type pdfPainter struct {
	pdf    *fpdf.Fpdf
	scale  float64
	ox, oy float64
}

func (p pdfPainter) rect(x, y, w, h float64, style string) {
	p.pdf.Rect(p.ox+x*p.scale, p.oy+y*p.scale, w*p.scale, h*p.scale, style)
}

func (p pdfPainter) fill(hex string) {
	r, g, b := color.RGB(hex)
	p.pdf.SetFillColor(int(r), int(g), int(b))
}

func (p pdfPainter) stroke(hex string) {
	r, g, b := color.RGB(hex)
	p.pdf.SetDrawColor(int(r), int(g), int(b))
	p.pdf.SetLineWidth(math.Max(0.25, p.scale*0.5))
}

// text draws s with its vertical center at y. anchor 0.5 centers it on x.
func (p pdfPainter) text(s string, x, y, size float64, bold bool, hex string, anchor float64) {
	style := ""
	if bold {
		style = "B"
	}
	pt := size * p.scale
	p.pdf.SetFont(pdfFont, style, pt)
	r, g, b := color.RGB(hex)
	p.pdf.SetTextColor(int(r), int(g), int(b))
	w := p.pdf.GetStringWidth(s)
	p.pdf.Text(p.ox+x*p.scale-w*anchor, p.oy+y*p.scale+pt*0.35, s)
}

func (p pdfPainter) frame(f heatmap.Frame, background string) {
	p.fill(sectorFill)
	p.stroke(background)
	p.rect(f.X, f.Y, f.W, f.H, "FD")
	if f.Header <= 0 || f.W < MinLabelWidth {
		return
	}
	size := min(12, f.Header*0.75)
	text := truncateLabel(fmt.Sprintf("%s %s", f.Name, formatPct(f.GainLossPct)), f.W-8, size)
	p.text(text, f.X+4, f.Y+f.Header/2, size, false, "#d0d0d0", 0)
}

func (p pdfPainter) cell(c heatmap.Cell, background string) {
	if c.W <= 0 || c.H <= 0 {
		return
	}
	p.fill(c.Color)
	p.stroke(background)
	p.rect(c.X, c.Y, c.W, c.H, "FD")

	t, ok := labelFor(c)
	if !ok {
		return
	}
	symY, pctY := t.baselines(c)
	p.text(t.Symbol, c.CenterX(), symY, t.Size, true, c.TextColor, 0.5)
	if t.Pct != "" {
		p.text(t.Pct, c.CenterX(), pctY, t.PctSize, false, c.TextColor, 0.5)
	}
}
