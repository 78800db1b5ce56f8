package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/heatmap/pkg/fonts"
	"github.com/matzehuels/heatmap/pkg/heatmap"
)

// DefaultBackground fills the gaps between cells and sector frames.
const DefaultBackground = "#262931"

const sectorFill = "#1b1d23"

const cellInteractionCSS = `
    .cell rect { transition: filter 0.15s ease; }
    .cell:hover rect { filter: brightness(1.25); stroke: #ffffff; stroke-width: 2; }
    .cell text { pointer-events: none; }
    .sector > rect { transition: stroke 0.15s ease; }
    .sector.highlight > rect { stroke: #ffffff; }`

const cellInteractionJS = `
    document.querySelectorAll('.cell').forEach(el => {
      const sector = document.querySelector('.sector[data-sector="' + CSS.escape(el.dataset.sector || '') + '"]');
      if (!sector) return;
      el.addEventListener('mouseenter', () => sector.classList.add('highlight'));
      el.addEventListener('mouseleave', () => sector.classList.remove('highlight'));
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background  string
	embedFont   bool
	interactive bool
	tooltips    bool
}

// WithBackground sets the color behind the cells.
func WithBackground(hex string) SVGOption { return func(r *svgRenderer) { r.background = hex } }

// WithEmbeddedFont embeds the label font so the output renders identically
// without the font installed. Adds roughly 100 KB.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// WithoutInteraction drops the hover CSS and script, for static embedding.
func WithoutInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = false } }

// WithoutTooltips drops the per-cell <title> elements.
func WithoutTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = false } }

// RenderSVG renders l as a standalone SVG document.
func RenderSVG(l *heatmap.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{background: DefaultBackground, interactive: true, tooltips: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		l.Width, l.Height, l.Width, l.Height, escapeXML(fonts.FallbackFontFamily))
	if l.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(l.Title))
	}
	r.renderStyle(&buf)
	fmt.Fprintf(&buf, `  <rect class="background" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		l.Width, l.Height, escapeXML(r.background))

	for _, f := range l.Sectors {
		renderFrame(&buf, f, r.background)
	}
	for i, c := range l.Cells {
		r.renderCell(&buf, i, c, l.Currency)
	}

	if r.interactive {
		buf.WriteString("  <script><![CDATA[")
		buf.WriteString(cellInteractionJS)
		buf.WriteString("\n  ]]></script>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderStyle(buf *bytes.Buffer) {
	if !r.embedFont && !r.interactive {
		return
	}
	buf.WriteString("  <style>")
	if r.embedFont {
		fmt.Fprintf(buf, "\n    @font-face { font-family: '%s'; font-weight: bold; src: url(data:font/ttf;base64,%s) format('truetype'); }",
			fonts.FontFamily, fonts.BoldBase64())
	}
	if r.interactive {
		buf.WriteString(cellInteractionCSS)
	}
	buf.WriteString("\n  </style>\n")
}

func renderFrame(buf *bytes.Buffer, f heatmap.Frame, background string) {
	fmt.Fprintf(buf, `  <g class="sector" data-sector="%s">`+"\n", escapeXML(f.Name))
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		f.X, f.Y, f.W, f.H, sectorFill, escapeXML(background))
	if f.Header > 0 && f.W >= MinLabelWidth {
		size := min(12, f.Header*0.75)
		text := fmt.Sprintf("%s %s", f.Name, formatPct(f.GainLossPct))
		text = truncateLabel(text, f.W-8, size)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" fill="#d0d0d0" dominant-baseline="central">%s</text>`+"\n",
			f.X+4, f.Y+f.Header/2, size, escapeXML(text))
	}
	buf.WriteString("  </g>\n")
}

func (r svgRenderer) renderCell(buf *bytes.Buffer, i int, c heatmap.Cell, currency string) {
	fmt.Fprintf(buf, `  <g class="cell" id="cell-%d" data-id="%s" data-sector="%s">`+"\n",
		i, escapeXML(c.ID), escapeXML(c.Sector))
	if r.tooltips {
		fmt.Fprintf(buf, "    <title>%s</title>\n", escapeXML(tooltip(c, currency)))
	}
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		c.X, c.Y, c.W, c.H, escapeXML(c.Color), escapeXML(r.background))

	if t, ok := labelFor(c); ok {
		symY, pctY := t.baselines(c)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" font-weight="bold" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			c.CenterX(), symY, t.Size, escapeXML(c.TextColor), escapeXML(t.Symbol))
		if t.Pct != "" {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
				c.CenterX(), pctY, t.PctSize, escapeXML(c.TextColor), escapeXML(t.Pct))
		}
	}
	buf.WriteString("  </g>\n")
}
