// Package pipeline runs the import → layout → render pipeline for heatmaps.
//
// The CLI and the HTTP server both go through this package, so a portfolio
// renders the same way from either entry point and both share one cache.
//
// # Stages
//
//  1. Import: read a portfolio file (JSON, TOML, CSV or XLSX)
//  2. Layout: squarify positions into a colored [heatmap.Layout]
//  3. Render: produce artifacts (SVG, PNG, PDF, JSON, XLSX)
//
// Layouts are cached by the portfolio hash plus layout options; artifacts by
// the layout hash plus render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "portfolio.csv",
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Stages also run on their own:
//
//	p, err := runner.Import(ctx, opts)
//	l, err := runner.ComputeLayout(ctx, p, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heatmap/pkg/cache"
	"github.com/matzehuels/heatmap/pkg/color"
	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/heatmap"
	"github.com/matzehuels/heatmap/pkg/portfolio"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default container width.
	DefaultWidth = 800.0

	// DefaultHeight is the default container height.
	DefaultHeight = 600.0

	// DefaultPalette is the default color palette.
	DefaultPalette = color.DefaultPalette

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0

	// MaxDimension bounds width and height.
	MaxDimension = 20000.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatXLSX: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Import options
	Input string `json:"-"`

	// Layout options
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Palette       string  `json:"palette,omitempty"`
	Limit         float64 `json:"limit,omitempty"`
	GroupBySector bool    `json:"group_by_sector,omitempty"`
	Padding       float64 `json:"padding,omitempty"`
	PreserveOrder bool    `json:"preserve_order,omitempty"`
	ClampNegative bool    `json:"clamp_negative,omitempty"`
	Title         string  `json:"title,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Portfolio is the imported portfolio.
	Portfolio portfolio.Portfolio

	// InputHash is the content hash of the portfolio.
	InputHash string

	// Layout is the computed heatmap.
	Layout *heatmap.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Positions  int
	Cells      int
	ImportTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return herrors.New(herrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, xlsx)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates.
func ParseFormats(s string) ([]string, error) {
	var formats []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Input == "" {
		return herrors.New(herrors.ErrCodeInvalidInput, "input is required")
	}
	if err := herrors.ValidatePath(o.Input); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	if o.Limit == 0 {
		o.Limit = color.DefaultLimit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := herrors.ValidateContainer(o.Width, o.Height); err != nil {
		return err
	}
	if o.Width > MaxDimension || o.Height > MaxDimension {
		return herrors.New(herrors.ErrCodeInvalidContainer,
			"container %gx%g exceeds %g", o.Width, o.Height, MaxDimension)
	}
	if _, err := color.LookupPalette(o.Palette); err != nil {
		return err
	}
	if !(o.Limit > 0) || math.IsInf(o.Limit, 0) {
		return herrors.New(herrors.ErrCodeInvalidInput, "limit must be a positive percentage, got %g", o.Limit)
	}
	if o.Padding < 0 || math.IsNaN(o.Padding) || math.IsInf(o.Padding, 0) {
		return herrors.New(herrors.ErrCodeInvalidInput, "padding must be non-negative, got %g", o.Padding)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !(o.Scale > 0) || o.Scale > 10 {
		return herrors.New(herrors.ErrCodeInvalidInput, "scale must be in (0, 10], got %g", o.Scale)
	}
	return nil
}

// HeatmapOptions converts the layout options for [heatmap.Build].
func (o *Options) HeatmapOptions() []heatmap.Option {
	return []heatmap.Option{
		heatmap.WithPalette(o.Palette),
		heatmap.WithLimit(o.Limit),
		heatmap.WithPadding(o.Padding),
		heatmap.WithGroupBySector(o.GroupBySector),
		heatmap.WithPreserveOrder(o.PreserveOrder),
		heatmap.WithTitle(o.Title),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:         o.Width,
		Height:        o.Height,
		Palette:       o.Palette,
		Limit:         o.Limit,
		GroupBySector: o.GroupBySector,
		Padding:       o.Padding,
		PreserveOrder: o.PreserveOrder,
		ClampNegative: o.ClampNegative,
		Title:         o.Title,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

func (o *Options) String() string {
	return fmt.Sprintf("%gx%g palette=%s formats=%v", o.Width, o.Height, o.Palette, o.Formats)
}
