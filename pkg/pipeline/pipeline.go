// Package pipeline provides the layout pipeline for numberline.
//
// This package implements the complete snapshot → build → layout → render
// pipeline used by the CLI, the HTTP server and the terminal viewer, so
// every entry point lays out and draws items the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Snapshot: read the current items from a [store.Repository]
//  2. Layout: map values to pixels, measure labels and stack collisions
//  3. Render: draw the result in one or more formats (SVG, PNG, PDF, JSON)
//
// Layout is recomputed on every call. Rendered artifacts are cached by the
// hash of the item snapshot and the render options.
//
// # Usage
//
// Create a Runner over a repository and execute the pipeline:
//
//	runner := pipeline.NewRunner(repo, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Multiplier: 2,
//	    Formats:    []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run the layout stage alone:
//
//	result, err := runner.Layout(ctx, opts)
//	for _, it := range result.Layout.Items { ... }
//
// Or call the pure stages directly, without a repository:
//
//	res, err := pipeline.LayoutItems(raws, mapper, provider, cfg, layout.Cascade)
//	artifacts, err := pipeline.Render(res, mapper, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/numberline/pkg/cache"
	"github.com/matzehuels/numberline/pkg/config"
	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/layout"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/scale"
)

// Default values shared by the CLI, the server and the viewer.
const (
	// DefaultMultiplier is the scale selected when none is given.
	DefaultMultiplier = 1

	// DefaultMetrics is the text metrics provider used for pixel output.
	DefaultMetrics = MetricsFont

	// DefaultArtifactTTL is how long rendered outputs stay cached.
	DefaultArtifactTTL = 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
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

// Options contains all configuration for one pipeline run.
// It supports JSON serialization for the HTTP surface.
type Options struct {
	// Layout options
	Multiplier int           `json:"multiplier,omitempty"`
	Strategy   string        `json:"strategy,omitempty"`
	Metrics    string        `json:"metrics,omitempty"`
	Layout     config.Layout `json:"layout"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Title       string   `json:"title,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Boxes       bool     `json:"boxes,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger      `json:"-"`
	Provider measure.Provider `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout validates and sets defaults for the layout stage.
func (o *Options) ValidateForLayout() error {
	if o.Multiplier == 0 {
		o.Multiplier = DefaultMultiplier
	}
	if !scale.IsMultiplier(o.Multiplier) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "scale multiplier %d is not one of %v", o.Multiplier, scale.Multipliers)
	}
	s, err := layout.ParseStrategy(o.Strategy)
	if err != nil {
		return err
	}
	o.Strategy = string(s)
	if o.Metrics == "" {
		o.Metrics = DefaultMetrics
	}
	if err := ValidateMetrics(o.Metrics); err != nil {
		return err
	}
	if o.Layout == (config.Layout{}) {
		o.Layout = config.DefaultLayout()
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender validates and sets defaults for the render stage.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	return ValidateFormats(o.Formats)
}

// Mapper returns the scale mapper for the selected multiplier.
func (o *Options) Mapper() (scale.Mapper, error) {
	return scale.NewMapper(o.Multiplier, o.Layout.MinTickSpacing)
}

// LayoutStrategy returns the parsed layout strategy.
func (o *Options) LayoutStrategy() layout.Strategy {
	s, err := layout.ParseStrategy(o.Strategy)
	if err != nil {
		return layout.Cascade
	}
	return s
}

// ArtifactKeyOpts returns cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Strategy:   o.Strategy,
		Multiplier: o.Multiplier,
		Metrics:    o.Metrics,
		Settings: cache.HashJSON(struct {
			Layout      config.Layout
			Title       string
			Interactive bool
			Boxes       bool
		}{o.Layout, o.Title, o.Interactive, o.Boxes}),
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Items is the repository snapshot the run was computed from.
	Items []item.Raw

	// DatasetHash is the content hash of Items.
	DatasetHash string

	// Mapper is the scale the items were placed with.
	Mapper scale.Mapper

	// Layout is the placed items and canvas height.
	Layout layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks whether the artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	Rows       int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // all artifacts served from cache
}

// Formats returns the rendered formats in a stable order.
func (r *Result) Formats() []string {
	out := make([]string, 0, len(r.Artifacts))
	for f := range r.Artifacts {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
