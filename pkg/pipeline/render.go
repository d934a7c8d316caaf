package pipeline

import (
	"fmt"

	"github.com/matzehuels/numberline/pkg/layout"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/render"
	"github.com/matzehuels/numberline/pkg/render/sink"
	"github.com/matzehuels/numberline/pkg/scale"
)

// newProvider is replaced in tests.
var newProvider = NewProvider

// Render generates output artifacts in the requested formats. The mapper
// must be the one res was laid out with.
func Render(res layout.Result, m scale.Mapper, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	p := opts.Provider
	if p == nil {
		var err error
		if p, err = newProvider(opts.Metrics, opts.Layout); err != nil {
			return nil, err
		}
		defer measure.Close(p)
	}

	frame, err := render.NewFrame(res, m, opts.Layout, p)
	if err != nil {
		return nil, fmt.Errorf("build frame: %w", err)
	}

	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(frame, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(frame)
		case FormatPDF:
			data, err = sink.RenderPDF(frame, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(frame, sink.WithJSONIndent(), sink.WithJSONTitle(opts.Title))
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Title != "" {
		out = append(out, sink.WithTitle(opts.Title))
	}
	if opts.Interactive {
		out = append(out, sink.WithInteraction())
	}
	if opts.Boxes {
		out = append(out, sink.WithBoxes())
	}
	return out
}
