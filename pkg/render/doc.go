// Package render turns a layout result into canvas geometry and converts
// SVG to other formats.
//
// # Frames
//
// The layout engine works in number-line pixels: value 0 sits at x = 0 and
// items may have negative left edges. [NewFrame] places that content on a
// canvas. It computes the header ticks, shifts the origin so the leftmost
// tick or item is visible, applies the cosmetic bullet offset and truncates
// labels:
//
//	frame, err := render.NewFrame(res, mapper, cfg, provider)
//	svg := sink.RenderSVG(frame)
//
// Every sink in [sink] draws from a Frame, so all formats agree on where
// things are.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG using the external rsvg-convert tool
// (from librsvg):
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/numberline/pkg/render/sink
package render
