// Package sink provides output format renderers for number-line frames.
//
// # Overview
//
// A "sink" transforms a computed [render.Frame] into a final output format.
// This package provides renderers for:
//
//   - SVG: Scalable vector graphics, one group per item
//   - PNG: Raster image drawn with gg, or converted from SVG
//   - PDF: Print-ready output (requires rsvg-convert)
//   - JSON: Frame data export for external tools
//
// # SVG Output
//
// [RenderSVG] draws the header axis with its ticks and every item as a
// bullet plus label. Each item group carries the item ID, so a browser
// client can map clicks back to items:
//
//	svg := sink.RenderSVG(frame, sink.WithTitle("Temperatures"))
//
// # PNG Output
//
// [RenderPNG] rasterizes the frame with github.com/fogleman/gg using the
// Go Regular font. [WithRSVG] switches to rsvg-convert for output that
// matches the SVG exactly.
//
// # JSON Output
//
// [RenderJSON] exports canvas geometry and layout metadata:
//
//	{
//	  "width": 400, "height": 90,
//	  "units_per_pixel": 0.02, "tick_spacing": 50,
//	  "strategy": "cascade", "rows": 2,
//	  "ticks": [{"value": 0, "x": 12, "label": "0"}],
//	  "items": [{"id": "a", "label": "A", "value": 0, "left": 0, "top": 0, ...}]
//	}
//
// [render.Frame]: github.com/matzehuels/numberline/pkg/render.Frame
package sink
