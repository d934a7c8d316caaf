package sink

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/numberline/pkg/render"
)

const itemInteractionCSS = `
    .item { cursor: pointer; }
    .item:hover .bullet { stroke-width: 2; }
    .item:hover text { font-weight: bold; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title       string
	fontFamily  string
	background  string
	color       string
	interactive bool
	boxes       bool
}

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithFontFamily sets the CSS font family for labels.
func WithFontFamily(f string) SVGOption { return func(r *svgRenderer) { r.fontFamily = f } }

// WithBackground sets the canvas fill color. An empty color leaves it
// transparent.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithInteraction adds hover styling for item groups.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithBoxes outlines each item's collision box, for debugging layouts.
func WithBoxes() SVGOption { return func(r *svgRenderer) { r.boxes = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		fontFamily: "sans-serif",
		background: "white",
		color:      "#333",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders the frame as an SVG document.
func RenderSVG(f render.Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(px(f.Width), px(f.Height))
	if r.title != "" {
		canvas.Title(r.title)
	}
	if r.interactive {
		canvas.Style("text/css", itemInteractionCSS)
	}
	if r.background != "" {
		canvas.Rect(0, 0, px(f.Width), px(f.Height), "fill:"+r.background)
	}

	renderHeader(canvas, f, r)
	renderItems(canvas, f, r)

	canvas.End()
	return buf.Bytes()
}

func renderHeader(canvas *svg.SVG, f render.Frame, r svgRenderer) {
	lineStyle := fmt.Sprintf("stroke:%s;stroke-width:1", r.color)
	textStyle := fmt.Sprintf("text-anchor:middle;font-family:%s;font-size:%gpx;fill:%s", r.fontFamily, f.FontSize, r.color)

	canvas.Gid("header")
	first, last := f.TickX(f.Ticks[0]), f.TickX(f.Ticks[len(f.Ticks)-1])
	canvas.Line(px(first), px(f.AxisY), px(last), px(f.AxisY), lineStyle)
	for _, t := range f.Ticks {
		x := px(f.TickX(t))
		canvas.Line(x, px(f.AxisY), x, px(f.AxisY+6), lineStyle)
		canvas.Text(x, px(f.AxisY-4), f.TickLabel(t.Value), textStyle)
	}
	canvas.Gend()
}

func renderItems(canvas *svg.SVG, f render.Frame, r svgRenderer) {
	textStyle := fmt.Sprintf("font-family:%s;font-size:%gpx;fill:%s", r.fontFamily, f.FontSize, r.color)
	bulletStyle := fmt.Sprintf("fill:%s;stroke:%s", r.color, r.color)

	canvas.Gid("items")
	for _, it := range f.Items {
		canvas.Group(fmt.Sprintf(`id="item-%s"`, elementID(it.ID)), `class="item"`)
		canvas.Title(fmt.Sprintf("%s (%g)", it.Label, it.Value))
		if r.boxes {
			canvas.Rect(px(it.X), px(it.Y), px(it.Width), px(it.Height), "fill:none;stroke:#c33;stroke-dasharray:2,2")
		}
		canvas.Circle(px(it.BulletX), px(it.BulletY), max(px(f.BulletRadius), 1), `class="bullet"`, bulletStyle)
		canvas.Text(px(it.TextX), px(it.TextY), it.Text, textStyle)
		canvas.Gend()
	}
	canvas.Gend()
}

// px rounds canvas coordinates to whole pixels for svgo.
func px(v float64) int { return int(math.Round(v)) }

// elementID maps an item ID onto characters valid in an XML id.
func elementID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, id)
}
