package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/render"
)

// MaxPNGSide bounds the width and height of a rasterized canvas.
const MaxPNGSide = 1 << 15

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	fontData   []byte
	background string
	color      string
	rsvg       bool
	svgOpts    []SVGOption
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithFontData draws labels with the given TrueType or OpenType font
// instead of Go Regular.
func WithFontData(data []byte) PNGOption {
	return func(r *pngRenderer) { r.fontData = data }
}

// WithPNGBackground sets the canvas fill as a hex color.
func WithPNGBackground(hex string) PNGOption {
	return func(r *pngRenderer) { r.background = hex }
}

// WithRSVG renders through SVG and rsvg-convert instead of drawing with gg.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func WithRSVG(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.rsvg = true; r.svgOpts = opts }
}

// RenderPNG renders the frame as a PNG image.
func RenderPNG(f render.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: "#ffffff", color: "#333333"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsInf(r.scale, 0) || math.IsNaN(r.scale) {
		return nil, fmt.Errorf("png scale must be positive, got %v", r.scale)
	}
	if r.rsvg {
		return render.ToPNG(RenderSVG(f, r.svgOpts...), r.scale)
	}

	fw, fh := math.Ceil(f.Width*r.scale), math.Ceil(f.Height*r.scale)
	if !(fw <= MaxPNGSide && fh <= MaxPNGSide) {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration,
			"png canvas %gx%g exceeds %d pixels per side, render svg instead", fw, fh, MaxPNGSide)
	}

	face, err := r.font(f.FontSize * r.scale)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	defer face.Close()

	dc := gg.NewContext(max(int(fw), 1), max(int(fh), 1))
	if r.background != "" {
		dc.SetHexColor(r.background)
		dc.Clear()
	}
	dc.Scale(r.scale, r.scale)
	dc.SetFontFace(face.Face())
	dc.SetHexColor(r.color)

	drawHeader(dc, f)
	drawItems(dc, f)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r pngRenderer) font(size float64) (*measure.Font, error) {
	if r.fontData != nil {
		return measure.NewFont(r.fontData, size)
	}
	return measure.DefaultFont(size)
}

func drawHeader(dc *gg.Context, f render.Frame) {
	dc.SetLineWidth(1)
	first, last := f.TickX(f.Ticks[0]), f.TickX(f.Ticks[len(f.Ticks)-1])
	dc.DrawLine(first, f.AxisY, last, f.AxisY)
	dc.Stroke()

	for _, t := range f.Ticks {
		x := f.TickX(t)
		dc.DrawLine(x, f.AxisY, x, f.AxisY+6)
		dc.Stroke()
		dc.DrawStringAnchored(f.TickLabel(t.Value), x, f.AxisY-4, 0.5, 0)
	}
}

func drawItems(dc *gg.Context, f render.Frame) {
	radius := math.Max(f.BulletRadius, 1)
	for _, it := range f.Items {
		dc.DrawCircle(it.BulletX, it.BulletY, radius)
		dc.Fill()
		dc.DrawString(it.Text, it.TextX, it.TextY)
	}
}
