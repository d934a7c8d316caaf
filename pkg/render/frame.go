package render

import (
	"math"
	"strconv"

	"github.com/matzehuels/numberline/pkg/config"
	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/layout"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/scale"
)

// Canvas chrome, in pixels.
const (
	DefaultMargin = 12.0
	tickLength    = 6.0
	headerGap     = 8.0
)

// Item is a placed item in canvas coordinates.
type Item struct {
	item.Positioned

	// X, Y is the top-left corner of the drawn box. X includes the
	// cosmetic bullet offset and padding.
	X, Y float64

	// BulletX, BulletY is the bullet center. BulletX is exactly the value's
	// position on the axis.
	BulletX, BulletY float64

	// TextX, TextY is the label baseline origin.
	TextX, TextY float64

	// Text is the label, truncated to the maximum text width.
	Text string
}

// Frame is a laid-out number line in canvas coordinates.
type Frame struct {
	Width, Height float64

	// OriginX is the canvas x of value 0.
	OriginX float64

	// AxisY is the canvas y of the header axis line.
	AxisY float64

	// ItemsTop is the canvas y where the items area starts.
	ItemsTop float64

	Ticks []scale.Tick
	Items []Item

	Step          float64
	UnitsPerPixel float64
	TickSpacing   float64
	Strategy      layout.Strategy
	Rows          int

	// ContentHeight is the layout height of the items area.
	ContentHeight float64

	FontSize     float64
	BulletRadius float64
	Margin       float64
}

// NewFrame computes canvas geometry for res. The mapper must be the one the
// items were built with; an invalid mapper returns INVALID_CONFIGURATION.
func NewFrame(res layout.Result, m scale.Mapper, c config.Layout, p measure.Provider) (Frame, error) {
	if err := m.Validate(); err != nil {
		return Frame{}, err
	}
	minV, maxV := 0.0, 0.0
	for _, it := range res.Items {
		minV = math.Min(minV, it.Value)
		maxV = math.Max(maxV, it.Value)
	}
	step, err := m.RangeStep(minV, maxV)
	if err != nil {
		return Frame{}, err
	}
	spacing := math.Max(step/m.UnitsPerPixel, m.MinTickSpacing)
	ticks, err := m.Ticks(minV, maxV)
	if err != nil {
		return Frame{}, err
	}

	shift := c.BulletLeftOffset - c.ItemXPadding
	minX, maxX := ticks[0].X, ticks[len(ticks)-1].X
	for _, it := range res.Items {
		minX = math.Min(minX, it.Left+shift)
		maxX = math.Max(maxX, it.Right()+shift)
	}

	f := Frame{
		OriginX:       DefaultMargin - minX,
		Width:         maxX - minX + 2*DefaultMargin,
		AxisY:         DefaultMargin + c.FontSize + headerGap/2,
		Ticks:         ticks,
		Items:         make([]Item, len(res.Items)),
		Step:          step,
		UnitsPerPixel: m.UnitsPerPixel,
		TickSpacing:   spacing,
		Strategy:      res.Strategy,
		Rows:          res.Rows,
		ContentHeight: res.Height,
		FontSize:      c.FontSize,
		BulletRadius:  c.BulletWidth / 4,
		Margin:        DefaultMargin,
	}
	f.ItemsTop = f.AxisY + tickLength + headerGap
	f.Height = f.ItemsTop + res.Height + DefaultMargin

	for i, it := range res.Items {
		x := f.OriginX + it.Left + shift
		y := f.ItemsTop + it.Top
		f.Items[i] = Item{
			Positioned: it,
			X:          x,
			Y:          y,
			BulletX:    f.OriginX + it.Left,
			BulletY:    y + it.Height/2,
			TextX:      x + c.BulletWidth,
			TextY:      y + it.Height/2 + c.FontSize*0.35,
			Text:       measure.Truncate(p, it.Label, c.MaxTextWidth),
		}
	}
	return f, nil
}

// TickX returns the canvas x of a tick.
func (f Frame) TickX(t scale.Tick) float64 { return f.OriginX + t.X }

// TickLabel formats a tick value with as many decimals as the step needs.
// Steps of 1e15 and above use exponent notation.
func (f Frame) TickLabel(v float64) string {
	if f.Step >= 1e15 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	decimals := 0
	if f.Step > 0 && f.Step < 1 {
		decimals = int(math.Ceil(-math.Log10(f.Step) - 1e-9))
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if zero := strconv.FormatFloat(0, 'f', decimals, 64); s == "-"+zero {
		return zero
	}
	return s
}
