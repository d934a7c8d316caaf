package sink

import (
	"encoding/json"

	"github.com/matzehuels/numberline/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	title  string
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONTitle records a dataset title in the output.
func WithJSONTitle(t string) JSONOption { return func(r *jsonRenderer) { r.title = t } }

type jsonOutput struct {
	Title         string     `json:"title,omitempty"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	ContentHeight float64    `json:"content_height"`
	OriginX       float64    `json:"origin_x"`
	ItemsTop      float64    `json:"items_top"`
	UnitsPerPixel float64    `json:"units_per_pixel"`
	TickSpacing   float64    `json:"tick_spacing"`
	Strategy      string     `json:"strategy"`
	Rows          int        `json:"rows"`
	Ticks         []jsonTick `json:"ticks"`
	Items         []jsonItem `json:"items"`
}

type jsonTick struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

type jsonItem struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Text   string  `json:"text"`
}

// RenderJSON exports the frame as JSON. Left and Top are layout
// coordinates; X and Y are canvas coordinates of the drawn box.
func RenderJSON(f render.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Title:         r.title,
		Width:         f.Width,
		Height:        f.Height,
		ContentHeight: f.ContentHeight,
		OriginX:       f.OriginX,
		ItemsTop:      f.ItemsTop,
		UnitsPerPixel: f.UnitsPerPixel,
		TickSpacing:   f.TickSpacing,
		Strategy:      string(f.Strategy),
		Rows:          f.Rows,
		Ticks:         make([]jsonTick, len(f.Ticks)),
		Items:         make([]jsonItem, len(f.Items)),
	}
	for i, t := range f.Ticks {
		out.Ticks[i] = jsonTick{Value: t.Value, X: f.TickX(t), Label: f.TickLabel(t.Value)}
	}
	for i, it := range f.Items {
		out.Items[i] = jsonItem{
			ID:     it.ID,
			Label:  it.Label,
			Value:  it.Value,
			Left:   it.Left,
			Top:    it.Top,
			Width:  it.Width,
			Height: it.Height,
			X:      it.X,
			Y:      it.Y,
			Text:   it.Text,
		}
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
