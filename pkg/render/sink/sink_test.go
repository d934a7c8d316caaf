package sink

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/numberline/pkg/config"
	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/layout"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/render"
	"github.com/matzehuels/numberline/pkg/scale"
)

func testFrame(t *testing.T) render.Frame {
	t.Helper()
	cfg := config.DefaultLayout()
	m, err := scale.NewMapper(1, cfg.MinTickSpacing)
	if err != nil {
		t.Fatal(err)
	}
	p := measure.NewHeuristic(cfg.FontSize, cfg.LineHeight)

	boxes, err := item.Build([]item.Raw{
		{ID: "a", Label: "Freezing", Value: 0},
		{ID: "b", Label: "Fish & <Chips>", Value: 0.5},
		{ID: "c/neg", Label: "Below", Value: -2},
	}, m, p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	res := layout.New(layout.WithVerticalSpacing(cfg.VerticalSpacing)).Layout(boxes)

	f, err := render.NewFrame(res, m, cfg, p)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRenderSVG(t *testing.T) {
	f := testFrame(t)
	out := string(RenderSVG(f, WithTitle("Temperatures"), WithInteraction(), WithBoxes()))

	for _, want := range []string{
		"<svg",
		"<title>Temperatures</title>",
		`id="header"`,
		`id="item-a"`,
		`id="item-c_neg"`,
		"Fish &amp; &lt;Chips&gt;",
		">-2</text>",
		">1</text>",
		"stroke-dasharray",
		".item:hover",
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(out, "<Chips>") {
		t.Error("label not escaped")
	}
}

func TestRenderSVGDefaults(t *testing.T) {
	out := string(RenderSVG(testFrame(t)))
	if strings.Contains(out, "<title>Temperatures") || strings.Contains(out, ".item:hover") {
		t.Error("optional elements rendered without options")
	}
	if !strings.Contains(out, "fill:white") {
		t.Error("default background missing")
	}
	if n := strings.Count(out, `class="item"`); n != 3 {
		t.Errorf("item groups = %d, want 3", n)
	}
}

func TestRenderPNG(t *testing.T) {
	f := testFrame(t)

	for _, s := range []float64{1, 2} {
		data, err := RenderPNG(f, WithScale(s))
		if err != nil {
			t.Fatalf("RenderPNG(scale %v): %v", s, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		b := img.Bounds()
		if b.Dx() != int(math.Ceil(f.Width*s)) || b.Dy() != int(math.Ceil(f.Height*s)) {
			t.Errorf("scale %v: size %dx%d, want %vx%v", s, b.Dx(), b.Dy(), f.Width*s, f.Height*s)
		}
	}

	if _, err := RenderPNG(f, WithScale(0)); err == nil {
		t.Error("RenderPNG(scale 0) succeeded")
	}
	if _, err := RenderPNG(f, WithFontData([]byte("not a font"))); err == nil {
		t.Error("RenderPNG with broken font succeeded")
	}
}

func TestRenderPNGTooWide(t *testing.T) {
	f := testFrame(t)
	f.Width = MaxPNGSide

	_, err := RenderPNG(f, WithScale(2))
	if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("RenderPNG error = %v, want INVALID_CONFIGURATION", err)
	}
	// The SVG sink is vector and has no such limit.
	if out := RenderSVG(f); !bytes.Contains(out, []byte("<svg")) {
		t.Error("RenderSVG produced no document")
	}
}

func TestRenderPDF(t *testing.T) {
	if !render.HasConverter() {
		t.Skip("rsvg-convert not installed")
	}
	data, err := RenderPDF(testFrame(t))
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", data[:min(len(data), 8)])
	}
}

func TestRenderJSON(t *testing.T) {
	f := testFrame(t)

	data, err := RenderJSON(f, WithJSONTitle("Temperatures"), WithJSONIndent())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	if !bytes.Contains(data, []byte("\n  ")) {
		t.Error("indented output expected")
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if out.Title != "Temperatures" {
		t.Errorf("Title = %q", out.Title)
	}
	if out.Width != f.Width || out.Height != f.Height {
		t.Errorf("size = %vx%v, want %vx%v", out.Width, out.Height, f.Width, f.Height)
	}
	if out.Strategy != "cascade" || out.TickSpacing != 50 {
		t.Errorf("strategy/spacing = %q/%v", out.Strategy, out.TickSpacing)
	}
	if len(out.Items) != 3 || out.Items[0].ID != "c/neg" {
		t.Errorf("Items = %+v, want 3 in value order", out.Items)
	}
	if len(out.Ticks) == 0 || out.Ticks[0].Label != "-2" {
		t.Errorf("Ticks = %+v", out.Ticks)
	}
}

func TestRenderJSONEmpty(t *testing.T) {
	cfg := config.DefaultLayout()
	m, _ := scale.NewMapper(1, cfg.MinTickSpacing)
	f, err := render.NewFrame(layout.New().Layout(nil), m, cfg, measure.NewHeuristic(12, 16))
	if err != nil {
		t.Fatal(err)
	}
	data, err := RenderJSON(f)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"items":[]`)) {
		t.Errorf("empty items should encode as []: %s", data)
	}
}
