package measure

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// charWidthRatio is the average advance of a proportional glyph relative to
// the font size.
const charWidthRatio = 0.55

// Heuristic estimates label widths from the rune count. East Asian wide
// characters count double.
type Heuristic struct {
	FontSize   float64
	LineHeight float64
}

// NewHeuristic returns a heuristic provider for the given font size and
// line height.
func NewHeuristic(fontSize, lineHeight float64) Heuristic {
	return Heuristic{FontSize: fontSize, LineHeight: lineHeight}
}

// Measure implements [Provider].
func (h Heuristic) Measure(label string, maxWidth float64) Metrics {
	cells := runewidth.StringWidth(label)
	if cells == 0 {
		cells = utf8.RuneCountInString(label)
	}
	width := float64(cells) * h.FontSize * charWidthRatio
	return Metrics{Width: clamp(width, maxWidth), Height: h.LineHeight}
}

// MaxChars returns how many average glyphs fit in width at this font size.
// Sinks use it to truncate clamped labels.
func (h Heuristic) MaxChars(width float64) int {
	if h.FontSize <= 0 {
		return 0
	}
	return int(width / (h.FontSize * charWidthRatio))
}
