package measure

import "github.com/mattn/go-runewidth"

// Cells measures labels in terminal cells. Every label is one cell high.
type Cells struct{}

// Measure implements [Provider].
func (Cells) Measure(label string, maxWidth float64) Metrics {
	return Metrics{
		Width:  clamp(float64(runewidth.StringWidth(label)), maxWidth),
		Height: 1,
	}
}

// TruncateCells shortens label to at most width cells, ending in "…" when
// anything was cut.
func TruncateCells(label string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(label, width, "…")
}
