// Package measure provides text metrics for item labels.
//
// A [Provider] reports the pixel bounding box of a label rendered on one
// line, clamped to a maximum width. Labels are never wrapped: when a label is
// wider than maxWidth the reported width is maxWidth and sinks truncate the
// text to fit.
//
// Four providers are available:
//
//   - [Heuristic]: average glyph width estimate, no font files needed
//   - [Font]: exact advances from an OpenType face (Go Regular by default)
//   - [Cells]: terminal cell widths, for the interactive viewer
//   - [Cached]: LRU memoization around any other provider
package measure

import "math"

// Metrics is the bounding box of a measured label.
type Metrics struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Provider measures a label under a maximum width.
type Provider interface {
	Measure(label string, maxWidth float64) Metrics
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc func(label string, maxWidth float64) Metrics

// Measure calls f.
func (f ProviderFunc) Measure(label string, maxWidth float64) Metrics { return f(label, maxWidth) }

// ellipsis is appended to truncated labels.
const ellipsis = ".."

// Truncate returns the longest prefix of label that, followed by "..", fits
// in maxWidth according to p. Labels that already fit are returned as is.
func Truncate(p Provider, label string, maxWidth float64) string {
	if p.Measure(label, 0).Width <= maxWidth {
		return label
	}
	runes := []rune(label)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if p.Measure(string(runes[:mid])+ellipsis, 0).Width <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo]) + ellipsis
}

// clamp bounds a natural width by maxWidth; a non-positive maxWidth means
// unbounded.
func clamp(width, maxWidth float64) float64 {
	if maxWidth > 0 {
		return math.Min(width, maxWidth)
	}
	return width
}
