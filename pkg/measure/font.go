package measure

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Font measures labels with the advances of a real font face.
// A Font is safe for concurrent use; the underlying face is not, so calls
// are serialized.
type Font struct {
	mu   sync.Mutex
	face font.Face
	size float64
}

// NewFont parses an OpenType or TrueType font and builds a face at size
// points (72 DPI, so one point is one pixel).
func NewFont(data []byte, size float64) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return &Font{face: face, size: size}, nil
}

// DefaultFont returns a Font over the embedded Go Regular typeface.
func DefaultFont(size float64) (*Font, error) {
	return NewFont(goregular.TTF, size)
}

// Face returns the font face, for sinks that draw with the same font they
// measured with.
func (f *Font) Face() font.Face { return f.face }

// Size returns the face size in points.
func (f *Font) Size() float64 { return f.size }

// Measure implements [Provider].
func (f *Font) Measure(label string, maxWidth float64) Metrics {
	f.mu.Lock()
	defer f.mu.Unlock()

	adv := font.MeasureString(f.face, label)
	m := f.face.Metrics()
	return Metrics{
		Width:  clamp(float64(adv)/64, maxWidth),
		Height: float64(m.Height) / 64,
	}
}

// Close releases the face.
func (f *Font) Close() error {
	return f.face.Close()
}
