// Package scale converts number-line values to horizontal pixel offsets and
// computes the spacing of header ticks.
//
// # Scale Factor
//
// The scale factor is expressed in units per pixel: a value v is drawn at
// v / unitsPerPixel pixels from the origin. The UI exposes the scale as one of
// four [Multipliers] applied to the minimum tick spacing:
//
//	upp, _ := scale.UnitsPerPixel(5, 50) // 5 units every 50px → 0.1 units/px
//	px, _ := scale.ValueToPixel(12, upp) // 120
//
// # Ticks
//
// [TickStep] picks the smallest "nice" value step (1, 2 or 5 times a power of
// ten) whose pixel distance is at least the minimum spacing, so header ticks
// never render closer than that floor. For the four multipliers the step is
// the multiplier itself and the spacing equals the minimum exactly. Headers
// over very wide ranges use a coarser step so that at most [MaxTicks] marks
// are drawn.
package scale

import (
	"math"

	"github.com/matzehuels/numberline/pkg/errors"
)

// eps absorbs floating point error when comparing a step against its target.
const eps = 1e-9

// Multipliers is the fixed set of selectable scale multipliers.
var Multipliers = []int{1, 2, 5, 10}

// IsMultiplier reports whether m is one of [Multipliers].
func IsMultiplier(m int) bool {
	for _, v := range Multipliers {
		if v == m {
			return true
		}
	}
	return false
}

func checkUnitsPerPixel(unitsPerPixel float64) error {
	if !(unitsPerPixel > 0) || math.IsInf(unitsPerPixel, 0) {
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"units per pixel must be positive and finite, got %v", unitsPerPixel)
	}
	return nil
}

func checkMinSpacing(minSpacing float64) error {
	if !(minSpacing > 0) || math.IsInf(minSpacing, 0) {
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"minimum tick spacing must be positive and finite, got %v", minSpacing)
	}
	return nil
}

// ValueToPixel maps value to its horizontal pixel offset. The mapping is
// linear and strictly increasing for any unitsPerPixel > 0. A value whose
// offset overflows float64 at this scale returns VALIDATION_FAILED.
func ValueToPixel(value, unitsPerPixel float64) (float64, error) {
	if err := checkUnitsPerPixel(unitsPerPixel); err != nil {
		return 0, err
	}
	px := value / unitsPerPixel
	if math.IsInf(px, 0) || math.IsNaN(px) {
		return 0, errors.New(errors.ErrCodeValidation,
			"value %g cannot be placed at %g units per pixel", value, unitsPerPixel)
	}
	return px, nil
}

// PixelToValue is the inverse of [ValueToPixel].
func PixelToValue(px, unitsPerPixel float64) (float64, error) {
	if err := checkUnitsPerPixel(unitsPerPixel); err != nil {
		return 0, err
	}
	return px * unitsPerPixel, nil
}

// UnitsPerPixel converts a selectable multiplier into a scale factor.
func UnitsPerPixel(multiplier int, minSpacing float64) (float64, error) {
	if !IsMultiplier(multiplier) {
		return 0, errors.New(errors.ErrCodeInvalidConfiguration,
			"scale multiplier must be one of %v, got %d", Multipliers, multiplier)
	}
	if err := checkMinSpacing(minSpacing); err != nil {
		return 0, err
	}
	return float64(multiplier) / minSpacing, nil
}

// Multiplier returns the dropdown value for a scale factor:
// unitsPerPixel * minSpacing, rounded to the nearest integer.
func Multiplier(unitsPerPixel, minSpacing float64) int {
	return int(math.Round(unitsPerPixel * minSpacing))
}

// TickStep returns the value distance between adjacent header ticks.
func TickStep(unitsPerPixel, minSpacing float64) (float64, error) {
	if err := checkUnitsPerPixel(unitsPerPixel); err != nil {
		return 0, err
	}
	if err := checkMinSpacing(minSpacing); err != nil {
		return 0, err
	}
	return niceCeil(unitsPerPixel * minSpacing), nil
}

// TickSpacing returns the pixel distance between adjacent header ticks. The
// result is never below minSpacing.
func TickSpacing(unitsPerPixel, minSpacing float64) (float64, error) {
	step, err := TickStep(unitsPerPixel, minSpacing)
	if err != nil {
		return 0, err
	}
	return math.Max(step/unitsPerPixel, minSpacing), nil
}

// niceCeil returns the smallest value of the form {1, 2, 5} × 10^k that is
// at least x.
func niceCeil(x float64) float64 {
	exp := math.Floor(math.Log10(x))
	base := math.Pow(10, exp)
	for _, f := range []float64{1, 2, 5, 10} {
		if step := f * base; step >= x*(1-eps) {
			return step
		}
	}
	return 10 * base
}

// Tick is a single header mark.
type Tick struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
}

// MaxTicks bounds the number of header marks. Ranges that would need more
// are drawn with a coarser step.
const MaxTicks = 1000

// RangeStep returns the tick step for a header covering [minValue, maxValue]:
// [TickStep], raised to the next 1-2-5 value until the header needs at most
// [MaxTicks] marks. A range too wide to represent returns
// INVALID_CONFIGURATION.
func RangeStep(minValue, maxValue, unitsPerPixel, minSpacing float64) (float64, error) {
	step, err := TickStep(unitsPerPixel, minSpacing)
	if err != nil {
		return 0, err
	}
	span := math.Max(0, maxValue) - math.Min(0, minValue)
	if math.IsInf(span, 0) || math.IsNaN(span) {
		return 0, rangeTooWide(minValue, maxValue)
	}
	if tickCount(minValue, maxValue, step) <= MaxTicks {
		return step, nil
	}
	step = math.Max(step, niceCeil(span/(MaxTicks-3)))
	for tickCount(minValue, maxValue, step) > MaxTicks {
		step = niceCeil(step * 1.5)
		if math.IsInf(step, 0) {
			return 0, rangeTooWide(minValue, maxValue)
		}
	}
	return step, nil
}

func rangeTooWide(minValue, maxValue float64) error {
	return errors.New(errors.ErrCodeInvalidConfiguration,
		"value range [%g, %g] is too wide to draw", minValue, maxValue)
}

// tickRange returns the first tick and the upper bound of the header.
func tickRange(minValue, maxValue, step float64) (lo, hi float64) {
	lo = math.Floor(math.Min(0, minValue)/step) * step
	hi = math.Max(0, maxValue) + step
	return lo, hi
}

// tickCount is a float so that overflowing ranges compare as +Inf.
func tickCount(minValue, maxValue, step float64) float64 {
	lo, hi := tickRange(minValue, maxValue, step)
	n := math.Floor((hi-lo)/step+eps) + 1
	if math.IsNaN(n) {
		return math.Inf(1)
	}
	return n
}

// Ticks returns header marks covering [minValue, maxValue] at [RangeStep].
// The first tick is the step multiple at or below min(0, minValue); the last
// is one step past max(0, maxValue), so the header always extends beyond the
// largest item. At most [MaxTicks] marks are returned.
func Ticks(minValue, maxValue, unitsPerPixel, minSpacing float64) ([]Tick, error) {
	step, err := RangeStep(minValue, maxValue, unitsPerPixel, minSpacing)
	if err != nil {
		return nil, err
	}

	lo, _ := tickRange(minValue, maxValue, step)
	n := int(tickCount(minValue, maxValue, step))
	ticks := make([]Tick, 0, n)
	for i := 0; i < n; i++ {
		v := lo + float64(i)*step
		x := v / unitsPerPixel
		if math.IsInf(x, 0) {
			return nil, rangeTooWide(minValue, maxValue)
		}
		ticks = append(ticks, Tick{Value: v, X: x})
	}
	return ticks, nil
}

// Mapper bundles a scale factor with the minimum tick spacing.
type Mapper struct {
	UnitsPerPixel  float64
	MinTickSpacing float64
}

// NewMapper returns a Mapper for one of the selectable multipliers.
func NewMapper(multiplier int, minSpacing float64) (Mapper, error) {
	upp, err := UnitsPerPixel(multiplier, minSpacing)
	if err != nil {
		return Mapper{}, err
	}
	return Mapper{UnitsPerPixel: upp, MinTickSpacing: minSpacing}, nil
}

// Validate reports INVALID_CONFIGURATION for a non-positive scale factor or
// minimum spacing.
func (m Mapper) Validate() error {
	if err := checkUnitsPerPixel(m.UnitsPerPixel); err != nil {
		return err
	}
	return checkMinSpacing(m.MinTickSpacing)
}

// ValueToPixel maps value with the mapper's scale factor.
func (m Mapper) ValueToPixel(value float64) (float64, error) {
	return ValueToPixel(value, m.UnitsPerPixel)
}

// PixelToValue maps a pixel offset back to a value.
func (m Mapper) PixelToValue(px float64) (float64, error) {
	return PixelToValue(px, m.UnitsPerPixel)
}

// TickSpacing returns the header tick spacing in pixels.
func (m Mapper) TickSpacing() (float64, error) {
	return TickSpacing(m.UnitsPerPixel, m.MinTickSpacing)
}

// Ticks returns the header marks covering [minValue, maxValue].
func (m Mapper) Ticks(minValue, maxValue float64) ([]Tick, error) {
	return Ticks(minValue, maxValue, m.UnitsPerPixel, m.MinTickSpacing)
}

// RangeStep returns the tick step for a header covering [minValue, maxValue].
func (m Mapper) RangeStep(minValue, maxValue float64) (float64, error) {
	return RangeStep(minValue, maxValue, m.UnitsPerPixel, m.MinTickSpacing)
}

// RangeTickSpacing returns the pixel distance between header ticks for
// [minValue, maxValue]. It equals [Mapper.TickSpacing] unless the range
// needed a coarser step.
func (m Mapper) RangeTickSpacing(minValue, maxValue float64) (float64, error) {
	step, err := m.RangeStep(minValue, maxValue)
	if err != nil {
		return 0, err
	}
	return math.Max(step/m.UnitsPerPixel, m.MinTickSpacing), nil
}

// Multiplier returns the selectable multiplier closest to the scale factor.
func (m Mapper) Multiplier() int {
	return Multiplier(m.UnitsPerPixel, m.MinTickSpacing)
}
