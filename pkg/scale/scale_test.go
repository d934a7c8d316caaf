package scale

import (
	"math"
	"testing"

	"github.com/matzehuels/numberline/pkg/errors"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestValueToPixel(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		upp   float64
		want  float64
	}{
		{"origin", 0, 0.02, 0},
		{"unit scale", 10, 1, 10},
		{"fine scale", 1, 0.02, 50},
		{"coarse scale", 100, 10, 10},
		{"negative value", -5, 0.1, -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueToPixel(tt.value, tt.upp)
			if err != nil {
				t.Fatalf("ValueToPixel() error: %v", err)
			}
			if !approx(got, tt.want) {
				t.Errorf("ValueToPixel(%v, %v) = %v, want %v", tt.value, tt.upp, got, tt.want)
			}
		})
	}
}

func TestValueToPixelInvalidScale(t *testing.T) {
	for _, upp := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := ValueToPixel(1, upp); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
			t.Errorf("ValueToPixel(1, %v) error = %v, want INVALID_CONFIGURATION", upp, err)
		}
	}
}

func TestValueToPixelOverflow(t *testing.T) {
	for _, v := range []float64{1e308, -1.5e308, math.Inf(1), math.NaN()} {
		if _, err := ValueToPixel(v, 0.02); !errors.Is(err, errors.ErrCodeValidation) {
			t.Errorf("ValueToPixel(%v, 0.02) error = %v, want VALIDATION_FAILED", v, err)
		}
	}
	// The same magnitude fits at a coarser scale.
	if _, err := ValueToPixel(1e308, 1); err != nil {
		t.Errorf("ValueToPixel(1e308, 1) error = %v", err)
	}
}

func TestValueToPixelMonotonic(t *testing.T) {
	values := []float64{-1e6, -3.5, -1, 0, 1e-9, 0.5, 1, 2, 1000, 1e9}
	for _, upp := range []float64{0.02, 0.04, 0.1, 0.2, 3} {
		prev := math.Inf(-1)
		for _, v := range values {
			px, err := ValueToPixel(v, upp)
			if err != nil {
				t.Fatal(err)
			}
			if !(px > prev) {
				t.Errorf("upp=%v: ValueToPixel(%v) = %v, not greater than %v", upp, v, px, prev)
			}
			prev = px
		}
	}
}

func TestPixelToValueRoundTrip(t *testing.T) {
	for _, v := range []float64{-12.5, 0, 3, 77.25} {
		px, _ := ValueToPixel(v, 0.04)
		got, err := PixelToValue(px, 0.04)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(got, v) {
			t.Errorf("PixelToValue(ValueToPixel(%v)) = %v", v, got)
		}
	}
	if _, err := PixelToValue(1, 0); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("PixelToValue(1, 0) error = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestUnitsPerPixel(t *testing.T) {
	for _, m := range Multipliers {
		upp, err := UnitsPerPixel(m, 50)
		if err != nil {
			t.Fatalf("UnitsPerPixel(%d) error: %v", m, err)
		}
		if !approx(upp, float64(m)/50) {
			t.Errorf("UnitsPerPixel(%d, 50) = %v", m, upp)
		}
		if got := Multiplier(upp, 50); got != m {
			t.Errorf("Multiplier(UnitsPerPixel(%d)) = %d", m, got)
		}
	}

	for _, m := range []int{0, 3, -1, 100} {
		if _, err := UnitsPerPixel(m, 50); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
			t.Errorf("UnitsPerPixel(%d) error = %v, want INVALID_CONFIGURATION", m, err)
		}
	}
	if _, err := UnitsPerPixel(1, 0); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("UnitsPerPixel(1, 0) error = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestTickSpacingMultipliers(t *testing.T) {
	const minSpacing = 50
	for _, m := range Multipliers {
		upp, _ := UnitsPerPixel(m, minSpacing)

		step, err := TickStep(upp, minSpacing)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(step, float64(m)) {
			t.Errorf("TickStep(m=%d) = %v, want %d", m, step, m)
		}

		spacing, err := TickSpacing(upp, minSpacing)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(spacing, minSpacing) {
			t.Errorf("TickSpacing(m=%d) = %v, want %v", m, spacing, minSpacing)
		}
	}
}

func TestTickSpacingNeverBelowMinimum(t *testing.T) {
	const minSpacing = 50
	for _, upp := range []float64{0.001, 0.013, 0.03, 0.07, 0.5, 1, 1.7, 9, 123} {
		spacing, err := TickSpacing(upp, minSpacing)
		if err != nil {
			t.Fatal(err)
		}
		if spacing < minSpacing {
			t.Errorf("TickSpacing(%v) = %v, below minimum %v", upp, spacing, minSpacing)
		}
		if spacing > 2.5*minSpacing+1e-6 {
			t.Errorf("TickSpacing(%v) = %v, more than 2.5x the minimum", upp, spacing)
		}
	}

	if _, err := TickSpacing(0, minSpacing); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("TickSpacing(0) error = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestNiceCeil(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{1.2, 2},
		{2, 2},
		{3, 5},
		{5, 5},
		{6, 10},
		{10, 10},
		{0.03, 0.05},
		{420, 500},
		{0.2 * 50, 10},
	}
	for _, tt := range tests {
		if got := niceCeil(tt.in); !approx(got, tt.want) {
			t.Errorf("niceCeil(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTicks(t *testing.T) {
	upp, _ := UnitsPerPixel(2, 50)

	ticks, err := Ticks(0, 7, upp, 50)
	if err != nil {
		t.Fatal(err)
	}
	// Steps of 2 from 0 through 7+2=9: 0, 2, 4, 6, 8.
	want := []float64{0, 2, 4, 6, 8}
	if len(ticks) != len(want) {
		t.Fatalf("len(Ticks) = %d, want %d (%v)", len(ticks), len(want), ticks)
	}
	for i, tk := range ticks {
		if !approx(tk.Value, want[i]) {
			t.Errorf("ticks[%d].Value = %v, want %v", i, tk.Value, want[i])
		}
		if !approx(tk.X, want[i]/upp) {
			t.Errorf("ticks[%d].X = %v, want %v", i, tk.X, want[i]/upp)
		}
	}

	t.Run("negative range", func(t *testing.T) {
		ticks, err := Ticks(-3, 1, upp, 50)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(ticks[0].Value, -4) {
			t.Errorf("first tick = %v, want -4", ticks[0].Value)
		}
		if last := ticks[len(ticks)-1].Value; !approx(last, 2) {
			t.Errorf("last tick = %v, want 2", last)
		}
	})

	t.Run("empty range", func(t *testing.T) {
		ticks, err := Ticks(0, 0, upp, 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(ticks) != 2 {
			t.Errorf("len(Ticks(0, 0)) = %d, want 2", len(ticks))
		}
	})
}

func TestTicksWideRange(t *testing.T) {
	upp, _ := UnitsPerPixel(1, 50)

	tests := []struct {
		name     string
		min, max float64
	}{
		{"million", 0, 5e6},
		{"billion", 0, 1e9},
		{"both sides", -3e9, 7e8},
		{"near overflow", 0, 1e300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticks, err := Ticks(tt.min, tt.max, upp, 50)
			if err != nil {
				t.Fatalf("Ticks(%v, %v) error: %v", tt.min, tt.max, err)
			}
			if len(ticks) < 2 || len(ticks) > MaxTicks {
				t.Fatalf("len(Ticks) = %d, want 2..%d", len(ticks), MaxTicks)
			}
			if first := ticks[0].Value; first > math.Min(0, tt.min) {
				t.Errorf("first tick %v above range start %v", first, tt.min)
			}
			if last := ticks[len(ticks)-1].Value; !(last > tt.max) {
				t.Errorf("last tick %v not past %v", last, tt.max)
			}

			step, err := RangeStep(tt.min, tt.max, upp, 50)
			if err != nil {
				t.Fatal(err)
			}
			if step != niceCeil(step) {
				t.Errorf("RangeStep = %v, not a 1-2-5 value", step)
			}
			if gap := ticks[1].Value - ticks[0].Value; math.Abs(gap-step) > step*1e-9 {
				t.Errorf("tick gap %v, want step %v", gap, step)
			}
		})
	}
}

func TestRangeStepKeepsNarrowStep(t *testing.T) {
	upp, _ := UnitsPerPixel(5, 50)
	step, err := RangeStep(-20, 40, upp, 50)
	if err != nil {
		t.Fatal(err)
	}
	if want, _ := TickStep(upp, 50); step != want {
		t.Errorf("RangeStep = %v, want TickStep %v", step, want)
	}
}

func TestTicksRangeTooWide(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		upp      float64
	}{
		{"span overflows", -math.MaxFloat64, math.MaxFloat64, 1},
		{"last tick overflows pixels", 0, 1e307, 0.02},
		{"infinite", 0, math.Inf(1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Ticks(tt.min, tt.max, tt.upp, 50)
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("Ticks(%v, %v) error = %v, want INVALID_CONFIGURATION", tt.min, tt.max, err)
			}
		})
	}
}

func TestMapper(t *testing.T) {
	m, err := NewMapper(5, 50)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if got := m.Multiplier(); got != 5 {
		t.Errorf("Multiplier() = %d, want 5", got)
	}
	px, _ := m.ValueToPixel(1)
	if !approx(px, 10) {
		t.Errorf("ValueToPixel(1) = %v, want 10", px)
	}

	if err := (Mapper{UnitsPerPixel: 0, MinTickSpacing: 50}).Validate(); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("zero mapper Validate() = %v, want INVALID_CONFIGURATION", err)
	}
	if sp, err := m.RangeTickSpacing(0, 1e9); err != nil || !(sp > 50) {
		t.Errorf("RangeTickSpacing(0, 1e9) = %v, %v; want a coarser spacing", sp, err)
	}
	if _, err := NewMapper(3, 50); err == nil {
		t.Error("NewMapper(3) should fail")
	}
}
