package item

import (
	"github.com/matzehuels/numberline/pkg/config"
	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/scale"
)

// Build turns raw items into unpositioned boxes, one per item in input order.
//
// The scale mapper is checked first, so an invalid scale factor fails with
// INVALID_CONFIGURATION even for an empty input. A malformed item (empty ID
// or label, non-finite value, or an ID seen earlier in the same input) aborts
// the whole pass with VALIDATION_FAILED; no partial result is returned. So
// does a value too large to map to a finite offset at the mapper's scale.
func Build(items []Raw, m scale.Mapper, p measure.Provider, c config.Layout) ([]Positioned, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	out := make([]Positioned, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, r := range items {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ID]; dup {
			return nil, errors.New(errors.ErrCodeValidation, "item %q appears more than once", r.ID)
		}
		seen[r.ID] = struct{}{}

		left, err := m.ValueToPixel(r.Value)
		if err != nil {
			return nil, err
		}
		tm := p.Measure(r.Label, c.MaxTextWidth)

		out = append(out, Positioned{
			ID:     r.ID,
			Label:  r.Label,
			Value:  r.Value,
			Width:  tm.Width + c.BulletWidth,
			Height: tm.Height,
			Left:   left,
		})
	}
	return out, nil
}
