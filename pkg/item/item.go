// Package item defines the data points drawn on the number line and the
// builder that turns them into unpositioned screen boxes.
//
// # Types
//
// [Raw] is the source record owned by a repository: an ID, a label and a
// value. [Positioned] is the per-pass screen box derived from it. Both are
// plain value types; "modifying" a Positioned means constructing a new one
// with [Positioned.WithTop].
//
// # Building
//
// [Build] measures every label, adds the bullet width and maps the value to
// a left edge:
//
//	items, err := item.Build(raws, mapper, measure.NewHeuristic(12, 16), config.DefaultLayout())
//
// The builder preserves input order and leaves Top at 0; vertical placement
// belongs to the layout engine.
package item

import (
	"github.com/matzehuels/numberline/pkg/errors"
)

// Raw is a data point as stored in a repository.
type Raw struct {
	ID    string  `json:"id" yaml:"id" toml:"id" bson:"_id"`
	Label string  `json:"label" yaml:"label" toml:"label" bson:"label"`
	Value float64 `json:"value" yaml:"value" toml:"value" bson:"value"`
}

// Validate checks the ID, label and value of r. It returns a
// VALIDATION_FAILED error naming the item.
func (r Raw) Validate() error {
	if err := errors.ValidateID(r.ID); err != nil {
		return err
	}
	if err := errors.ValidateLabel(r.ID, r.Label); err != nil {
		return err
	}
	return errors.ValidateValue(r.ID, r.Value)
}

// Positioned is a data point annotated with its on-screen bounding box.
// Left and Top are the box's top-left corner; Y grows downward.
type Positioned struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

// Right returns the rightmost edge occupied by the box.
func (p Positioned) Right() float64 { return p.Left + p.Width }

// Bottom returns the lower edge of the box.
func (p Positioned) Bottom() float64 { return p.Top + p.Height }

// WithTop returns a copy of p placed at top.
func (p Positioned) WithTop(top float64) Positioned {
	p.Top = top
	return p
}

// Overlaps reports whether the half-open horizontal spans [Left, Right) of
// p and o intersect. Vertical position is ignored.
func (p Positioned) Overlaps(o Positioned) bool {
	return p.Left < o.Right() && o.Left < p.Right()
}

// Raw returns the source record of p.
func (p Positioned) Raw() Raw {
	return Raw{ID: p.ID, Label: p.Label, Value: p.Value}
}
