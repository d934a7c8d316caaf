package pipeline

import (
	"fmt"

	"github.com/matzehuels/numberline/pkg/config"
	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/layout"
	"github.com/matzehuels/numberline/pkg/measure"
	"github.com/matzehuels/numberline/pkg/scale"
)

// LayoutItems runs one layout pass over raws: every item is measured and
// mapped to pixels, then the engine stacks colliding labels.
//
// The pass fails as a whole. An invalid mapper returns
// INVALID_CONFIGURATION and a malformed item returns VALIDATION_FAILED; in
// both cases the returned Result is empty.
func LayoutItems(raws []item.Raw, m scale.Mapper, p measure.Provider, c config.Layout, s layout.Strategy) (layout.Result, error) {
	boxes, err := item.Build(raws, m, p, c)
	if err != nil {
		return layout.Result{}, fmt.Errorf("build items: %w", err)
	}
	engine := layout.New(
		layout.WithVerticalSpacing(c.VerticalSpacing),
		layout.WithStrategy(s),
	)
	return engine.Layout(boxes), nil
}
