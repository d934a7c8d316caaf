package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

// Strategy selects how colliding items are stacked.
type Strategy string

const (
	// Cascade is the two-level sweep: top row plus stacking beneath the
	// previously placed item.
	Cascade Strategy = "cascade"

	// Shelf places each item on the first row with room for it.
	Shelf Strategy = "shelf"
)

// Strategies lists the available strategies in display order.
var Strategies = []Strategy{Cascade, Shelf}

// ParseStrategy converts a flag or config value to a Strategy. The empty
// string selects [Cascade].
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", Cascade:
		return Cascade, nil
	case Shelf:
		return Shelf, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown layout strategy %q (must be 'cascade' or 'shelf')", s)
}

// Result is the outcome of one layout pass.
type Result struct {
	// Items are the placed boxes in sweep order (ascending value).
	Items []item.Positioned `json:"items"`

	// Height is the canvas height needed to show every item.
	Height float64 `json:"height"`

	// Rows is the number of distinct vertical positions in use.
	Rows int `json:"rows"`

	Strategy Strategy `json:"strategy"`
}

// Width returns the rightmost edge of any item, or 0 for an empty result.
func (r Result) Width() float64 {
	w := 0.0
	for _, it := range r.Items {
		w = math.Max(w, it.Right())
	}
	return w
}

// Bounds returns the smallest and largest horizontal edges in use.
func (r Result) Bounds() (minX, maxX float64) {
	if len(r.Items) == 0 {
		return 0, 0
	}
	minX, maxX = math.Inf(1), math.Inf(-1)
	for _, it := range r.Items {
		minX = math.Min(minX, it.Left)
		maxX = math.Max(maxX, it.Right())
	}
	return minX, maxX
}

// Find returns the placed item with the given ID.
func (r Result) Find(id string) (item.Positioned, bool) {
	for _, it := range r.Items {
		if it.ID == id {
			return it, true
		}
	}
	return item.Positioned{}, false
}

// Engine runs layout passes.
type Engine struct {
	spacing  float64
	strategy Strategy
}

// Option configures an [Engine].
type Option func(*Engine)

// WithVerticalSpacing sets the gap inserted between stacked rows.
func WithVerticalSpacing(spacing float64) Option {
	return func(e *Engine) { e.spacing = spacing }
}

// WithStrategy selects the stacking strategy (default [Cascade]).
func WithStrategy(s Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// New returns an engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{strategy: Cascade}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy returns the engine's stacking strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// Layout places items and computes the canvas height. The input slice is
// not modified.
func (e *Engine) Layout(items []item.Positioned) Result {
	res := Result{Items: []item.Positioned{}, Strategy: e.strategy}
	if len(items) == 0 {
		return res
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b item.Positioned) int {
		return cmp.Compare(a.Value, b.Value)
	})

	switch e.strategy {
	case Shelf:
		res.Items = shelf(sorted, e.spacing)
	default:
		res.Items = cascade(sorted, e.spacing)
	}
	res.Height = canvasHeight(res.Items, e.spacing)
	res.Rows = countRows(res.Items)
	return res
}

// cascade places sorted items with the two-level sweep. It writes into
// sorted, which the caller owns.
func cascade(sorted []item.Positioned, spacing float64) []item.Positioned {
	var (
		previous         item.Positioned
		previousMaxRight = math.Inf(-1)
		topRowMaxRight   = math.Inf(-1)
	)

	for i, it := range sorted {
		switch {
		case it.Left > topRowMaxRight:
			it = it.WithTop(0)
			topRowMaxRight = it.Right()
			previous = it
		case it.Left <= previousMaxRight:
			it = it.WithTop(previous.Top + previous.Height + spacing)
			previous = it
		default:
			it = it.WithTop(0)
		}
		previousMaxRight = previous.Right()
		sorted[i] = it
	}
	return sorted
}

// shelf places sorted items on the first row whose right edge they clear.
// Row tops are assigned afterwards so that each row is as tall as its
// tallest item.
func shelf(sorted []item.Positioned, spacing float64) []item.Positioned {
	var (
		rowRight  []float64
		rowHeight []float64
		rowOf     = make([]int, len(sorted))
	)

	for i, it := range sorted {
		row := -1
		for r, right := range rowRight {
			if it.Left > right {
				row = r
				break
			}
		}
		if row < 0 {
			rowRight = append(rowRight, math.Inf(-1))
			rowHeight = append(rowHeight, 0)
			row = len(rowRight) - 1
		}
		rowRight[row] = it.Right()
		rowHeight[row] = math.Max(rowHeight[row], it.Height)
		rowOf[i] = row
	}

	tops := make([]float64, len(rowHeight))
	for r := 1; r < len(tops); r++ {
		tops[r] = tops[r-1] + rowHeight[r-1] + spacing
	}
	for i := range sorted {
		sorted[i] = sorted[i].WithTop(tops[rowOf[i]])
	}
	return sorted
}

// canvasHeight returns maxTop + maxTopHeight + spacing, raised to the lowest
// bottom edge + spacing when an item extends past the deepest row.
func canvasHeight(items []item.Positioned, spacing float64) float64 {
	if len(items) == 0 {
		return 0
	}
	var maxTop, maxTopHeight, maxBottom float64
	for _, it := range items {
		switch {
		case it.Top > maxTop:
			maxTop, maxTopHeight = it.Top, it.Height
		case it.Top == maxTop:
			maxTopHeight = math.Max(maxTopHeight, it.Height)
		}
		maxBottom = math.Max(maxBottom, it.Bottom())
	}
	return math.Max(maxTop+maxTopHeight, maxBottom) + spacing
}

func countRows(items []item.Positioned) int {
	tops := make(map[float64]struct{})
	for _, it := range items {
		tops[it.Top] = struct{}{}
	}
	return len(tops)
}
