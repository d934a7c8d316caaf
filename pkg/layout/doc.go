// Package layout assigns vertical positions to number-line items so that
// labels which collide horizontally are stacked instead of drawn on top of
// each other.
//
// # Overview
//
// The item builder produces boxes whose left edge is fixed by the item's
// value and whose top is 0. The engine stable-sorts them by value (ties keep
// input order) and sweeps once from left to right, producing a [Result]
// with the final boxes and the canvas height that fits them:
//
//	boxes, _ := item.Build(raws, mapper, provider, cfg)
//	res := layout.New(layout.WithVerticalSpacing(cfg.VerticalSpacing)).Layout(boxes)
//
// # Strategies
//
// [Cascade] (default) is a two-level sweep. It tracks the right edge of the
// top row and the right edge of the previously placed item:
//
//  1. An item starting right of everything on the top row goes on the top row.
//  2. Otherwise, an item starting inside the previous item's span is placed
//     directly beneath that item.
//  3. Otherwise the item stays on the top row.
//
// Branch 3 can overlap an earlier top-row item whose span is still open: the
// item cleared its immediate predecessor (a cascaded one) but not the top
// row. Cascade keeps that behavior so that layouts match the established
// rendering exactly.
//
// [Shelf] tracks the right edge of every row and puts each item on the
// first row it fits, opening a new row when none does. It never produces an
// overlap and is selected with [WithStrategy].
//
// # Height
//
// Result.Height is the maximum top plus the height of the item at that top,
// plus one vertical spacing. If some item reaches further down (possible
// with branch 3 and mixed label heights) the height grows to cover its
// bottom edge. An empty input has height 0.
//
// # Determinism
//
// The result depends only on the input boxes and the vertical spacing.
// Layout never fails, never mutates its input and allocates a fresh result
// on every call.
package layout
