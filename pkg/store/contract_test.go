package store

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

// testRepository runs the behavior every backend must share.
func testRepository(t *testing.T, open func(t *testing.T) Repository) {
	ctx := context.Background()

	seed := []item.Raw{
		{ID: "a", Label: "Alpha", Value: 1},
		{ID: "b", Label: "Beta", Value: -2},
		{ID: "c", Label: "Gamma", Value: 3.5},
	}

	t.Run("create and list in insertion order", func(t *testing.T) {
		r := open(t)
		if err := Seed(ctx, r, seed); err != nil {
			t.Fatalf("Seed: %v", err)
		}
		got, err := r.All(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, seed) {
			t.Errorf("All = %+v, want %+v", got, seed)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := open(t).All(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("All = %v, want empty slice", got)
		}
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		r := open(t)
		if err := r.Create(ctx, seed[0]); err != nil {
			t.Fatal(err)
		}
		err := r.Create(ctx, item.Raw{ID: "a", Label: "Other", Value: 9})
		if !errors.Is(err, errors.ErrCodeConflict) {
			t.Errorf("Create(dup) = %v, want CONFLICT", err)
		}
		got, _ := r.All(ctx)
		if len(got) != 1 || got[0] != seed[0] {
			t.Errorf("contents after conflict = %+v", got)
		}
	})

	t.Run("create validates", func(t *testing.T) {
		r := open(t)
		bad := []item.Raw{
			{ID: "", Label: "x", Value: 1},
			{ID: "x", Label: "", Value: 1},
			{ID: "y", Label: "y", Value: math.NaN()},
		}
		for _, it := range bad {
			if err := r.Create(ctx, it); !errors.Is(err, errors.ErrCodeValidation) {
				t.Errorf("Create(%+v) = %v, want VALIDATION_FAILED", it, err)
			}
		}
	})

	t.Run("edit label", func(t *testing.T) {
		r := open(t)
		if err := Seed(ctx, r, seed); err != nil {
			t.Fatal(err)
		}
		if err := r.EditLabel(ctx, "b", "Bravo"); err != nil {
			t.Fatalf("EditLabel: %v", err)
		}
		got, err := Get(ctx, r, "b")
		if err != nil {
			t.Fatal(err)
		}
		if got.Label != "Bravo" || got.Value != -2 {
			t.Errorf("after EditLabel = %+v", got)
		}
		if err := r.EditLabel(ctx, "b", ""); !errors.Is(err, errors.ErrCodeValidation) {
			t.Errorf("EditLabel(empty) = %v, want VALIDATION_FAILED", err)
		}
	})

	t.Run("edit value updates value only", func(t *testing.T) {
		r := open(t)
		if err := Seed(ctx, r, seed); err != nil {
			t.Fatal(err)
		}
		if err := r.EditValue(ctx, "a", 42); err != nil {
			t.Fatalf("EditValue: %v", err)
		}
		got, err := Get(ctx, r, "a")
		if err != nil {
			t.Fatal(err)
		}
		if got.Value != 42 || got.Label != "Alpha" {
			t.Errorf("after EditValue = %+v, want value 42 and label Alpha", got)
		}
		if err := r.EditValue(ctx, "a", math.Inf(1)); !errors.Is(err, errors.ErrCodeValidation) {
			t.Errorf("EditValue(+Inf) = %v, want VALIDATION_FAILED", err)
		}
		all, _ := r.All(ctx)
		if ids := []string{all[0].ID, all[1].ID, all[2].ID}; !slices.Equal(ids, []string{"a", "b", "c"}) {
			t.Errorf("order after edit = %v", ids)
		}
	})

	t.Run("edit unknown id", func(t *testing.T) {
		r := open(t)
		if err := r.EditLabel(ctx, "missing", "x"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("EditLabel(missing) = %v, want NOT_FOUND", err)
		}
		if err := r.EditValue(ctx, "missing", 1); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("EditValue(missing) = %v, want NOT_FOUND", err)
		}
	})

	t.Run("unknown id is reported before an invalid edit", func(t *testing.T) {
		r := open(t)
		if err := r.EditLabel(ctx, "missing", ""); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("EditLabel(missing, empty) = %v, want NOT_FOUND", err)
		}
		if err := r.EditValue(ctx, "missing", math.NaN()); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("EditValue(missing, NaN) = %v, want NOT_FOUND", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		r := open(t)
		if err := Seed(ctx, r, seed); err != nil {
			t.Fatal(err)
		}
		if err := r.Delete(ctx, "b"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		got, _ := r.All(ctx)
		if want := []item.Raw{seed[0], seed[2]}; !slices.Equal(got, want) {
			t.Errorf("All after Delete = %+v, want %+v", got, want)
		}

		// The ID is free again.
		if err := r.Create(ctx, item.Raw{ID: "b", Label: "Back", Value: 0}); err != nil {
			t.Errorf("re-Create after Delete: %v", err)
		}
	})

	t.Run("delete unknown id is a no-op", func(t *testing.T) {
		r := open(t)
		if err := Seed(ctx, r, seed); err != nil {
			t.Fatal(err)
		}
		if err := r.Delete(ctx, "nonexistent"); err != nil {
			t.Fatalf("Delete(nonexistent) = %v, want nil", err)
		}
		got, _ := r.All(ctx)
		if !slices.Equal(got, seed) {
			t.Errorf("contents changed: %+v", got)
		}
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		r := open(t)
		if err := Seed(ctx, r, seed); err != nil {
			t.Fatal(err)
		}
		got, _ := r.All(ctx)
		got[0].Label = "mutated"
		again, _ := r.All(ctx)
		if again[0].Label != "Alpha" {
			t.Errorf("All returned shared storage: %+v", again[0])
		}
	})

	t.Run("get unknown id", func(t *testing.T) {
		if _, err := Get(ctx, open(t), "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Get(missing) = %v, want NOT_FOUND", err)
		}
	})
}
