package pipeline

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/matzehuels/numberline/pkg/cache"
	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
	"github.com/matzehuels/numberline/pkg/observability"
	"github.com/matzehuels/numberline/pkg/store"
)

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu        sync.Mutex
	layouts   int
	layoutErr error
	renders   int
	hits      int
	misses    int
	sets      int
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layouts++
	h.layoutErr = err
}

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders++
}

func (h *recordingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *recordingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *recordingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}

func newTestRunner(t *testing.T, raws ...item.Raw) (*Runner, *recordingHooks) {
	t.Helper()
	ctx := context.Background()

	repo := store.NewMemory()
	if err := store.Seed(ctx, repo, raws); err != nil {
		t.Fatal(err)
	}
	c, err := cache.NewFileCache(afero.NewMemMapFs(), "/cache")
	if err != nil {
		t.Fatal(err)
	}

	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	logger := log.New(io.Discard)
	return NewRunner(repo, c, nil, logger), hooks
}

func TestRunnerLayout(t *testing.T) {
	r, hooks := newTestRunner(t,
		item.Raw{ID: "b", Label: "X", Value: 1},
		item.Raw{ID: "a", Label: "LongLabel", Value: 0},
	)

	res, err := r.Layout(context.Background(), Options{Provider: tenPerRune})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if len(res.Items) != 2 || res.Stats.ItemCount != 2 {
		t.Fatalf("Items = %v, ItemCount = %d", res.Items, res.Stats.ItemCount)
	}
	if res.Layout.Items[0].ID != "a" {
		t.Errorf("first placed item = %q, want a (sorted by value)", res.Layout.Items[0].ID)
	}
	if b, _ := res.Layout.Find("b"); b.Top != 20 {
		t.Errorf("b.Top = %v, want 20", b.Top)
	}
	if res.DatasetHash == "" {
		t.Error("DatasetHash is empty")
	}
	if hooks.layouts != 1 || hooks.layoutErr != nil {
		t.Errorf("layout hooks = %d (err %v), want 1 successful", hooks.layouts, hooks.layoutErr)
	}
}

func TestRunnerLayoutEmpty(t *testing.T) {
	r, _ := newTestRunner(t)

	res, err := r.Layout(context.Background(), Options{Provider: tenPerRune})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if res.Layout.Items == nil || len(res.Layout.Items) != 0 || res.Layout.Height != 0 {
		t.Errorf("Layout = %+v, want no items and height 0", res.Layout)
	}
}

func TestRunnerLayoutInvalidOptions(t *testing.T) {
	r, hooks := newTestRunner(t, item.Raw{ID: "a", Label: "A", Value: 0})

	res, err := r.Layout(context.Background(), Options{Multiplier: 7})
	if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("error = %v, want INVALID_CONFIGURATION", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if hooks.layouts != 0 {
		t.Errorf("layout hooks fired %d times for rejected options", hooks.layouts)
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	r, hooks := newTestRunner(t,
		item.Raw{ID: "a", Label: "Alpha", Value: 0},
		item.Raw{ID: "b", Label: "Beta", Value: 3},
	)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG, FormatJSON}, Provider: tenPerRune}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run reported a cache hit")
	}
	if got := first.Formats(); len(got) != 2 || got[0] != FormatJSON || got[1] != FormatSVG {
		t.Errorf("Formats() = %v", got)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run missed the cache")
	}
	if string(second.Artifacts[FormatSVG]) != string(first.Artifacts[FormatSVG]) {
		t.Error("cached SVG differs from rendered SVG")
	}
	if hooks.renders != 1 {
		t.Errorf("renders = %d, want 1", hooks.renders)
	}
	if hooks.sets != 2 || hooks.hits != 2 || hooks.misses != 1 {
		t.Errorf("cache hooks: sets=%d hits=%d misses=%d", hooks.sets, hooks.hits, hooks.misses)
	}

	// Editing an item changes the dataset hash.
	if err := r.Repo.EditLabel(ctx, "a", "Aleph"); err != nil {
		t.Fatal(err)
	}
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("edited dataset served from cache")
	}

	// Refresh bypasses the cache.
	opts.Refresh = true
	fourth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("refresh served from cache")
	}
}

func TestRunnerSeparatesMultipliers(t *testing.T) {
	r, _ := newTestRunner(t, item.Raw{ID: "a", Label: "Alpha", Value: 10})
	ctx := context.Background()

	one, err := r.Execute(ctx, Options{Multiplier: 1, Formats: []string{FormatJSON}, Provider: tenPerRune})
	if err != nil {
		t.Fatal(err)
	}
	two, err := r.Execute(ctx, Options{Multiplier: 2, Formats: []string{FormatJSON}, Provider: tenPerRune})
	if err != nil {
		t.Fatal(err)
	}
	if two.CacheInfo.RenderHit {
		t.Error("multiplier change served from cache")
	}
	a1, _ := one.Layout.Find("a")
	a2, _ := two.Layout.Find("a")
	if a1.Left != 2*a2.Left {
		t.Errorf("Left at x1 = %v, at x2 = %v; want a factor of 2", a1.Left, a2.Left)
	}
}

func TestRunnerValidationFailure(t *testing.T) {
	r, hooks := newTestRunner(t)
	// Serve a record that Create would have rejected.
	r.Repo = brokenRepo{Repository: store.NewMemory(), items: []item.Raw{{ID: "a", Label: "", Value: 1}}}

	_, err := r.Execute(context.Background(), Options{Provider: tenPerRune})
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("error = %v, want VALIDATION_FAILED", err)
	}
	if hooks.layoutErr == nil {
		t.Error("layout hook did not receive the error")
	}
}

func TestRunnerProviderShared(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := Options{Metrics: MetricsHeuristic}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}
	p1, err := r.provider(opts)
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := r.provider(opts)
	if p1 != p2 {
		t.Error("provider not reused for identical options")
	}
}

func TestRunnerCloseReleasesProviders(t *testing.T) {
	r, _ := newTestRunner(t)
	p := &closingProvider{Provider: tenPerRune}
	r.providers[providerKey{name: MetricsFont}] = p

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if p.closed != 1 {
		t.Errorf("provider closed %d times, want 1", p.closed)
	}
	if len(r.providers) != 0 {
		t.Errorf("%d providers kept after Close", len(r.providers))
	}
}

type brokenRepo struct {
	store.Repository
	items []item.Raw
}

func (b brokenRepo) All(context.Context) ([]item.Raw, error) { return b.items, nil }
