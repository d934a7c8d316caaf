package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/matzehuels/numberline/pkg/errors"
	nlio "github.com/matzehuels/numberline/pkg/io"
	"github.com/matzehuels/numberline/pkg/item"
)

func TestMemory(t *testing.T) {
	testRepository(t, func(t *testing.T) Repository { return NewMemory() })
}

func TestFile(t *testing.T) {
	testRepository(t, func(t *testing.T) Repository {
		f, err := OpenFile(afero.NewMemMapFs(), "/data/items.json")
		if err != nil {
			t.Fatal(err)
		}
		return f
	})
}

func TestItemsRemoveKeepsOrder(t *testing.T) {
	s := newItems()
	var want []string
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("i%02d", i)
		if err := s.create(item.Raw{ID: id, Label: id, Value: float64(i)}); err != nil {
			t.Fatal(err)
		}
		want = append(want, id)
	}

	// Remove every item whose index is not a multiple of 3, enough to
	// trigger compaction along the way.
	for i := 49; i >= 0; i-- {
		if i%3 == 0 {
			continue
		}
		if !s.remove(want[i]) {
			t.Fatalf("remove(%s) = false", want[i])
		}
		want = slices.Delete(want, i, i+1)
	}
	if s.remove("i01") {
		t.Error("second remove reported the item present")
	}
	if len(s.order) > 2*s.count() {
		t.Errorf("order not compacted: %d slots for %d items", len(s.order), s.count())
	}

	check := func() {
		t.Helper()
		var got []string
		for _, it := range s.all() {
			got = append(got, it.ID)
		}
		if !slices.Equal(got, want) {
			t.Errorf("all() = %v, want %v", got, want)
		}
		for _, id := range want {
			if s.order[s.pos[id]] != id {
				t.Errorf("pos[%s] = %d points at %q", id, s.pos[id], s.order[s.pos[id]])
			}
		}
	}
	check()

	if err := s.create(item.Raw{ID: "i01", Label: "again", Value: 1}); err != nil {
		t.Fatal(err)
	}
	want = append(want, "i01")
	check()

	c := s.clone()
	c.remove("i00")
	if _, ok := s.pos["i00"]; !ok {
		t.Error("removing from a clone changed the original")
	}
}

func TestFilePersists(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	for _, path := range []string{"/data/items.json", "/data/items.yaml", "/data/items.toml", "/data/items.csv"} {
		t.Run(path, func(t *testing.T) {
			f, err := OpenFile(fs, path)
			if err != nil {
				t.Fatal(err)
			}
			if ok, _ := afero.Exists(fs, path); ok {
				t.Fatal("file created before the first change")
			}

			if err := f.Create(ctx, item.Raw{ID: "a", Label: "Alpha", Value: 1}); err != nil {
				t.Fatal(err)
			}
			if err := f.Create(ctx, item.Raw{ID: "b", Label: "Beta", Value: 2}); err != nil {
				t.Fatal(err)
			}
			if err := f.EditValue(ctx, "b", 20); err != nil {
				t.Fatal(err)
			}

			reopened, err := OpenFile(fs, path)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			got, _ := reopened.All(ctx)
			want := []item.Raw{{ID: "a", Label: "Alpha", Value: 1}, {ID: "b", Label: "Beta", Value: 20}}
			if !slices.Equal(got, want) {
				t.Errorf("reopened = %+v, want %+v", got, want)
			}

			onDisk, err := nlio.Import(fs, path)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(onDisk, want) {
				t.Errorf("file contents = %+v, want %+v", onDisk, want)
			}
		})
	}
}

func TestFileRejectsBadDataset(t *testing.T) {
	fs := afero.NewMemMapFs()

	if _, err := OpenFile(fs, "/data/items"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("OpenFile(no extension) = %v, want INVALID_FORMAT", err)
	}

	_ = afero.WriteFile(fs, "/data/broken.json", []byte("{"), 0o644)
	if _, err := OpenFile(fs, "/data/broken.json"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("OpenFile(broken) = %v, want INVALID_FORMAT", err)
	}

	dup := `{"items":[{"id":"a","label":"A","value":1},{"id":"a","label":"B","value":2}]}`
	_ = afero.WriteFile(fs, "/data/dup.json", []byte(dup), 0o644)
	if _, err := OpenFile(fs, "/data/dup.json"); !errors.Is(err, errors.ErrCodeConflict) {
		t.Errorf("OpenFile(dup) = %v, want CONFLICT", err)
	}
}

func TestFileFailedWriteKeepsState(t *testing.T) {
	ctx := context.Background()
	base := afero.NewMemMapFs()
	f, err := OpenFile(base, "/data/items.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Create(ctx, item.Raw{ID: "a", Label: "Alpha", Value: 1}); err != nil {
		t.Fatal(err)
	}

	f.fs = afero.NewReadOnlyFs(base)
	if err := f.Create(ctx, item.Raw{ID: "b", Label: "Beta", Value: 2}); err == nil {
		t.Fatal("Create on read-only fs succeeded")
	}
	got, _ := f.All(ctx)
	if len(got) != 1 {
		t.Errorf("state changed after failed write: %+v", got)
	}
}

func TestMemoryConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("item-%d", i)
			_ = m.Create(ctx, item.Raw{ID: id, Label: id, Value: float64(i)})
			_, _ = m.All(ctx)
			_ = m.EditValue(ctx, id, float64(-i))
		}(i)
	}
	wg.Wait()

	if m.Len() != 50 {
		t.Errorf("Len = %d, want 50", m.Len())
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	for _, dsn := range []string{"", "memory:"} {
		r, err := Open(ctx, dsn)
		if err != nil {
			t.Fatalf("Open(%q): %v", dsn, err)
		}
		if _, ok := r.(*Memory); !ok {
			t.Errorf("Open(%q) = %T, want *Memory", dsn, r)
		}
	}

	path := t.TempDir() + "/items.json"
	for _, dsn := range []string{path, "file:" + path} {
		r, err := Open(ctx, dsn)
		if err != nil {
			t.Fatalf("Open(%q): %v", dsn, err)
		}
		f, ok := r.(*File)
		if !ok {
			t.Fatalf("Open(%q) = %T, want *File", dsn, r)
		}
		if f.Path() != path {
			t.Errorf("Path = %q, want %q", f.Path(), path)
		}
	}

	if _, err := Open(ctx, "file:"); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Open(file:) = %v, want INVALID_CONFIGURATION", err)
	}
	if _, err := Open(ctx, "redis://%zz"); err == nil || !strings.Contains(err.Error(), "redis") {
		t.Errorf("Open(bad redis url) = %v", err)
	}
}

func TestMongoDatabase(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017", DefaultMongoDatabase},
		{"mongodb://localhost:27017/", DefaultMongoDatabase},
		{"mongodb://localhost:27017/points", "points"},
		{"mongodb+srv://u:p@cluster.example/data?retryWrites=true", "data"},
	}
	for _, tt := range tests {
		if got := mongoDatabase(tt.uri); got != tt.want {
			t.Errorf("mongoDatabase(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
