package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"

	nlio "github.com/matzehuels/numberline/pkg/io"
	"github.com/matzehuels/numberline/pkg/item"
)

// File keeps items in a dataset file. The file is read once when the store
// is opened and rewritten after every successful change. Its format follows
// the file extension (see pkg/io).
type File struct {
	mu    sync.RWMutex
	fs    afero.Fs
	path  string
	items items
}

// OpenFile opens the dataset at path on fs. A missing file starts an empty
// store; the file is created on the first change.
func OpenFile(fs afero.Fs, path string) (*File, error) {
	if _, err := nlio.FormatFromPath(path); err != nil {
		return nil, err
	}

	f := &File{fs: fs, path: path, items: newItems()}

	raws, err := nlio.Import(fs, path)
	if err != nil {
		if _, statErr := fs.Stat(path); os.IsNotExist(statErr) {
			return f, nil
		}
		return nil, err
	}
	for _, r := range raws {
		if err := f.items.create(r); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return f, nil
}

// Path returns the dataset file path.
func (f *File) Path() string { return f.path }

// update applies fn to a copy of the state and persists it. The in-memory
// state only changes when both succeed.
func (f *File) update(fn func(*items) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.items.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := nlio.Export(f.fs, f.path, next.all()); err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	f.items = next
	return nil
}

func (f *File) Create(ctx context.Context, it item.Raw) error {
	return f.update(func(s *items) error { return s.create(it) })
}

func (f *File) EditLabel(ctx context.Context, id, label string) error {
	return f.update(func(s *items) error { return s.editLabel(id, label) })
}

func (f *File) EditValue(ctx context.Context, id string, value float64) error {
	return f.update(func(s *items) error { return s.editValue(id, value) })
}

// Delete removes id. The file is left untouched when id is unknown.
func (f *File) Delete(ctx context.Context, id string) error {
	f.mu.RLock()
	_, ok := f.items.byID[id]
	f.mu.RUnlock()
	if !ok {
		return nil
	}
	return f.update(func(s *items) error {
		s.remove(id)
		return nil
	})
}

func (f *File) All(ctx context.Context) ([]item.Raw, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.items.all(), nil
}

func (f *File) Close() error { return nil }

var _ Repository = (*File)(nil)
