package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

// items is the unsynchronized state shared by [Memory] and [File].
//
// order holds IDs in insertion order. Removal blanks the slot through pos
// instead of shifting the slice, and the slice is compacted once more than
// half of it is blank.
type items struct {
	byID  map[string]item.Raw
	pos   map[string]int
	order []string
}

func newItems() items {
	return items{byID: make(map[string]item.Raw), pos: make(map[string]int)}
}

func (s *items) create(it item.Raw) error {
	if err := it.Validate(); err != nil {
		return err
	}
	if _, ok := s.byID[it.ID]; ok {
		return conflict(it.ID)
	}
	s.byID[it.ID] = it
	s.pos[it.ID] = len(s.order)
	s.order = append(s.order, it.ID)
	return nil
}

func (s *items) editLabel(id, label string) error {
	it, ok := s.byID[id]
	if !ok {
		return notFound(id)
	}
	if err := errors.ValidateLabel(id, label); err != nil {
		return err
	}
	it.Label = label
	s.byID[id] = it
	return nil
}

func (s *items) editValue(id string, value float64) error {
	it, ok := s.byID[id]
	if !ok {
		return notFound(id)
	}
	if err := errors.ValidateValue(id, value); err != nil {
		return err
	}
	it.Value = value
	s.byID[id] = it
	return nil
}

// remove reports whether id was present.
func (s *items) remove(id string) bool {
	i, ok := s.pos[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	delete(s.pos, id)
	s.order[i] = "" // IDs are never empty
	if len(s.order) > 2*len(s.byID) {
		s.compact()
	}
	return true
}

func (s *items) compact() {
	live := s.order[:0]
	for _, id := range s.order {
		if id == "" {
			continue
		}
		s.pos[id] = len(live)
		live = append(live, id)
	}
	clear(s.order[len(live):])
	s.order = live
}

func (s *items) count() int { return len(s.byID) }

func (s *items) all() []item.Raw {
	out := make([]item.Raw, 0, len(s.byID))
	for _, id := range s.order {
		if id != "" {
			out = append(out, s.byID[id])
		}
	}
	return out
}

func (s *items) clone() items {
	return items{byID: maps.Clone(s.byID), pos: maps.Clone(s.pos), order: slices.Clone(s.order)}
}

// Memory is an in-memory repository. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items items
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{items: newItems()}
}

func (m *Memory) Create(ctx context.Context, it item.Raw) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.create(it)
}

func (m *Memory) EditLabel(ctx context.Context, id, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.editLabel(id, label)
}

func (m *Memory) EditValue(ctx context.Context, id string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.editValue(id, value)
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.remove(id)
	return nil
}

func (m *Memory) All(ctx context.Context) ([]item.Raw, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items.all(), nil
}

// Len returns the number of stored items.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items.count()
}

func (m *Memory) Close() error { return nil }

var _ Repository = (*Memory)(nil)
