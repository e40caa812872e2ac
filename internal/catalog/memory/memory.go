// Package memory provides an in-memory implementation of catalog.Store,
// suitable for a single-host desktop build or tests. Grounded on
// registry/store/memory/memory.go's locking and matching helpers.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/waffle-iron/core/internal/catalog"
)

// Store is an in-memory implementation of catalog.Store. Safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]catalog.Entry
}

var _ catalog.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]catalog.Entry)}
}

func (s *Store) SaveMeta(ctx context.Context, entry catalog.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return nil
}

func (s *Store) GetMeta(ctx context.Context, id string) (catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return catalog.Entry{}, catalog.ErrNotFound
	}
	return e, nil
}

func (s *Store) DeleteMeta(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) ListMeta(ctx context.Context, tags []string) ([]catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if matchesTags(e.Tags, tags) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) SearchMeta(ctx context.Context, query string) ([]catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	out := make([]catalog.Entry, 0)
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.Path), q) {
			out = append(out, e)
		}
	}
	return out, nil
}

func matchesTags(entryTags, filterTags []string) bool {
	if len(filterTags) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(entryTags))
	for _, t := range entryTags {
		set[t] = struct{}{}
	}
	for _, t := range filterTags {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
