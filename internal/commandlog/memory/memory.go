// Package memory provides an in-memory implementation of
// commandlog.Store, for tests and single-host development. Grounded on
// runtime/agent/runlog/inmem/inmem.go's per-project sequence counter and
// cursor pagination.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/waffle-iron/core/internal/commandlog"
)

// Store implements commandlog.Store in memory. Not durable.
type Store struct {
	mu      sync.Mutex
	nextSeq map[string]int64
	entries map[string][]*commandlog.Entry
}

var _ commandlog.Store = (*Store)(nil)

// New returns a new in-memory command-log store.
func New() *Store {
	return &Store{
		nextSeq: make(map[string]int64),
		entries: make(map[string][]*commandlog.Entry),
	}
}

func (s *Store) Append(_ context.Context, e *commandlog.Entry) error {
	if e == nil {
		return fmt.Errorf("commandlog: entry is required")
	}
	if e.ProjectID == "" {
		return fmt.Errorf("commandlog: project_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq[e.ProjectID] + 1
	s.nextSeq[e.ProjectID] = seq

	e.ID = strconv.FormatInt(seq, 10)
	entry := *e
	s.entries[e.ProjectID] = append(s.entries[e.ProjectID], &entry)
	return nil
}

func (s *Store) List(_ context.Context, projectID string, cursor string, limit int) (commandlog.Page, error) {
	if projectID == "" {
		return commandlog.Page{}, fmt.Errorf("commandlog: project_id is required")
	}
	if limit <= 0 {
		return commandlog.Page{}, fmt.Errorf("commandlog: limit must be > 0")
	}

	var after int64
	if cursor != "" {
		id, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return commandlog.Page{}, fmt.Errorf("commandlog: invalid cursor %q: %w", cursor, err)
		}
		after = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.entries[projectID]
	if len(all) == 0 {
		return commandlog.Page{}, nil
	}

	start := 0
	if after > 0 {
		start = int(after)
		if start >= len(all) {
			return commandlog.Page{}, nil
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	entries := make([]commandlog.Entry, end-start)
	for i, e := range all[start:end] {
		entries[i] = *e
	}
	var next string
	if end < len(all) {
		next = entries[len(entries)-1].ID
	}

	return commandlog.Page{Entries: entries, NextCursor: next}, nil
}
