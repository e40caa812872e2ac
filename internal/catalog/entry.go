// Package catalog indexes project metadata — name, path, unit system,
// feature count, and timestamps — across every project a host has ever
// opened, distinct from any single project's own recipe (internal/
// fileformat). A host's "recent projects" or "open project" picker reads
// this index instead of walking a filesystem or re-parsing every .waffle
// file on disk.
//
// Grounded on the teacher's registry Store pattern
// (registry/store/store.go): a narrow persistence interface plus an
// ErrNotFound sentinel, with swappable in-memory and MongoDB-backed
// implementations.
package catalog

import "time"

// Entry is one project's catalog record. It never carries geometry or
// the feature tree itself — only what a project picker needs to render
// a row and open the right file.
type Entry struct {
	ID           string
	Name         string
	Path         string
	Units        string
	FeatureCount int
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
