// Package fileformat implements the versioned project file format (§4.7):
// schema-validated JSON documents, a migration chain from any past version
// up to CurrentVersion, and round-trip preservation of unknown fields via
// each feature's Extensions bag.
package fileformat

import (
	"github.com/waffle-iron/core/internal/types"
)

// CurrentVersion is the document schema version this build writes and can
// read without migration.
const CurrentVersion = 2

// FormatTag is the required value of a document's "format" field.
const FormatTag = "waffle-iron"

// ProjectMeta is the document's non-recipe metadata.
type ProjectMeta struct {
	Name  string `json:"name"`
	Units string `json:"units,omitempty"`
}

// Document is the on-disk shape of a .waffle project file: a format tag, a
// schema version, project metadata, the feature recipe in tree order, the
// persisted rollback cursor (if any), and an extensions bag for whatever
// this build of the schema does not itself model.
type Document struct {
	Format        string          `json:"format"`
	Version       int             `json:"version"`
	Project       ProjectMeta     `json:"project"`
	Features      []types.Feature `json:"features"`
	RollbackIndex *int            `json:"rollback_index,omitempty"`
	Extensions    map[string]any  `json:"extensions,omitempty"`
}
