package fileformat

import (
	"encoding/json"
	"fmt"

	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

// Save encodes t and meta into a CurrentVersion document.
func Save(t *tree.Tree, meta ProjectMeta) ([]byte, error) {
	doc := Document{
		Format:        FormatTag,
		Version:       CurrentVersion,
		Project:       meta,
		Features:      append([]types.Feature(nil), t.Features...),
		RollbackIndex: t.ActiveIndex,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("fileformat: encode document: %w", err)
	}
	return data, nil
}

// Load validates data's structural shape, migrates it to CurrentVersion if
// needed, and decodes the result into a Tree and its ProjectMeta.
func Load(data []byte) (*tree.Tree, ProjectMeta, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ProjectMeta{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if err := validateStructure(raw); err != nil {
		return nil, ProjectMeta{}, err
	}
	format, _ := raw["format"].(string)
	if format != FormatTag {
		return nil, ProjectMeta{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	migrated, err := migrateToCurrent(raw)
	if err != nil {
		return nil, ProjectMeta{}, err
	}
	normalized, err := json.Marshal(migrated)
	if err != nil {
		return nil, ProjectMeta{}, fmt.Errorf("%w: re-encode migrated document: %v", ErrMalformedJSON, err)
	}

	var doc Document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, ProjectMeta{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	t := &tree.Tree{Features: doc.Features, ActiveIndex: doc.RollbackIndex}
	return t, doc.Project, nil
}
