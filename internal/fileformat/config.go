package fileformat

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// WorkspaceConfig is the optional waffle.yaml ambient configuration: solver
// tolerances and defaults that apply across every project a host opens, as
// distinct from a project's own recipe (always JSON, never YAML, per
// §4.7). Grounded on the teacher's YAML-based service configuration
// convention rather than any spec requirement for a specific shape.
type WorkspaceConfig struct {
	ChordalTolerance    float64 `yaml:"chordal_tolerance"`
	SignatureThreshold  float64 `yaml:"signature_threshold"`
	UndoDepth           int     `yaml:"undo_depth"`
}

// DefaultWorkspaceConfig mirrors the Rebuild Engine's and resolver's own
// built-in defaults (internal/rebuild.Engine's 0.1 tessellation tolerance,
// internal/resolver's 0.75 signature-match threshold, tree.DefaultUndoDepth).
func DefaultWorkspaceConfig() WorkspaceConfig {
	return WorkspaceConfig{
		ChordalTolerance:   0.1,
		SignatureThreshold: 0.75,
		UndoDepth:          100,
	}
}

// ParseWorkspaceConfig decodes a waffle.yaml document, starting from
// DefaultWorkspaceConfig so a partial file only overrides what it sets.
func ParseWorkspaceConfig(data []byte) (WorkspaceConfig, error) {
	cfg := DefaultWorkspaceConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return WorkspaceConfig{}, fmt.Errorf("fileformat: parse waffle.yaml: %w", err)
	}
	return cfg, nil
}
