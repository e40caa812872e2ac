package rebuild

import (
	"fmt"

	"github.com/waffle-iron/core/internal/types"
)

// featureError reports an engine API called against a FeatureId with no
// cached OpResult (never rebuilt, suppressed, past the rollback cursor,
// or unknown) or with no produced solid.
type featureError struct {
	id     types.FeatureId
	reason string
}

func (e *featureError) Error() string { return fmt.Sprintf("rebuild: feature %q: %s", e.id, e.reason) }

func errFeatureNotFound(id types.FeatureId) error {
	return &featureError{id: id, reason: "no cached result"}
}

func errNoSolid(id types.FeatureId) error {
	return &featureError{id: id, reason: "produced no solid"}
}
