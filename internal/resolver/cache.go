package resolver

import "github.com/waffle-iron/core/internal/types"

// FeatureState is the resolver's view of one feature's rebuild state,
// enough to decide whether its OpResult is a usable anchor. The rebuild
// engine is the natural implementer of Cache; this package only reads it.
type FeatureState struct {
	// Result is the feature's last computed OpResult. Nil if the feature
	// has never been rebuilt (e.g. it lies past the active rollback
	// cursor).
	Result *types.OpResult
	// Suppressed mirrors Feature.Suppressed.
	Suppressed bool
	// PastCursor is true when this feature lies beyond the tree's active
	// rollback index and therefore was skipped this rebuild.
	PastCursor bool
}

// Usable reports whether this feature's OpResult can anchor a GeomRef.
func (s FeatureState) Usable() bool {
	return !s.Suppressed && !s.PastCursor && s.Result != nil
}

// Cache looks up a feature's rebuild state by id. The rebuild engine's
// per-feature OpResult cache satisfies this directly.
type Cache interface {
	Feature(id types.FeatureId) (FeatureState, bool)
}

// DatumRegistry resolves a built-in Datum to its single kernel entity.
// Datums are singular by construction (there is exactly one origin, one
// x_axis, and so on) so unlike a FeatureOutput anchor they carry no
// Role/Signature/Query candidate set to disambiguate: the selector
// cascade is skipped entirely for Datum anchors.
type DatumRegistry interface {
	Datum(id types.Datum) (DatumEntity, bool)
}

// DatumEntity is the resolved identity of a built-in datum. Datums are
// reference geometry, never kernel output, so they carry their basis
// directly instead of a KernelId: Origin/Normal/XAxis describe a plane
// datum (Kind == KindFace), Origin/Direction describe an axis datum
// (Kind == KindEdge), and Origin alone describes the origin point
// datum (Kind == KindVertex).
type DatumEntity struct {
	Kind      types.TopoKind
	Origin    types.Vec3
	Normal    types.Vec3
	XAxis     types.Vec3
	Direction types.Vec3
}
