// Package types holds the shared data model for Waffle Iron's parametric
// core: identifiers, GeomRef/Anchor/Selector, the Operation tagged union,
// the sketch data model, and OpResult. Every other internal package builds
// on these types rather than defining its own copies.
package types

import "github.com/google/uuid"

type (
	// FeatureId stably identifies a Feature across renames, reorders, and
	// edits. Assigned once at creation time and serialized verbatim.
	FeatureId string

	// KernelId is an identifier assigned by the kernel to a topological
	// entity (vertex/edge/face/wire/shell/solid). It is not stable across
	// rebuilds and must never be persisted by a resolver or file format.
	KernelId uint64

	// SolidHandle is an opaque handle to a live kernel solid. Valid only
	// within the rebuild cycle that produced it.
	SolidHandle uint64

	// EntityLocalId names a sketch entity within one sketch's lifetime. It
	// is stable for as long as that sketch exists but carries no meaning
	// outside it.
	EntityLocalId uint32
)

// NewFeatureId returns a fresh, globally unique FeatureId.
func NewFeatureId() FeatureId {
	return FeatureId(uuid.NewString())
}
