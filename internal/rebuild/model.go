package rebuild

import (
	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

// FeatureStatus is one entry of ModelUpdated's per-feature status list
// (§6): the host's tree chrome renders error badges and warning
// indicators directly from this.
type FeatureStatus struct {
	ID       types.FeatureId
	Error    string
	Warnings []string
}

// VisibleBody pairs a tessellated mesh with the feature that produced
// it, so the host's picking layer can map a triangle hit back through
// FaceDataForFeature.
type VisibleBody struct {
	FeatureID types.FeatureId
	Mesh      kernel.RenderMesh
}

// ModelUpdate is the rebuild engine's emitted ModelUpdated event (§6).
type ModelUpdate struct {
	Generation    uint64
	RebuildMS     int64
	Cancelled     bool
	Statuses      []FeatureStatus
	VisibleBodies []VisibleBody
}

// FaceSelection is one entry of FaceDataForFeature's result (§6): a
// tessellated triangle range paired with the GeomRef a picking layer
// should construct when the user clicks a triangle in that range.
type FaceSelection struct {
	Range kernel.FaceRange
	Ref   types.GeomRef
}
