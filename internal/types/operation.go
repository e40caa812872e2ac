package types

// BooleanOp names the combine mode for a BooleanCombine operation.
type BooleanOp string

const (
	BooleanUnion     BooleanOp = "Union"
	BooleanSubtract  BooleanOp = "Subtract"
	BooleanIntersect BooleanOp = "Intersect"
)

// Operation is the tagged union of feature operation variants (§3). Each
// concrete type below implements it; Tag returns the discriminant used
// both for dispatch (internal/operations.Registry) and for the file
// format's "type" field.
type Operation interface {
	// Tag returns the operation's discriminant, e.g. "Extrude".
	Tag() string
	// References returns the flat list of GeomRefs this operation
	// consumes, in a stable order. Feature.References is the denormalized
	// cache of this value computed at AddFeature/EditFeature time.
	References() []GeomRef
	// DependsOn returns every FeatureId this operation's position in the
	// tree must come after: every GeomRef anchor's feature plus any
	// direct FeatureId fields (e.g. Extrude.SketchFeature) that are not
	// themselves wrapped in a GeomRef.
	DependsOn() []FeatureId
}

type (
	// Sketch produces solved 2D positions and closed profiles on a
	// planar face or datum.
	Sketch struct {
		PlaneRef    GeomRef
		Entities    []SketchEntity
		Constraints []SketchConstraint
	}

	// Extrude sweeps a Sketch profile along its plane normal (or an
	// explicit direction) by Depth, optionally symmetric and/or cutting
	// into TargetBody.
	Extrude struct {
		SketchFeature FeatureId
		ProfileIndex  uint32
		Depth         float64
		Symmetric     bool
		Cut           bool
		TargetBody    *GeomRef
		Direction     *GeomRef
	}

	// Revolve sweeps a Sketch profile about an axis by Angle (radians;
	// 2*pi is a full revolve).
	Revolve struct {
		SketchFeature FeatureId
		ProfileIndex  uint32
		AxisOrigin    Vec3
		AxisDir       Vec3
		Angle         float64
	}

	// Fillet rounds each edge in Edges by Radius.
	Fillet struct {
		Edges  []GeomRef
		Radius float64
	}

	// Chamfer bevels each edge in Edges by Distance.
	Chamfer struct {
		Edges    []GeomRef
		Distance float64
	}

	// Shell hollows Body to Thickness, removing FacesToRemove as
	// openings.
	Shell struct {
		Body            GeomRef
		FacesToRemove   []GeomRef
		Thickness       float64
	}

	// BooleanCombine combines bodies A and B with Op.
	BooleanCombine struct {
		A  GeomRef
		B  GeomRef
		Op BooleanOp
	}
)

func (Sketch) Tag() string         { return "Sketch" }
func (Extrude) Tag() string        { return "Extrude" }
func (Revolve) Tag() string        { return "Revolve" }
func (Fillet) Tag() string         { return "Fillet" }
func (Chamfer) Tag() string        { return "Chamfer" }
func (Shell) Tag() string          { return "Shell" }
func (BooleanCombine) Tag() string { return "BooleanCombine" }

func (s Sketch) References() []GeomRef { return []GeomRef{s.PlaneRef} }

func (e Extrude) References() []GeomRef {
	refs := []GeomRef{}
	if e.TargetBody != nil {
		refs = append(refs, *e.TargetBody)
	}
	if e.Direction != nil {
		refs = append(refs, *e.Direction)
	}
	return refs
}

func (Revolve) References() []GeomRef { return nil }

func (f Fillet) References() []GeomRef { return append([]GeomRef(nil), f.Edges...) }

func (c Chamfer) References() []GeomRef { return append([]GeomRef(nil), c.Edges...) }

func (s Shell) References() []GeomRef {
	refs := append([]GeomRef{s.Body}, s.FacesToRemove...)
	return refs
}

func (b BooleanCombine) References() []GeomRef { return []GeomRef{b.A, b.B} }

func dependsFromRefs(refs []GeomRef) []FeatureId {
	deps := make([]FeatureId, 0, len(refs))
	for _, r := range refs {
		if !r.Anchor.IsDatum && r.Anchor.Feature != "" {
			deps = append(deps, r.Anchor.Feature)
		}
	}
	return deps
}

func (s Sketch) DependsOn() []FeatureId { return dependsFromRefs(s.References()) }

func (e Extrude) DependsOn() []FeatureId {
	return append([]FeatureId{e.SketchFeature}, dependsFromRefs(e.References())...)
}

func (r Revolve) DependsOn() []FeatureId { return []FeatureId{r.SketchFeature} }

func (f Fillet) DependsOn() []FeatureId { return dependsFromRefs(f.References()) }

func (c Chamfer) DependsOn() []FeatureId { return dependsFromRefs(c.References()) }

func (s Shell) DependsOn() []FeatureId { return dependsFromRefs(s.References()) }

func (b BooleanCombine) DependsOn() []FeatureId { return dependsFromRefs(b.References()) }
