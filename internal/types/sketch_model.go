package types

// SketchEntity is the tagged union of 2D sketch primitives. IDs are
// EntityLocalIds, stable for the lifetime of the owning sketch.
type SketchEntity interface {
	Tag() string
	LocalId() EntityLocalId
	IsConstruction() bool
}

type (
	Point struct {
		ID           EntityLocalId
		X, Y         float64
		Construction bool
	}

	Line struct {
		ID                 EntityLocalId
		StartID, EndID     EntityLocalId
		Construction       bool
	}

	Circle struct {
		ID           EntityLocalId
		CenterID     EntityLocalId
		Radius       float64
		Construction bool
	}

	Arc struct {
		ID                       EntityLocalId
		CenterID, StartID, EndID EntityLocalId
		Construction             bool
	}
)

func (p Point) Tag() string             { return "Point" }
func (p Point) LocalId() EntityLocalId  { return p.ID }
func (p Point) IsConstruction() bool    { return p.Construction }

func (l Line) Tag() string             { return "Line" }
func (l Line) LocalId() EntityLocalId  { return l.ID }
func (l Line) IsConstruction() bool    { return l.Construction }

func (c Circle) Tag() string            { return "Circle" }
func (c Circle) LocalId() EntityLocalId { return c.ID }
func (c Circle) IsConstruction() bool   { return c.Construction }

func (a Arc) Tag() string             { return "Arc" }
func (a Arc) LocalId() EntityLocalId  { return a.ID }
func (a Arc) IsConstruction() bool    { return a.Construction }

// ConstraintKind enumerates the ~21 constraint kinds §3 calls for.
type ConstraintKind string

const (
	ConstraintCoincident      ConstraintKind = "Coincident"
	ConstraintHorizontal      ConstraintKind = "Horizontal"
	ConstraintVertical        ConstraintKind = "Vertical"
	ConstraintParallel        ConstraintKind = "Parallel"
	ConstraintPerpendicular   ConstraintKind = "Perpendicular"
	ConstraintTangent         ConstraintKind = "Tangent"
	ConstraintEqual           ConstraintKind = "Equal"
	ConstraintSymmetric       ConstraintKind = "Symmetric"
	ConstraintSymmetricH      ConstraintKind = "SymmetricH"
	ConstraintSymmetricV      ConstraintKind = "SymmetricV"
	ConstraintMidpoint        ConstraintKind = "Midpoint"
	ConstraintOnEntity        ConstraintKind = "OnEntity"
	ConstraintSameOrientation ConstraintKind = "SameOrientation"
	ConstraintDragged         ConstraintKind = "Dragged"
	ConstraintDistance        ConstraintKind = "Distance"
	ConstraintAngle           ConstraintKind = "Angle"
	ConstraintRadius          ConstraintKind = "Radius"
	ConstraintDiameter        ConstraintKind = "Diameter"
	ConstraintEqualAngle      ConstraintKind = "EqualAngle"
	ConstraintRatio           ConstraintKind = "Ratio"
	ConstraintEqualPointToLine ConstraintKind = "EqualPointToLine"
)

// SketchConstraint binds a ConstraintKind to the entities and scalar
// value (if any) it constrains. Entities holds EntityLocalIds in a
// kind-specific fixed order (documented per constraint kind in
// internal/sketch).
type SketchConstraint struct {
	ID       EntityLocalId
	Kind     ConstraintKind
	Entities []EntityLocalId
	Value    float64 // meaningful for Distance/Angle/Radius/Diameter/Ratio
}

// SolveStatus classifies the solver's outcome for one Sketch.
type SolveStatus struct {
	// Kind is one of "FullyConstrained", "UnderConstrained",
	// "OverConstrained", "SolveFailed".
	Kind string
	// DOF is set for UnderConstrained.
	DOF int
	// Conflicts lists the constraint IDs the solver reported as
	// mutually inconsistent, set for OverConstrained.
	Conflicts []EntityLocalId
	// Reason is a short diagnostic, set for SolveFailed.
	Reason string
}

// ClosedProfile is an ordered boundary loop in the sketch plane.
type ClosedProfile struct {
	// Segments lists each bounding entity in traversal order; Reverse
	// indicates the entity is traversed from its natural end to start.
	Segments []ProfileSegment
	// Winding is "Outer" or "Inner" (a hole nested in an outer loop).
	Winding string
	// ParentIndex is the index, into the slice this ClosedProfile was
	// returned in, of the Outer loop this Inner loop nests inside. -1
	// for an Outer loop, or for an Inner loop with no enclosing Outer
	// loop (an open sketch, or a hole that escapes every boundary).
	ParentIndex int
}

// ProfileSegment is one entity in a ClosedProfile's boundary.
type ProfileSegment struct {
	EntityID EntityLocalId
	Reverse  bool
}

// SolvedSketch is the solver's output: numeric positions for every point-
// bearing entity, the solve status, and the extracted closed profiles.
type SolvedSketch struct {
	Positions map[EntityLocalId]Vec3 // Z is always 0; kept for plane-embedding convenience
	Status    SolveStatus
	Profiles  []ClosedProfile
}
