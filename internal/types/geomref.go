package types

import "strconv"

// TopoKind names the kind of topological entity a GeomRef expects to
// resolve to.
type TopoKind string

const (
	KindVertex TopoKind = "Vertex"
	KindEdge   TopoKind = "Edge"
	KindFace   TopoKind = "Face"
	KindWire   TopoKind = "Wire"
	KindShell  TopoKind = "Shell"
	KindSolid  TopoKind = "Solid"
)

// OutputKey names one of a feature's named outputs. Main is the primary
// resulting body; Profile(i) is the i-th closed profile of a Sketch.
type OutputKey struct {
	// Name is either "Main" or "Profile".
	Name string
	// Index is meaningful only when Name == "Profile".
	Index uint32
}

// MainOutput is the canonical output key for a feature's primary body.
var MainOutput = OutputKey{Name: "Main"}

// ProfileOutput builds the output key for the i-th closed profile of a
// Sketch feature.
func ProfileOutput(i uint32) OutputKey { return OutputKey{Name: "Profile", Index: i} }

// String renders the output key the way it appears in diagnostics and in
// the persisted file format.
func (k OutputKey) String() string {
	if k.Name == "Profile" {
		return "Profile(" + strconv.Itoa(int(k.Index)) + ")"
	}
	return k.Name
}

// Role is a closed enumeration of semantic names operations assign to
// their output entities. The set is finite and versioned with the file
// format: adding a Role is a file-format-compatible append, renaming or
// removing one is not.
type Role string

const (
	RoleEndCapPositive   Role = "EndCapPositive"
	RoleEndCapNegative   Role = "EndCapNegative"
	RoleSideFace         Role = "SideFace"
	RoleProfileFace      Role = "ProfileFace"
	RoleAxisFace         Role = "AxisFace"
	RoleFilletFace       Role = "FilletFace"
	RoleChamferFace      Role = "ChamferFace"
	RoleShellOuter       Role = "ShellOuter"
	RoleShellInner       Role = "ShellInner"
	RoleBooleanIntroduced Role = "BooleanIntroduced"
	RoleBooleanPreserved  Role = "BooleanPreserved"
)

// Datum identifies a built-in datum plane, axis, or point (§6's datum
// registry).
type Datum string

const (
	DatumOriginXY Datum = "origin_xy"
	DatumOriginYZ Datum = "origin_yz"
	DatumOriginXZ Datum = "origin_xz"
	DatumOrigin   Datum = "origin"
	DatumXAxis    Datum = "x_axis"
	DatumYAxis    Datum = "y_axis"
	DatumZAxis    Datum = "z_axis"
)

type (
	// Anchor names where a GeomRef looks for candidate entities.
	Anchor struct {
		// Feature is set when this anchor is a FeatureOutput anchor.
		Feature FeatureId
		// Output is the named output of Feature (ignored for Datum anchors).
		Output OutputKey
		// DatumID is set when this anchor is a Datum anchor (Feature is
		// empty in that case).
		DatumID Datum
		// IsDatum discriminates the two anchor forms explicitly rather
		// than relying on zero-value Feature, which keeps JSON round
		// trips unambiguous.
		IsDatum bool
	}

	// Filter is one predicate in a Query selector, e.g. "normal
	// approximately +Z" (extremes such as "largest area" are a TieBreak). Name identifies the predicate kind;
	// Args carries predicate-specific parameters (e.g. a target vector).
	Filter struct {
		Name string
		Args map[string]float64
	}

	// TieBreak picks among remaining Query candidates after filters are
	// applied.
	TieBreak struct {
		// Mode is "Lowest", "Highest", or "Preference".
		Mode string
		// Property names the entity property compared for Lowest/Highest
		// (e.g. "area", "centroid_x").
		Property string
		// There is no preference-list field: a "Preference" tie-break
		// carries no data, and the resolver leaves such ties unbroken.
	}

	// Selector picks a single entity from within an Anchor's candidates.
	Selector struct {
		// Kind discriminates which of the three selector forms is active:
		// "Role", "Signature", or "Query".
		Kind string

		// Role selector fields.
		Role      Role
		RoleIndex uint32

		// Signature selector / role-fallback field: every GeomRef written
		// by an operation adapter carries a cached signature alongside
		// its role so Role failures can fall through to Signature
		// matching without recomputation of the "ideal" target.
		Signature *TopoSignature

		// Query selector fields.
		Filters  []Filter
		TieBreak TieBreak
	}

	// ResolvePolicy controls how the resolver behaves when the ideal
	// candidate cannot be found unambiguously.
	ResolvePolicy struct {
		// Strict means any ambiguity or below-threshold match is an
		// error. BestEffort accepts the best candidate and warns.
		Strict bool
	}

	// GeomRef is a stable, persistent reference to a kernel entity. It
	// survives rebuilds even though the KernelId it resolves to does not.
	GeomRef struct {
		Kind     TopoKind
		Anchor   Anchor
		Selector Selector
		Policy   ResolvePolicy
	}
)

// FeatureOutputAnchor builds an Anchor referencing a specific feature's
// named output.
func FeatureOutputAnchor(feature FeatureId, output OutputKey) Anchor {
	return Anchor{Feature: feature, Output: output}
}

// DatumAnchor builds an Anchor referencing a built-in datum.
func DatumAnchor(id Datum) Anchor {
	return Anchor{DatumID: id, IsDatum: true}
}

// RoleSelector builds a Role{role, index} selector, optionally carrying a
// signature fallback computed at write time.
func RoleSelector(role Role, index uint32, sig *TopoSignature) Selector {
	return Selector{Kind: "Role", Role: role, RoleIndex: index, Signature: sig}
}

// SignatureSelector builds a bare Signature selector.
func SignatureSelector(sig TopoSignature) Selector {
	return Selector{Kind: "Signature", Signature: &sig}
}

// QuerySelector builds a Query selector.
func QuerySelector(filters []Filter, tie TieBreak) Selector {
	return Selector{Kind: "Query", Filters: filters, TieBreak: tie}
}

