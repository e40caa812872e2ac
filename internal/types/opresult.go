package types

import "encoding/json"

// Feature is one entry in the parametric recipe.
type Feature struct {
	ID         FeatureId
	Name       string
	Suppressed bool
	Op         Operation
	// References is the denormalized flat list of GeomRefs Op consumes,
	// recomputed whenever Op changes (AddFeature/EditFeature). Stored
	// for fast dependency queries without re-deriving from Op.
	References []GeomRef
	// Extensions holds the feature's "extensions" object as loaded and
	// writes it back unchanged on save (§4.7). Other keys of a feature
	// object that this version does not recognize are not kept.
	Extensions map[string]any
}

// MarshalJSON encodes a Feature for the project file format (§4.7):
// { id, name, suppressed, operation, extensions? }. References is
// deliberately omitted — it is a denormalized, in-memory-only cache
// recomputed from Op whenever a tree is built or loaded.
func (f Feature) MarshalJSON() ([]byte, error) {
	type alias struct {
		ID         FeatureId         `json:"id"`
		Name       string            `json:"name"`
		Suppressed bool              `json:"suppressed"`
		Operation  OperationEnvelope `json:"operation"`
		Extensions map[string]any    `json:"extensions,omitempty"`
	}
	return json.Marshal(alias{
		ID:         f.ID,
		Name:       f.Name,
		Suppressed: f.Suppressed,
		Operation:  OperationEnvelope{Op: f.Op},
		Extensions: f.Extensions,
	})
}

// UnmarshalJSON decodes a Feature and recomputes its denormalized
// References cache from the decoded Operation.
func (f *Feature) UnmarshalJSON(data []byte) error {
	type alias struct {
		ID         FeatureId         `json:"id"`
		Name       string            `json:"name"`
		Suppressed bool              `json:"suppressed"`
		Operation  OperationEnvelope `json:"operation"`
		Extensions map[string]any    `json:"extensions,omitempty"`
	}
	var tmp alias
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	f.ID = tmp.ID
	f.Name = tmp.Name
	f.Suppressed = tmp.Suppressed
	f.Op = tmp.Operation.Op
	f.Extensions = tmp.Extensions
	if f.Op != nil {
		f.References = f.Op.References()
	}
	return nil
}

// EntityRecord is one output entity's row in an OpResult's entity table.
type EntityRecord struct {
	Kind       TopoKind
	Role       Role
	RoleIndex  uint32
	HasRole    bool
	Signature  TopoSignature
	// DerivedFrom points into the input features' OpResults: this
	// entity's provenance. Never forms a cycle (§9): a feature can only
	// reference earlier features.
	DerivedFrom []ProvenanceRef
}

// ProvenanceRef names one upstream entity an output entity was derived
// from, addressed by (FeatureId, KernelId) per §9's arena-of-records
// guidance (never an owning graph reference).
type ProvenanceRef struct {
	Feature  FeatureId
	KernelID KernelId
}

// Rewrite records an explicit old-KernelId -> new-KernelId mapping for an
// entity the operation is known to have preserved unchanged from an
// input. Rewrites accelerate and strengthen resolution for pass-through
// entities (e.g. a Fillet's untouched faces).
type Rewrite struct {
	From ProvenanceRef
	To   KernelId
}

// PlaneBasis places a 2D working plane in 3D: Origin is the plane's
// local (0,0), Normal its outward direction, XAxis its local +X.
type PlaneBasis struct {
	Origin Vec3
	Normal Vec3
	XAxis  Vec3
}

// OpResult is the cached execution result of one feature (§3).
type OpResult struct {
	Outputs     map[OutputKey][]KernelId
	EntityTable map[KernelId]EntityRecord
	Rewrites    []Rewrite
	Warnings    []string
	Errors      []string
	Solid       *SolidHandle

	// SketchResult and SketchPlane are populated only by a Sketch
	// feature's OpResult. Extrude and Revolve address a sketch's
	// profiles directly by (SketchFeature, ProfileIndex) rather than
	// through a GeomRef (§4.3: profiles are dataflow plumbing, not a
	// persistent-naming target), so this is the consuming adapters'
	// only path to the solved geometry. Never serialized: the file
	// format persists only the Sketch operation's recipe (§4.7), and
	// this is re-derived every rebuild by re-solving.
	SketchResult *SolvedSketch
	SketchPlane  *PlaneBasis
	// SketchLoops holds, parallel to SketchResult.Profiles, each
	// profile's boundary already sampled into a plane-local 2D point
	// loop (Z always 0) — the polygon form the kernel's Extrude/Revolve
	// need, as opposed to the entity-id boundary ExtractProfiles
	// returns.
	SketchLoops [][]Vec3
}

// NewOpResult returns an empty, ready-to-populate OpResult.
func NewOpResult() *OpResult {
	return &OpResult{
		Outputs:     make(map[OutputKey][]KernelId),
		EntityTable: make(map[KernelId]EntityRecord),
	}
}

// Failed reports whether this OpResult recorded any error.
func (r *OpResult) Failed() bool { return r != nil && len(r.Errors) > 0 }

// AddError appends a diagnostic to Errors.
func (r *OpResult) AddError(msg string) { r.Errors = append(r.Errors, msg) }

// AddWarning appends a diagnostic to Warnings.
func (r *OpResult) AddWarning(msg string) { r.Warnings = append(r.Warnings, msg) }
