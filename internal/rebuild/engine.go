// Package rebuild implements the Rebuild Engine (§4.5): it owns the
// feature tree and its undo/redo log, detects the earliest dirty
// feature for a mutation, replays the tree forward from there caching
// each feature's OpResult, and emits a ModelUpdate carrying per-feature
// status and tessellated meshes of the visible bodies.
//
// Grounded on the teacher's in-memory workflow-execution loop shape
// (goroutine-free here since the core is synchronous by design, §5) and
// its telemetry span conventions; see DESIGN.md.
package rebuild

import (
	"context"
	"sync"
	"time"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/operations"
	"github.com/waffle-iron/core/internal/resolver"
	"github.com/waffle-iron/core/internal/telemetry"
	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

// resettable is satisfied by kernels that can clear their internal
// counters and stored bodies between independent full rebuilds. The
// Mock kernel does not implement it, so its KernelId and SolidHandle
// counters keep increasing across full rebuilds. A full rebuild
// (fromIndex == 0) resets a resettable kernel first so that two full
// rebuilds of the same tree hand out the same KernelIds in the same
// order (§8 invariant 1); an incremental
// rebuild never resets, since earlier features' cached OpResults still
// reference live solids in the kernel's existing state.
type resettable interface{ Reset() }

// Engine is the Rebuild Engine. It is not safe for concurrent use from
// multiple goroutines issuing mutations simultaneously — §5 specifies a
// single-threaded, synchronous core fed by one command at a time — but
// it does guard its own state so a concurrent read (e.g. FaceDataForFeature
// from a picking goroutine) during a rebuild observes a consistent
// snapshot rather than a torn one.
type Engine struct {
	mu sync.Mutex

	log      *tree.Log
	registry *operations.Registry
	kernel   kernel.Kernel
	datums   resolver.DatumRegistry

	results    map[types.FeatureId]*types.OpResult
	cacheKeys  map[types.FeatureId]uint64
	generation uint64

	chordalTolerance float64

	logger  telemetry.Logger
	metrics telemetry.Metrics
	tracer  telemetry.Tracer
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithUndoDepth bounds the undo/redo stacks (default tree.DefaultUndoDepth).
func WithUndoDepth(depth int) Option {
	return func(e *Engine) { e.log = tree.NewLog(e.log.Tree(), depth) }
}

// WithChordalTolerance sets the tessellation tolerance used for visible
// bodies and FaceDataForFeature (default 0.1).
func WithChordalTolerance(tol float64) Option {
	return func(e *Engine) { e.chordalTolerance = tol }
}

// WithTelemetry overrides the Noop logger/metrics/tracer.
func WithTelemetry(l telemetry.Logger, m telemetry.Metrics, tr telemetry.Tracer) Option {
	return func(e *Engine) { e.logger, e.metrics, e.tracer = l, m, tr }
}

// WithDatums overrides the default BuiltinDatums registry.
func WithDatums(d resolver.DatumRegistry) Option {
	return func(e *Engine) { e.datums = d }
}

// New constructs an Engine over an empty tree with k as its Kernel.
func New(k kernel.Kernel, opts ...Option) *Engine {
	e := &Engine{
		log:              tree.NewLog(tree.New(), tree.DefaultUndoDepth),
		registry:         operations.NewRegistry(),
		kernel:           k,
		datums:           BuiltinDatums{},
		results:          map[types.FeatureId]*types.OpResult{},
		cacheKeys:        map[types.FeatureId]uint64{},
		chordalTolerance: 0.1,
		logger:           telemetry.NewNoopLogger(),
		metrics:          telemetry.NewNoopMetrics(),
		tracer:           telemetry.NewNoopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadTree replaces the engine's tree wholesale (used by the file
// format loader) and triggers a full rebuild. The undo/redo log is
// cleared: a loaded project has no mutation history of its own.
func (e *Engine) LoadTree(ctx context.Context, t *tree.Tree) *ModelUpdate {
	e.mu.Lock()
	e.log = tree.NewLog(t, tree.DefaultUndoDepth)
	e.results = map[types.FeatureId]*types.OpResult{}
	e.cacheKeys = map[types.FeatureId]uint64{}
	e.mu.Unlock()
	return e.Rebuild(ctx, 0)
}

// Tree returns the current feature tree. Callers must not mutate it
// directly; all mutation goes through Do/Undo/Redo.
func (e *Engine) Tree() *tree.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Tree()
}

// Results returns the OpResult cached for id, if any.
func (e *Engine) Results(id types.FeatureId) (*types.OpResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.results[id]
	return r, ok
}

// Do applies cmd to the tree (§4.5 steps 1-3: validate, push the
// inverse onto the undo log, compute the earliest dirty feature) and
// then rebuilds from that point (step 4).
func (e *Engine) Do(ctx context.Context, cmd tree.Command) (*ModelUpdate, tree.Command, error) {
	e.mu.Lock()
	dirty, committed, err := e.log.Do(cmd)
	e.mu.Unlock()
	if err != nil {
		return nil, tree.Command{}, err
	}
	return e.Rebuild(ctx, dirty), committed, nil
}

// Undo pops the most recent inverse command, applies it, and rebuilds
// from the resulting dirty index (§8 invariant 2). ok is false when
// there is nothing to undo.
func (e *Engine) Undo(ctx context.Context) (*ModelUpdate, bool, error) {
	e.mu.Lock()
	dirty, ok, err := e.log.Undo()
	e.mu.Unlock()
	if err != nil || !ok {
		return nil, ok, err
	}
	return e.Rebuild(ctx, dirty), true, nil
}

// Redo is Undo's mirror (§8 invariant 3).
func (e *Engine) Redo(ctx context.Context) (*ModelUpdate, bool, error) {
	e.mu.Lock()
	dirty, ok, err := e.log.Redo()
	e.mu.Unlock()
	if err != nil || !ok {
		return nil, ok, err
	}
	return e.Rebuild(ctx, dirty), true, nil
}

// Rebuild replays the tree forward from fromIndex, reusing cached
// OpResults for everything before it untouched (§4.5). It is exported
// so a host can force a full rebuild (fromIndex == 0) independently of
// any particular mutation, e.g. after swapping the kernel.
func (e *Engine) Rebuild(ctx context.Context, fromIndex int) *ModelUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "rebuild")
	defer span.End()

	t := e.log.Tree()
	if fromIndex == 0 {
		if r, ok := e.kernel.(resettable); ok {
			r.Reset()
		}
	}

	prev := e.results
	newResults := make(map[types.FeatureId]*types.OpResult, len(prev))
	for i := 0; i < fromIndex && i < len(t.Features); i++ {
		if r, ok := prev[t.Features[i].ID]; ok {
			newResults[t.Features[i].ID] = r
		}
	}

	live := make(map[types.FeatureId]bool, len(t.Features))
	cancelled := false
	for i, f := range t.Features {
		live[f.ID] = true
		if i < fromIndex {
			continue
		}
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		pastCursor := t.ActiveIndex != nil && i >= *t.ActiveIndex
		if f.Suppressed || pastCursor {
			e.releaseSolid(ctx, prev[f.ID])
			delete(e.cacheKeys, f.ID)
			continue
		}

		cache := resultCache{tree: t, results: newResults}
		key := cacheKey(f.Op, cache, e.datums)

		if old, ok := prev[f.ID]; ok && !old.Failed() {
			if oldKey, ok2 := e.cacheKeys[f.ID]; ok2 && oldKey == key {
				newResults[f.ID] = old
				e.metrics.IncCounter("rebuild.cache_hit", 1, "feature", string(f.ID))
				continue
			}
			e.releaseSolid(ctx, old)
		}

		rc := operations.Context{FeatureID: f.ID, Cache: cache, Datums: e.datums, Kernel: e.kernel}
		result := operations.Apply(ctx, e.registry, rc, f.Op)
		newResults[f.ID] = result
		e.cacheKeys[f.ID] = key
		if result.Failed() {
			e.logger.Warn(ctx, "feature errored", "feature", string(f.ID), "errors", result.Errors)
		}
	}

	for id, old := range prev {
		if !live[id] {
			e.releaseSolid(ctx, old)
			delete(e.cacheKeys, id)
		}
	}

	e.results = newResults
	e.generation++

	visible := e.visibleBodies(t)
	vb := make([]VisibleBody, 0, len(visible))
	for _, id := range visible {
		r := e.results[id]
		if r == nil || r.Solid == nil {
			continue
		}
		mesh, err := e.kernel.Tessellate(ctx, *r.Solid, e.chordalTolerance)
		if err != nil {
			r.AddWarning("tessellate: " + err.Error())
			continue
		}
		vb = append(vb, VisibleBody{FeatureID: id, Mesh: mesh})
	}

	statuses := make([]FeatureStatus, 0, len(t.Features))
	for _, f := range t.Features {
		r := e.results[f.ID]
		if r == nil {
			continue
		}
		st := FeatureStatus{ID: f.ID, Warnings: r.Warnings}
		if len(r.Errors) > 0 {
			st.Error = r.Errors[0]
		}
		statuses = append(statuses, st)
	}

	elapsed := time.Since(start)
	e.metrics.RecordTimer("rebuild.duration", elapsed, "cancelled", boolTag(cancelled))

	return &ModelUpdate{
		Generation:    e.generation,
		RebuildMS:     elapsed.Milliseconds(),
		Cancelled:     cancelled,
		Statuses:      statuses,
		VisibleBodies: vb,
	}
}

func (e *Engine) releaseSolid(ctx context.Context, r *types.OpResult) {
	if r == nil || r.Solid == nil {
		return
	}
	_ = e.kernel.Release(ctx, *r.Solid)
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// FaceDataForFeature answers §6's selection query: for each triangle
// range of feature's tessellated mesh, a GeomRef a host's picking layer
// can construct to name that face persistently — role-based when the
// adapter assigned one, signature-based otherwise.
func (e *Engine) FaceDataForFeature(ctx context.Context, id types.FeatureId) ([]FaceSelection, error) {
	e.mu.Lock()
	r, ok := e.results[id]
	e.mu.Unlock()
	if !ok || r == nil {
		return nil, errFeatureNotFound(id)
	}
	if r.Solid == nil {
		return nil, errNoSolid(id)
	}
	mesh, err := e.kernel.Tessellate(ctx, *r.Solid, e.chordalTolerance)
	if err != nil {
		return nil, err
	}
	out := make([]FaceSelection, 0, len(mesh.FaceRanges))
	for _, fr := range mesh.FaceRanges {
		rec, ok := r.EntityTable[fr.KernelID]
		if !ok {
			continue
		}
		var sel types.Selector
		if rec.HasRole {
			sig := rec.Signature
			sel = types.RoleSelector(rec.Role, rec.RoleIndex, &sig)
		} else {
			sel = types.SignatureSelector(rec.Signature)
		}
		ref := types.GeomRef{
			Kind:     rec.Kind,
			Anchor:   types.FeatureOutputAnchor(id, types.MainOutput),
			Selector: sel,
			Policy:   types.ResolvePolicy{Strict: false},
		}
		out = append(out, FaceSelection{Range: fr, Ref: ref})
	}
	return out, nil
}
