// Package operations implements one adapter per Operation variant
// (§4.3): each resolves its feature's GeomRefs through the resolver,
// calls the kernel (or the sketch solver, for Sketch), tags every
// output entity with a semantic role and computed TopoSignature, and
// records Rewrites for entities it can prove were preserved unchanged
// from an input.
package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/resolver"
	"github.com/waffle-iron/core/internal/types"
)

// Context bundles everything an adapter needs beyond the Operation
// itself: where to resolve GeomRefs against and which kernel to drive.
// FeatureID identifies the feature being built, used to stamp
// ProvenanceRef.Feature on every DerivedFrom entry this adapter writes.
type Context struct {
	FeatureID types.FeatureId
	Cache     resolver.Cache
	Datums    resolver.DatumRegistry
	Kernel    kernel.Kernel
}

// resolve runs the resolver cascade and folds its outcome into result:
// on success it returns the resolved entity and records any BestEffort
// warning; on failure it records the error on result and reports ok=false
// so the adapter can skip work that depends on this reference without
// aborting the rest of the feature.
func (c Context) resolve(result *types.OpResult, ref types.GeomRef) (resolver.Result, bool) {
	res, warning, err := resolver.Resolve(ref, c.Cache, c.Datums)
	if err != nil {
		result.AddError(err.Error())
		return resolver.Result{}, false
	}
	if warning != "" {
		result.AddWarning(warning)
	}
	return res, true
}

// Adapter implements one Operation variant.
type Adapter interface {
	// Tag matches the Operation.Tag this adapter handles.
	Tag() string
	// Apply executes the operation and always returns a non-nil
	// OpResult: domain-level failures (resolution misses, kernel
	// errors) are recorded in its Errors/Warnings rather than returned
	// as a Go error, so the rebuild engine can mark one feature errored
	// without aborting the walk (§4.5).
	Apply(ctx context.Context, rc Context, op types.Operation) *types.OpResult
}

// Registry dispatches an Operation to its Adapter by tag.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a Registry with every built-in adapter registered.
func NewRegistry() *Registry {
	r := &Registry{adapters: map[string]Adapter{}}
	for _, a := range []Adapter{
		SketchAdapter{},
		ExtrudeAdapter{},
		RevolveAdapter{},
		FilletAdapter{},
		ChamferAdapter{},
		ShellAdapter{},
		BooleanAdapter{},
	} {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for its own Tag.
func (r *Registry) Register(a Adapter) { r.adapters[a.Tag()] = a }

// Get returns the adapter registered for tag, if any.
func (r *Registry) Get(tag string) (Adapter, bool) {
	a, ok := r.adapters[tag]
	return a, ok
}

// Apply dispatches op to its registered adapter. An operation tag with
// no registered adapter is itself a feature-level error, not a panic:
// it means a file was written by a newer build carrying an operation
// this one doesn't understand.
func Apply(ctx context.Context, reg *Registry, rc Context, op types.Operation) *types.OpResult {
	a, ok := reg.Get(op.Tag())
	if !ok {
		result := types.NewOpResult()
		result.AddError("operations: no adapter registered for \"" + op.Tag() + "\"")
		return result
	}
	return a.Apply(ctx, rc, op)
}
