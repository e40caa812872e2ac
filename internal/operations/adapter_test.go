package operations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/kernel/mock"
	"github.com/waffle-iron/core/internal/operations"
	"github.com/waffle-iron/core/internal/resolver"
	"github.com/waffle-iron/core/internal/types"
)

// fakeCache mirrors resolver_test.go's fixture: a plain map standing in
// for the rebuild engine's per-feature OpResult cache.
type fakeCache map[types.FeatureId]resolver.FeatureState

func (c fakeCache) Feature(id types.FeatureId) (resolver.FeatureState, bool) {
	s, ok := c[id]
	return s, ok
}

// fakeDatums backs only the one datum these tests need.
type fakeDatums struct{}

func (fakeDatums) Datum(id types.Datum) (resolver.DatumEntity, bool) {
	if id == types.DatumOriginXY {
		return resolver.DatumEntity{Kind: types.KindFace, Normal: types.Vec3{Z: 1}, XAxis: types.Vec3{X: 1}}, true
	}
	return resolver.DatumEntity{}, false
}

// rectangleSketchAt builds a fully-constrained w*h rectangle whose
// lower-left corner sits at (x0, y0) in the working plane's local
// coordinates, on origin_xy.
func rectangleSketchAt(x0, y0, w, h float64) types.Sketch {
	p := func(id types.EntityLocalId, x, y float64) types.Point { return types.Point{ID: id, X: x, Y: y} }
	pts := []types.SketchEntity{p(1, x0, y0), p(2, x0+w, y0), p(3, x0+w, y0+h), p(4, x0, y0+h)}
	lines := []types.SketchEntity{
		types.Line{ID: 5, StartID: 1, EndID: 2},
		types.Line{ID: 6, StartID: 2, EndID: 3},
		types.Line{ID: 7, StartID: 3, EndID: 4},
		types.Line{ID: 8, StartID: 4, EndID: 1},
	}
	constraints := []types.SketchConstraint{
		{ID: 20, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{5}},
		{ID: 21, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{7}},
		{ID: 22, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{6}},
		{ID: 23, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{8}},
		{ID: 24, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{1, 2}, Value: w},
		{ID: 25, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{2, 3}, Value: h},
	}
	return types.Sketch{
		PlaneRef:    types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)},
		Entities:    append(pts, lines...),
		Constraints: constraints,
	}
}

// buildBox runs a Sketch feature then an Extrude feature through their
// adapters directly (bypassing the rebuild engine and tree), returning
// the populated cache and the extrude feature's id.
func buildBox(t *testing.T, reg *operations.Registry, k *mock.Kernel, cache fakeCache, sketchID, extrudeID types.FeatureId, x0, y0, w, h, depth float64) {
	t.Helper()
	ctx := context.Background()

	sketchOp := rectangleSketchAt(x0, y0, w, h)
	sResult := operations.Apply(ctx, reg, operations.Context{FeatureID: sketchID, Cache: cache, Datums: fakeDatums{}, Kernel: k}, sketchOp)
	require.False(t, sResult.Failed(), "sketch errors: %v", sResult.Errors)
	cache[sketchID] = resolver.FeatureState{Result: sResult}

	extrudeOp := types.Extrude{SketchFeature: sketchID, ProfileIndex: 0, Depth: depth}
	eResult := operations.Apply(ctx, reg, operations.Context{FeatureID: extrudeID, Cache: cache, Datums: fakeDatums{}, Kernel: k}, extrudeOp)
	require.False(t, eResult.Failed(), "extrude errors: %v", eResult.Errors)
	cache[extrudeID] = resolver.FeatureState{Result: eResult}
}

func lowestEdgeRef(feature types.FeatureId) types.GeomRef {
	return types.GeomRef{
		Kind:     types.KindEdge,
		Anchor:   types.FeatureOutputAnchor(feature, types.MainOutput),
		Selector: types.QuerySelector(nil, types.TieBreak{Mode: "Lowest", Property: "length"}),
		Policy:   types.ResolvePolicy{Strict: true},
	}
}

func TestFilletAppliesAndRewritesPassThroughFaces(t *testing.T) {
	ctx := context.Background()
	reg := operations.NewRegistry()
	k := mock.New()
	cache := fakeCache{}
	buildBox(t, reg, k, cache, "sketch1", "extrude1", 0, 0, 100, 50, 25)

	filletOp := types.Fillet{Edges: []types.GeomRef{lowestEdgeRef("extrude1")}, Radius: 5}
	result := operations.Apply(ctx, reg, operations.Context{FeatureID: "fillet1", Cache: cache, Datums: fakeDatums{}, Kernel: k}, filletOp)
	require.False(t, result.Failed(), "fillet errors: %v", result.Errors)
	require.NotNil(t, result.Solid)

	var filletFaces int
	for _, rec := range result.EntityTable {
		if rec.HasRole && rec.Role == types.RoleFilletFace {
			filletFaces++
		}
	}
	require.Equal(t, 1, filletFaces)
	require.NotEmpty(t, result.Rewrites, "untouched faces should be recorded as rewrites")
}

// triangleSketchAt builds an unconstrained 3-sided sketch (3 points, 3
// lines, zero constraints): Solve short-circuits on an empty constraint
// set (sketch.Solve, len(rows)==0) and returns the literal coordinates
// as given, so this always lands "UnderConstrained" rather than risking
// "SolveFailed" — good enough here since only OverConstrained/
// SolveFailed make SketchAdapter.Apply error.
func triangleSketchAt(x0, y0, w, h float64) types.Sketch {
	p := func(id types.EntityLocalId, x, y float64) types.Point { return types.Point{ID: id, X: x, Y: y} }
	pts := []types.SketchEntity{p(1, x0, y0), p(2, x0+w, y0), p(3, x0+w/2, y0+h)}
	lines := []types.SketchEntity{
		types.Line{ID: 5, StartID: 1, EndID: 2},
		types.Line{ID: 6, StartID: 2, EndID: 3},
		types.Line{ID: 7, StartID: 3, EndID: 1},
	}
	return types.Sketch{
		PlaneRef: types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)},
		Entities: append(pts, lines...),
	}
}

func TestFilletSurvivesSignatureFallbackAfterEdit(t *testing.T) {
	ctx := context.Background()
	reg := operations.NewRegistry()
	k := mock.New()
	cache := fakeCache{}
	buildBox(t, reg, k, cache, "sketch1", "extrude1", 0, 0, 100, 50, 25)

	extResult := cache["extrude1"].Result
	var targetID types.KernelId
	var targetSig types.TopoSignature
	for id, rec := range extResult.EntityTable {
		if rec.HasRole && rec.Role == types.RoleSideFace && rec.RoleIndex == 3 {
			targetID, targetSig = id, rec.Signature
		}
	}
	require.NotZero(t, targetID)

	// Persisted GeomRef as an operation-adapter would have written it:
	// Role-based selector with a cached Signature fallback.
	ref := types.GeomRef{
		Kind:     types.KindFace,
		Anchor:   types.FeatureOutputAnchor("extrude1", types.MainOutput),
		Selector: types.RoleSelector(types.RoleSideFace, 3, &targetSig),
		Policy:   types.ResolvePolicy{Strict: false},
	}

	// Edit the sketch from a rectangle (4 sides, role indices 0-3) to a
	// triangle (3 sides, role indices 0-2), reusing the same feature
	// ids so the cache now holds a genuinely rebuilt extrude1 rather
	// than a second, independent one. RoleSideFace index 3 no longer
	// exists anywhere in the rebuilt EntityTable, so applyRole's match
	// count drops to zero and it falls through to targetSig.
	triangleOp := triangleSketchAt(0, 0, 100, 50)
	sResult := operations.Apply(ctx, reg, operations.Context{FeatureID: "sketch1", Cache: cache, Datums: fakeDatums{}, Kernel: k}, triangleOp)
	require.False(t, sResult.Failed(), "edited sketch errors: %v", sResult.Errors)
	cache["sketch1"] = resolver.FeatureState{Result: sResult}

	extrudeOp := types.Extrude{SketchFeature: "sketch1", ProfileIndex: 0, Depth: 25}
	eResult := operations.Apply(ctx, reg, operations.Context{FeatureID: "extrude1", Cache: cache, Datums: fakeDatums{}, Kernel: k}, extrudeOp)
	require.False(t, eResult.Failed(), "edited extrude errors: %v", eResult.Errors)
	cache["extrude1"] = resolver.FeatureState{Result: eResult}

	for _, rec := range eResult.EntityTable {
		require.False(t, rec.HasRole && rec.Role == types.RoleSideFace && rec.RoleIndex == 3,
			"edited triangle should only have 3 side faces (indices 0-2)")
	}

	res, warning, err := resolver.Resolve(ref, cache, fakeDatums{})
	require.NoError(t, err)
	require.Contains(t, warning, "role not found, fell through to signature match")
	require.NotZero(t, res.KernelID)

	rec, ok := eResult.EntityTable[res.KernelID]
	require.True(t, ok, "resolved entity should belong to the rebuilt extrude1, not the stale pre-edit body")
	require.Equal(t, types.KindFace, rec.Kind)
}

func TestChamferApplies(t *testing.T) {
	ctx := context.Background()
	reg := operations.NewRegistry()
	k := mock.New()
	cache := fakeCache{}
	buildBox(t, reg, k, cache, "sketch1", "extrude1", 0, 0, 100, 50, 25)

	chamferOp := types.Chamfer{Edges: []types.GeomRef{lowestEdgeRef("extrude1")}, Distance: 3}
	result := operations.Apply(ctx, reg, operations.Context{FeatureID: "chamfer1", Cache: cache, Datums: fakeDatums{}, Kernel: k}, chamferOp)
	require.False(t, result.Failed(), "chamfer errors: %v", result.Errors)

	var chamferFaces int
	for _, rec := range result.EntityTable {
		if rec.HasRole && rec.Role == types.RoleChamferFace {
			chamferFaces++
		}
	}
	require.Equal(t, 1, chamferFaces)
}

func TestShellApplies(t *testing.T) {
	ctx := context.Background()
	reg := operations.NewRegistry()
	k := mock.New()
	cache := fakeCache{}
	buildBox(t, reg, k, cache, "sketch1", "extrude1", 0, 0, 100, 50, 25)

	extResult := cache["extrude1"].Result
	var topFace types.KernelId
	for id, rec := range extResult.EntityTable {
		if rec.HasRole && rec.Role == types.RoleEndCapPositive {
			topFace = id
		}
	}
	require.NotZero(t, topFace)

	faceRef := types.GeomRef{
		Kind:     types.KindFace,
		Anchor:   types.FeatureOutputAnchor("extrude1", types.MainOutput),
		Selector: types.RoleSelector(types.RoleEndCapPositive, 0, nil),
		Policy:   types.ResolvePolicy{Strict: true},
	}
	shellOp := types.Shell{
		Body: types.GeomRef{
			Kind:     types.KindSolid,
			Anchor:   types.FeatureOutputAnchor("extrude1", types.MainOutput),
			Policy:   types.ResolvePolicy{Strict: true},
		},
		FacesToRemove: []types.GeomRef{faceRef},
		Thickness:     2,
	}
	result := operations.Apply(ctx, reg, operations.Context{FeatureID: "shell1", Cache: cache, Datums: fakeDatums{}, Kernel: k}, shellOp)
	require.False(t, result.Failed(), "shell errors: %v", result.Errors)
	require.NotNil(t, result.Solid)

	var outer, inner int
	for _, rec := range result.EntityTable {
		if !rec.HasRole {
			continue
		}
		switch rec.Role {
		case types.RoleShellOuter:
			outer++
		case types.RoleShellInner:
			inner++
		}
	}
	require.Greater(t, outer, 0)
	require.Greater(t, inner, 0)
}

func TestBooleanCombineUnion(t *testing.T) {
	ctx := context.Background()
	reg := operations.NewRegistry()
	k := mock.New()
	cache := fakeCache{}
	buildBox(t, reg, k, cache, "sketchA", "extrudeA", 0, 0, 100, 50, 25)
	buildBox(t, reg, k, cache, "sketchB", "extrudeB", 100, 0, 100, 50, 25)

	booleanOp := types.BooleanCombine{
		A:  types.GeomRef{Kind: types.KindSolid, Anchor: types.FeatureOutputAnchor("extrudeA", types.MainOutput), Policy: types.ResolvePolicy{Strict: true}},
		B:  types.GeomRef{Kind: types.KindSolid, Anchor: types.FeatureOutputAnchor("extrudeB", types.MainOutput), Policy: types.ResolvePolicy{Strict: true}},
		Op: types.BooleanUnion,
	}
	result := operations.Apply(ctx, reg, operations.Context{FeatureID: "union1", Cache: cache, Datums: fakeDatums{}, Kernel: k}, booleanOp)
	require.False(t, result.Failed(), "boolean errors: %v", result.Errors)
	require.NotNil(t, result.Solid)

	var preserved int
	for _, rec := range result.EntityTable {
		if rec.HasRole && rec.Role == types.RoleBooleanPreserved {
			preserved++
		}
	}
	require.Greater(t, preserved, 0)
	require.NotEmpty(t, result.Rewrites)
}
