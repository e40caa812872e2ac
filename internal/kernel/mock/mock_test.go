package mock

import (
	"context"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

func rectangleProfile(w, h float64) kernel.Profile {
	return kernel.Profile{
		Origin: types.Vec3{},
		Normal: types.Vec3{Z: 1},
		XAxis:  types.Vec3{X: 1},
		Outer: []types.Vec3{
			{X: 0, Y: 0},
			{X: w, Y: 0},
			{X: w, Y: h},
			{X: 0, Y: h},
		},
	}
}

func TestExtrudeRectangleTopologyMatchesBoxScenario(t *testing.T) {
	ctx := context.Background()
	k := New()

	h, err := k.Extrude(ctx, rectangleProfile(100, 50), kernel.ExtrudeParams{Depth: 25})
	require.NoError(t, err)

	faces, err := k.Faces(ctx, h)
	require.NoError(t, err)
	edges, err := k.Edges(ctx, h)
	require.NoError(t, err)
	verts, err := k.Vertices(ctx, h)
	require.NoError(t, err)

	require.Len(t, verts, 8)
	require.Len(t, edges, 12)
	require.Len(t, faces, 6)

	b := k.bodies[h]
	require.Equal(t, 2, b.eulerCharacteristic())

	var pts []types.Vec3
	for id := range b.Vertices {
		pts = append(pts, b.Vertices[id].Pos)
	}
	bbox := bboxOf(pts)
	require.InDelta(t, 0, bbox.Min.X, 1e-9)
	require.InDelta(t, 0, bbox.Min.Y, 1e-9)
	require.InDelta(t, 0, bbox.Min.Z, 1e-9)
	require.InDelta(t, 100, bbox.Max.X, 1e-9)
	require.InDelta(t, 50, bbox.Max.Y, 1e-9)
	require.InDelta(t, 25, bbox.Max.Z, 1e-9)
}

// plateWithHoleProfile is rectangleProfile with a square hole cut from
// its middle, the shape a sketch plate-with-cutout adapter produces
// once its inner loop nests under the outer one (kernel.Profile.Holes).
func plateWithHoleProfile(w, h, holeW, holeH float64) kernel.Profile {
	p := rectangleProfile(w, h)
	cx, cy := w/2, h/2
	p.Holes = [][]types.Vec3{{
		{X: cx - holeW/2, Y: cy - holeH/2},
		{X: cx - holeW/2, Y: cy + holeH/2},
		{X: cx + holeW/2, Y: cy + holeH/2},
		{X: cx + holeW/2, Y: cy - holeH/2},
	}}
	return p
}

// TestExtrudePlateWithHoleRaisesGenusAndPreservesCoverage checks that
// extruding a profile with one hole (§4.2 nesting feeding
// kernel.Profile.Holes) produces a through-hole solid: one more vertex
// loop and wall than the plain box (TestExtrudeRectangleTopologyMatchesBoxScenario's
// 8V/12E/6F), and an Euler characteristic of 0 rather than 2 (2-2g for
// one handle, per extrudePrism's doc comment), while every triangle the
// tessellator emits still lands in exactly one face's range.
func TestExtrudePlateWithHoleRaisesGenusAndPreservesCoverage(t *testing.T) {
	ctx := context.Background()
	k := New()
	h, err := k.Extrude(ctx, plateWithHoleProfile(100, 50, 20, 20), kernel.ExtrudeParams{Depth: 10})
	require.NoError(t, err)

	verts, err := k.Vertices(ctx, h)
	require.NoError(t, err)
	edges, err := k.Edges(ctx, h)
	require.NoError(t, err)
	faces, err := k.Faces(ctx, h)
	require.NoError(t, err)

	// Outer ring: 8 vertices, 12 edges, 4 walls + 2 caps. Hole ring adds
	// another 8 vertices, 12 edges (4 rim + 4 rim + 4 vertical), 4 walls,
	// plus the two bridge edges splicing the hole into each cap.
	require.Len(t, verts, 16)
	require.Len(t, edges, 26)
	require.Len(t, faces, 10)
	require.Equal(t, 0, k.bodies[h].eulerCharacteristic())

	mesh, err := k.Tessellate(ctx, h, 0.1)
	require.NoError(t, err)
	triCount := uint32(len(mesh.Indices) / 3)
	covered := make([]bool, triCount)
	for _, fr := range mesh.FaceRanges {
		for i := fr.TriStart; i < fr.TriStart+fr.TriCount; i++ {
			require.False(t, covered[i], "triangle %d covered by more than one face", i)
			covered[i] = true
		}
	}
	for i, c := range covered {
		require.True(t, c, "triangle %d not covered by any face", i)
	}
}

func TestRevolveFullAngleMatchesCylinderScenario(t *testing.T) {
	ctx := context.Background()
	k := New()

	profile := kernel.Profile{
		Origin: types.Vec3{},
		Normal: types.Vec3{Z: 1},
		XAxis:  types.Vec3{X: 1},
		Outer: []types.Vec3{
			{X: 0, Y: 0},
			{X: 10, Y: 0},
			{X: 10, Y: 20},
			{X: 0, Y: 20},
		},
	}
	h, err := k.Revolve(ctx, profile, kernel.RevolveParams{
		AxisOrigin: types.Vec3{},
		AxisDir:    types.Vec3{Z: 1},
		Angle:      2 * math.Pi,
	})
	require.NoError(t, err)

	verts, err := k.Vertices(ctx, h)
	require.NoError(t, err)
	edges, err := k.Edges(ctx, h)
	require.NoError(t, err)
	faces, err := k.Faces(ctx, h)
	require.NoError(t, err)

	require.Len(t, verts, 2)
	require.Len(t, edges, 3)
	require.Len(t, faces, 3)
	require.Equal(t, 2, k.bodies[h].eulerCharacteristic())
}

func TestTessellateCoversEveryFaceExactlyOnce(t *testing.T) {
	ctx := context.Background()
	k := New()
	h, err := k.Extrude(ctx, rectangleProfile(4, 3), kernel.ExtrudeParams{Depth: 2})
	require.NoError(t, err)

	mesh, err := k.Tessellate(ctx, h, 0.1)
	require.NoError(t, err)

	triCount := uint32(len(mesh.Indices) / 3)
	covered := make([]bool, triCount)
	for _, fr := range mesh.FaceRanges {
		for i := fr.TriStart; i < fr.TriStart+fr.TriCount; i++ {
			require.False(t, covered[i], "triangle %d covered by more than one face", i)
			covered[i] = true
		}
	}
	for i, c := range covered {
		require.True(t, c, "triangle %d not covered by any face", i)
	}
}

func TestFilletPreservesEulerCharacteristic(t *testing.T) {
	ctx := context.Background()
	k := New()
	h, err := k.Extrude(ctx, rectangleProfile(10, 10), kernel.ExtrudeParams{Depth: 5})
	require.NoError(t, err)

	edges, err := k.Edges(ctx, h)
	require.NoError(t, err)
	require.NotEmpty(t, edges)

	h2, err := k.Fillet(ctx, h, edges[:1], 1)
	require.NoError(t, err)
	require.Equal(t, 2, k.bodies[h2].eulerCharacteristic())
}

func TestBooleanUnionOfTwoPrismsPreservesEulerCharacteristic(t *testing.T) {
	ctx := context.Background()
	k := New()
	a, err := k.Extrude(ctx, rectangleProfile(10, 10), kernel.ExtrudeParams{Depth: 5})
	require.NoError(t, err)
	b, err := k.Extrude(ctx, rectangleProfile(10, 10), kernel.ExtrudeParams{Depth: 5, Direction: types.Vec3{Z: 1}})
	require.NoError(t, err)

	merged, err := k.Boolean(ctx, a, b, types.BooleanUnion)
	require.NoError(t, err)
	require.Equal(t, 2, k.bodies[merged].eulerCharacteristic())
}

// TestExtrudedPrismEulerCharacteristicProperty checks that extruding
// a regular polygon profile (3 to 12 sides) yields a closed solid with
// V-E+F=2, across a range of side counts and depths.
func TestExtrudedPrismEulerCharacteristicProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("extruded regular polygon prisms are closed solids", prop.ForAll(
		func(sides int, depth float64) bool {
			ctx := context.Background()
			k := New()
			outer := make([]types.Vec3, sides)
			for i := 0; i < sides; i++ {
				angle := 2 * math.Pi * float64(i) / float64(sides)
				outer[i] = types.Vec3{X: 10 * math.Cos(angle), Y: 10 * math.Sin(angle)}
			}
			profile := kernel.Profile{
				Normal: types.Vec3{Z: 1},
				XAxis:  types.Vec3{X: 1},
				Outer:  outer,
			}
			h, err := k.Extrude(ctx, profile, kernel.ExtrudeParams{Depth: depth})
			if err != nil {
				return false
			}
			return k.bodies[h].eulerCharacteristic() == 2
		},
		gen.IntRange(3, 12),
		gen.Float64Range(0.1, 100),
	))

	properties.TestingRun(t)
}

