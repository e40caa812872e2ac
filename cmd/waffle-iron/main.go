// Command waffle-iron is a small headless driver for the modeling core:
// it builds a rectangular sketch, extrudes it into a solid, rebuilds
// the tree, and writes the resulting project to a .waffle file. It
// exists to exercise internal/rebuild, internal/tree, and
// internal/fileformat end to end the way cmd/demo exercised the
// teacher's agent runtime end to end, without any of the planner/tool
// machinery this module has no use for (see DESIGN.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/waffle-iron/core/internal/fileformat"
	"github.com/waffle-iron/core/internal/kernel/mock"
	"github.com/waffle-iron/core/internal/rebuild"
	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

func main() {
	out := flag.String("o", "part.waffle", "output project file path")
	width := flag.Float64("w", 20, "rectangle width (mm)")
	height := flag.Float64("h", 10, "rectangle height (mm)")
	depth := flag.Float64("d", 5, "extrude depth (mm)")
	flag.Parse()

	if err := run(*out, *width, *height, *depth); err != nil {
		fmt.Fprintln(os.Stderr, "waffle-iron:", err)
		os.Exit(1)
	}
}

func run(out string, width, height, depth float64) error {
	ctx := context.Background()
	eng := rebuild.New(mock.New())

	_, sketchCmd, err := eng.Do(ctx, tree.AddFeature(rectangleSketch(width, height), "Sketch1"))
	if err != nil {
		return fmt.Errorf("add sketch: %w", err)
	}
	update, _, err := eng.Do(ctx, tree.AddFeature(types.Extrude{
		SketchFeature: sketchCmd.FeatureID,
		ProfileIndex:  0,
		Depth:         depth,
	}, "Extrude1"))
	if err != nil {
		return fmt.Errorf("add extrude: %w", err)
	}
	for _, status := range update.Statuses {
		if status.Error != "" {
			return fmt.Errorf("feature %s failed: %s", status.ID, status.Error)
		}
	}

	data, err := fileformat.Save(eng.Tree(), fileformat.ProjectMeta{Name: "part", Units: "mm"})
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("wrote %s (%d features)\n", out, eng.Tree().Len())
	return nil
}

// rectangleSketch builds a closed, fully-constrained w x h rectangle
// on the XY datum plane, the same construction rebuild's own tests use.
func rectangleSketch(w, h float64) types.Sketch {
	p := func(id types.EntityLocalId, x, y float64) types.Point { return types.Point{ID: id, X: x, Y: y} }
	pts := []types.SketchEntity{p(1, 0, 0), p(2, w, 0), p(3, w, h), p(4, 0, h)}
	lines := []types.SketchEntity{
		types.Line{ID: 5, StartID: 1, EndID: 2},
		types.Line{ID: 6, StartID: 2, EndID: 3},
		types.Line{ID: 7, StartID: 3, EndID: 4},
		types.Line{ID: 8, StartID: 4, EndID: 1},
	}
	constraints := []types.SketchConstraint{
		{ID: 20, Kind: types.ConstraintCoincident, Entities: []types.EntityLocalId{1, 0}},
		{ID: 21, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{5}},
		{ID: 22, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{7}},
		{ID: 23, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{6}},
		{ID: 24, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{8}},
		{ID: 25, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{1, 2}, Value: w},
		{ID: 26, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{2, 3}, Value: h},
	}
	return types.Sketch{
		PlaneRef:    types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)},
		Entities:    append(pts, lines...),
		Constraints: constraints,
	}
}
