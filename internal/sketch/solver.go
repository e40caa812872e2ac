package sketch

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/waffle-iron/core/internal/types"
)

const (
	maxIterations    = 50
	convergenceNorm  = 1e-9
	rankSingularTol  = 1e-7
	conflictResidual = 1e-4
)

// Solve runs Newton–Raphson (Gauss–Newton for the general, non-square
// case) over a Sketch's entities and constraints and classifies the
// result per §4.2.
func Solve(sketch *types.Sketch) types.SolvedSketch {
	ents := map[types.EntityLocalId]types.SketchEntity{}
	for _, e := range sketch.Entities {
		ents[e.LocalId()] = e
	}
	idx := buildParamIndex(sketch.Entities)
	x := idx.initial(sketch.Entities)

	rows, rowConstraint := buildRows(sketch.Constraints)
	if idx.size == 0 || len(rows) == 0 {
		return finish(idx, ents, sketch, x, types.SolveStatus{Kind: "UnderConstrained", DOF: idx.size})
	}

	converged := false
	var lastResidualNorm float64
	for iter := 0; iter < maxIterations; iter++ {
		r := evalResidual(idx, ents, x, rows)
		lastResidualNorm = vecNorm(r)
		if lastResidualNorm < convergenceNorm {
			converged = true
			break
		}
		j := numericJacobian(idx, ents, x, rows)
		dx, ok := gaussNewtonStep(j, r)
		if !ok {
			return finish(idx, ents, sketch, x, types.SolveStatus{Kind: "SolveFailed", Reason: "singular normal-equations system"})
		}
		for i := range x {
			x[i] -= dx[i]
		}
	}

	if !converged {
		if len(rows) > idx.size {
			return finish(idx, ents, sketch, x, types.SolveStatus{
				Kind:      "OverConstrained",
				Conflicts: conflictingConstraints(idx, ents, x, sketch.Constraints, rows, rowConstraint),
			})
		}
		return finish(idx, ents, sketch, x, types.SolveStatus{Kind: "SolveFailed", Reason: "did not converge"})
	}

	rank := estimateRank(numericJacobian(idx, ents, x, rows))
	dof := idx.size - rank
	if dof <= 0 {
		return finish(idx, ents, sketch, x, types.SolveStatus{Kind: "FullyConstrained"})
	}
	return finish(idx, ents, sketch, x, types.SolveStatus{Kind: "UnderConstrained", DOF: dof})
}

// constraintRow names one residual equation contributed by a single
// SketchConstraint: Component selects which element of that
// constraint's residual vector this row evaluates (most kinds
// contribute one row; Coincident/Symmetric*/Midpoint/Dragged
// contribute two, one per fixed coordinate).
type constraintRow struct {
	constraint types.SketchConstraint
	component  int
}

// componentCount is the fixed residual-vector length each
// ConstraintKind's function in residualFns returns.
var componentCount = map[types.ConstraintKind]int{
	types.ConstraintCoincident:         2,
	types.ConstraintHorizontal:         1,
	types.ConstraintVertical:           1,
	types.ConstraintParallel:           1,
	types.ConstraintPerpendicular:      1,
	types.ConstraintTangent:            1,
	types.ConstraintEqual:              1,
	types.ConstraintSymmetric:          2,
	types.ConstraintSymmetricH:         2,
	types.ConstraintSymmetricV:         2,
	types.ConstraintMidpoint:           2,
	types.ConstraintOnEntity:           1,
	types.ConstraintSameOrientation:    1,
	types.ConstraintDragged:            2,
	types.ConstraintDistance:           1,
	types.ConstraintAngle:              1,
	types.ConstraintRadius:             1,
	types.ConstraintDiameter:           1,
	types.ConstraintEqualAngle:         1,
	types.ConstraintRatio:              1,
	types.ConstraintEqualPointToLine:   1,
}

func buildRows(constraints []types.SketchConstraint) ([]constraintRow, []types.EntityLocalId) {
	var rows []constraintRow
	var owner []types.EntityLocalId
	for _, c := range constraints {
		n, ok := componentCount[c.Kind]
		if !ok {
			continue
		}
		for i := 0; i < n; i++ {
			rows = append(rows, constraintRow{constraint: c, component: i})
			owner = append(owner, c.ID)
		}
	}
	return rows, owner
}

func evalResidual(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, rows []constraintRow) []float64 {
	r := make([]float64, len(rows))
	cache := map[types.EntityLocalId][]float64{}
	for i, row := range rows {
		full, ok := cache[row.constraint.ID]
		if !ok {
			fn := residualFns[row.constraint.Kind]
			full = fn(idx, ents, x, row.constraint)
			cache[row.constraint.ID] = full
		}
		r[i] = full[row.component]
	}
	return r
}

func vecNorm(v []float64) float64 {
	var sum float64
	for _, e := range v {
		sum += e * e
	}
	return math.Sqrt(sum)
}

func numericJacobian(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, rows []constraintRow) *mat.Dense {
	n := len(x)
	m := len(rows)
	j := mat.NewDense(m, n, nil)
	const h = 1e-6
	base := evalResidual(idx, ents, x, rows)
	for col := 0; col < n; col++ {
		x[col] += h
		perturbed := evalResidual(idx, ents, x, rows)
		x[col] -= h
		for row := 0; row < m; row++ {
			j.Set(row, col, (perturbed[row]-base[row])/h)
		}
	}
	return j
}

// gaussNewtonStep solves (J^T J) dx = J^T r via gonum's LU-backed
// Solve, the Gaussian-elimination step §4.2 asks for.
func gaussNewtonStep(j *mat.Dense, r []float64) ([]float64, bool) {
	rows, cols := j.Dims()
	rv := mat.NewVecDense(rows, r)

	var jt mat.Dense
	jt.CloneFrom(j.T())

	var jtj mat.Dense
	jtj.Mul(&jt, j)
	// Levenberg-style damping keeps the normal-equations matrix
	// invertible near singular (rank-deficient / underconstrained)
	// configurations.
	for i := 0; i < cols; i++ {
		jtj.Set(i, i, jtj.At(i, i)+1e-10)
	}

	var jtr mat.VecDense
	jtr.MulVec(&jt, rv)

	var dx mat.VecDense
	if err := dx.SolveVec(&jtj, &jtr); err != nil {
		return nil, false
	}
	out := make([]float64, cols)
	for i := 0; i < cols; i++ {
		out[i] = dx.AtVec(i)
	}
	return out, true
}

func estimateRank(j *mat.Dense) int {
	var svd mat.SVD
	if !svd.Factorize(j, mat.SVDNone) {
		rows, cols := j.Dims()
		return min(rows, cols)
	}
	values := svd.Values(nil)
	rank := 0
	for _, v := range values {
		if v > rankSingularTol {
			rank++
		}
	}
	return rank
}

func conflictingConstraints(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, constraints []types.SketchConstraint, rows []constraintRow, rowConstraint []types.EntityLocalId) []types.EntityLocalId {
	r := evalResidual(idx, ents, x, rows)
	seen := map[types.EntityLocalId]bool{}
	var conflicts []types.EntityLocalId
	for i, v := range r {
		if math.Abs(v) > conflictResidual && !seen[rowConstraint[i]] {
			seen[rowConstraint[i]] = true
			conflicts = append(conflicts, rowConstraint[i])
		}
	}
	return conflicts
}

func finish(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, sketch *types.Sketch, x []float64, status types.SolveStatus) types.SolvedSketch {
	positions := map[types.EntityLocalId]types.Vec3{}
	for _, e := range sketch.Entities {
		if p, ok := e.(types.Point); ok {
			px, py := idx.point(x, p.ID)
			positions[p.ID] = types.Vec3{X: px, Y: py}
		}
	}
	var profiles []types.ClosedProfile
	if status.Kind == "FullyConstrained" || status.Kind == "UnderConstrained" {
		profiles = ExtractProfiles(sketch.Entities, positions)
	}
	return types.SolvedSketch{Positions: positions, Status: status, Profiles: profiles}
}
