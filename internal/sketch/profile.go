package sketch

import (
	"math"
	"sort"
	"strconv"

	"github.com/waffle-iron/core/internal/types"
)

const coincidenceQuantum = 1e-6

// halfEdge is one directed traversal step: FromKey/ToKey are quantized
// vertex keys, Entity/Reverse identify the underlying segment and its
// traversal direction.
type halfEdge struct {
	fromKey, toKey string
	from, to       types.Vec3
	entity         types.EntityLocalId
	reverse        bool
}

// ExtractProfiles builds the planar embedding of every non-construction
// entity's endpoints and enumerates its closed faces by the
// next-clockwise half-edge walk described in §4.2: at each vertex,
// order incident half-edges by angle and repeatedly take the next one
// clockwise from the reverse of the edge just arrived on, until the
// walk returns to its start.
func ExtractProfiles(entities []types.SketchEntity, positions map[types.EntityLocalId]types.Vec3) []types.ClosedProfile {
	segments := segmentEndpoints(entities, positions)
	if len(segments) == 0 {
		return nil
	}

	halfEdges := map[string][]halfEdge{}
	addHalf := func(he halfEdge) {
		halfEdges[he.fromKey] = append(halfEdges[he.fromKey], he)
	}
	for _, s := range segments {
		addHalf(halfEdge{fromKey: s.fromKey, toKey: s.toKey, from: s.from, to: s.to, entity: s.entity, reverse: false})
		addHalf(halfEdge{fromKey: s.toKey, toKey: s.fromKey, from: s.to, to: s.from, entity: s.entity, reverse: true})
	}
	for k := range halfEdges {
		sortByAngle(halfEdges[k])
	}

	visited := map[string]bool{} // key: fromKey+">"+toKey+entity+reverse
	heKey := func(he halfEdge) string {
		dir := "f"
		if he.reverse {
			dir = "r"
		}
		return he.fromKey + ">" + he.toKey + ":" + string(he.entity) + dir
	}

	var loops [][]halfEdge
	var startKeys []string
	for k := range halfEdges {
		startKeys = append(startKeys, k)
	}
	sort.Strings(startKeys)

	for _, k := range startKeys {
		for _, start := range halfEdges[k] {
			if visited[heKey(start)] {
				continue
			}
			loop := walkLoop(halfEdges, start, visited, heKey)
			// A bare circle is walked once per direction as a single
			// self-loop half-edge; only its forward walk is kept.
			selfLoop := len(loop) == 1 && loop[0].fromKey == loop[0].toKey && !loop[0].reverse
			if len(loop) >= 3 || selfLoop {
				loops = append(loops, loop)
			}
		}
	}

	var profiles []types.ClosedProfile
	var loopPoints [][]types.Vec3
	for _, loop := range loops {
		// A clockwise walk traces the unbounded outside of its connected
		// component, not a region of the sketch, so it is dropped; holes
		// are reclassified Inner by nestInnerLoops' containment pass.
		if signedArea(loop) < 0 {
			continue
		}
		winding := "Outer"
		segs := make([]types.ProfileSegment, len(loop))
		pts := make([]types.Vec3, len(loop))
		for i, he := range loop {
			segs[i] = types.ProfileSegment{EntityID: he.entity, Reverse: he.reverse}
			pts[i] = he.from
		}
		profiles = append(profiles, types.ClosedProfile{Segments: segs, Winding: winding, ParentIndex: -1})
		loopPoints = append(loopPoints, pts)
	}
	return nestInnerLoops(profiles, loopPoints)
}

type segment struct {
	fromKey, toKey string
	from, to       types.Vec3
	entity         types.EntityLocalId
}

func segmentEndpoints(entities []types.SketchEntity, positions map[types.EntityLocalId]types.Vec3) []segment {
	var out []segment
	for _, e := range entities {
		if e.IsConstruction() {
			continue
		}
		switch v := e.(type) {
		case types.Line:
			out = append(out, segment{
				from: positions[v.StartID], to: positions[v.EndID],
				fromKey: quantizeKey(positions[v.StartID]), toKey: quantizeKey(positions[v.EndID]),
				entity: v.ID,
			})
		case types.Arc:
			out = append(out, segment{
				from: positions[v.StartID], to: positions[v.EndID],
				fromKey: quantizeKey(positions[v.StartID]), toKey: quantizeKey(positions[v.EndID]),
				entity: v.ID,
			})
		case types.Circle:
			// A full circle is its own closed loop: both endpoints of
			// the synthetic self-segment are the same point, and its
			// traversal short-circuits in walkLoop after one step.
			c := positions[v.CenterID]
			rim := types.Vec3{X: c.X + v.Radius, Y: c.Y}
			out = append(out, segment{from: rim, to: rim, fromKey: quantizeKey(rim), toKey: quantizeKey(rim), entity: v.ID})
		}
	}
	return out
}

func quantizeKey(p types.Vec3) string {
	q := func(v float64) int64 { return int64(math.Round(v / coincidenceQuantum)) }
	return strconv.FormatInt(q(p.X), 10) + "," + strconv.FormatInt(q(p.Y), 10)
}

func sortByAngle(hes []halfEdge) {
	angle := func(he halfEdge) float64 {
		return math.Atan2(he.to.Y-he.from.Y, he.to.X-he.from.X)
	}
	sort.Slice(hes, func(i, j int) bool { return angle(hes[i]) < angle(hes[j]) })
}

// walkLoop repeatedly takes the next-clockwise half-edge (the one
// immediately before the reverse of the edge just arrived on, in
// angular order at the shared vertex) until it returns to the start.
func walkLoop(halfEdges map[string][]halfEdge, start halfEdge, visited map[string]bool, heKey func(halfEdge) string) []halfEdge {
	var loop []halfEdge
	current := start
	for {
		visited[heKey(current)] = true
		loop = append(loop, current)
		if current.fromKey == current.toKey && len(loop) == 1 {
			// Self-contained loop (a bare circle): one half-edge closes it.
			break
		}
		next := nextClockwise(halfEdges, current)
		if next == nil || heKey(*next) == heKey(start) {
			break
		}
		if visited[heKey(*next)] {
			break
		}
		current = *next
	}
	return loop
}

func nextClockwise(halfEdges map[string][]halfEdge, arrived halfEdge) *halfEdge {
	candidates := halfEdges[arrived.toKey]
	if len(candidates) == 0 {
		return nil
	}
	reverseAngle := math.Atan2(arrived.from.Y-arrived.to.Y, arrived.from.X-arrived.to.X)
	best := -1
	bestDelta := math.Inf(1)
	for i, he := range candidates {
		if he.toKey == arrived.fromKey && he.entity == arrived.entity {
			continue // don't immediately backtrack along the same segment
		}
		a := math.Atan2(he.to.Y-he.from.Y, he.to.X-he.from.X)
		delta := math.Mod(reverseAngle-a+4*math.Pi, 2*math.Pi)
		if delta < bestDelta {
			bestDelta = delta
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return &candidates[best]
}

func signedArea(loop []halfEdge) float64 {
	var sum float64
	for _, he := range loop {
		sum += he.from.X*he.to.Y - he.to.X*he.from.Y
	}
	return sum / 2
}

const arcSamples = 8
const circleSamples = 32

// LoopPoints samples a ClosedProfile's boundary into a 2D polygon in
// plane-local coordinates (Z always 0): straight for Line segments,
// arc-sampled for Arc and Circle segments. Operation adapters feeding a
// profile to the kernel's Extrude/Revolve need a point loop, not the
// entity-id boundary ExtractProfiles returns, and the kernel's own
// idealized topology has no notion of true curvature anyway (§4.1's
// Mock kernel works from polygonal approximations throughout).
func LoopPoints(entities []types.SketchEntity, positions map[types.EntityLocalId]types.Vec3, profile types.ClosedProfile) []types.Vec3 {
	byID := map[types.EntityLocalId]types.SketchEntity{}
	for _, e := range entities {
		byID[e.LocalId()] = e
	}
	var pts []types.Vec3
	for _, seg := range profile.Segments {
		pts = append(pts, samplePoints(byID[seg.EntityID], positions, seg.Reverse)...)
	}
	return pts
}

func samplePoints(e types.SketchEntity, positions map[types.EntityLocalId]types.Vec3, reverse bool) []types.Vec3 {
	switch v := e.(type) {
	case types.Line:
		if reverse {
			return []types.Vec3{positions[v.EndID]}
		}
		return []types.Vec3{positions[v.StartID]}
	case types.Arc:
		return sampleArc(positions[v.CenterID], positions[v.StartID], positions[v.EndID], reverse)
	case types.Circle:
		return sampleCircle(positions[v.CenterID], v.Radius)
	default:
		return nil
	}
}

// sampleArc samples from the segment's traversal-order start point up
// to (excluding) its end point, matching Line's convention of emitting
// only its "from" point per segment. The arc is assumed to sweep
// counterclockwise from Start to End (Arc carries no explicit sweep
// flag); traversing in reverse sweeps the same physical arc clockwise.
func sampleArc(center, start, end types.Vec3, reverse bool) []types.Vec3 {
	from, to := start, end
	if reverse {
		from, to = end, start
	}
	aFrom := math.Atan2(from.Y-center.Y, from.X-center.X)
	aTo := math.Atan2(to.Y-center.Y, to.X-center.X)
	r := math.Hypot(from.X-center.X, from.Y-center.Y)
	delta := aTo - aFrom
	if !reverse {
		for delta <= 0 {
			delta += 2 * math.Pi
		}
	} else {
		for delta >= 0 {
			delta -= 2 * math.Pi
		}
	}
	pts := make([]types.Vec3, 0, arcSamples)
	for i := 0; i < arcSamples; i++ {
		a := aFrom + delta*float64(i)/float64(arcSamples)
		pts = append(pts, types.Vec3{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)})
	}
	return pts
}

func sampleCircle(center types.Vec3, radius float64) []types.Vec3 {
	pts := make([]types.Vec3, 0, circleSamples)
	for i := 0; i < circleSamples; i++ {
		a := 2 * math.Pi * float64(i) / float64(circleSamples)
		pts = append(pts, types.Vec3{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)})
	}
	return pts
}

// nestInnerLoops matches each Inner loop to the smallest Outer loop
// whose boundary contains it (§4.2: "nest inner loops into the
// smallest containing outer loop"), recording the match as the Inner
// loop's ParentIndex.
//
// A bare circle's self-loop has from==to at its single half-edge (its
// synthetic segment never has a second distinct point to take a cross
// product against), so signedArea always computes it to exactly zero
// and the loop classifies as "Outer" above regardless of whether the
// sketch actually means it as a hole (a circular cutout is the most
// common hole shape there is). So before assigning parents, any Outer
// loop nested inside another Outer loop's boundary is reclassified
// Inner here: a true outer boundary never sits inside a second outer
// boundary in a well-formed sketch, so containment is the only signal
// available for a loop whose signed area carries no orientation.
func nestInnerLoops(profiles []types.ClosedProfile, loopPoints [][]types.Vec3) []types.ClosedProfile {
	for i := range profiles {
		if profiles[i].Winding == "Outer" && smallestContainer(profiles, loopPoints, i) >= 0 {
			profiles[i].Winding = "Inner"
		}
	}
	for i := range profiles {
		if profiles[i].Winding == "Inner" {
			profiles[i].ParentIndex = smallestContainer(profiles, loopPoints, i)
		}
	}
	return profiles
}

// smallestContainer returns the index of the smallest-area Outer loop
// (other than loopIdx itself) whose boundary contains loopIdx's
// centroid via a point-in-polygon test, or -1 if none does. Ties
// between multiple containing candidates break toward the smallest by
// absolute area, so a hole nested inside nested outer boundaries
// attaches to its immediate parent rather than the outermost one.
func smallestContainer(profiles []types.ClosedProfile, loopPoints [][]types.Vec3, loopIdx int) int {
	centroid := centroidOf(loopPoints[loopIdx])
	best := -1
	bestArea := math.Inf(1)
	for j, cand := range profiles {
		if j == loopIdx || cand.Winding != "Outer" || !pointInPolygon(centroid, loopPoints[j]) {
			continue
		}
		if area := math.Abs(polygonArea2D(loopPoints[j])); area < bestArea {
			bestArea = area
			best = j
		}
	}
	return best
}

func centroidOf(pts []types.Vec3) types.Vec3 {
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return types.Vec3{X: sx / n, Y: sy / n}
}

func polygonArea2D(pts []types.Vec3) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// pointInPolygon is the standard even-odd ray-casting containment test.
func pointInPolygon(pt types.Vec3, poly []types.Vec3) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			x := pj.X + (pt.Y-pi.Y)/(pj.Y-pi.Y)*(pi.X-pj.X)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
