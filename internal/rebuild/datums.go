package rebuild

import (
	"github.com/waffle-iron/core/internal/resolver"
	"github.com/waffle-iron/core/internal/types"
)

// BuiltinDatums is the standard resolver.DatumRegistry (§6): the three
// principal planes, the origin point, and the three principal axes.
type BuiltinDatums struct{}

var _ resolver.DatumRegistry = BuiltinDatums{}

// Datum resolves one of the seven built-in identifiers; any other value
// reports ok=false, which the resolver turns into ErrAnchorMissing.
func (BuiltinDatums) Datum(id types.Datum) (resolver.DatumEntity, bool) {
	switch id {
	case types.DatumOriginXY:
		return resolver.DatumEntity{Kind: types.KindFace, Normal: types.Vec3{Z: 1}, XAxis: types.Vec3{X: 1}}, true
	case types.DatumOriginYZ:
		return resolver.DatumEntity{Kind: types.KindFace, Normal: types.Vec3{X: 1}, XAxis: types.Vec3{Y: 1}}, true
	case types.DatumOriginXZ:
		return resolver.DatumEntity{Kind: types.KindFace, Normal: types.Vec3{Y: -1}, XAxis: types.Vec3{X: 1}}, true
	case types.DatumOrigin:
		return resolver.DatumEntity{Kind: types.KindVertex}, true
	case types.DatumXAxis:
		return resolver.DatumEntity{Kind: types.KindEdge, Direction: types.Vec3{X: 1}}, true
	case types.DatumYAxis:
		return resolver.DatumEntity{Kind: types.KindEdge, Direction: types.Vec3{Y: 1}}, true
	case types.DatumZAxis:
		return resolver.DatumEntity{Kind: types.KindEdge, Direction: types.Vec3{Z: 1}}, true
	default:
		return resolver.DatumEntity{}, false
	}
}
