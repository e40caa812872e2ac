package types

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"
)

// Hash64 is a deterministic structural hash used by the rebuild engine's
// pure-operation cache key (internal/rebuild). It is built on hash/fnv rather than a general-
// purpose hashing library: the inputs are always small, already-typed Go
// values and the only requirement is "same inputs, same hash, every run,"
// which FNV satisfies without pulling in anything heavier.
func Hash64(parts ...any) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		writePart(h, p)
	}
	return h.Sum64()
}

func writePart(h interface{ Write([]byte) (int, error) }, p any) {
	switch v := p.(type) {
	case string:
		_, _ = h.Write([]byte(v))
	case []byte:
		_, _ = h.Write(v)
	case uint64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	case int:
		writePart(h, uint64(v))
	case float64:
		writePart(h, math.Float64bits(v))
	case TopoKind:
		writePart(h, string(v))
	case SurfaceType:
		writePart(h, string(v))
	case Vec3:
		writePart(h, v.X)
		writePart(h, v.Y)
		writePart(h, v.Z)
	case BBox:
		writePart(h, v.Min)
		writePart(h, v.Max)
	case AdjacencyDigest:
		keys := make([]string, 0, len(v.Counts))
		for k := range v.Counts {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			writePart(h, k)
			writePart(h, v.Counts[TopoKind(k)])
		}
	case TopoSignature:
		writePart(h, v.Kind)
		writePart(h, v.Surface)
		writePart(h, v.Area)
		writePart(h, v.Centroid)
		writePart(h, v.Normal)
		writePart(h, v.BBox)
		writePart(h, v.Adjacency)
	default:
		// Deliberately unreachable for callers within this module: every
		// cache-key/signature input is one of the above. A panic here is
		// a programming error (§9), not a runtime condition to recover
		// from.
		panic("types.Hash64: unsupported part type")
	}
}
