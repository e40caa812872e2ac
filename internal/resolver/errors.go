// Package resolver implements the GeomRef resolution cascade (§4.4):
// locate the anchor, apply the selector (Role, falling through to
// Signature; Signature, falling through to Query; or Query directly),
// then apply the resolve policy. Resolve never mutates its inputs and
// caches nothing across calls — callers that need caching (the rebuild
// engine) own that themselves.
package resolver

import (
	"errors"
	"fmt"

	"github.com/waffle-iron/core/internal/types"
)

// ErrAnchorMissing is returned when a GeomRef's anchor feature does not
// exist in the supplied cache, is suppressed, lies past the active
// rebuild cursor, or names a datum the registry does not recognize.
var ErrAnchorMissing = errors.New("resolver: anchor missing")

// ErrAnchorErrored is returned when the anchor feature exists but its
// cached OpResult recorded an error, so it has no usable output entities.
var ErrAnchorErrored = errors.New("resolver: anchor feature errored")

// ErrKindMismatch is returned when an anchor's output has entities but
// none match the GeomRef's requested TopoKind.
var ErrKindMismatch = errors.New("resolver: kind mismatch")

// ErrRoleNotFound is returned when a Role selector's (role, index) pair
// has no match among the anchor's candidates and no Signature fallback
// is present. When the fallback is present and fails, its own error is
// returned instead.
var ErrRoleNotFound = errors.New("resolver: role not found")

// ErrSignatureBelowThreshold is returned when the best-scoring candidate
// against a Signature selector falls below the match threshold and no
// Query fallback is present (or Strict policy forbids accepting it).
var ErrSignatureBelowThreshold = errors.New("resolver: signature match below threshold")

// ErrNoCandidates is returned when the anchor's output carries no
// entities at all.
var ErrNoCandidates = errors.New("resolver: no candidates")

// ErrAmbiguous is returned under Strict policy when a Query selector's
// filters and tie-break leave more than one candidate standing.
var ErrAmbiguous = errors.New("resolver: ambiguous candidates")

// AmbiguousError carries the candidate count alongside ErrAmbiguous so
// callers can report it without re-deriving it.
type AmbiguousError struct {
	Candidates int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: %d candidates", ErrAmbiguous, e.Candidates)
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }
