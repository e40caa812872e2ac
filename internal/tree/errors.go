package tree

import "errors"

// Tree-validation errors (§7): a mutation that fails one of these is
// rejected outright and the tree is left unchanged.
var (
	ErrUnknownFeature       = errors.New("tree: unknown feature")
	ErrForwardReference     = errors.New("tree: forward reference")
	ErrCycleIntroduced      = errors.New("tree: cycle introduced")
	ErrInvalidRollbackIndex = errors.New("tree: invalid rollback index")
	ErrUnknownCommandKind   = errors.New("tree: unknown command kind")
)
