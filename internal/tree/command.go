package tree

import "github.com/waffle-iron/core/internal/types"

// CommandKind discriminates the tagged Command union. The public kinds
// mirror §6's command surface exactly; RestoreFeature is an internal
// primitive used only as the computed inverse of DeleteFeature (re-
// inserting a feature snapshot at its original position with its
// original FeatureId) and is never issued directly by a host.
type CommandKind string

const (
	KindAddFeature       CommandKind = "AddFeature"
	KindEditFeature      CommandKind = "EditFeature"
	KindDeleteFeature    CommandKind = "DeleteFeature"
	KindReorderFeature   CommandKind = "ReorderFeature"
	KindRenameFeature    CommandKind = "RenameFeature"
	KindSuppress         CommandKind = "Suppress"
	KindSetRollbackIndex CommandKind = "SetRollbackIndex"
	kindRestoreFeature   CommandKind = "RestoreFeature"
)

// Command is a tagged, data-shaped tree mutation (§4.6: "commands must be
// data, not closures, to remain serializable"). Only the fields relevant
// to Kind are meaningful; the rest are left zero.
type Command struct {
	Kind CommandKind

	// FeatureID names the target feature for every kind except
	// AddFeature, where it is empty on the way in and filled with the
	// freshly assigned FeatureId on the command Apply returns (so the
	// caller, and the computed inverse, can address the new feature).
	FeatureID types.FeatureId

	// Operation carries the payload for AddFeature/EditFeature.
	Operation types.Operation

	// Name carries AddFeature's initial display name (optional; a
	// default is generated from the operation tag when empty) and
	// RenameFeature's new name.
	Name string

	// NewIndex carries ReorderFeature's destination index.
	NewIndex int

	// SuppressValue carries Suppress's target flag.
	SuppressValue bool

	// RollbackIndex carries SetRollbackIndex's target cursor; nil means
	// "no rollback" (rollback cleared).
	RollbackIndex *int

	// snapshot carries the full feature record and original index for
	// RestoreFeature, the computed inverse of DeleteFeature.
	snapshot      *types.Feature
	snapshotIndex int
}

// AddFeature builds a command that appends a new feature running op,
// optionally named name (a default is generated if name is empty).
func AddFeature(op types.Operation, name string) Command {
	return Command{Kind: KindAddFeature, Operation: op, Name: name}
}

// EditFeature builds a command that replaces id's operation with op.
func EditFeature(id types.FeatureId, op types.Operation) Command {
	return Command{Kind: KindEditFeature, FeatureID: id, Operation: op}
}

// DeleteFeature builds a command that removes id from the tree.
func DeleteFeature(id types.FeatureId) Command {
	return Command{Kind: KindDeleteFeature, FeatureID: id}
}

// ReorderFeature builds a command that moves id to newIndex.
func ReorderFeature(id types.FeatureId, newIndex int) Command {
	return Command{Kind: KindReorderFeature, FeatureID: id, NewIndex: newIndex}
}

// RenameFeature builds a command that renames id to name.
func RenameFeature(id types.FeatureId, name string) Command {
	return Command{Kind: KindRenameFeature, FeatureID: id, Name: name}
}

// Suppress builds a command that sets id's suppressed flag.
func Suppress(id types.FeatureId, value bool) Command {
	return Command{Kind: KindSuppress, FeatureID: id, SuppressValue: value}
}

// SetRollbackIndex builds a command that sets the tree's active index.
// A nil index clears the rollback cursor.
func SetRollbackIndex(index *int) Command {
	return Command{Kind: KindSetRollbackIndex, RollbackIndex: index}
}
