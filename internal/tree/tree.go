// Package tree owns the feature tree (§3): an ordered list of Feature
// records plus an optional rollback cursor, mutated only through the
// tagged Command union and its computed inverses (§4.6). Validate
// rejects forward references and cycles before a mutation ever touches
// the tree; Apply performs the mutation, and returns both the dirty
// index the rebuild engine should replay from and the canonical inverse
// command for the undo log.
package tree

import (
	"fmt"

	"github.com/waffle-iron/core/internal/types"
)

// Tree is the parametric recipe: an ordered feature list plus an
// optional active index (rollback cursor). The zero value is a valid
// empty tree.
type Tree struct {
	Features    []types.Feature
	ActiveIndex *int
}

// New returns an empty tree.
func New() *Tree { return &Tree{} }

// Len returns the number of features, including suppressed and
// post-rollback ones.
func (t *Tree) Len() int { return len(t.Features) }

// IndexOf returns id's position in the tree.
func (t *Tree) IndexOf(id types.FeatureId) (int, bool) {
	for i, f := range t.Features {
		if f.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Feature returns a copy of the feature at id.
func (t *Tree) Feature(id types.FeatureId) (types.Feature, bool) {
	i, ok := t.IndexOf(id)
	if !ok {
		return types.Feature{}, false
	}
	return t.Features[i], true
}

// Apply validates and performs cmd, returning the earliest index the
// rebuild engine must replay from, the canonical inverse command (to
// push on the undo log), and committed (cmd with FeatureID filled in
// for AddFeature). On validation failure the tree is left unchanged.
func (t *Tree) Apply(cmd Command) (dirtyFrom int, inverse Command, committed Command, err error) {
	switch cmd.Kind {
	case KindAddFeature:
		return t.applyAdd(cmd)
	case KindEditFeature:
		return t.applyEdit(cmd)
	case KindDeleteFeature:
		return t.applyDelete(cmd)
	case KindReorderFeature:
		return t.applyReorder(cmd)
	case KindRenameFeature:
		return t.applyRename(cmd)
	case KindSuppress:
		return t.applySuppress(cmd)
	case KindSetRollbackIndex:
		return t.applySetRollback(cmd)
	case kindRestoreFeature:
		return t.applyRestore(cmd)
	default:
		return 0, Command{}, cmd, fmt.Errorf("%w: %q", ErrUnknownCommandKind, cmd.Kind)
	}
}

func (t *Tree) applyAdd(cmd Command) (int, Command, Command, error) {
	id := types.NewFeatureId()
	name := cmd.Name
	if name == "" && cmd.Operation != nil {
		name = cmd.Operation.Tag()
	}
	f := types.Feature{ID: id, Name: name, Op: cmd.Operation}
	if cmd.Operation != nil {
		f.References = cmd.Operation.References()
	}
	selfIndex := len(t.Features)
	if cmd.Operation != nil {
		if err := t.validateDeps(cmd.Operation, selfIndex); err != nil {
			return 0, Command{}, cmd, err
		}
	}
	t.Features = append(t.Features, f)
	committed := cmd
	committed.FeatureID = id
	return selfIndex, DeleteFeature(id), committed, nil
}

func (t *Tree) applyEdit(cmd Command) (int, Command, Command, error) {
	i, ok := t.IndexOf(cmd.FeatureID)
	if !ok {
		return 0, Command{}, cmd, fmt.Errorf("%w: %q", ErrUnknownFeature, cmd.FeatureID)
	}
	if err := t.validateDeps(cmd.Operation, i); err != nil {
		return 0, Command{}, cmd, err
	}
	prevOp := t.Features[i].Op
	t.Features[i].Op = cmd.Operation
	if cmd.Operation != nil {
		t.Features[i].References = cmd.Operation.References()
	} else {
		t.Features[i].References = nil
	}
	return i, EditFeature(cmd.FeatureID, prevOp), cmd, nil
}

func (t *Tree) applyDelete(cmd Command) (int, Command, Command, error) {
	i, ok := t.IndexOf(cmd.FeatureID)
	if !ok {
		return 0, Command{}, cmd, fmt.Errorf("%w: %q", ErrUnknownFeature, cmd.FeatureID)
	}
	// A feature cannot be deleted while a later feature still depends on
	// it; that later reference would become a dangling AnchorMissing the
	// moment this delete lands, which §3's forward-reference invariant
	// is meant to prevent symmetrically.
	for j := i + 1; j < len(t.Features); j++ {
		for _, dep := range dependsOf(t.Features[j]) {
			if dep == cmd.FeatureID {
				return 0, Command{}, cmd, fmt.Errorf("%w: %q is referenced by %q", ErrCycleIntroduced, cmd.FeatureID, t.Features[j].ID)
			}
		}
	}
	removed := t.Features[i]
	t.Features = append(t.Features[:i:i], t.Features[i+1:]...)
	restore := Command{Kind: kindRestoreFeature, snapshot: &removed, snapshotIndex: i}
	return i, restore, cmd, nil
}

func (t *Tree) applyRestore(cmd Command) (int, Command, Command, error) {
	i := cmd.snapshotIndex
	if i < 0 || i > len(t.Features) {
		i = len(t.Features)
	}
	f := *cmd.snapshot
	t.Features = append(t.Features, types.Feature{})
	copy(t.Features[i+1:], t.Features[i:])
	t.Features[i] = f
	return i, DeleteFeature(f.ID), cmd, nil
}

func (t *Tree) applyReorder(cmd Command) (int, Command, Command, error) {
	oldIndex, ok := t.IndexOf(cmd.FeatureID)
	if !ok {
		return 0, Command{}, cmd, fmt.Errorf("%w: %q", ErrUnknownFeature, cmd.FeatureID)
	}
	newIndex := cmd.NewIndex
	if newIndex < 0 || newIndex >= len(t.Features) {
		return 0, Command{}, cmd, fmt.Errorf("%w: reorder target %d out of range", ErrUnknownFeature, newIndex)
	}
	if oldIndex == newIndex {
		return len(t.Features), Command{Kind: KindReorderFeature, FeatureID: cmd.FeatureID, NewIndex: oldIndex}, cmd, nil
	}

	moved := t.Features[oldIndex]
	without := append(append([]types.Feature{}, t.Features[:oldIndex]...), t.Features[oldIndex+1:]...)
	reordered := append(append([]types.Feature{}, without[:newIndex]...), append([]types.Feature{moved}, without[newIndex:]...)...)

	if err := validateOrder(reordered); err != nil {
		return 0, Command{}, cmd, err
	}
	t.Features = reordered

	dirty := oldIndex
	if newIndex < dirty {
		dirty = newIndex
	}
	return dirty, ReorderFeature(cmd.FeatureID, oldIndex), cmd, nil
}

func (t *Tree) applyRename(cmd Command) (int, Command, Command, error) {
	i, ok := t.IndexOf(cmd.FeatureID)
	if !ok {
		return 0, Command{}, cmd, fmt.Errorf("%w: %q", ErrUnknownFeature, cmd.FeatureID)
	}
	prev := t.Features[i].Name
	t.Features[i].Name = cmd.Name
	// Renaming never affects geometry: nothing downstream needs
	// replaying. len(Features) as the dirty index means "nothing to do."
	return len(t.Features), RenameFeature(cmd.FeatureID, prev), cmd, nil
}

func (t *Tree) applySuppress(cmd Command) (int, Command, Command, error) {
	i, ok := t.IndexOf(cmd.FeatureID)
	if !ok {
		return 0, Command{}, cmd, fmt.Errorf("%w: %q", ErrUnknownFeature, cmd.FeatureID)
	}
	prev := t.Features[i].Suppressed
	if prev == cmd.SuppressValue {
		// Suppress idempotence (§8.4): a no-op change triggers no rebuild.
		return len(t.Features), Suppress(cmd.FeatureID, prev), cmd, nil
	}
	t.Features[i].Suppressed = cmd.SuppressValue
	return i, Suppress(cmd.FeatureID, prev), cmd, nil
}

func (t *Tree) applySetRollback(cmd Command) (int, Command, Command, error) {
	if cmd.RollbackIndex != nil && (*cmd.RollbackIndex < 0 || *cmd.RollbackIndex > len(t.Features)) {
		return 0, Command{}, cmd, fmt.Errorf("%w: %d", ErrInvalidRollbackIndex, *cmd.RollbackIndex)
	}
	prev := t.ActiveIndex
	oldPos, newPos := len(t.Features), len(t.Features)
	if prev != nil {
		oldPos = *prev
	}
	if cmd.RollbackIndex != nil {
		newPos = *cmd.RollbackIndex
	}
	t.ActiveIndex = clonePtr(cmd.RollbackIndex)
	dirty := oldPos
	if newPos < dirty {
		dirty = newPos
	}
	return dirty, SetRollbackIndex(clonePtr(prev)), cmd, nil
}

func clonePtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// validateDeps checks that every FeatureId op depends on exists in the
// tree at a position strictly before selfIndex (§3: "forward references
// are illegal").
func (t *Tree) validateDeps(op types.Operation, selfIndex int) error {
	if op == nil {
		return nil
	}
	for _, dep := range op.DependsOn() {
		i, ok := t.IndexOf(dep)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFeature, dep)
		}
		if i >= selfIndex {
			return fmt.Errorf("%w: %q at %d references %q at %d", ErrForwardReference, "", selfIndex, dep, i)
		}
	}
	return nil
}

func dependsOf(f types.Feature) []types.FeatureId {
	if f.Op == nil {
		return nil
	}
	return f.Op.DependsOn()
}

// validateOrder checks that, after a reorder, every feature's
// dependencies still lie strictly before it. A violation here is a
// cycle the reorder introduced, not a plain forward reference recorded
// at authoring time (§7).
func validateOrder(features []types.Feature) error {
	pos := make(map[types.FeatureId]int, len(features))
	for i, f := range features {
		pos[f.ID] = i
	}
	for i, f := range features {
		for _, dep := range dependsOf(f) {
			if j, ok := pos[dep]; ok && j >= i {
				return fmt.Errorf("%w: %q would follow its dependency %q", ErrCycleIntroduced, f.ID, dep)
			}
		}
	}
	return nil
}
