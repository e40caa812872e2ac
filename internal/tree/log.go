package tree

// DefaultUndoDepth is the default bound on the undo/redo stacks (§4.6).
const DefaultUndoDepth = 100

// Log wraps a Tree with a bounded, invertible command history (§4.6).
// Do pushes the canonical inverse of every successful mutation onto the
// undo stack and clears the redo stack; Undo/Redo pop-apply-repush their
// way through the history symmetrically.
type Log struct {
	tree  *Tree
	depth int
	undo  []Command
	redo  []Command
}

// NewLog wraps tree with an undo/redo log bounded to depth entries. A
// non-positive depth falls back to DefaultUndoDepth.
func NewLog(t *Tree, depth int) *Log {
	if depth <= 0 {
		depth = DefaultUndoDepth
	}
	return &Log{tree: t, depth: depth}
}

// Tree returns the wrapped tree.
func (l *Log) Tree() *Tree { return l.tree }

// CanUndo reports whether Undo has anything to apply.
func (l *Log) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether Redo has anything to apply.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// Do validates and applies cmd against the wrapped tree. On success it
// pushes the computed inverse onto the undo stack, clears the redo
// stack, and returns the dirty index the rebuild engine should replay
// from plus the committed command (FeatureID filled in for AddFeature).
func (l *Log) Do(cmd Command) (dirtyFrom int, committed Command, err error) {
	dirty, inverse, committed, err := l.tree.Apply(cmd)
	if err != nil {
		return 0, Command{}, err
	}
	l.pushUndo(inverse)
	l.redo = nil
	return dirty, committed, nil
}

// Undo pops the most recent inverse command and applies it, pushing its
// own computed inverse (the redo command) onto the redo stack. ok is
// false when there is nothing to undo.
func (l *Log) Undo() (dirtyFrom int, ok bool, err error) {
	if len(l.undo) == 0 {
		return 0, false, nil
	}
	n := len(l.undo) - 1
	cmd := l.undo[n]
	l.undo = l.undo[:n]
	dirty, redoCmd, _, err := l.tree.Apply(cmd)
	if err != nil {
		// The tree rejected its own previously-computed inverse: a
		// programming error (§9), not a recoverable runtime condition.
		// Put the popped entry back so the log stays consistent.
		l.undo = append(l.undo, cmd)
		return 0, false, err
	}
	l.pushRedo(redoCmd)
	return dirty, true, nil
}

// Redo is Undo's mirror: it pops the most recent redo command, applies
// it, and pushes its computed inverse back onto the undo stack.
func (l *Log) Redo() (dirtyFrom int, ok bool, err error) {
	if len(l.redo) == 0 {
		return 0, false, nil
	}
	n := len(l.redo) - 1
	cmd := l.redo[n]
	l.redo = l.redo[:n]
	dirty, undoCmd, _, err := l.tree.Apply(cmd)
	if err != nil {
		l.redo = append(l.redo, cmd)
		return 0, false, err
	}
	l.pushUndo(undoCmd)
	return dirty, true, nil
}

func (l *Log) pushUndo(cmd Command) {
	l.undo = append(l.undo, cmd)
	if len(l.undo) > l.depth {
		l.undo = l.undo[len(l.undo)-l.depth:]
	}
}

func (l *Log) pushRedo(cmd Command) {
	l.redo = append(l.redo, cmd)
	if len(l.redo) > l.depth {
		l.redo = l.redo[len(l.redo)-l.depth:]
	}
}
