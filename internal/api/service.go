package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/waffle-iron/core/internal/fileformat"
	"github.com/waffle-iron/core/internal/rebuild"
	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

// Service is the host-facing entry point: every method corresponds to
// one §6 command and returns the core's own result type plus a plain Go
// error (§7's propagation policy — tree-validation, resolver, kernel,
// and file-format errors surface as-is). Dispatch additionally exposes
// the whole surface as the tagged Command/Event pair for a host that
// prefers to route one request type across a transport boundary.
//
// Service owns the sketch-session state machine that the Rebuild Engine
// has no notion of: BeginSketch/AddSketchEntity/AddConstraint/SolveSketch
// accumulate session state in memory, and FinishSketch is the only point
// where that state becomes a committed Sketch feature on the engine.
type Service struct {
	mu       sync.Mutex
	engine   *rebuild.Engine
	sessions map[SessionId]*sketchSession
	meta     fileformat.ProjectMeta
}

// NewService wires a Service around an existing Rebuild Engine. meta is
// the project metadata SaveProject embeds and LoadProject overwrites.
func NewService(engine *rebuild.Engine, meta fileformat.ProjectMeta) *Service {
	return &Service{
		engine:   engine,
		sessions: map[SessionId]*sketchSession{},
		meta:     meta,
	}
}

// AddFeature appends a new feature running op to the tree.
func (s *Service) AddFeature(ctx context.Context, op types.Operation, name string) (*rebuild.ModelUpdate, types.FeatureId, error) {
	update, committed, err := s.engine.Do(ctx, tree.AddFeature(op, name))
	if err != nil {
		return nil, "", err
	}
	return update, committed.FeatureID, nil
}

// EditFeature replaces id's operation with op.
func (s *Service) EditFeature(ctx context.Context, id types.FeatureId, op types.Operation) (*rebuild.ModelUpdate, error) {
	update, _, err := s.engine.Do(ctx, tree.EditFeature(id, op))
	return update, err
}

// DeleteFeature removes id from the tree.
func (s *Service) DeleteFeature(ctx context.Context, id types.FeatureId) (*rebuild.ModelUpdate, error) {
	update, _, err := s.engine.Do(ctx, tree.DeleteFeature(id))
	return update, err
}

// ReorderFeature moves id to newIndex.
func (s *Service) ReorderFeature(ctx context.Context, id types.FeatureId, newIndex int) (*rebuild.ModelUpdate, error) {
	update, _, err := s.engine.Do(ctx, tree.ReorderFeature(id, newIndex))
	return update, err
}

// RenameFeature renames id to name.
func (s *Service) RenameFeature(ctx context.Context, id types.FeatureId, name string) (*rebuild.ModelUpdate, error) {
	update, _, err := s.engine.Do(ctx, tree.RenameFeature(id, name))
	return update, err
}

// Suppress sets id's suppressed flag.
func (s *Service) Suppress(ctx context.Context, id types.FeatureId, value bool) (*rebuild.ModelUpdate, error) {
	update, _, err := s.engine.Do(ctx, tree.Suppress(id, value))
	return update, err
}

// SetRollbackIndex moves the tree's rollback cursor; a nil index clears it.
func (s *Service) SetRollbackIndex(ctx context.Context, index *int) (*rebuild.ModelUpdate, error) {
	update, _, err := s.engine.Do(ctx, tree.SetRollbackIndex(index))
	return update, err
}

// Undo pops and applies the most recent inverse command. ok is false
// when there is nothing to undo.
func (s *Service) Undo(ctx context.Context) (*rebuild.ModelUpdate, bool, error) {
	return s.engine.Undo(ctx)
}

// Redo is Undo's mirror.
func (s *Service) Redo(ctx context.Context) (*rebuild.ModelUpdate, bool, error) {
	return s.engine.Redo(ctx)
}

// BeginSketch opens a new sketch session on planeRef and returns its id.
func (s *Service) BeginSketch(planeRef types.GeomRef) SessionId {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newSessionId()
	s.sessions[id] = newSketchSession(planeRef)
	return id
}

// AddSketchEntity appends entity to session's in-progress sketch.
func (s *Service) AddSketchEntity(session SessionId, entity types.SketchEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[session]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSession, session)
	}
	return sess.addEntity(entity)
}

// AddConstraint appends c to session's in-progress sketch.
func (s *Service) AddConstraint(session SessionId, c types.SketchConstraint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[session]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSession, session)
	}
	return sess.addConstraint(c)
}

// SolveSketch runs the constraint solver over session's current entities
// and constraints without committing a feature (§4.2); a host calls this
// to preview the sketch as the user edits it.
func (s *Service) SolveSketch(session SessionId) (types.SolvedSketch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[session]
	if !ok {
		return types.SolvedSketch{}, fmt.Errorf("%w: %q", ErrUnknownSession, session)
	}
	return sess.solve(), nil
}

// FinishSketch commits session's entities and constraints as a new Sketch
// feature and discards the session. name is the new feature's display
// name (optional).
func (s *Service) FinishSketch(ctx context.Context, session SessionId, name string) (*rebuild.ModelUpdate, types.FeatureId, error) {
	s.mu.Lock()
	sess, ok := s.sessions[session]
	if !ok {
		s.mu.Unlock()
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownSession, session)
	}
	op := sess.toOperation()
	delete(s.sessions, session)
	s.mu.Unlock()

	update, committed, err := s.engine.Do(ctx, tree.AddFeature(op, name))
	if err != nil {
		return nil, "", err
	}
	return update, committed.FeatureID, nil
}

// SaveProject encodes the current tree and project metadata as a
// project-file document.
func (s *Service) SaveProject(_ context.Context) (string, error) {
	s.mu.Lock()
	meta := s.meta
	s.mu.Unlock()
	data, err := fileformat.Save(s.engine.Tree(), meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadProject replaces the engine's tree with data's contents and
// triggers a full rebuild.
func (s *Service) LoadProject(ctx context.Context, data string) (*rebuild.ModelUpdate, error) {
	t, meta, err := fileformat.Load([]byte(data))
	if err != nil {
		return nil, err
	}
	update := s.engine.LoadTree(ctx, t)
	s.mu.Lock()
	s.meta = meta
	s.mu.Unlock()
	return update, nil
}

// FaceDataForFeature answers the selection query (§6): for each
// tessellated face of feature, the triangle range and a constructed
// GeomRef a picking layer can persist.
func (s *Service) FaceDataForFeature(ctx context.Context, feature types.FeatureId) ([]rebuild.FaceSelection, error) {
	return s.engine.FaceDataForFeature(ctx, feature)
}

// Dispatch routes cmd to the matching Service method for a host that
// prefers one request/response entry point over per-command methods
// (e.g. a generic RPC handler). It returns the Event the tagged Event
// union names for this command when one applies (every tree mutation
// produces ModelUpdated; SolveSketch produces SketchSolved), plus reply,
// the direct return value of the matching Service method: AddFeature's
// and FinishSketch's FeatureId, Undo's and Redo's ok flag, BeginSketch's
// SketchSession, SolveSketch's SolvedSketch (alongside its event), and
// SaveProject's string. reply is nil for every other command, and
// AddSketchEntity/AddConstraint return a zero Event as well.
func (s *Service) Dispatch(ctx context.Context, cmd Command) (event Event, reply any, err error) {
	switch cmd.Kind {
	case CmdAddFeature:
		update, id, err := s.AddFeature(ctx, cmd.Operation, cmd.Name)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), id, nil
	case CmdEditFeature:
		update, err := s.EditFeature(ctx, cmd.FeatureID, cmd.Operation)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), nil, nil
	case CmdDeleteFeature:
		update, err := s.DeleteFeature(ctx, cmd.FeatureID)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), nil, nil
	case CmdReorderFeature:
		update, err := s.ReorderFeature(ctx, cmd.FeatureID, cmd.NewIndex)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), nil, nil
	case CmdRenameFeature:
		update, err := s.RenameFeature(ctx, cmd.FeatureID, cmd.Name)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), nil, nil
	case CmdSuppress:
		update, err := s.Suppress(ctx, cmd.FeatureID, cmd.SuppressValue)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), nil, nil
	case CmdSetRollbackIndex:
		update, err := s.SetRollbackIndex(ctx, cmd.RollbackIndex)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), nil, nil
	case CmdUndo:
		update, ok, err := s.Undo(ctx)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), ok, nil
	case CmdRedo:
		update, ok, err := s.Redo(ctx)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), ok, nil
	case CmdBeginSketch:
		var planeRef types.GeomRef
		if cmd.PlaneRef != nil {
			planeRef = *cmd.PlaneRef
		}
		return Event{}, s.BeginSketch(planeRef), nil
	case CmdAddSketchEntity:
		if err := s.AddSketchEntity(cmd.SessionID, cmd.Entity); err != nil {
			return Event{}, nil, err
		}
		return Event{}, nil, nil
	case CmdAddConstraint:
		var c types.SketchConstraint
		if cmd.Constraint != nil {
			c = *cmd.Constraint
		}
		if err := s.AddConstraint(cmd.SessionID, c); err != nil {
			return Event{}, nil, err
		}
		return Event{}, nil, nil
	case CmdSolveSketch:
		solved, err := s.SolveSketch(cmd.SessionID)
		if err != nil {
			return Event{}, nil, err
		}
		return SketchSolvedEvent(cmd.SessionID, solved), solved, nil
	case CmdFinishSketch:
		update, id, err := s.FinishSketch(ctx, cmd.SessionID, cmd.Name)
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), id, nil
	case CmdSaveProject:
		data, err := s.SaveProject(ctx)
		if err != nil {
			return Event{}, nil, err
		}
		return Event{}, data, nil
	case CmdLoadProject:
		update, err := s.LoadProject(ctx, string(cmd.ProjectData))
		if err != nil {
			return Event{}, nil, err
		}
		return ModelUpdatedEvent(update), nil, nil
	default:
		return Event{}, nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}
