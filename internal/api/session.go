package api

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/waffle-iron/core/internal/sketch"
	"github.com/waffle-iron/core/internal/types"
)

// SessionId identifies an in-progress sketch session between BeginSketch
// and FinishSketch (§6). It never appears in a persisted project: once
// FinishSketch commits, the session's entities and constraints live only
// inside the resulting Sketch feature.
type SessionId string

func newSessionId() SessionId { return SessionId(uuid.NewString()) }

// sketchSession accumulates entities and constraints for one in-progress
// sketch. It is not safe for concurrent use; Service serializes access
// with its own mutex.
type sketchSession struct {
	planeRef    types.GeomRef
	entities    []types.SketchEntity
	constraints []types.SketchConstraint
	seen        map[types.EntityLocalId]bool
	lastSolved  *types.SolvedSketch
}

func newSketchSession(planeRef types.GeomRef) *sketchSession {
	return &sketchSession{planeRef: planeRef, seen: map[types.EntityLocalId]bool{}}
}

// addEntity appends entity to the session. The host assigns LocalIds
// (matching how a feature's persisted Sketch entities already carry
// caller-chosen ids, §3); addEntity only rejects a duplicate.
func (s *sketchSession) addEntity(entity types.SketchEntity) error {
	if s.seen[entity.LocalId()] {
		return fmt.Errorf("%w: local id %d already used in this session", ErrDuplicateEntity, entity.LocalId())
	}
	s.seen[entity.LocalId()] = true
	s.entities = append(s.entities, entity)
	return nil
}

// addConstraint appends c, rejecting a reference to an entity this
// session has not seen yet (§3: constraints can only name entities
// already in the sketch).
func (s *sketchSession) addConstraint(c types.SketchConstraint) error {
	for _, id := range c.Entities {
		if !s.seen[id] {
			return fmt.Errorf("%w: local id %d", ErrUnknownEntity, id)
		}
	}
	s.constraints = append(s.constraints, c)
	return nil
}

func (s *sketchSession) toOperation() types.Sketch {
	return types.Sketch{
		PlaneRef:    s.planeRef,
		Entities:    append([]types.SketchEntity(nil), s.entities...),
		Constraints: append([]types.SketchConstraint(nil), s.constraints...),
	}
}

func (s *sketchSession) solve() types.SolvedSketch {
	op := s.toOperation()
	solved := sketch.Solve(&op)
	s.lastSolved = &solved
	return solved
}
