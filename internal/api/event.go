package api

import (
	"github.com/waffle-iron/core/internal/rebuild"
	"github.com/waffle-iron/core/internal/types"
)

// EventKind discriminates the tagged Event union (§6).
type EventKind string

const (
	EventModelUpdated     EventKind = "ModelUpdated"
	EventSketchSolved     EventKind = "SketchSolved"
	EventSelectionChanged EventKind = "SelectionChanged"
	EventError            EventKind = "Error"
)

// SketchSolvedPayload is the SketchSolved event's data: the session it
// belongs to and the solver's classification, positions, and extracted
// profiles (§4.2/§6).
type SketchSolvedPayload struct {
	SessionID SessionId
	Solved    types.SolvedSketch
}

// SelectionChangedPayload names the GeomRefs a host's selection just
// settled on.
type SelectionChangedPayload struct {
	Selected []types.GeomRef
}

// ErrorPayload carries a catastrophic failure (§6): a rejected command or
// a corrupted file. FeatureID is set when the failure can be attributed
// to one feature.
type ErrorPayload struct {
	Message   string
	FeatureID *types.FeatureId
}

// Event is a tagged, data-shaped notification from the core to a host.
// Only the field matching Kind is populated.
type Event struct {
	Kind EventKind

	Model     *rebuild.ModelUpdate
	Solved    *SketchSolvedPayload
	Selection *SelectionChangedPayload
	Err       *ErrorPayload
}

// ModelUpdatedEvent wraps a rebuild engine ModelUpdate as an Event.
func ModelUpdatedEvent(m *rebuild.ModelUpdate) Event {
	return Event{Kind: EventModelUpdated, Model: m}
}

// SketchSolvedEvent wraps a solve outcome as an Event.
func SketchSolvedEvent(session SessionId, solved types.SolvedSketch) Event {
	return Event{Kind: EventSketchSolved, Solved: &SketchSolvedPayload{SessionID: session, Solved: solved}}
}

// SelectionChangedEvent wraps a selection update as an Event.
func SelectionChangedEvent(selected []types.GeomRef) Event {
	return Event{Kind: EventSelectionChanged, Selection: &SelectionChangedPayload{Selected: selected}}
}

// ErrorEvent wraps a catastrophic failure as an Event. A host transport
// layer calls this to translate a Go error into the wire-level Error
// event (§6); the Service methods themselves return plain Go errors.
func ErrorEvent(err error, featureID *types.FeatureId) Event {
	return Event{Kind: EventError, Err: &ErrorPayload{Message: err.Error(), FeatureID: featureID}}
}
