// Package api is the host-facing command/event surface (§6): a tagged
// Command union a transport layer can serialize, a Service that executes
// commands against the Rebuild Engine and the sketch-session state
// machine, and a tagged Event union for what the core reports back.
//
// Nothing here generates a transport: §6 explicitly treats transport as a
// host concern, so this package exposes plain Go types and methods a host
// adapter (CLI, RPC server, in-process UI) wires up itself. See DESIGN.md
// for why this stays hand-written rather than design-first generated.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/waffle-iron/core/internal/types"
)

// CommandKind discriminates the tagged Command union. Names mirror §6's
// command surface exactly.
type CommandKind string

const (
	CmdAddFeature       CommandKind = "AddFeature"
	CmdEditFeature      CommandKind = "EditFeature"
	CmdDeleteFeature    CommandKind = "DeleteFeature"
	CmdReorderFeature   CommandKind = "ReorderFeature"
	CmdRenameFeature    CommandKind = "RenameFeature"
	CmdSuppress         CommandKind = "Suppress"
	CmdSetRollbackIndex CommandKind = "SetRollbackIndex"
	CmdUndo             CommandKind = "Undo"
	CmdRedo             CommandKind = "Redo"

	CmdBeginSketch     CommandKind = "BeginSketch"
	CmdAddSketchEntity CommandKind = "AddSketchEntity"
	CmdAddConstraint   CommandKind = "AddConstraint"
	CmdSolveSketch     CommandKind = "SolveSketch"
	CmdFinishSketch    CommandKind = "FinishSketch"

	CmdSaveProject CommandKind = "SaveProject"
	CmdLoadProject CommandKind = "LoadProject"
)

// Command is a tagged, data-shaped request from a host to the core.
// Only the fields relevant to Kind are meaningful; the rest are left
// zero. Command round-trips through JSON so a host can carry it across
// a process boundary if it chooses to.
type Command struct {
	Kind CommandKind

	FeatureID types.FeatureId
	Operation types.Operation

	Name          string
	NewIndex      int
	SuppressValue bool
	RollbackIndex *int

	SessionID  SessionId
	PlaneRef   *types.GeomRef
	Entity     types.SketchEntity
	Constraint *types.SketchConstraint

	ProjectData []byte
}

type commandWire struct {
	Type          CommandKind                  `json:"type"`
	FeatureID     types.FeatureId              `json:"feature_id,omitempty"`
	Operation     *types.OperationEnvelope     `json:"operation,omitempty"`
	Name          string                       `json:"name,omitempty"`
	NewIndex      int                          `json:"new_index,omitempty"`
	SuppressValue bool                         `json:"suppress_value,omitempty"`
	RollbackIndex *int                         `json:"rollback_index,omitempty"`
	SessionID     SessionId                    `json:"session_id,omitempty"`
	PlaneRef      *types.GeomRef               `json:"plane_ref,omitempty"`
	Entity        *types.SketchEntityEnvelope  `json:"entity,omitempty"`
	Constraint    *types.SketchConstraint      `json:"constraint,omitempty"`
	ProjectData   []byte                       `json:"project_data,omitempty"`
}

func (c Command) MarshalJSON() ([]byte, error) {
	w := commandWire{
		Type:          c.Kind,
		FeatureID:     c.FeatureID,
		Name:          c.Name,
		NewIndex:      c.NewIndex,
		SuppressValue: c.SuppressValue,
		RollbackIndex: c.RollbackIndex,
		SessionID:     c.SessionID,
		ProjectData:   c.ProjectData,
	}
	if c.Operation != nil {
		w.Operation = &types.OperationEnvelope{Op: c.Operation}
	}
	w.PlaneRef = c.PlaneRef
	if c.Entity != nil {
		w.Entity = &types.SketchEntityEnvelope{Entity: c.Entity}
	}
	w.Constraint = c.Constraint
	return json.Marshal(w)
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var w commandWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("api: decode command: %w", err)
	}
	*c = Command{
		Kind:          w.Type,
		FeatureID:     w.FeatureID,
		Name:          w.Name,
		NewIndex:      w.NewIndex,
		SuppressValue: w.SuppressValue,
		RollbackIndex: w.RollbackIndex,
		SessionID:     w.SessionID,
		ProjectData:   w.ProjectData,
	}
	if w.Operation != nil {
		c.Operation = w.Operation.Op
	}
	c.PlaneRef = w.PlaneRef
	if w.Entity != nil {
		c.Entity = w.Entity.Entity
	}
	c.Constraint = w.Constraint
	return nil
}
