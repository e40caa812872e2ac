package types

// This file implements the tagged-union JSON codec for the two genuine Go
// interfaces in the data model, Operation and SketchEntity. GeomRef,
// Anchor, and Selector are plain structs (Selector's "Kind" field is just
// data, not a Go interface), so the standard library's struct marshaling
// already round-trips them; only interface-valued fields need a "type"
// discriminator, mirroring runtime/agent/model/json.go's Kind-tagged Part
// encoding in the teacher.

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes an OperationEnvelope wrapping any Operation with an
// explicit "type" discriminant, the shape §4.7/§6 require ("Operations
// are tagged by type").
type OperationEnvelope struct {
	Op Operation
}

func (e OperationEnvelope) MarshalJSON() ([]byte, error) {
	if e.Op == nil {
		return []byte("null"), nil
	}
	payload, err := json.Marshal(e.Op)
	if err != nil {
		return nil, fmt.Errorf("marshal operation payload: %w", err)
	}
	return json.Marshal(struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}{Type: e.Op.Tag(), Data: payload})
}

func (e *OperationEnvelope) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	op, err := decodeOperation(tmp.Type, tmp.Data)
	if err != nil {
		return err
	}
	e.Op = op
	return nil
}

func decodeOperation(tag string, data json.RawMessage) (Operation, error) {
	switch tag {
	case "Sketch":
		var v Sketch
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode Sketch: %w", err)
		}
		return v, nil
	case "Extrude":
		var v Extrude
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode Extrude: %w", err)
		}
		return v, nil
	case "Revolve":
		var v Revolve
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode Revolve: %w", err)
		}
		return v, nil
	case "Fillet":
		var v Fillet
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode Fillet: %w", err)
		}
		return v, nil
	case "Chamfer":
		var v Chamfer
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode Chamfer: %w", err)
		}
		return v, nil
	case "Shell":
		var v Shell
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode Shell: %w", err)
		}
		return v, nil
	case "BooleanCombine":
		var v BooleanCombine
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode BooleanCombine: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: operation type %q", ErrUnknownTag, tag)
	}
}

// SketchEntityEnvelope is the analogous tagged envelope for SketchEntity.
type SketchEntityEnvelope struct {
	Entity SketchEntity
}

func (e SketchEntityEnvelope) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(e.Entity)
	if err != nil {
		return nil, fmt.Errorf("marshal sketch entity payload: %w", err)
	}
	return json.Marshal(struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}{Type: e.Entity.Tag(), Data: payload})
}

func (e *SketchEntityEnvelope) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	switch tmp.Type {
	case "Point":
		var v Point
		if err := json.Unmarshal(tmp.Data, &v); err != nil {
			return err
		}
		e.Entity = v
	case "Line":
		var v Line
		if err := json.Unmarshal(tmp.Data, &v); err != nil {
			return err
		}
		e.Entity = v
	case "Circle":
		var v Circle
		if err := json.Unmarshal(tmp.Data, &v); err != nil {
			return err
		}
		e.Entity = v
	case "Arc":
		var v Arc
		if err := json.Unmarshal(tmp.Data, &v); err != nil {
			return err
		}
		e.Entity = v
	default:
		return fmt.Errorf("%w: sketch entity type %q", ErrUnknownTag, tmp.Type)
	}
	return nil
}

// MarshalSketch encodes a Sketch's Entities using SketchEntityEnvelope so
// the interface slice round-trips through JSON without losing concrete
// types.
func (s Sketch) MarshalJSON() ([]byte, error) {
	type alias struct {
		PlaneRef    GeomRef                `json:"plane_ref"`
		Entities    []SketchEntityEnvelope `json:"entities"`
		Constraints []SketchConstraint     `json:"constraints"`
	}
	envs := make([]SketchEntityEnvelope, len(s.Entities))
	for i, e := range s.Entities {
		envs[i] = SketchEntityEnvelope{Entity: e}
	}
	return json.Marshal(alias{PlaneRef: s.PlaneRef, Entities: envs, Constraints: s.Constraints})
}

func (s *Sketch) UnmarshalJSON(data []byte) error {
	type alias struct {
		PlaneRef    GeomRef                `json:"plane_ref"`
		Entities    []SketchEntityEnvelope `json:"entities"`
		Constraints []SketchConstraint     `json:"constraints"`
	}
	var tmp alias
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	s.PlaneRef = tmp.PlaneRef
	s.Constraints = tmp.Constraints
	s.Entities = make([]SketchEntity, len(tmp.Entities))
	for i, e := range tmp.Entities {
		s.Entities[i] = e.Entity
	}
	return nil
}
