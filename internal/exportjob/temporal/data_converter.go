package temporal

import (
	"encoding/json"
	"fmt"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"

	"github.com/waffle-iron/core/internal/exportjob"
)

// exportPayloadConverter wraps Temporal's default JSON payload converter
// and rehydrates an `any`-typed workflow/activity parameter into the
// concrete exportjob type it was marshaled from.
//
// Every ActivityDefinition and WorkflowDefinition this package registers
// has the Go signature func(ctx, input any) (any, error) (exportjob's
// Engine interface is deliberately untyped so it doesn't import any one
// workflow's domain types), so Temporal's default converter would decode
// the `input any` parameter as a generic map[string]any on every replay,
// and TessellateAndExport's own `input.(Request)` type assertion would
// always fail. Grounded on runtime/agent/engine/temporal's
// agentJSONPayloadConverter, which solves the identical problem for
// planner.ToolResult.Result.
type exportPayloadConverter struct {
	*converter.JSONPayloadConverter
}

const exportTypeMetadataKey = "waffle-export-type"

func (c *exportPayloadConverter) ToPayload(value any) (*commonpb.Payload, error) {
	p, err := c.JSONPayloadConverter.ToPayload(value)
	if err != nil || p == nil {
		return p, err
	}
	switch value.(type) {
	case exportjob.Request:
		p.Metadata[exportTypeMetadataKey] = []byte("Request")
	case exportjob.WriteRequest:
		p.Metadata[exportTypeMetadataKey] = []byte("WriteRequest")
	}
	return p, nil
}

func (c *exportPayloadConverter) FromPayload(p *commonpb.Payload, valuePtr any) error {
	ptr, ok := valuePtr.(*any)
	if !ok {
		return c.JSONPayloadConverter.FromPayload(p, valuePtr)
	}
	switch string(p.Metadata[exportTypeMetadataKey]) {
	case "Request":
		var req exportjob.Request
		if err := json.Unmarshal(p.Data, &req); err != nil {
			return fmt.Errorf("exportjob/temporal: decode Request payload: %w", err)
		}
		*ptr = req
		return nil
	case "WriteRequest":
		var req exportjob.WriteRequest
		if err := json.Unmarshal(p.Data, &req); err != nil {
			return fmt.Errorf("exportjob/temporal: decode WriteRequest payload: %w", err)
		}
		*ptr = req
		return nil
	default:
		return c.JSONPayloadConverter.FromPayload(p, valuePtr)
	}
}

// newDataConverter builds a DataConverter identical to Temporal's default
// composite except that exportPayloadConverter takes the JSON slot, so
// `any`-typed activity and workflow parameters decode as their original
// exportjob type instead of a generic map.
func newDataConverter() converter.DataConverter {
	return converter.NewCompositeDataConverter(
		converter.NewNilPayloadConverter(),
		converter.NewByteSlicePayloadConverter(),
		converter.NewProtoPayloadConverter(),
		converter.NewProtoJSONPayloadConverter(),
		&exportPayloadConverter{JSONPayloadConverter: converter.NewJSONPayloadConverter()},
	)
}
