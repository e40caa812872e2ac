package fileformat

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchemaJSON validates a document's top-level shape before
// migration runs: format/version are present and well-typed, features is
// an array of tagged-operation records. It deliberately does not pin down
// every Operation variant's payload shape — that is re-validated by
// decodeOperation once the document is on the current version — only the
// structural envelope migrations and the codec both depend on.
const documentSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["format", "version", "features"],
	"properties": {
		"format": {"type": "string"},
		"version": {"type": "integer", "minimum": 1},
		"project": {"type": "object"},
		"rollback_index": {"type": ["integer", "null"]},
		"features": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "operation"],
				"properties": {
					"id": {"type": "string"},
					"name": {"type": "string"},
					"suppressed": {"type": "boolean"},
					"operation": {
						"type": "object",
						"required": ["type", "data"],
						"properties": {
							"type": {"type": "string"},
							"data": {"type": "object"}
						}
					},
					"extensions": {"type": "object"}
				}
			}
		}
	}
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("waffle-iron-document.json", strings.NewReader(documentSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("waffle-iron-document.json")
	})
	return schema, schemaErr
}

// validateStructure checks raw's shape against documentSchemaJSON, wrapping
// any violation in ErrMalformedJSON.
func validateStructure(raw any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(raw); err != nil {
		return &wrappedError{cause: ErrMalformedJSON, detail: err.Error()}
	}
	return nil
}

type wrappedError struct {
	cause  error
	detail string
}

func (e *wrappedError) Error() string { return e.cause.Error() + ": " + e.detail }
func (e *wrappedError) Unwrap() error { return e.cause }
