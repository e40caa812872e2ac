// Package nlassist is an optional natural-language feature-authoring
// assistant: given a freeform description ("a 10mm fillet on the top
// edges"), it proposes a candidate types.Operation for a host to review
// before handing it to tree.AddFeature. It never mutates a project
// itself — §1 scopes this module to the modeling core, not an agent
// loop — so a proposal is always just data the host decides whether to
// apply.
//
// Grounded on runtime/agent/model.Client's provider-agnostic request/
// response shape: this package defines the same kind of narrow
// capability interface, and internal/nlassist/anthropic,
// internal/nlassist/openai, internal/nlassist/bedrock each adapt one
// provider SDK to it, the way features/model/{anthropic,openai,bedrock}
// adapt the same providers to model.Client. The scope here is much
// narrower than model.Client: a single non-streaming, non-tool-calling
// request whose only job is "propose one Operation."
package nlassist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/waffle-iron/core/internal/types"
)

// Request is a freeform feature-authoring prompt plus the context a
// provider needs to ground its proposal: the kinds of operation a host
// is willing to accept, and GeomRefs already selected in the UI that
// the description might refer to ("this face", "the top edges").
type Request struct {
	Description string
	Selection   []types.GeomRef
	Allowed     []string
}

// Proposal is a provider's answer: a candidate Operation, already
// decoded from the provider's tagged JSON, plus the provider's own
// rationale for a host to show the user before they accept it.
type Proposal struct {
	Operation types.Operation
	Rationale string
}

// Client proposes an Operation from a Request. Implementations call out
// to an LLM provider; Propose must return ErrInvalidProposal rather
// than a malformed Operation when the provider's output doesn't decode
// or validate.
type Client interface {
	Propose(ctx context.Context, req Request) (*Proposal, error)
}

// ErrInvalidProposal wraps a provider response that failed to decode
// into a types.Operation or failed schema validation.
type ErrInvalidProposal struct {
	Raw    string
	Reason string
}

func (e *ErrInvalidProposal) Error() string {
	return fmt.Sprintf("nlassist: invalid proposal (%s): %s", e.Reason, e.Raw)
}

// proposalEnvelope is the wire shape every provider adapter must coax
// its model into producing: a tagged Operation plus the rationale text.
// Reuses types.OperationEnvelope's "type"/"data" tagged-union codec so
// provider adapters can unmarshal providers' JSON output directly into
// a types.Operation without hand-rolling their own tag switch.
type proposalEnvelope struct {
	Operation types.OperationEnvelope `json:"operation"`
	Rationale string                  `json:"rationale"`
}

// ProposalSchemaJSON is the JSON Schema every provider adapter asks its
// model to conform to (the adapters include it in the prompt text).
// Intentionally loose on "data" — DecodeProposal's use of
// types.OperationEnvelope re-validates the operation-specific payload
// shape after the tag is known, the same split as fileformat's
// documentSchemaJSON and the types package's decodeOperation.
const ProposalSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["operation", "rationale"],
	"properties": {
		"operation": {
			"type": "object",
			"required": ["type", "data"],
			"properties": {
				"type": {"type": "string"},
				"data": {"type": "object"}
			}
		},
		"rationale": {"type": "string"}
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
		if err := c.AddResource("nlassist-proposal.json", strings.NewReader(ProposalSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("nlassist-proposal.json")
	})
	return schema, schemaErr
}

// DecodeProposal validates raw against ProposalSchemaJSON and decodes it
// into a Proposal. Provider adapters call this once they have the
// model's raw JSON text, so every provider is held to the same
// acceptance criteria regardless of how its SDK shapes structured
// output.
func DecodeProposal(raw []byte) (*Proposal, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, &ErrInvalidProposal{Raw: string(raw), Reason: "not valid JSON"}
	}
	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(generic); err != nil {
		return nil, &ErrInvalidProposal{Raw: string(raw), Reason: err.Error()}
	}

	var env proposalEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ErrInvalidProposal{Raw: string(raw), Reason: err.Error()}
	}
	if env.Operation.Op == nil {
		return nil, &ErrInvalidProposal{Raw: string(raw), Reason: "unrecognized operation type"}
	}
	return &Proposal{Operation: env.Operation.Op, Rationale: env.Rationale}, nil
}
