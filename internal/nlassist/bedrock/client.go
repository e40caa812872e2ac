// Package bedrock implements nlassist.Client on top of the AWS Bedrock
// Converse API, adapted from features/model/bedrock.Client down to a
// single non-streaming Converse call: no tool configuration, no
// thinking budget, no streaming. The system prompt instructs the model
// to answer with exactly one JSON object matching
// nlassist.ProposalSchemaJSON, which nlassist.DecodeProposal then
// validates.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithy "github.com/aws/smithy-go"

	"github.com/waffle-iron/core/internal/nlassist"
)

// RuntimeClient mirrors the subset of the AWS Bedrock runtime client
// required by the adapter, satisfied by *bedrockruntime.Client.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Options configures the Bedrock adapter.
type Options struct {
	Runtime RuntimeClient
	ModelID string
}

// Client implements nlassist.Client on top of AWS Bedrock Converse.
type Client struct {
	runtime RuntimeClient
	modelID string
}

var _ nlassist.Client = (*Client)(nil)

// New builds a Client from the given options.
func New(opts Options) (*Client, error) {
	if opts.Runtime == nil {
		return nil, errors.New("nlassist/bedrock: runtime client is required")
	}
	if opts.ModelID == "" {
		return nil, errors.New("nlassist/bedrock: model id is required")
	}
	return &Client{runtime: opts.Runtime, modelID: opts.ModelID}, nil
}

// Propose issues a single Converse call and decodes the first text
// content block via nlassist.DecodeProposal.
func (c *Client) Propose(ctx context.Context, req nlassist.Request) (*nlassist.Proposal, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: systemPrompt(req)},
		},
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: req.Description},
				},
			},
		},
	}
	out, err := c.runtime.Converse(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("nlassist/bedrock: converse: %s: %w", apiErr.ErrorCode(), err)
		}
		return nil, fmt.Errorf("nlassist/bedrock: converse: %w", err)
	}
	text, err := firstText(out)
	if err != nil {
		return nil, err
	}
	return nlassist.DecodeProposal([]byte(text))
}

func firstText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("nlassist/bedrock: response is nil")
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", &nlassist.ErrInvalidProposal{Reason: "response had no message output"}
	}
	for _, block := range msg.Value.Content {
		if v, ok := block.(*brtypes.ContentBlockMemberText); ok && v.Value != "" {
			return v.Value, nil
		}
	}
	return "", &nlassist.ErrInvalidProposal{Reason: "no text content block in response"}
}

func systemPrompt(req nlassist.Request) string {
	var b strings.Builder
	b.WriteString("You are a CAD feature-authoring assistant. Given a freeform ")
	b.WriteString("description, propose exactly one modeling operation as a ")
	b.WriteString("single JSON object matching this schema:\n")
	b.WriteString(nlassist.ProposalSchemaJSON)
	if len(req.Allowed) > 0 {
		b.WriteString("\nAllowed operation types: ")
		b.WriteString(strings.Join(req.Allowed, ", "))
	}
	if len(req.Selection) > 0 {
		fmt.Fprintf(&b, "\nThe user currently has %d geometry reference(s) selected.", len(req.Selection))
	}
	return b.String()
}
