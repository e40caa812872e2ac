// Package anthropic implements nlassist.Client on top of the Anthropic
// Claude Messages API, adapted from features/model/anthropic.Client.
// The teacher adapter is a full multi-turn, tool-calling model.Client;
// nlassist only ever needs one non-streaming call whose entire output
// is a single JSON object, so this adapter keeps the teacher's
// MessagesClient seam and Options/New/NewFromAPIKey shape but drops
// streaming, tool-call translation, and thinking-budget support
// entirely.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/waffle-iron/core/internal/nlassist"
)

// MessagesClient captures the subset of the Anthropic SDK used by the
// adapter, satisfied by *sdk.MessageService so tests can substitute a
// mock instead of a live client.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Options configures the adapter's model selection and generation limits.
type Options struct {
	// Model is the Claude model identifier to request proposals from.
	Model string
	// MaxTokens caps the completion length; proposals are small JSON
	// objects so this can stay modest.
	MaxTokens int64
}

// Client implements nlassist.Client on top of the Anthropic Messages API.
type Client struct {
	msg       MessagesClient
	model     string
	maxTokens int64
}

var _ nlassist.Client = (*Client)(nil)

// New builds a Client from an Anthropic Messages client and Options.
func New(msg MessagesClient, opts Options) (*Client, error) {
	if msg == nil {
		return nil, errors.New("nlassist/anthropic: messages client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("nlassist/anthropic: model identifier is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{msg: msg, model: opts.Model, maxTokens: maxTokens}, nil
}

// NewFromAPIKey constructs a Client using the default Anthropic HTTP
// client, reading ANTHROPIC_API_KEY-style defaults via option.WithAPIKey.
func NewFromAPIKey(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("nlassist/anthropic: api key is required")
	}
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&ac.Messages, Options{Model: model})
}

// Propose sends req as a single user turn instructing the model to reply
// with exactly one JSON object matching nlassist.ProposalSchemaJSON, then
// decodes and validates the response via nlassist.DecodeProposal.
func (c *Client) Propose(ctx context.Context, req nlassist.Request) (*nlassist.Proposal, error) {
	prompt := buildPrompt(req)
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}
	msg, err := c.msg.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("nlassist/anthropic: messages.new: %w", err)
	}
	text := firstTextBlock(msg)
	if text == "" {
		return nil, &nlassist.ErrInvalidProposal{Reason: "no text content in response"}
	}
	return nlassist.DecodeProposal([]byte(text))
}

func firstTextBlock(msg *sdk.Message) string {
	if msg == nil {
		return ""
	}
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text
		}
	}
	return ""
}

func buildPrompt(req nlassist.Request) string {
	var b strings.Builder
	b.WriteString("You are a CAD feature-authoring assistant. Given a freeform ")
	b.WriteString("description, propose exactly one modeling operation.\n\n")
	b.WriteString("Respond with a single JSON object matching this schema and ")
	b.WriteString("nothing else:\n")
	b.WriteString(nlassist.ProposalSchemaJSON)
	b.WriteString("\n\n")
	if len(req.Allowed) > 0 {
		b.WriteString("Allowed operation types: ")
		b.WriteString(strings.Join(req.Allowed, ", "))
		b.WriteString("\n")
	}
	if len(req.Selection) > 0 {
		fmt.Fprintf(&b, "The user currently has %d geometry reference(s) selected.\n", len(req.Selection))
	}
	b.WriteString("Description: ")
	b.WriteString(req.Description)
	return b.String()
}
