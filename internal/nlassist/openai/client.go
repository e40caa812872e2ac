// Package openai implements nlassist.Client on top of OpenAI's Chat
// Completions API via the official github.com/openai/openai-go SDK.
//
// The teacher's features/model/openai.Client targets
// github.com/sashabaranov/go-openai, a path this module's go.mod does
// not carry (go.mod instead lists github.com/openai/openai-go, pulled
// in for this very adapter). openai-go is built by the same SDK
// generator as github.com/anthropics/anthropic-sdk-go — confirmed
// already in this module via internal/nlassist/anthropic — and follows
// the same plain-struct-params, service-per-resource shape (Client.Chat
// .Completions.New(ctx, params, opts...)), so this adapter is grounded
// on that sibling SDK's confirmed conventions rather than a pack
// example exercising openai-go directly; see DESIGN.md.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/waffle-iron/core/internal/nlassist"
)

// ChatClient captures the subset of the openai-go client used by the
// adapter, satisfied by &client.Chat.Completions.
type ChatClient interface {
	New(ctx context.Context, body oai.ChatCompletionNewParams, opts ...option.RequestOption) (*oai.ChatCompletion, error)
}

// Options configures the adapter's model selection.
type Options struct {
	Model string
}

// Client implements nlassist.Client via OpenAI Chat Completions.
type Client struct {
	chat  ChatClient
	model string
}

var _ nlassist.Client = (*Client)(nil)

// New builds a Client from a ChatClient and Options.
func New(chat ChatClient, opts Options) (*Client, error) {
	if chat == nil {
		return nil, errors.New("nlassist/openai: chat client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("nlassist/openai: model is required")
	}
	return &Client{chat: chat, model: opts.Model}, nil
}

// NewFromAPIKey constructs a Client using the default openai-go HTTP client.
func NewFromAPIKey(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("nlassist/openai: api key is required")
	}
	c := oai.NewClient(option.WithAPIKey(apiKey))
	return New(&c.Chat.Completions, Options{Model: model})
}

// Propose issues a single chat completion instructing the model to reply
// with exactly one JSON object matching nlassist.ProposalSchemaJSON, then
// decodes the result via nlassist.DecodeProposal.
func (c *Client) Propose(ctx context.Context, req nlassist.Request) (*nlassist.Proposal, error) {
	params := oai.ChatCompletionNewParams{
		Model: oai.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt(req)),
			oai.UserMessage(req.Description),
		},
	}
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("nlassist/openai: chat completions.new: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &nlassist.ErrInvalidProposal{Reason: "no choices in response"}
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, &nlassist.ErrInvalidProposal{Reason: "empty message content"}
	}
	return nlassist.DecodeProposal([]byte(content))
}

func systemPrompt(req nlassist.Request) string {
	var b strings.Builder
	b.WriteString("You are a CAD feature-authoring assistant. Given a freeform ")
	b.WriteString("description, propose exactly one modeling operation as a ")
	b.WriteString("single JSON object matching this schema and nothing else:\n")
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
