package openai_test

import (
	"context"
	"testing"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/nlassist"
	"github.com/waffle-iron/core/internal/nlassist/openai"
)

type fakeChat struct {
	resp *oai.ChatCompletion
	err  error
}

func (f *fakeChat) New(context.Context, oai.ChatCompletionNewParams, ...option.RequestOption) (*oai.ChatCompletion, error) {
	return f.resp, f.err
}

func TestProposeDecodesMessageContent(t *testing.T) {
	fake := &fakeChat{
		resp: &oai.ChatCompletion{
			Choices: []oai.ChatCompletionChoice{
				{
					Message: oai.ChatCompletionMessage{
						Content: `{
							"operation": {"type": "Chamfer", "data": {"Edges": [], "Distance": 1.0}},
							"rationale": "Chamfer the selected edges."
						}`,
					},
				},
			},
		},
	}
	c, err := openai.New(fake, openai.Options{Model: "gpt-4o-test"})
	require.NoError(t, err)

	prop, err := c.Propose(context.Background(), nlassist.Request{Description: "bevel these edges"})
	require.NoError(t, err)
	require.Equal(t, "Chamfer", prop.Operation.Tag())
}

func TestProposeRejectsNoChoices(t *testing.T) {
	fake := &fakeChat{resp: &oai.ChatCompletion{}}
	c, err := openai.New(fake, openai.Options{Model: "gpt-4o-test"})
	require.NoError(t, err)

	_, err = c.Propose(context.Background(), nlassist.Request{Description: "anything"})
	require.Error(t, err)
}

func TestNewRequiresClientAndModel(t *testing.T) {
	_, err := openai.New(nil, openai.Options{Model: "gpt-4o-test"})
	require.Error(t, err)

	_, err = openai.New(&fakeChat{}, openai.Options{})
	require.Error(t, err)
}
