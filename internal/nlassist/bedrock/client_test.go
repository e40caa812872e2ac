package bedrock_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/nlassist"
	"github.com/waffle-iron/core/internal/nlassist/bedrock"
)

type mockRuntime struct {
	output *bedrockruntime.ConverseOutput
	err    error
}

func (m *mockRuntime) Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	return m.output, m.err
}

func TestProposeDecodesTextContentBlock(t *testing.T) {
	mock := &mockRuntime{
		output: &bedrockruntime.ConverseOutput{
			Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: `{
						"operation": {"type": "Shell", "data": {"Body": {}, "FacesToRemove": [], "Thickness": 2}},
						"rationale": "Hollow the selected body."
					}`},
				},
			}},
		},
	}
	c, err := bedrock.New(bedrock.Options{Runtime: mock, ModelID: "anthropic.claude-3"})
	require.NoError(t, err)

	prop, err := c.Propose(context.Background(), nlassist.Request{Description: "hollow this part"})
	require.NoError(t, err)
	require.Equal(t, "Shell", prop.Operation.Tag())
}

func TestProposeRejectsMissingMessageOutput(t *testing.T) {
	mock := &mockRuntime{output: &bedrockruntime.ConverseOutput{}}
	c, err := bedrock.New(bedrock.Options{Runtime: mock, ModelID: "anthropic.claude-3"})
	require.NoError(t, err)

	_, err = c.Propose(context.Background(), nlassist.Request{Description: "anything"})
	require.Error(t, err)
}
