package nlassist_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/nlassist"
)

type countingClient struct {
	calls int
}

func (c *countingClient) Propose(context.Context, nlassist.Request) (*nlassist.Proposal, error) {
	c.calls++
	return &nlassist.Proposal{Rationale: "ok"}, nil
}

func TestRateLimitedAdmitsWithinBurst(t *testing.T) {
	inner := &countingClient{}
	limited := nlassist.NewRateLimited(inner, 60, 2)

	ctx := context.Background()
	_, err := limited.Propose(ctx, nlassist.Request{Description: "a"})
	require.NoError(t, err)
	_, err = limited.Propose(ctx, nlassist.Request{Description: "b"})
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestRateLimitedBlocksBeyondBurstUntilContextDeadline(t *testing.T) {
	inner := &countingClient{}
	limited := nlassist.NewRateLimited(inner, 1, 1)

	ctx := context.Background()
	_, err := limited.Propose(ctx, nlassist.Request{Description: "a"})
	require.NoError(t, err)

	deadlineCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = limited.Propose(deadlineCtx, nlassist.Request{Description: "b"})
	require.Error(t, err)
}
