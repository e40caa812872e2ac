package inmem_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/exportjob"
	"github.com/waffle-iron/core/internal/exportjob/inmem"
)

func TestWorkflowRunsRegisteredActivitiesInOrder(t *testing.T) {
	eng := inmem.New()
	ctx := context.Background()

	var calls []string
	require.NoError(t, eng.RegisterActivity(ctx, exportjob.ActivityDefinition{
		Name: "step1",
		Handler: func(context.Context, any) (any, error) {
			calls = append(calls, "step1")
			return 1, nil
		},
	}))
	require.NoError(t, eng.RegisterActivity(ctx, exportjob.ActivityDefinition{
		Name: "step2",
		Handler: func(context.Context, any) (any, error) {
			calls = append(calls, "step2")
			return 2, nil
		},
	}))
	require.NoError(t, eng.RegisterWorkflow(ctx, exportjob.WorkflowDefinition{
		Name: "two-step",
		Handler: func(wctx exportjob.WorkflowContext, input any) (any, error) {
			var a int
			if err := wctx.ExecuteActivity(wctx.Context(), exportjob.ActivityRequest{Name: "step1"}, &a); err != nil {
				return nil, err
			}
			var b int
			if err := wctx.ExecuteActivity(wctx.Context(), exportjob.ActivityRequest{Name: "step2"}, &b); err != nil {
				return nil, err
			}
			return a + b, nil
		},
	}))

	handle, err := eng.StartWorkflow(ctx, exportjob.WorkflowStartRequest{ID: "run-1", Workflow: "two-step"})
	require.NoError(t, err)

	var result int
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, handle.Wait(waitCtx, &result))
	require.Equal(t, 3, result)
	require.Equal(t, []string{"step1", "step2"}, calls)
}

func TestStartWorkflowRejectsUnregisteredName(t *testing.T) {
	eng := inmem.New()
	_, err := eng.StartWorkflow(context.Background(), exportjob.WorkflowStartRequest{ID: "x", Workflow: "missing"})
	require.Error(t, err)
}
