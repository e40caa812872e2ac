// Package exportjob runs the durable, asynchronous half of a STEP
// export (§1 Non-goals: this module tessellates at export tolerance and
// hands the result to an external writer; it never implements the
// writer itself). Export can take long enough on a large assembly that
// a host wants it to survive a process restart, hence a pluggable
// durable-execution Engine rather than a goroutine.
//
// Grounded on runtime/agent/engine/engine.go's Engine/WorkflowDefinition/
// WorkflowContext/Future abstraction, trimmed to what one workflow type
// needs: no child workflows, no query handlers, no planner/tool-specific
// activity registration helpers.
package exportjob

import (
	"context"
	"time"
)

// Engine abstracts workflow registration and execution so adapters
// (Temporal, in-memory) can be swapped without touching job.go.
type Engine interface {
	RegisterWorkflow(ctx context.Context, def WorkflowDefinition) error
	RegisterActivity(ctx context.Context, def ActivityDefinition) error
	StartWorkflow(ctx context.Context, req WorkflowStartRequest) (WorkflowHandle, error)
}

// WorkflowDefinition binds a workflow handler to a logical name and
// default task queue.
type WorkflowDefinition struct {
	Name      string
	TaskQueue string
	Handler   WorkflowFunc
}

// WorkflowFunc is a durable workflow entry point. It must be
// deterministic: the same inputs and activity results must produce the
// same execution sequence, so it must never touch the clock, randomness,
// or I/O directly — only through ctx.ExecuteActivity.
type WorkflowFunc func(ctx WorkflowContext, input any) (any, error)

// WorkflowContext exposes engine operations to a running workflow.
type WorkflowContext interface {
	Context() context.Context
	WorkflowID() string
	ExecuteActivity(ctx context.Context, req ActivityRequest, result any) error
	ExecuteActivityAsync(ctx context.Context, req ActivityRequest) (Future, error)
	Now() time.Time
}

// Future represents a pending activity result.
type Future interface {
	Get(ctx context.Context, result any) error
	IsReady() bool
}

// ActivityDefinition registers an activity handler. Activities may
// perform side effects (I/O, calling the external STEP writer);
// workflows may not.
type ActivityDefinition struct {
	Name    string
	Handler ActivityFunc
	Options ActivityOptions
}

// ActivityFunc handles one activity invocation.
type ActivityFunc func(ctx context.Context, input any) (any, error)

// ActivityOptions configures retry/timeout behavior for an activity.
type ActivityOptions struct {
	RetryPolicy RetryPolicy
	Timeout     time.Duration
}

// RetryPolicy defines retry semantics. Zero-valued fields mean the
// engine's defaults apply.
type RetryPolicy struct {
	MaxAttempts        int
	InitialInterval    time.Duration
	BackoffCoefficient float64
}

// WorkflowStartRequest describes how to launch a workflow execution.
type WorkflowStartRequest struct {
	ID        string
	Workflow  string
	TaskQueue string
	Input     any
}

// ActivityRequest contains what's needed to schedule an activity from a
// workflow.
type ActivityRequest struct {
	Name        string
	Input       any
	RetryPolicy RetryPolicy
	Timeout     time.Duration
}

// WorkflowHandle lets a caller wait on a running workflow.
type WorkflowHandle interface {
	Wait(ctx context.Context, result any) error
}
