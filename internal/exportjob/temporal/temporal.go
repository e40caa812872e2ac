// Package temporal implements exportjob.Engine on top of Temporal, for
// deployments where an export must survive a process restart.
//
// Grounded on runtime/agent/engine/temporal/engine.go and
// workflow_context.go, trimmed to one task queue and one workflow type:
// no per-queue worker map, no child workflows, no signal channels — an
// export has no mid-flight human interaction.
package temporal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/waffle-iron/core/internal/exportjob"
)

// Options configures the Temporal engine adapter.
type Options struct {
	// Client is a pre-configured Temporal client. If nil, New creates a
	// lazy client from ClientOptions.
	Client client.Client
	// ClientOptions builds the client when Client is nil.
	ClientOptions *client.Options
	// TaskQueue is the single queue this engine's worker polls.
	TaskQueue string
	// DisableInstrumentation skips installing the OTEL tracing
	// interceptor Temporal's contrib package provides.
	DisableInstrumentation bool
}

// Engine implements exportjob.Engine on Temporal.
type Engine struct {
	client      client.Client
	closeClient bool
	taskQueue   string

	mu         sync.Mutex
	worker     worker.Worker
	started    bool
	activities map[string]exportjob.ActivityOptions
}

// New constructs a Temporal-backed exportjob.Engine.
func New(opts Options) (*Engine, error) {
	if opts.TaskQueue == "" {
		return nil, fmt.Errorf("exportjob/temporal: task queue is required")
	}

	cli := opts.Client
	closeClient := false
	if cli == nil {
		if opts.ClientOptions == nil {
			return nil, fmt.Errorf("exportjob/temporal: client options are required when Client is nil")
		}
		clientOpts := *opts.ClientOptions
		if !opts.DisableInstrumentation {
			tracer, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{})
			if err != nil {
				return nil, fmt.Errorf("exportjob/temporal: configure tracing interceptor: %w", err)
			}
			clientOpts.Interceptors = append(clientOpts.Interceptors, tracer)
		}
		if clientOpts.DataConverter == nil {
			clientOpts.DataConverter = newDataConverter()
		}
		var err error
		cli, err = client.NewLazyClient(clientOpts)
		if err != nil {
			return nil, fmt.Errorf("exportjob/temporal: create client: %w", err)
		}
		closeClient = true
	}

	e := &Engine{
		client:      cli,
		closeClient: closeClient,
		taskQueue:   opts.TaskQueue,
		activities:  make(map[string]exportjob.ActivityOptions),
	}
	e.worker = worker.New(cli, opts.TaskQueue, worker.Options{})
	return e, nil
}

func (e *Engine) RegisterWorkflow(_ context.Context, def exportjob.WorkflowDefinition) error {
	if def.Name == "" || def.Handler == nil {
		return fmt.Errorf("exportjob/temporal: invalid workflow definition")
	}
	e.worker.RegisterWorkflowWithOptions(func(tctx workflow.Context, input any) (any, error) {
		wfCtx := newWorkflowContext(e, tctx)
		return def.Handler(wfCtx, input)
	}, workflow.RegisterOptions{Name: def.Name})
	return nil
}

func (e *Engine) RegisterActivity(_ context.Context, def exportjob.ActivityDefinition) error {
	if def.Name == "" || def.Handler == nil {
		return fmt.Errorf("exportjob/temporal: invalid activity definition")
	}
	e.worker.RegisterActivityWithOptions(func(ctx context.Context, input any) (any, error) {
		return def.Handler(ctx, input)
	}, activity.RegisterOptions{Name: def.Name})

	e.mu.Lock()
	e.activities[def.Name] = def.Options
	e.mu.Unlock()
	return nil
}

// StartWorkflow launches an export. The worker is started lazily on the
// first call so callers don't need a separate Worker().Start() step for
// the common case of one export at a time.
func (e *Engine) StartWorkflow(ctx context.Context, req exportjob.WorkflowStartRequest) (exportjob.WorkflowHandle, error) {
	e.ensureStarted()

	opts := client.StartWorkflowOptions{ID: req.ID, TaskQueue: e.taskQueue}
	run, err := e.client.ExecuteWorkflow(ctx, opts, req.Workflow, req.Input)
	if err != nil {
		return nil, fmt.Errorf("exportjob/temporal: start workflow: %w", err)
	}
	return &workflowHandle{run: run}, nil
}

// Start launches the worker manually; optional when StartWorkflow's
// lazy start is sufficient.
func (e *Engine) Start() { e.ensureStarted() }

// Stop gracefully stops the worker and, if this Engine created the
// Temporal client, closes it.
func (e *Engine) Stop() {
	e.worker.Stop()
	if e.closeClient {
		e.client.Close()
	}
}

func (e *Engine) ensureStarted() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	go func() {
		_ = e.worker.Run(worker.InterruptCh())
	}()
}

func (e *Engine) activityOptionsFor(name string) exportjob.ActivityOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activities[name]
}

type workflowContext struct {
	engine *Engine
	ctx    workflow.Context
	id     string
}

func newWorkflowContext(e *Engine, ctx workflow.Context) *workflowContext {
	return &workflowContext{engine: e, ctx: ctx, id: workflow.GetInfo(ctx).WorkflowExecution.ID}
}

func (w *workflowContext) Context() context.Context { return context.Background() }
func (w *workflowContext) WorkflowID() string       { return w.id }
func (w *workflowContext) Now() time.Time           { return workflow.Now(w.ctx) }

func (w *workflowContext) ExecuteActivity(_ context.Context, req exportjob.ActivityRequest, result any) error {
	fut, err := w.ExecuteActivityAsync(context.Background(), req)
	if err != nil {
		return err
	}
	return fut.Get(context.Background(), result)
}

func (w *workflowContext) ExecuteActivityAsync(_ context.Context, req exportjob.ActivityRequest) (exportjob.Future, error) {
	defaults := w.engine.activityOptionsFor(req.Name)
	timeout := req.Timeout
	if timeout == 0 {
		timeout = defaults.Timeout
	}
	if timeout == 0 {
		timeout = time.Minute
	}
	retry := req.RetryPolicy
	if retry == (exportjob.RetryPolicy{}) {
		retry = defaults.RetryPolicy
	}

	actx := workflow.WithActivityOptions(w.ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy:         convertRetryPolicy(retry),
	})
	fut := workflow.ExecuteActivity(actx, req.Name, req.Input)
	return &future{future: fut, ctx: actx}, nil
}

func convertRetryPolicy(r exportjob.RetryPolicy) *temporal.RetryPolicy {
	if r.MaxAttempts == 0 && r.InitialInterval == 0 && r.BackoffCoefficient == 0 {
		return nil
	}
	policy := &temporal.RetryPolicy{}
	if r.MaxAttempts > 0 {
		policy.MaximumAttempts = int32(r.MaxAttempts)
	}
	if r.InitialInterval > 0 {
		policy.InitialInterval = r.InitialInterval
	}
	if r.BackoffCoefficient > 0 {
		policy.BackoffCoefficient = r.BackoffCoefficient
	}
	return policy
}

type future struct {
	future workflow.Future
	ctx    workflow.Context
}

func (f *future) Get(_ context.Context, result any) error {
	if err := f.future.Get(f.ctx, result); err != nil {
		if temporal.IsCanceledError(err) {
			return context.Canceled
		}
		return err
	}
	return nil
}

func (f *future) IsReady() bool { return f.future.IsReady() }

type workflowHandle struct {
	run client.WorkflowRun
}

func (h *workflowHandle) Wait(_ context.Context, result any) error {
	return h.run.Get(context.Background(), result)
}
