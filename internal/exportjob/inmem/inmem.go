// Package inmem is an in-memory exportjob.Engine for single-process
// hosts and tests: it runs TessellateAndExport on a goroutine with no
// durability. Grounded on runtime/agent/engine/inmem/engine.go's
// workflow-goroutine-plus-activity-map shape, trimmed to this job's
// single workflow type (no child workflows, no signals, no status
// queries).
package inmem

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/waffle-iron/core/internal/exportjob"
)

type engine struct {
	mu         sync.RWMutex
	workflows  map[string]exportjob.WorkflowDefinition
	activities map[string]exportjob.ActivityDefinition
}

// New returns an in-memory exportjob.Engine. Not durable: a process
// restart loses any in-flight export.
func New() exportjob.Engine {
	return &engine{
		workflows:  make(map[string]exportjob.WorkflowDefinition),
		activities: make(map[string]exportjob.ActivityDefinition),
	}
}

func (e *engine) RegisterWorkflow(_ context.Context, def exportjob.WorkflowDefinition) error {
	if def.Name == "" || def.Handler == nil {
		return errors.New("exportjob/inmem: invalid workflow definition")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.workflows[def.Name]; dup {
		return fmt.Errorf("exportjob/inmem: workflow %q already registered", def.Name)
	}
	e.workflows[def.Name] = def
	return nil
}

func (e *engine) RegisterActivity(_ context.Context, def exportjob.ActivityDefinition) error {
	if def.Name == "" || def.Handler == nil {
		return errors.New("exportjob/inmem: invalid activity definition")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.activities[def.Name]; dup {
		return fmt.Errorf("exportjob/inmem: activity %q already registered", def.Name)
	}
	e.activities[def.Name] = def
	return nil
}

func (e *engine) StartWorkflow(ctx context.Context, req exportjob.WorkflowStartRequest) (exportjob.WorkflowHandle, error) {
	e.mu.RLock()
	def, ok := e.workflows[req.Workflow]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("exportjob/inmem: workflow %q not registered", req.Workflow)
	}

	wctx := &workflowContext{ctx: ctx, id: req.ID, eng: e}
	h := &handle{done: make(chan struct{})}

	go func() {
		defer close(h.done)
		h.result, h.err = def.Handler(wctx, req.Input)
	}()

	return h, nil
}

type workflowContext struct {
	ctx context.Context
	id  string
	eng *engine
}

func (w *workflowContext) Context() context.Context { return w.ctx }
func (w *workflowContext) WorkflowID() string       { return w.id }
func (w *workflowContext) Now() time.Time           { return time.Now() }

func (w *workflowContext) ExecuteActivity(ctx context.Context, req exportjob.ActivityRequest, result any) error {
	fut, err := w.ExecuteActivityAsync(ctx, req)
	if err != nil {
		return err
	}
	return fut.Get(ctx, result)
}

func (w *workflowContext) ExecuteActivityAsync(ctx context.Context, req exportjob.ActivityRequest) (exportjob.Future, error) {
	w.eng.mu.RLock()
	def, ok := w.eng.activities[req.Name]
	w.eng.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("exportjob/inmem: activity %q not registered", req.Name)
	}

	f := &future{ready: make(chan struct{})}
	go func() {
		defer close(f.ready)
		f.result, f.err = def.Handler(ctx, req.Input)
	}()
	return f, nil
}

type future struct {
	mu     sync.Mutex
	ready  chan struct{}
	result any
	err    error
}

func (f *future) Get(ctx context.Context, result any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.ready:
		f.mu.Lock()
		defer f.mu.Unlock()
		assignResult(result, f.result)
		return f.err
	}
}

func (f *future) IsReady() bool {
	select {
	case <-f.ready:
		return true
	default:
		return false
	}
}

type handle struct {
	mu     sync.Mutex
	done   chan struct{}
	result any
	err    error
}

func (h *handle) Wait(ctx context.Context, result any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		assignResult(result, h.result)
		return h.err
	}
}

func assignResult(dst, src any) {
	if dst == nil || src == nil {
		return
	}
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return
	}
	sv := reflect.ValueOf(src)
	if sv.IsValid() && sv.Type().AssignableTo(dv.Elem().Type()) {
		dv.Elem().Set(sv)
	}
}
