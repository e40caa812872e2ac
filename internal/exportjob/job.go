package exportjob

import (
	"context"
	"fmt"
	"time"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/rebuild"
	"github.com/waffle-iron/core/internal/types"
)

// WorkflowName is the logical name TessellateAndExport registers under.
const WorkflowName = "TessellateAndExport"

// tessellateActivity is the name the TessellateAndExport workflow
// schedules for the tessellation step.
const tessellateActivity = "TessellateAtExportTolerance"

// writeActivity is the name the TessellateAndExport workflow schedules
// for the hand-off to the external STEP writer.
const writeActivity = "WriteStepFile"

// Request describes one export: a feature whose current solid should be
// tessellated at export.Tolerance (independent of the rebuild engine's
// own display-quality chordalTolerance) and handed to a writer.
type Request struct {
	FeatureID   types.FeatureId
	Tolerance   float64
	Destination string
}

// Result is what TessellateAndExport returns on success.
type Result struct {
	Destination  string
	BytesWritten int64
}

// Writer is the external STEP writer contract (§1 Non-goals: this
// module never implements STEP encoding itself). A host wires a real
// writer in, typically an out-of-process service invoked over the Nexus
// operation contract in exportjob/nexus.
type Writer interface {
	WriteStep(ctx context.Context, mesh kernel.RenderMesh, destination string) (int64, error)
}

// Activities bundles the side-effecting steps TessellateAndExport
// schedules. Tessellate reads from the live rebuild Engine and kernel;
// Write hands the result to an external service and so is the only step
// that needs its own retry policy tuned for network failures.
type Activities struct {
	Engine *rebuild.Engine
	Kernel kernel.Kernel
	Writer Writer
}

// Register installs TessellateAndExport's workflow and both activities
// on eng. Call once per process before StartWorkflow.
func Register(ctx context.Context, eng Engine, acts Activities) error {
	if err := eng.RegisterActivity(ctx, ActivityDefinition{
		Name:    tessellateActivity,
		Handler: acts.tessellate,
		Options: ActivityOptions{Timeout: 2 * time.Minute},
	}); err != nil {
		return fmt.Errorf("exportjob: register tessellate activity: %w", err)
	}
	if err := eng.RegisterActivity(ctx, ActivityDefinition{
		Name:    writeActivity,
		Handler: acts.write,
		Options: ActivityOptions{Timeout: 5 * time.Minute, RetryPolicy: RetryPolicy{MaxAttempts: 3, InitialInterval: time.Second, BackoffCoefficient: 2}},
	}); err != nil {
		return fmt.Errorf("exportjob: register write activity: %w", err)
	}
	return eng.RegisterWorkflow(ctx, WorkflowDefinition{
		Name:    WorkflowName,
		Handler: TessellateAndExport,
	})
}

// TessellateAndExport is the durable workflow: tessellate the feature's
// current solid at export tolerance, then hand the mesh to the writer
// activity. Deterministic: every side effect goes through
// ctx.ExecuteActivity.
func TessellateAndExport(ctx WorkflowContext, input any) (any, error) {
	req, ok := input.(Request)
	if !ok {
		return nil, fmt.Errorf("exportjob: unexpected workflow input type %T", input)
	}

	var mesh kernel.RenderMesh
	if err := ctx.ExecuteActivity(ctx.Context(), ActivityRequest{
		Name:  tessellateActivity,
		Input: req,
	}, &mesh); err != nil {
		return nil, err
	}

	var written int64
	if err := ctx.ExecuteActivity(ctx.Context(), ActivityRequest{
		Name:  writeActivity,
		Input: WriteRequest{Mesh: mesh, Destination: req.Destination},
	}, &written); err != nil {
		return nil, err
	}

	return Result{Destination: req.Destination, BytesWritten: written}, nil
}

// WriteRequest is the write activity's input: a tessellated mesh plus
// the destination path the external writer should produce.
type WriteRequest struct {
	Mesh        kernel.RenderMesh
	Destination string
}

func (a Activities) tessellate(ctx context.Context, input any) (any, error) {
	req, ok := input.(Request)
	if !ok {
		return nil, fmt.Errorf("exportjob: unexpected tessellate input type %T", input)
	}
	result, ok := a.Engine.Results(req.FeatureID)
	if !ok || result.Solid == nil {
		return nil, fmt.Errorf("exportjob: feature %s has no solid to export", req.FeatureID)
	}
	return a.Kernel.Tessellate(ctx, *result.Solid, req.Tolerance)
}

func (a Activities) write(ctx context.Context, input any) (any, error) {
	in, ok := input.(WriteRequest)
	if !ok {
		return nil, fmt.Errorf("exportjob: unexpected write input type %T", input)
	}
	return a.Writer.WriteStep(ctx, in.Mesh, in.Destination)
}
