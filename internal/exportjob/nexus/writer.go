// Package nexus defines the Nexus operation contract for the external
// STEP writer (§1 Non-goals: this module hands off to a writer, it
// never implements STEP encoding). Nexus operations are a natural fit
// for this call site: the writer is a separate service, possibly owned
// by a different team, and the call itself is long-running relative to
// a typical RPC.
//
// The teacher module depends on github.com/nexus-rpc/sdk-go directly
// but has no call site exercising it in this snapshot (see DESIGN.md);
// this file is grounded on the library's documented operation-reference
// and HTTP-client shape rather than a teacher code sample, which
// DESIGN.md flags explicitly.
package nexus

import (
	"context"
	"fmt"

	"github.com/nexus-rpc/sdk-go/nexus"

	"github.com/waffle-iron/core/internal/exportjob"
	"github.com/waffle-iron/core/internal/kernel"
)

// WriteStepOperationName is the Nexus operation name the external
// writer service registers its handler under.
const WriteStepOperationName = "waffle-iron.write-step"

// WriteStepInput is the Nexus operation's input payload: the tessellated
// mesh and the destination path the writer should produce.
type WriteStepInput struct {
	Mesh        kernel.RenderMesh `json:"mesh"`
	Destination string            `json:"destination"`
}

// WriteStepOutput is the Nexus operation's result: how many bytes the
// writer produced.
type WriteStepOutput struct {
	BytesWritten int64 `json:"bytes_written"`
}

// WriteStepOperation is the client-side reference other Nexus-aware
// callers (not just this package) use to invoke the external writer
// without importing its implementation.
var WriteStepOperation = nexus.NewOperationReference[WriteStepInput, WriteStepOutput](WriteStepOperationName)

// ClientWriter implements exportjob.Writer by invoking the external
// writer service over Nexus. It is the production Writer; tests and
// single-process demos use a local Writer instead.
type ClientWriter struct {
	client *nexus.HTTPClient
}

var _ exportjob.Writer = (*ClientWriter)(nil)

// NewClientWriter builds a ClientWriter against the writer service
// reachable at baseURL.
func NewClientWriter(baseURL string) (*ClientWriter, error) {
	client, err := nexus.NewHTTPClient(nexus.HTTPClientOptions{BaseURL: baseURL})
	if err != nil {
		return nil, fmt.Errorf("exportjob/nexus: create client: %w", err)
	}
	return &ClientWriter{client: client}, nil
}

// WriteStep implements exportjob.Writer by starting the WriteStep Nexus
// operation and waiting for its result.
func (w *ClientWriter) WriteStep(ctx context.Context, mesh kernel.RenderMesh, destination string) (int64, error) {
	out, err := nexus.ExecuteOperation(ctx, w.client, WriteStepOperation, WriteStepInput{
		Mesh:        mesh,
		Destination: destination,
	}, nexus.ExecuteOperationOptions{})
	if err != nil {
		return 0, fmt.Errorf("exportjob/nexus: write step: %w", err)
	}
	return out.BytesWritten, nil
}
