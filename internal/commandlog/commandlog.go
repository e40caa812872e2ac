// Package commandlog provides optional durability for the undo/redo
// command history (§4.6: "must permit" crash recovery): an append-only
// record of every committed Command a project's Rebuild Engine has
// applied, keyed by project id, so a host can replay a project's history
// after a crash instead of relying solely on the in-memory tree.Log
// undo/redo stacks.
//
// Grounded on runtime/agent/runlog/runlog.go: an immutable Event record,
// a forward Page with an opaque cursor, and a narrow append-plus-list
// Store interface.
package commandlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/waffle-iron/core/internal/api"
)

// Entry is one immutable command-log record. Store implementations
// assign ID when persisting; IDs are opaque and monotonically ordered
// within a project, suitable for cursor-based pagination.
type Entry struct {
	// ID is the store-assigned opaque identifier for this entry.
	ID string
	// ProjectID groups entries belonging to the same project.
	ProjectID string
	// Command is the canonical JSON-encoded api.Command this entry
	// records, captured via api.Command's own tagged-union codec.
	Command json.RawMessage
	// Timestamp is when the command was committed.
	Timestamp time.Time
}

// NewEntry JSON-encodes cmd into an Entry ready to Append.
func NewEntry(projectID string, cmd api.Command, at time.Time) (Entry, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ProjectID: projectID, Command: data, Timestamp: at}, nil
}

// Decode unmarshals e's recorded command back into an api.Command.
func (e Entry) Decode() (api.Command, error) {
	var cmd api.Command
	err := json.Unmarshal(e.Command, &cmd)
	return cmd, err
}

// Page is a forward page of command-log entries.
type Page struct {
	// Entries are ordered oldest-first.
	Entries []Entry
	// NextCursor is the cursor to use to fetch the next page; empty
	// when there are no further entries.
	NextCursor string
}

// Store is an append-only command-log store. Implementations must
// provide stable ordering within a project; cursor values are
// store-owned and opaque to callers.
type Store interface {
	// Append stores e, assigning its ID. Append must be durable:
	// failures are surfaced to callers rather than swallowed, since a
	// missed append breaks crash-recovery replay.
	Append(ctx context.Context, e *Entry) error
	// List returns the next forward page of entries for projectID.
	// cursor is empty to start from the beginning; limit must be > 0.
	List(ctx context.Context, projectID string, cursor string, limit int) (Page, error)
}
