package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/api"
	"github.com/waffle-iron/core/internal/commandlog"
	"github.com/waffle-iron/core/internal/commandlog/memory"
	"github.com/waffle-iron/core/internal/types"
)

func mustEntry(t *testing.T, projectID string, kind api.CommandKind) commandlog.Entry {
	t.Helper()
	e, err := commandlog.NewEntry(projectID, api.Command{Kind: kind, FeatureID: types.NewFeatureId()}, time.Unix(0, 0))
	require.NoError(t, err)
	return e
}

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	e1 := mustEntry(t, "p1", api.CmdUndo)
	e2 := mustEntry(t, "p1", api.CmdRedo)

	require.NoError(t, s.Append(ctx, &e1))
	require.NoError(t, s.Append(ctx, &e2))
	require.NotEmpty(t, e1.ID)
	require.NotEqual(t, e1.ID, e2.ID)
}

func TestListPaginatesByCursor(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e := mustEntry(t, "p1", api.CmdUndo)
		require.NoError(t, s.Append(ctx, &e))
	}

	page, err := s.List(ctx, "p1", "", 2)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := s.List(ctx, "p1", page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, rest.Entries, 1)
	require.Empty(t, rest.NextCursor)
}

func TestListIsolatesByProject(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	e1 := mustEntry(t, "p1", api.CmdUndo)
	e2 := mustEntry(t, "p2", api.CmdRedo)
	require.NoError(t, s.Append(ctx, &e1))
	require.NoError(t, s.Append(ctx, &e2))

	page, err := s.List(ctx, "p1", "", 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)

	cmd, err := page.Entries[0].Decode()
	require.NoError(t, err)
	require.Equal(t, api.CmdUndo, cmd.Kind)
}

func TestListEmptyProjectReturnsEmptyPage(t *testing.T) {
	s := memory.New()
	page, err := s.List(context.Background(), "nope", "", 10)
	require.NoError(t, err)
	require.Empty(t, page.Entries)
	require.Empty(t, page.NextCursor)
}
