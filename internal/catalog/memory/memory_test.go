package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/catalog"
	"github.com/waffle-iron/core/internal/catalog/memory"
)

func TestSaveGetDelete(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	entry := catalog.Entry{ID: "p1", Name: "Bracket", Path: "/tmp/bracket.waffle", Tags: []string{"mechanical"}, CreatedAt: time.Unix(0, 0)}

	require.NoError(t, s.SaveMeta(ctx, entry))

	got, err := s.GetMeta(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, entry.Name, got.Name)

	require.NoError(t, s.DeleteMeta(ctx, "p1"))
	_, err = s.GetMeta(ctx, "p1")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestListMetaFiltersByTags(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.SaveMeta(ctx, catalog.Entry{ID: "a", Name: "A", Tags: []string{"mechanical"}}))
	require.NoError(t, s.SaveMeta(ctx, catalog.Entry{ID: "b", Name: "B", Tags: []string{"sheet-metal"}}))

	out, err := s.ListMeta(ctx, []string{"mechanical"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "A", out[0].Name)
}

func TestSearchMetaMatchesNameOrPath(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.SaveMeta(ctx, catalog.Entry{ID: "a", Name: "Bracket", Path: "/tmp/bracket.waffle"}))

	out, err := s.SearchMeta(ctx, "BRACK")
	require.NoError(t, err)
	require.Len(t, out, 1)
}
