package fileformat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/fileformat"
	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

func sampleTree() *tree.Tree {
	t := tree.New()
	op := types.Sketch{
		PlaneRef: types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)},
	}
	_, _, _, err := t.Apply(tree.AddFeature(op, "Sketch1"))
	if err != nil {
		panic(err)
	}
	return t
}

func TestSaveLoadRoundTrip(t *testing.T) {
	src := sampleTree()
	data, err := fileformat.Save(src, fileformat.ProjectMeta{Name: "Box", Units: "mm"})
	require.NoError(t, err)

	loaded, meta, err := fileformat.Load(data)
	require.NoError(t, err)
	require.Equal(t, "Box", meta.Name)
	require.Len(t, loaded.Features, 1)
	require.Equal(t, "Sketch1", loaded.Features[0].Name)
	_, ok := loaded.Features[0].Op.(types.Sketch)
	require.True(t, ok)
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	_, _, err := fileformat.Load([]byte(`{"format":"waffle-iron"}`))
	require.ErrorIs(t, err, fileformat.ErrMalformedJSON)
}

func TestLoadRejectsFutureVersion(t *testing.T) {
	_, _, err := fileformat.Load([]byte(`{"format":"waffle-iron","version":99,"features":[]}`))
	require.ErrorIs(t, err, fileformat.ErrFutureVersion)
}

func TestLoadMigratesV1Document(t *testing.T) {
	v1 := `{
		"format": "waffle-iron",
		"version": 1,
		"active_index": 3,
		"features": []
	}`
	loaded, _, err := fileformat.Load([]byte(v1))
	require.NoError(t, err)
	require.NotNil(t, loaded.ActiveIndex)
	require.Equal(t, 3, *loaded.ActiveIndex)
}

func TestLoadRejectsUnknownFormatTag(t *testing.T) {
	_, _, err := fileformat.Load([]byte(`{"format":"not-waffle-iron","version":2,"features":[]}`))
	require.ErrorIs(t, err, fileformat.ErrUnknownFormat)
}

func TestWorkspaceConfigDefaults(t *testing.T) {
	cfg, err := fileformat.ParseWorkspaceConfig([]byte(`undo_depth: 50`))
	require.NoError(t, err)
	require.Equal(t, 50, cfg.UndoDepth)
	require.Equal(t, fileformat.DefaultWorkspaceConfig().ChordalTolerance, cfg.ChordalTolerance)
}
