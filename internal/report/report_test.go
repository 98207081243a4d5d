package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certik/femhub-notebook/adapters/fsstore"
	"github.com/certik/femhub-notebook/domain/worksheet"
)

func seedStore(t *testing.T) *fsstore.Store {
	t.Helper()
	store, err := fsstore.New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	for _, spec := range []struct {
		owner string
		id    int
		cells int
	}{
		{"alice", 1, 3},
		{"alice", 2, 1},
		{"bob", 1, 2},
	} {
		ws, err := worksheet.New(spec.owner, spec.id, "w")
		require.NoError(t, err)
		for i := 1; i < spec.cells; i++ {
			ws.AppendCell(worksheet.CellCompute, "2+2")
		}
		require.NoError(t, store.Save(ctx, ws))
	}
	return store
}

func TestBuild(t *testing.T) {
	r, err := Build(context.Background(), seedStore(t))
	require.NoError(t, err)

	assert.Equal(t, 2, r.Summary.Users)
	assert.Equal(t, 3, r.Summary.Worksheets)
	assert.Greater(t, r.Summary.TotalBytes, int64(0))
	assert.Greater(t, r.Summary.MeanBytes, 0.0)
	assert.Greater(t, r.Summary.MedianBytes, 0.0)

	require.Len(t, r.PerUser, 2)
	assert.Equal(t, "alice", r.PerUser[0].Username)
	assert.Equal(t, 2, r.PerUser[0].WorksheetCount)
	assert.Equal(t, 4, r.PerUser[0].CellCount)
	assert.Equal(t, "bob", r.PerUser[1].Username)
	assert.Equal(t, 1, r.PerUser[1].WorksheetCount)
}

func TestBuildEmptyStore(t *testing.T) {
	store, err := fsstore.New(t.TempDir())
	require.NoError(t, err)

	r, err := Build(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Summary.Users)
	assert.Equal(t, 0, r.Summary.Worksheets)
	assert.Equal(t, 0.0, r.Summary.MeanBytes)
}

func TestWriteXLSX(t *testing.T) {
	r, err := Build(context.Background(), seedStore(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(r, &buf))
	assert.Greater(t, buf.Len(), 0)
	// xlsx files are zip containers
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
