package badger

import (
	"context"
	"testing"

	"github.com/poiesic/netsight/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir() + "/db"
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
	assert.DirExists(t, tmpDir)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	// Second close is harmless
	require.NoError(t, backend.Close())
}

func TestClosedBackend_ReturnsErrStorageClosed(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	require.NoError(t, stores.Close())

	_, err = stores.Graph.GetPerson(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = stores.Vector.FindSimilar(context.Background(), []float32{1}, 0, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
