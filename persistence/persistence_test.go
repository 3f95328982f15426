package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepruin/neurographite/graph"
)

func TestFileStoreLoadMissingFileReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	id := graph.NewNodeID()
	snap := &graph.Snapshot{
		Nodes: []*graph.Node{{ID: id, NodeType: "generic"}},
	}

	require.NoError(t, store.Save(snap))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, id, loaded.Nodes[0].ID)
}

func TestFileStoreDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	snap := &graph.Snapshot{Nodes: []*graph.Node{{ID: graph.NewNodeID()}}}
	require.NoError(t, store.Save(snap))

	path := filepath.Join(dir, "graph.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = append(data, '!')
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestFileStoreBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	id := graph.NewNodeID()
	require.NoError(t, store.Save(&graph.Snapshot{Nodes: []*graph.Node{{ID: id}}}))

	name, err := store.Backup()
	require.NoError(t, err)
	assert.NotEmpty(t, name)

	backups, err := store.ListBackups()
	require.NoError(t, err)
	assert.Contains(t, backups, name)

	restored, err := store.RestoreFromBackup(name)
	require.NoError(t, err)
	require.Len(t, restored.Nodes, 1)
	assert.Equal(t, id, restored.Nodes[0].ID)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.BackupCount)
	assert.Greater(t, stats.SnapshotSize, int64(0))
}

func TestFileStoreCleanupBackups(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(&graph.Snapshot{Nodes: []*graph.Node{{ID: graph.NewNodeID()}}}))

	for i := 0; i < 3; i++ {
		_, err := store.Backup()
		require.NoError(t, err)
	}

	removed, err := store.CleanupBackups(1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, 0)

	backups, err := store.ListBackups()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(backups), 3)
}

func TestNoopStore(t *testing.T) {
	var store NoopStore
	snap, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, store.Save(&graph.Snapshot{}))
}
