package reports

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateOpenList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	f, name, err := store.Create("coverage_import")
	require.NoError(t, err)
	_, err = f.WriteString("tc_id,status\n1042,inserted\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := store.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Contains(t, string(data), "1042,inserted")

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, name, files[0].Name)
}

func TestStore_OpenRejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("../etc/passwd")
	assert.Error(t, err)
	_, err = store.Open(".hidden.csv")
	assert.Error(t, err)
}

func TestStore_Purge(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, oldName, err := store.Create("metrics_import")
	require.NoError(t, err)
	old := filepath.Join(dir, oldName)
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	_, freshName, err := store.Create("coverage_import")
	require.NoError(t, err)

	removed, err := store.Purge(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, freshName, files[0].Name)
}
