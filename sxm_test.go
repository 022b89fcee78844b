package sxm

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSxM(t *testing.T) *SxM {
	t.Helper()

	m, err := New(filepath.Join(t.TempDir(), "sxm.db"), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return m
}

func TestCatalog(t *testing.T) {
	m := testSxM(t)

	path := filepath.Join(t.TempDir(), "topo001.sxm")
	writeImage(t, path, 2, 3, []string{"Z", "Current"}, nil)

	img, err := OpenHeader(path)
	require.NoError(t, err)

	require.NoError(t, m.db.Add(img))

	entries, err := m.Images()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, path, e.Path)
	assert.True(t, e.Recorded.Equal(time.Date(2024, time.March, 15, 14, 30, 5, 0, time.UTC)))
	assert.Equal(t, 0.1, e.Bias)
	assert.Equal(t, "down", e.Direction)
	assert.Equal(t, 2, e.XPixels)
	assert.Equal(t, 3, e.YPixels)
	assert.Equal(t, 2, e.Channels)
}

func TestCatalogUnchanged(t *testing.T) {
	m := testSxM(t)

	path := filepath.Join(t.TempDir(), "topo001.sxm")
	writeImage(t, path, 2, 3, []string{"Z"}, nil)

	img, err := OpenHeader(path)
	require.NoError(t, err)

	require.NoError(t, m.db.Add(img))
	require.NoError(t, m.db.Add(img))

	entries, err := m.Images()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCatalogChanged(t *testing.T) {
	m := testSxM(t)

	path := filepath.Join(t.TempDir(), "topo001.sxm")
	writeImage(t, path, 2, 3, []string{"Z"}, nil)

	img, err := OpenHeader(path)
	require.NoError(t, err)
	require.NoError(t, m.db.Add(img))

	// rewrite the file with a different shape
	writeImage(t, path, 4, 4, []string{"Z"}, nil)

	img, err = OpenHeader(path)
	require.NoError(t, err)
	require.NoError(t, m.db.Add(img))

	entries, err := m.Images()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].XPixels)
}

func TestScan(t *testing.T) {
	m := testSxM(t)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "session1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755))

	writeImage(t, filepath.Join(dir, "topo001.sxm"), 2, 3, []string{"Z"}, sequence(12))
	writeImage(t, filepath.Join(dir, "session1", "topo002.sxm"), 4, 4, []string{"Z"}, sequence(32))
	writeImage(t, filepath.Join(dir, ".hidden", "topo003.sxm"), 2, 2, []string{"Z"}, sequence(8))

	// not an image; must be skipped, not fatal
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.sxm"), []byte("no terminator here"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignore me"), 0o644))

	require.NoError(t, m.Scan(dir))

	entries, err := m.Images()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	paths := []string{entries[0].Path, entries[1].Path}
	assert.Contains(t, paths, filepath.Join(dir, "topo001.sxm"))
	assert.Contains(t, paths, filepath.Join(dir, "session1", "topo002.sxm"))
}
