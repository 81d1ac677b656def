package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilesystemReader_ExistsReadList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "charts/foo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "charts/foo/values.yaml"), []byte("replicas: 1\n"), 0o644))

	r := NewFilesystemReader(dir)
	require.True(t, r.Exists("charts/foo/values.yaml"))
	require.False(t, r.Exists("charts/bar/values.yaml"))

	data, err := r.Read("charts/foo/values.yaml")
	require.NoError(t, err)
	require.Equal(t, "replicas: 1\n", string(data))

	matches, err := r.List("charts", "*.yaml")
	require.NoError(t, err)
	require.Contains(t, matches, "charts/foo/values.yaml")
}

func TestFilesystemReader_SnapshotDigestStable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	r := NewFilesystemReader(dir)
	d1, err := r.SnapshotDigest()
	require.NoError(t, err)
	d2, err := r.SnapshotDigest()
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}
