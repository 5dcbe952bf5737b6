package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	dir, err := EnsureCacheDir()
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, "hitview", filepath.Base(dir))

	// second call is a no-op
	again, err := EnsureCacheDir()
	require.NoError(t, err)
	require.Equal(t, dir, again)

	dbPath, err := DefaultDBPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "hitview.db"), dbPath)
}
