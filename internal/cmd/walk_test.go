package cmd

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFilesSkipsDotDirsAndExcludes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte(""), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "pkg", "index.js"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte(""), 0o644))

	files, err := discoverFiles(root, []string{"node_modules/**"})
	require.NoError(t, err)
	sort.Strings(files)

	assert.Equal(t, []string{"app.js"}, files)
}

func TestDiscoverFilesEmptyDir(t *testing.T) {
	root := t.TempDir()
	files, err := discoverFiles(root, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}
