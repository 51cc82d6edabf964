// Package testutil provides shared test helpers used across integration
// and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// TestData returns the path of a file under tests/testdata.
func TestData(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(RepoRoot(t), "tests", "testdata", name)
}

// InstallExecutable copies a testdata script into dir under name and marks
// it executable.
func InstallExecutable(t *testing.T, script string, dir string, name string) string {
	t.Helper()
	data, err := os.ReadFile(TestData(t, script))
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0755))
	return path
}

// WriteFiles creates placeholder files for the given relative paths under
// root and returns their absolute paths.
func WriteFiles(t *testing.T, root string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("<packages />\n"), 0644))
		paths = append(paths, path)
	}
	return paths
}
