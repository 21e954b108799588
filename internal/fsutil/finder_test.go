package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.json"))
	touch(t, filepath.Join(dir, "a.json"))
	touch(t, filepath.Join(dir, "nested", "c.json"))
	touch(t, filepath.Join(dir, "ignored.txt"))

	files, err := FindFilesByExtension(dir, ".json")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "nested", "c.json"),
	}, files)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}

func TestResolvePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "one.json")
	touch(t, file)

	// A file path yields itself, regardless of extension.
	files, err := ResolvePaths(file, ".json")
	require.NoError(t, err)
	require.Equal(t, []string{file}, files)

	// A directory yields its matching files.
	files, err = ResolvePaths(dir, ".json")
	require.NoError(t, err)
	require.Equal(t, []string{file}, files)
}

func TestResolvePaths_Errors(t *testing.T) {
	t.Parallel()

	_, err := ResolvePaths(filepath.Join(t.TempDir(), "missing"), ".json")
	require.Error(t, err)

	empty := t.TempDir()
	_, err = ResolvePaths(empty, ".json")
	require.Error(t, err, "a directory without matching files is an error")
}
