package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_LoadsTemplate(t *testing.T) {
	t.Parallel()

	// A template defining a duration through the built-in registrations.
	doc := []byte(`{"type": "time.Duration", "data": {"hours": 1.0, "minutes": 30.0}}`)
	path := filepath.Join(t.TempDir(), "duration.json")
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	out := &bytes.Buffer{}
	err := run(out, []string{"-log-level", "error", "-construct", path})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Duration(")
}

func TestRun_MissingTemplate(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{filepath.Join(t.TempDir(), "absent.json")})
	require.Error(t, err)
}
