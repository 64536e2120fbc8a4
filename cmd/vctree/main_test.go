package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-dir", t.TempDir()}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestApply(t *testing.T) {
	out, err := run(t, "apply", filepath.Join("testdata", "bold-heading.yaml"))
	require.NoError(t, err)

	require.Contains(t, out, "version 3\n")
	require.Contains(t, out, `main: <heading><text bold="true">foo</text>bar</heading>`)
	require.Contains(t, out, "title: <heading>Notes</heading>")
	require.Contains(t, out, "marker comment:1: [title[0 0], title[0 5]]")
}

func TestApplyUndo(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "bold-heading.yaml"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "undo.yaml")
	require.NoError(t, os.WriteFile(path, append(data, []byte("\nundo: true\n")...), 0o644))

	out, err := run(t, "apply", path)
	require.NoError(t, err)
	require.Contains(t, out, "version 6\n")
	require.Contains(t, out, "main: <paragraph>foobar</paragraph>")
	require.NotContains(t, out, "marker")
}

func TestApplyRejectsInvalidOperation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	scenario := `document: "foo"
operations:
  - __className: RenameOperation
    position: {root: main, path: [0]}
    oldName: paragraph
    newName: heading
`
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))

	_, err := run(t, "apply", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to apply op 0 (RenameOperation)")
}

func TestConverge(t *testing.T) {
	out, err := run(t, "converge", filepath.Join("testdata", "split-vs-rename.yaml"))
	require.NoError(t, err)
	require.Contains(t, out, "converged")
	require.Contains(t, out, "main: <heading>fooX</heading><heading>bar</heading><paragraph></paragraph>")
}

func TestConvergeUnknownRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	scenario := `document: "<paragraph>foo</paragraph>"
a:
  - __className: RenameOperation
    position: {root: aside, path: [0]}
    oldName: paragraph
    newName: heading
`
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))

	_, err := run(t, "converge", path)
	require.ErrorContains(t, err, "batch a")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "vctree.yaml")
	require.NoError(t, os.WriteFile(config, []byte("log:\n  level: debug\ndump: true\n"), 0o644))

	out, err := run(t, "--config", config, "apply", filepath.Join("testdata", "bold-heading.yaml"))
	require.NoError(t, err)
	require.Contains(t, out, `Name: "title"`)

	_, err = run(t, "--config", filepath.Join(dir, "missing.yaml"), "apply", filepath.Join("testdata", "bold-heading.yaml"))
	require.ErrorContains(t, err, "read config")
}

func TestLogLevelFlag(t *testing.T) {
	logDir := t.TempDir()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--log-dir", logDir, "--log-level", "debug", "apply", filepath.Join("testdata", "bold-heading.yaml")})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(logDir, "vctree-debug.log"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"scenario":"bold-heading.yaml"`), "debug log: %s", data)
}

func TestMerge(t *testing.T) {
	out, err := run(t, "merge", filepath.Join("testdata", "split-vs-rename.yaml"))
	require.NoError(t, err)
	require.Contains(t, out, "<heading>fooX</heading><heading>bar</heading><paragraph></paragraph>")
	require.NotContains(t, out, "conflict")
}

func TestMergeReportsConflicts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renames.yaml")
	scenario := `document: "<paragraph>foo</paragraph>"
a:
  - __className: RenameOperation
    position: {root: main, path: [0]}
    oldName: paragraph
    newName: heading
b:
  - __className: RenameOperation
    position: {root: main, path: [0]}
    oldName: paragraph
    newName: quote
`
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))

	out, err := run(t, "merge", path)
	require.NoError(t, err)
	require.Contains(t, out, "<heading>foo</heading>")
	require.Contains(t, out, "conflict (b): RenameOperation lost to a concurrent operation")
}
