package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "shcov.dev/pkg/shcov/internal/model"
)

const caseScript = "case $x in\n  a)\n    echo hi\n    ;;\n  *)\n    echo bye\n    ;;\nesac\n"

func runCommand(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(sub)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-file", filepath.Join(t.TempDir(), "shcov.log")))

	err := cmd.Execute()

	return out.String(), err
}

func writeScript(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestRelevantCmd(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "case.sh", caseScript)
	report := filepath.Join(dir, "coverage.json")
	reportJSON := `{"files": {"` + script + `": {"lines": [null, null, 0, null, null, 1, null, null]}}}`
	require.NoError(t, os.WriteFile(report, []byte(reportJSON), 0o644))

	out, err := runCommand(t, newRelevantCmd(), "relevant", script, "--report", report)
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestRelevantCmd_Explain(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "run.sh", "# hello\necho hi\n")

	out, err := runCommand(t, newRelevantCmd(), "relevant", script, "-e", "--report", filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, script)
	assert.Contains(t, out, "ignored (comment-or-function)")
	assert.Contains(t, out, "echo hi")
}

func TestRelevantCmd_InvalidFile(t *testing.T) {
	dir := t.TempDir()

	_, err := runCommand(t, newRelevantCmd(), "relevant", dir, "--report", filepath.Join(dir, "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a file")
}

func TestRelevantCmd_RequiresOneArg(t *testing.T) {
	_, err := runCommand(t, newRelevantCmd(), "relevant")
	require.Error(t, err)
}

func TestMarkCmd(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "run.sh", "echo a\nfi\necho b\n")
	writeScript(t, dir, "tool.sh", "echo tool\n")

	report := filepath.Join(dir, "coverage.yaml")
	require.NoError(t, reportStore.SaveReport(m.Path(report), m.Report{
		Files: map[m.Path]m.FileCoverage{m.Path(script): {}},
	}))

	output := filepath.Join(dir, "marked.yaml")

	out, err := runCommand(t, newMarkCmd(), "mark", dir, "--report", report, "--output", output, "-p", "2", "-x", "tool")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "total files 1")
	assert.Contains(t, out, script)

	saved, err := reportStore.LoadReport(m.Path(output))
	require.NoError(t, err)
	require.Len(t, saved.Files, 1)

	file, ok := saved.Get(m.Path(script))
	require.True(t, ok)
	assert.Equal(t, m.Coverage{0: m.Uncovered, 1: m.Ignored, 2: m.Uncovered}, file.Statuses())
}

func TestListCmd(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.sh", "echo a\n")
	writeScript(t, dir, "notes.txt", "text\n")

	out, err := runCommand(t, newListCmd(), "list", dir, "--report", filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "a.sh"))
	assert.NotContains(t, out, "notes.txt")
	assert.Contains(t, strings.ToLower(out), "total files 1")
}
