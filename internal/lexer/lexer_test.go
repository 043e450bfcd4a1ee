package lexer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shcov.dev/pkg/shcov/internal/adapter"
	m "shcov.dev/pkg/shcov/internal/model"
)

const caseScript = `case $x in
  a)
    echo hi
    ;;
  *)
    echo bye
    ;;
esac
`

const mixedScript = `#!/bin/bash
# setup
set -e

function greet {
  echo "hello $1"
}

build() {
  make all
}

if [ -n "$CI" ]; then
  greet ci
else
  build
fi

args=(
  one
  two
)
`

func writeScript(t *testing.T, contents string) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return m.Path(path)
}

func newTestLexer(t *testing.T, contents string, coverage m.Coverage) *Lexer {
	t.Helper()

	lexer, err := NewLexer(adapter.NewLocalSourceFSAdapter(), writeScript(t, contents), coverage)
	require.NoError(t, err)

	return lexer
}

func TestLexer_CaseStatement(t *testing.T) {
	coverage := m.Coverage{
		0: m.Ignored, 1: m.Ignored, 2: m.Uncovered, 3: m.Ignored,
		4: m.Ignored, 5: m.Covered, 6: m.Ignored, 7: m.Ignored,
	}

	lines, err := newTestLexer(t, caseScript, coverage).RelevantLines()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, lines)
}

func TestLexer_MixedScript(t *testing.T) {
	coverage := m.Coverage{2: m.Covered, 13: m.Covered, 14: m.Covered}

	lines, err := newTestLexer(t, mixedScript, coverage).RelevantLines()
	require.NoError(t, err)

	// 5 and 9 are the function bodies, 12 the if line, 15 the else branch,
	// 19 to 21 the array items and its closing paren.
	assert.Equal(t, []int{5, 9, 12, 15, 19, 20, 21}, lines)
}

func TestLexer_SkipsLinesWithData(t *testing.T) {
	script := "echo a\necho b\necho c\n"
	coverage := m.Coverage{0: m.Covered, 1: m.Uncovered}

	lines, err := newTestLexer(t, script, coverage).RelevantLines()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, lines)
}

func TestLexer_NeverYieldsLinesWithData(t *testing.T) {
	coverage := m.Coverage{}
	for i := range 30 {
		if i%3 != 0 {
			coverage[i] = m.LineStatus(i % 3)
		}
	}

	lexer := newTestLexer(t, mixedScript, coverage)

	for number, err := range lexer.UncoveredRelevantLines() {
		require.NoError(t, err)
		assert.Equal(t, m.Ignored, coverage.Status(number), "line %d", number)
	}
}

func TestLexer_Deterministic(t *testing.T) {
	lexer := newTestLexer(t, mixedScript, m.Coverage{3: m.Covered})

	first, err := lexer.RelevantLines()
	require.NoError(t, err)

	for range 3 {
		again, err := lexer.RelevantLines()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLexer_LineSplitting(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     []int
	}{
		{"empty file", "", nil},
		{"no trailing newline", "echo a\necho b", []int{0, 1}},
		{"blank lines", "\n\necho a\n\n", []int{2}},
		{"crlf", "if\r\necho a\r\nfi\r\n", []int{1}},
		{"long line", strings.Repeat("x", 200_000) + "\necho b\n", []int{0, 1}},
		{"binary", "\x00\xff\xfe\n\x89PNG\r\n", []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := newTestLexer(t, tt.contents, m.Coverage{}).RelevantLines()
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestLexer_Lines(t *testing.T) {
	lexer := newTestLexer(t, caseScript, m.Coverage{5: m.Covered})

	var got []ClassifiedLine
	for line, err := range lexer.Lines() {
		require.NoError(t, err)
		got = append(got, line)
	}

	require.Len(t, got, 8)
	assert.Equal(t, ClassifiedLine{Number: 0, Text: "case $x in", State: InCase, Relevant: true}, got[0])
	assert.Equal(t, ClassifiedLine{Number: 1, Text: "a)", State: InCaseLabel, Rule: "case-label"}, got[1])
	assert.Equal(t, "keyword", got[3].Rule)
	assert.Equal(t, InCase, got[3].State)
	assert.Equal(t, ClassifiedLine{Number: 5, Text: "echo bye", Status: m.Covered, State: InCaseLabel}, got[5])
	assert.Equal(t, Normal, got[7].State)
}

func TestNewLexer_InvalidFile(t *testing.T) {
	fs := adapter.NewLocalSourceFSAdapter()
	dir := t.TempDir()

	_, err := NewLexer(fs, m.Path(filepath.Join(dir, "missing.sh")), m.Coverage{})
	require.ErrorIs(t, err, ErrInvalidFile)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.NotContains(t, err.Error(), "is not a file")

	_, err = NewLexer(fs, m.Path(dir), m.Coverage{})
	require.ErrorIs(t, err, ErrInvalidFile)
	assert.NotErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "is not a file")
}

func TestLexer_ExplicitIgnoredEntryIsClassified(t *testing.T) {
	path := writeScript(t, "echo a\n# note\necho b\n")
	coverage := m.Coverage{0: m.Ignored, 1: m.Ignored, 2: m.Covered}

	lexer, err := NewLexer(adapter.NewLocalSourceFSAdapter(), path, coverage)
	require.NoError(t, err)

	lines, err := lexer.RelevantLines()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, lines)
}

func TestNewLexer_ResolvesPath(t *testing.T) {
	path := writeScript(t, "echo hi\n")
	relative, err := filepath.Rel(mustGetwd(t), string(path))
	require.NoError(t, err)

	lexer, err := NewLexer(adapter.NewLocalSourceFSAdapter(), m.Path(relative), m.Coverage{})
	require.NoError(t, err)
	assert.Equal(t, path, lexer.Path())
}

// trackingFS hands out readers that record whether they were closed.
type trackingFS struct {
	*adapter.LocalSourceFSAdapter

	opened []*trackingReader
	fail   error
}

type trackingReader struct {
	io.Reader

	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func (f *trackingFS) Open(path m.Path) (io.ReadCloser, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	var reader io.Reader = strings.NewReader(string(data))
	if f.fail != nil {
		reader = io.MultiReader(reader, &failingReader{err: f.fail})
	}

	tracked := &trackingReader{Reader: reader}
	f.opened = append(f.opened, tracked)

	return tracked, nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestLexer_EarlyStopClosesFile(t *testing.T) {
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter()}

	lexer, err := NewLexer(fs, writeScript(t, "echo a\necho b\necho c\n"), m.Coverage{})
	require.NoError(t, err)

	for number, err := range lexer.UncoveredRelevantLines() {
		require.NoError(t, err)
		assert.Equal(t, 0, number)

		break
	}

	require.Len(t, fs.opened, 1)
	assert.True(t, fs.opened[0].closed)
}

func TestLexer_ReadErrorIsPropagated(t *testing.T) {
	readErr := errors.New("permission revoked")
	fs := &trackingFS{LocalSourceFSAdapter: adapter.NewLocalSourceFSAdapter(), fail: readErr}

	lexer, err := NewLexer(fs, writeScript(t, "echo a\n"), m.Coverage{})
	require.NoError(t, err)

	lines, err := lexer.RelevantLines()
	assert.Same(t, readErr, err)
	assert.Equal(t, []int{0}, lines)

	require.Len(t, fs.opened, 1)
	assert.True(t, fs.opened[0].closed)
}

func TestLexer_OpenErrorIsPropagated(t *testing.T) {
	path := writeScript(t, "echo a\n")

	lexer, err := NewLexer(adapter.NewLocalSourceFSAdapter(), path, m.Coverage{})
	require.NoError(t, err)
	require.NoError(t, os.Remove(string(path)))

	_, err = lexer.RelevantLines()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func mustGetwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	return wd
}
