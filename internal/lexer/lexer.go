package lexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"shcov.dev/pkg/shcov/internal/adapter"
	m "shcov.dev/pkg/shcov/internal/model"
)

// ErrInvalidFile is returned when a script path does not name a regular file.
var ErrInvalidFile = errors.New("invalid file")

// ClassifiedLine is the verdict for one line of a script.
type ClassifiedLine struct {
	Number   int
	Text     string // trimmed
	Status   m.LineStatus
	State    CaseState
	Relevant bool
	Rule     string // rule that made an ignored line irrelevant
}

// Lexer scans one script against its coverage.
type Lexer struct {
	fs       adapter.SourceFSAdapter
	path     m.Path
	coverage m.Coverage
}

// NewLexer resolves path and checks that it is a regular file. The coverage
// map is read, never modified.
func NewLexer(fs adapter.SourceFSAdapter, path m.Path, coverage m.Coverage) (*Lexer, error) {
	abs, err := fs.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
	}

	info, err := fs.FileInfo(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, abs, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a file", ErrInvalidFile, abs)
	}

	return &Lexer{
		fs:       fs,
		path:     abs,
		coverage: coverage,
	}, nil
}

// Path returns the absolute path of the script.
func (l *Lexer) Path() m.Path {
	return l.path
}

// Lines yields every line of the script in order. Lines whose status is not
// Ignored are passed through unclassified. A read error is yielded once, as
// returned by the reader, and ends the sequence. The file is closed when the
// sequence ends or the consumer stops early.
func (l *Lexer) Lines() iter.Seq2[ClassifiedLine, error] {
	return func(yield func(ClassifiedLine, error) bool) {
		f, err := l.fs.Open(l.path)
		if err != nil {
			yield(ClassifiedLine{}, err)
			return
		}

		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("failed to close script", "path", l.path, "error", err)
			}
		}()

		reader := bufio.NewReader(f)
		state := Normal

		for number := 0; ; number++ {
			raw, err := reader.ReadString('\n')
			if raw != "" {
				line := l.classify(number, TrimLine(raw), state)
				state = line.State

				if !yield(line, nil) {
					return
				}
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(ClassifiedLine{}, err)
				}

				return
			}
		}
	}
}

// classify advances the case state with the line and, for ignored lines only,
// runs the relevance rules.
func (l *Lexer) classify(number int, text string, state CaseState) ClassifiedLine {
	line := ClassifiedLine{
		Number: number,
		Text:   text,
		Status: l.coverage.Status(number),
		State:  state.Next(text),
	}

	if !l.coverage.IsIgnored(number) {
		return line
	}

	line.Rule = MatchRule(line.Text, line.State)
	line.Relevant = line.Rule == ""

	return line
}

// UncoveredRelevantLines yields the zero-based numbers of ignored lines that
// are executable code, in file order.
func (l *Lexer) UncoveredRelevantLines() iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for line, err := range l.Lines() {
			if err != nil {
				yield(0, err)
				return
			}

			if line.Status != m.Ignored || !line.Relevant {
				continue
			}

			if !yield(line.Number, nil) {
				return
			}
		}
	}
}

// RelevantLines collects UncoveredRelevantLines.
func (l *Lexer) RelevantLines() ([]int, error) {
	var lines []int

	for number, err := range l.UncoveredRelevantLines() {
		if err != nil {
			return lines, err
		}

		lines = append(lines, number)
	}

	slog.Debug("scanned script", "path", l.path, "relevant", len(lines))

	return lines, nil
}
