package model

import "fmt"

// LineStatus is the per-line verdict produced by tracing a script.
type LineStatus int

const (
	// Ignored means the tracer emitted no execution signal for the line.
	Ignored LineStatus = iota
	// Uncovered indicates a relevant line that never ran.
	Uncovered
	// Covered indicates a line that ran at least once.
	Covered
)

func (s LineStatus) String() string {
	switch s {
	case Ignored:
		return "ignored"
	case Uncovered:
		return "uncovered"
	case Covered:
		return "covered"
	default:
		return fmt.Sprintf("LineStatus(%d)", int(s))
	}
}

// Coverage maps zero-based line indexes to their status. A line with no entry
// reads as Ignored.
type Coverage map[int]LineStatus

// Status returns the status of the given line.
func (c Coverage) Status(line int) LineStatus {
	return c[line]
}

// IsIgnored reports whether the tracer left no signal for the line.
func (c Coverage) IsIgnored(line int) bool {
	return c.Status(line) == Ignored
}
