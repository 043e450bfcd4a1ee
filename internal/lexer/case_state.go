// Package lexer decides which lines of a shell script matter for coverage.
//
// The tracer leaves many lines without an execution signal. Some of them are
// pure syntax (comments, block keywords, function headers, case labels) and
// stay ignored; the rest are statements that never ran and are reported as
// misses. The decision is made one line at a time with string and regexp
// heuristics and a small case/esac state machine, no shell parser involved.
package lexer

import (
	"regexp"
	"strings"
)

// CaseState tracks where the scanner stands relative to a case statement.
// Nested case statements are not tracked.
type CaseState int

const (
	// Normal is outside of any case statement.
	Normal CaseState = iota
	// InCase is inside case ... esac, between branches.
	InCase
	// InCaseLabel is after a `pattern)` line and before its closing `;;`.
	InCaseLabel
)

var caseStart = regexp.MustCompile(`^case\b`)

func (s CaseState) String() string {
	switch s {
	case Normal:
		return "normal"
	case InCase:
		return "in-case"
	case InCaseLabel:
		return "in-case-label"
	default:
		return "unknown"
	}
}

// Next returns the state after observing one trimmed line.
func (s CaseState) Next(line string) CaseState {
	switch {
	case caseStart.MatchString(line):
		return InCase
	case s == InCase && strings.HasSuffix(line, ")"):
		return InCaseLabel
	case s == InCaseLabel && strings.HasSuffix(line, ";;"):
		return InCase
	case line == "esac":
		return Normal
	}

	return s
}
