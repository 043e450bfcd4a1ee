package lexer

import (
	"regexp"
	"slices"
	"strings"
)

// lineSpace is the byte set trimmed from both ends of a line. It is fixed so
// that classification does not depend on the script's encoding.
const lineSpace = " \t\n\v\f\r\x00"

// ignoredKeywords are lines that are syntax when they stand alone.
var ignoredKeywords = []string{
	"esac", "if", "then", "else", "elif", "fi",
	"while", "do", "done", "{", "}", ";;",
}

var ignoredPrefixes = []string{"#", "function"}

// A function declared without the `function` keyword, e.g. `foo()`.
var bareFunction = regexp.MustCompile(`^\w+\(\)`)

// Rule flags a line as irrelevant for coverage.
type Rule struct {
	Name    string
	Matches func(line string, state CaseState) bool
}

var rules = []Rule{
	{"empty", func(line string, _ CaseState) bool {
		return line == ""
	}},
	{"keyword", func(line string, _ CaseState) bool {
		return slices.Contains(ignoredKeywords, line)
	}},
	{"comment-or-function", func(line string, _ CaseState) bool {
		for _, prefix := range ignoredPrefixes {
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}

		return false
	}},
	{"open-paren", func(line string, _ CaseState) bool {
		return strings.HasSuffix(line, "(")
	}},
	{"bare-function", func(line string, _ CaseState) bool {
		return bareFunction.MatchString(line)
	}},
	{"case-label", func(_ string, state CaseState) bool {
		return state == InCaseLabel
	}},
}

// TrimLine strips surrounding whitespace and NUL bytes.
func TrimLine(line string) string {
	return strings.Trim(line, lineSpace)
}

// IsRelevant reports whether a trimmed line is executable code. It never
// fails, whatever bytes the line holds.
func IsRelevant(line string, state CaseState) bool {
	return MatchRule(line, state) == ""
}

// MatchRule returns the name of the first rule that makes the line
// irrelevant, or "" for a relevant line.
func MatchRule(line string, state CaseState) string {
	for _, rule := range rules {
		if rule.Matches(line, state) {
			return rule.Name
		}
	}

	return ""
}
