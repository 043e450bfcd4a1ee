package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseState_Next(t *testing.T) {
	tests := []struct {
		name  string
		state CaseState
		line  string
		want  CaseState
	}{
		{"case from normal", Normal, "case $x in", InCase},
		{"case from label", InCaseLabel, "case $y in", InCase},
		{"case word boundary", Normal, "cases=1", Normal},
		{"case alone", Normal, "case", InCase},
		{"label opens", InCase, "a)", InCaseLabel},
		{"wildcard label", InCase, "*)", InCaseLabel},
		{"paren outside case", Normal, "foo)", Normal},
		{"body keeps label", InCaseLabel, "echo hi", InCaseLabel},
		{"body ending with paren", InCaseLabel, "echo $(date)", InCaseLabel},
		{"label closes", InCaseLabel, ";;", InCase},
		{"inline close", InCaseLabel, "echo hi ;;", InCase},
		{"double semicolon outside label", InCase, ";;", InCase},
		{"esac from case", InCase, "esac", Normal},
		{"esac from label", InCaseLabel, "esac", Normal},
		{"esac from normal", Normal, "esac", Normal},
		{"esac with suffix", InCase, "esac;", InCase},
		{"plain line", Normal, "echo hi", Normal},
		{"inline branch", InCase, "a) echo hi ;;", InCase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Next(tt.line))
		})
	}
}

func TestCaseState_EsacAlwaysResets(t *testing.T) {
	for _, state := range []CaseState{Normal, InCase, InCaseLabel} {
		assert.Equal(t, Normal, state.Next("esac"), state.String())
	}
}

func TestCaseState_String(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "in-case", InCase.String())
	assert.Equal(t, "in-case-label", InCaseLabel.String())
	assert.Equal(t, "unknown", CaseState(9).String())
}
