package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"shcov.dev/pkg/shcov/internal/lexer"
	m "shcov.dev/pkg/shcov/internal/model"
)

// SimpleUI implements UI using the cobra command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayRelevantLines prints the zero-based line numbers, one per line.
func (s *SimpleUI) DisplayRelevantLines(ctx context.Context, _ m.Path, lines []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, line := range lines {
		s.printf("%d\n", line)
	}

	return nil
}

// DisplayClassification prints every line with its status and verdict.
func (s *SimpleUI) DisplayClassification(ctx context.Context, path m.Path, lines []lexer.ClassifiedLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer

	table := newTable(&buf, []string{"Line", "Status", "Case", "Verdict", "Text"})

	for _, line := range lines {
		table.Append([]string{
			strconv.Itoa(line.Number),
			line.Status.String(),
			line.State.String(),
			verdict(line),
			line.Text,
		})
	}

	table.Render()
	s.printf("%s\n%s", path, buf.String())

	return nil
}

func verdict(line lexer.ClassifiedLine) string {
	switch {
	case line.Status != m.Ignored:
		return "-"
	case line.Relevant:
		return "uncovered"
	default:
		return "ignored (" + line.Rule + ")"
	}
}

// DisplaySummary prints the per-file outcome of a mark run.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summaries []m.FileSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer

	table := newTable(&buf, []string{"Path", "Relevant", "Covered", "Coverage", "Marked"})

	var total m.FileStats

	marked := 0

	for _, summary := range summaries {
		table.Append([]string{
			pathLabel(summary),
			strconv.Itoa(summary.Stats.Relevant),
			strconv.Itoa(summary.Stats.Covered),
			formatPercent(summary.Stats.Percent),
			strconv.Itoa(summary.Marked),
		})

		total.Relevant += summary.Stats.Relevant
		total.Covered += summary.Stats.Covered
		marked += summary.Marked
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(summaries)),
		strconv.Itoa(total.Relevant),
		strconv.Itoa(total.Covered),
		formatPercent(percentOf(total)),
		strconv.Itoa(marked),
	})

	table.Render()
	s.printf("\n%s", buf.String())

	return nil
}

// DisplayFiles prints the scripts found on disk with their coverage.
func (s *SimpleUI) DisplayFiles(ctx context.Context, summaries []m.FileSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer

	table := newTable(&buf, []string{"Path", "Traced", "Relevant", "Coverage"})

	for _, summary := range summaries {
		traced := "yes"
		if summary.Discovered {
			traced = "no"
		}

		table.Append([]string{
			string(summary.Path),
			traced,
			strconv.Itoa(summary.Stats.Relevant),
			formatPercent(summary.Stats.Percent),
		})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Files %d", len(summaries)), "", "", ""})
	table.Render()
	s.printf("\n%s", buf.String())

	return nil
}

func newTable(buf *bytes.Buffer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	return table
}

func pathLabel(summary m.FileSummary) string {
	if summary.Discovered {
		return string(summary.Path) + " (untraced)"
	}

	return string(summary.Path)
}

func percentOf(stats m.FileStats) float64 {
	if stats.Relevant == 0 {
		return 100
	}

	return float64(stats.Covered) * 100 / float64(stats.Relevant)
}

func formatPercent(p float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.2f", p), ".00") + "%"
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
