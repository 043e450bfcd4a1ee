package controller

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	m "shcov.dev/pkg/shcov/internal/model"
)

// TUI implements UI using Bubble Tea for the per-file tables. Line numbers
// and explanations are printed as plain text so they stay easy to copy.
type TUI struct {
	*SimpleUI

	output io.Writer
}

// NewTUI creates a new TUI writing to the command's output.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{
		SimpleUI: NewSimpleUI(cmd),
		output:   cmd.OutOrStdout(),
	}
}

// DisplaySummary shows the outcome of a mark run.
func (t *TUI) DisplaySummary(ctx context.Context, summaries []m.FileSummary) error {
	return t.display(ctx, newFileListModel("shcov • marked scripts", summaryMode, summaries))
}

// DisplayFiles shows the scripts found on disk.
func (t *TUI) DisplayFiles(ctx context.Context, summaries []m.FileSummary) error {
	return t.display(ctx, newFileListModel("shcov • shell scripts", filesMode, summaries))
}

func (t *TUI) display(ctx context.Context, model fileListModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(f.Fd())
		if err == nil {
			model = model.resize(width, height)
		}
	}

	// A list that fits is printed and left on screen.
	if !model.needsPagination() {
		_, err := fmt.Fprint(t.output, model.View())
		return err
	}

	model.paging = true

	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithOutput(t.output),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}
