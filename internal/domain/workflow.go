// Package domain wires the lexer to coverage reports: it upgrades ignored
// lines that hold real code to uncovered and reports the outcome.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"shcov.dev/pkg/shcov/internal/adapter"
	"shcov.dev/pkg/shcov/internal/controller"
	"shcov.dev/pkg/shcov/internal/lexer"
	m "shcov.dev/pkg/shcov/internal/model"
)

// RelevantArgs selects one script to classify.
type RelevantArgs struct {
	Path    m.Path
	Report  m.Path
	Explain bool // show every line with its verdict instead of the line numbers
}

// MarkArgs configures a mark run over a whole report.
type MarkArgs struct {
	Report  m.Path
	Output  m.Path // defaults to Report
	Roots   []m.Path
	Exclude []string
	Threads int
}

// ListArgs configures the listing of scripts on disk.
type ListArgs struct {
	Report  m.Path
	Roots   []m.Path
	Exclude []string
}

// Workflow is the set of operations exposed to the CLI.
type Workflow interface {
	Relevant(ctx context.Context, args RelevantArgs) error
	Mark(ctx context.Context, args MarkArgs) error
	List(ctx context.Context, args ListArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI

	discoverer *Discoverer
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(fs adapter.SourceFSAdapter, store adapter.ReportStore, ui controller.UI) Workflow {
	return &workflow{
		SourceFSAdapter: fs,
		ReportStore:     store,
		UI:              ui,
		discoverer:      NewDiscoverer(fs),
	}
}

// Relevant classifies a single script against its entry in the report.
func (w *workflow) Relevant(ctx context.Context, args RelevantArgs) error {
	report, err := w.LoadReport(args.Report)
	if err != nil {
		slog.Error("Failed to load report", "report", args.Report, "error", err)
		return err
	}

	file, _ := w.lookup(report, args.Path)

	lex, err := lexer.NewLexer(w.SourceFSAdapter, args.Path, file.Statuses())
	if err != nil {
		return err
	}

	if args.Explain {
		var lines []lexer.ClassifiedLine

		for line, err := range lex.Lines() {
			if err != nil {
				return err
			}

			lines = append(lines, line)
		}

		return w.DisplayClassification(ctx, lex.Path(), lines)
	}

	lines, err := lex.RelevantLines()
	if err != nil {
		return err
	}

	return w.DisplayRelevantLines(ctx, lex.Path(), lines)
}

// lookup finds the report entry for path, trying the path as given and then
// its absolute form.
func (w *workflow) lookup(report m.Report, path m.Path) (m.FileCoverage, bool) {
	if file, ok := report.Get(path); ok {
		return file, true
	}

	abs, err := w.Abs(path)
	if err != nil {
		return m.FileCoverage{}, false
	}

	return report.Get(abs)
}

// Mark upgrades ignored-but-relevant lines of every script in the report,
// plus untraced scripts found below the roots, and saves the result.
func (w *workflow) Mark(ctx context.Context, args MarkArgs) error {
	report, err := w.LoadReport(args.Report)
	if err != nil {
		slog.Error("Failed to load report", "report", args.Report, "error", err)
		return err
	}

	discovered, err := w.addUntraced(&report, args.Roots, args.Exclude)
	if err != nil {
		return err
	}

	paths, err := w.selectPaths(report, args.Exclude)
	if err != nil {
		return err
	}

	summaries, err := w.markAll(ctx, report, paths, args.Threads)
	if err != nil {
		return err
	}

	for i := range summaries {
		summaries[i].Discovered = discovered[summaries[i].Path]
	}

	output := args.Output
	if output == "" {
		output = args.Report
	}

	if err := w.SaveReport(output, report); err != nil {
		slog.Error("Failed to save report", "output", output, "error", err)
		return err
	}

	slog.Info("Marked relevant lines", "files", len(summaries), "output", output)

	return w.DisplaySummary(ctx, summaries)
}

// addUntraced adds an all-ignored entry for each script below roots that the
// report does not know about yet.
func (w *workflow) addUntraced(report *m.Report, roots []m.Path, exclude []string) (map[m.Path]bool, error) {
	discovered := make(map[m.Path]bool)
	if len(roots) == 0 {
		return discovered, nil
	}

	scripts, err := w.discoverer.Discover(roots, exclude)
	if err != nil {
		slog.Error("Failed to discover scripts", "roots", roots, "error", err)
		return nil, err
	}

	for _, script := range scripts {
		if _, ok := report.Get(script); ok {
			continue
		}

		slog.Debug("Adding untraced script", "path", script)
		report.Set(script, m.FileCoverage{})

		discovered[script] = true
	}

	return discovered, nil
}

func (w *workflow) selectPaths(report m.Report, exclude []string) ([]m.Path, error) {
	filter, err := compileExclude(exclude)
	if err != nil {
		return nil, err
	}

	var paths []m.Path

	for _, path := range report.Paths() {
		if filter.excluded(string(path)) {
			slog.Debug("Excluding script", "path", path)
			continue
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// markAll runs the lexer over every path, at most threads at a time. Each
// script is scanned sequentially by its own lexer; the report is only
// updated once all workers are done.
func (w *workflow) markAll(ctx context.Context, report m.Report, paths []m.Path, threads int) ([]m.FileSummary, error) {
	if threads < 1 {
		threads = 1
	}

	files := make([]m.FileCoverage, len(paths))
	summaries := make([]m.FileSummary, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, path := range paths {
		file, _ := report.Get(path)
		file.Lines = slices.Clone(file.Lines)

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			marked, err := w.markFile(path, &file)
			if err != nil {
				return fmt.Errorf("mark %s: %w", path, err)
			}

			files[i] = file
			summaries[i] = m.FileSummary{Path: path, Marked: marked, Stats: file.Stats()}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("Failed to mark scripts", "error", err)
		}

		return nil, err
	}

	for i, path := range paths {
		report.Set(path, files[i])
	}

	return summaries, nil
}

func (w *workflow) markFile(path m.Path, file *m.FileCoverage) (int, error) {
	lex, err := lexer.NewLexer(w.SourceFSAdapter, path, file.Statuses())
	if err != nil {
		return 0, err
	}

	marked := 0

	for number, err := range lex.UncoveredRelevantLines() {
		if err != nil {
			return marked, err
		}

		if file.MarkUncovered(number) {
			marked++
		}
	}

	slog.Debug("Marked script", "path", path, "marked", marked)

	return marked, nil
}

// List shows the scripts found below roots with their coverage in the report.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	report, err := w.LoadReport(args.Report)
	if err != nil {
		slog.Error("Failed to load report", "report", args.Report, "error", err)
		return err
	}

	scripts, err := w.discoverer.Discover(args.Roots, args.Exclude)
	if err != nil {
		slog.Error("Failed to discover scripts", "roots", args.Roots, "error", err)
		return err
	}

	summaries := make([]m.FileSummary, 0, len(scripts))

	for _, script := range scripts {
		if err := ctx.Err(); err != nil {
			return err
		}

		file, traced := report.Get(script)
		if !traced {
			// Nothing ran, so every relevant line counts against the script.
			if _, err := w.markFile(script, &file); err != nil {
				return fmt.Errorf("scan %s: %w", script, err)
			}
		}

		summaries = append(summaries, m.FileSummary{
			Path:       script,
			Discovered: !traced,
			Stats:      file.Stats(),
		})
	}

	return w.DisplayFiles(ctx, summaries)
}
