package controller

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "shcov.dev/pkg/shcov/internal/model"
)

type listMode int

const (
	// summaryMode lists the outcome of a mark run.
	summaryMode listMode = iota
	// filesMode lists scripts found on disk.
	filesMode
)

const (
	defaultWidth = 80
	// title, blank line, totals, blank line, help
	reservedLines = 5
	percentWidth  = 8
	linesWidth    = 11
	extraWidth    = 10
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	totalsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// fileItem adapts a summary to the bubbles list.
type fileItem struct {
	summary m.FileSummary
}

func (i fileItem) FilterValue() string { return string(i.summary.Path) }

type fileDelegate struct {
	mode listMode
}

func (d fileDelegate) Height() int  { return 1 }
func (d fileDelegate) Spacing() int { return 0 }
func (d fileDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d fileDelegate) Render(w io.Writer, lm list.Model, index int, item list.Item) {
	file, ok := item.(fileItem)
	if !ok {
		return
	}

	_, _ = fmt.Fprint(w, renderRow(d.mode, file.summary, lm.Width(), index == lm.Index()))
}

func coverageStyle(percent float64) lipgloss.Style {
	style := lipgloss.NewStyle().Width(percentWidth).Align(lipgloss.Right).Bold(true)

	switch {
	case percent >= 80:
		return style.Foreground(lipgloss.Color("10"))
	case percent >= 50:
		return style.Foreground(lipgloss.Color("11"))
	default:
		return style.Foreground(lipgloss.Color("9"))
	}
}

// renderRow lays out one script as: coverage, covered/relevant, the mode
// specific column, then the path truncated to what is left of width.
func renderRow(mode listMode, summary m.FileSummary, width int, selected bool) string {
	if width <= 0 {
		width = defaultWidth
	}

	lines := lipgloss.NewStyle().Width(linesWidth).Align(lipgloss.Right).
		Render(fmt.Sprintf("%d/%d", summary.Stats.Covered, summary.Stats.Relevant))

	var extra string

	switch mode {
	case summaryMode:
		extra = "+" + strconv.Itoa(summary.Marked)
		if summary.Discovered {
			extra += " new"
		}
	case filesMode:
		extra = "traced"
		if summary.Discovered {
			extra = "untraced"
		}
	}

	columns := fmt.Sprintf("%s %s  %s",
		coverageStyle(summary.Stats.Percent).Render(formatPercent(summary.Stats.Percent)),
		lines,
		dimStyle.Width(extraWidth).Render(extra),
	)

	path := truncateToWidth(string(summary.Path), width-lipgloss.Width(columns)-1)

	style := pathStyle
	if selected {
		style = selectedStyle
	}

	return columns + " " + style.Render(path)
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	const ellipsis = "…"

	if width == 1 {
		return ellipsis
	}

	// Keep the tail: the file name matters more than the leading directories.
	runes := []rune(text)
	kept := 0

	start := len(runes)
	for start > 0 {
		w := lipgloss.Width(string(runes[start-1]))
		if kept+w > width-1 {
			break
		}

		kept += w
		start--
	}

	return ellipsis + string(runes[start:])
}

// fileListModel shows per-file coverage. It prints as a static block when the
// list fits the terminal and becomes a scrollable, filterable list otherwise.
type fileListModel struct {
	title     string
	mode      listMode
	summaries []m.FileSummary
	files     list.Model
	width     int
	height    int
	paging    bool
}

func newFileListModel(title string, mode listMode, summaries []m.FileSummary) fileListModel {
	items := make([]list.Item, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, fileItem{summary: summary})
	}

	files := list.New(items, fileDelegate{mode: mode}, defaultWidth, 20)
	files.SetShowTitle(false)
	files.SetShowHelp(false)
	files.SetShowStatusBar(false)
	files.SetShowPagination(true)
	files.FilterInput.Placeholder = "Filter by path…"

	return fileListModel{
		title:     title,
		mode:      mode,
		summaries: summaries,
		files:     files,
	}
}

func (fm fileListModel) resize(width, height int) fileListModel {
	fm.width = width
	fm.height = height

	listHeight := height - reservedLines
	if listHeight < 1 {
		listHeight = 1
	}

	fm.files.SetSize(width, listHeight)

	return fm
}

// needsPagination reports whether the rows overflow the known terminal height.
func (fm fileListModel) needsPagination() bool {
	if fm.height == 0 || len(fm.summaries) == 0 {
		return false
	}

	return len(fm.summaries) > fm.height-reservedLines
}

func (fm fileListModel) Init() tea.Cmd {
	return nil
}

func (fm fileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return fm.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		if fm.quits(msg) {
			return fm, tea.Quit
		}
	}

	var cmd tea.Cmd

	fm.files, cmd = fm.files.Update(msg)

	return fm, cmd
}

// quits reports whether the key leaves the program. While a filter is being
// typed only ctrl+c quits; esc clears an applied filter first.
func (fm fileListModel) quits(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyCtrlC {
		return true
	}

	switch fm.files.FilterState() {
	case list.Filtering:
		return false
	case list.FilterApplied:
		return msg.String() == "q"
	default:
		return msg.String() == "q" || msg.Type == tea.KeyEsc
	}
}

func (fm fileListModel) View() string {
	sections := []string{titleStyle.Render(fm.title), ""}

	switch {
	case len(fm.summaries) == 0:
		sections = append(sections, dimStyle.Render("No shell scripts found"))
	case fm.paging:
		sections = append(sections, fm.files.View())
	default:
		rows := make([]string, 0, len(fm.summaries))
		for _, summary := range fm.summaries {
			rows = append(rows, renderRow(fm.mode, summary, fm.width, false))
		}

		sections = append(sections, strings.Join(rows, "\n"))
	}

	sections = append(sections, "", totalsStyle.Render(fm.totals()))

	if fm.paging {
		sections = append(sections, helpStyle.Render("↑/↓ scroll • / filter • q quit"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (fm fileListModel) totals() string {
	var total m.FileStats

	marked, untraced := 0, 0

	for _, summary := range fm.summaries {
		total.Relevant += summary.Stats.Relevant
		total.Covered += summary.Stats.Covered
		marked += summary.Marked

		if summary.Discovered {
			untraced++
		}
	}

	text := fmt.Sprintf("%d files • %d/%d lines • %s",
		len(fm.summaries), total.Covered, total.Relevant, formatPercent(percentOf(total)))

	switch fm.mode {
	case summaryMode:
		text += fmt.Sprintf(" • %d marked", marked)
	case filesMode:
		text += fmt.Sprintf(" • %d untraced", untraced)
	}

	return text
}
