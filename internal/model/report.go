package model

import "sort"

// FileCoverage holds the traced hit counts of one script: nil for an ignored
// line, 0 for an uncovered one and the number of executions otherwise.
type FileCoverage struct {
	Lines []*int `yaml:"lines"`
}

// FileStats summarizes a FileCoverage.
type FileStats struct {
	Relevant int
	Covered  int
	Percent  float64
}

// Statuses converts the hit counts into a Coverage map.
func (f FileCoverage) Statuses() Coverage {
	coverage := make(Coverage, len(f.Lines))

	for i, hits := range f.Lines {
		switch {
		case hits == nil:
			coverage[i] = Ignored
		case *hits == 0:
			coverage[i] = Uncovered
		default:
			coverage[i] = Covered
		}
	}

	return coverage
}

// MarkUncovered upgrades an ignored line to uncovered. Lines that already
// carry data are left untouched. It reports whether the line changed.
func (f *FileCoverage) MarkUncovered(line int) bool {
	if line < 0 {
		return false
	}

	for len(f.Lines) <= line {
		f.Lines = append(f.Lines, nil)
	}

	if f.Lines[line] != nil {
		return false
	}

	zero := 0
	f.Lines[line] = &zero

	return true
}

// Stats counts relevant and covered lines.
func (f FileCoverage) Stats() FileStats {
	var stats FileStats

	for _, hits := range f.Lines {
		if hits == nil {
			continue
		}

		stats.Relevant++

		if *hits > 0 {
			stats.Covered++
		}
	}

	if stats.Relevant == 0 {
		stats.Percent = 100

		return stats
	}

	stats.Percent = float64(stats.Covered) * 100 / float64(stats.Relevant)

	return stats
}

// Report is the coverage of every traced script, keyed by absolute path.
type Report struct {
	Files map[Path]FileCoverage `yaml:"files"`
}

// NewReport creates an empty report.
func NewReport() Report {
	return Report{Files: make(map[Path]FileCoverage)}
}

// Get returns the coverage recorded for path.
func (r Report) Get(path Path) (FileCoverage, bool) {
	file, ok := r.Files[path]

	return file, ok
}

// Set records the coverage of path.
func (r *Report) Set(path Path, file FileCoverage) {
	if r.Files == nil {
		r.Files = make(map[Path]FileCoverage)
	}

	r.Files[path] = file
}

// Paths returns the report's files in sorted order.
func (r Report) Paths() []Path {
	paths := make([]Path, 0, len(r.Files))
	for path := range r.Files {
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i] < paths[j]
	})

	return paths
}

// FileSummary is the per-script outcome of a run.
type FileSummary struct {
	Path       Path
	Discovered bool // not present in the coverage report before this run
	Marked     int  // lines upgraded from ignored to uncovered
	Stats      FileStats
}
