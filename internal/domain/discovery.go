package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"shcov.dev/pkg/shcov/internal/adapter"
	m "shcov.dev/pkg/shcov/internal/model"
)

const shebangProbeSize = 128

var shellExtensions = map[string]bool{
	".sh":   true,
	".bash": true,
	".ksh":  true,
	".zsh":  true,
}

var shellShebang = regexp.MustCompile(`^#!\s*\S*/(?:env\s+)?(?:ba|da|k|z)?sh\b`)

// Discoverer finds shell scripts below a set of root directories.
type Discoverer struct {
	fs adapter.SourceFSAdapter
}

// NewDiscoverer creates a Discoverer backed by fs.
func NewDiscoverer(fs adapter.SourceFSAdapter) *Discoverer {
	return &Discoverer{fs: fs}
}

// Discover walks roots and returns the absolute paths of shell scripts that
// match none of the exclude patterns, sorted and de-duplicated.
func (d *Discoverer) Discover(roots []m.Path, exclude []string) ([]m.Path, error) {
	filter, err := compileExclude(exclude)
	if err != nil {
		return nil, err
	}

	seen := make(map[m.Path]bool)

	for _, root := range roots {
		absRoot, err := d.fs.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}

		err = d.fs.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.Mode().IsRegular() || filter.excluded(path) {
				return nil
			}

			isScript, err := d.isShellScript(m.Path(path))
			if err != nil {
				return err
			}

			if isScript {
				seen[m.Path(path)] = true
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", absRoot, err)
		}
	}

	scripts := make([]m.Path, 0, len(seen))
	for path := range seen {
		scripts = append(scripts, path)
	}

	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i] < scripts[j]
	})

	return scripts, nil
}

func (d *Discoverer) isShellScript(path m.Path) (bool, error) {
	if shellExtensions[filepath.Ext(string(path))] {
		return true, nil
	}

	head, err := d.fs.ReadHead(path, shebangProbeSize)
	if err != nil {
		return false, err
	}

	return shellShebang.Match(head), nil
}

type excludeFilter []*regexp.Regexp

func compileExclude(patterns []string) (excludeFilter, error) {
	filter := make(excludeFilter, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		filter = append(filter, re)
	}

	return filter, nil
}

func (f excludeFilter) excluded(path string) bool {
	for _, re := range f {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}
