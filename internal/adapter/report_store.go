package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "shcov.dev/pkg/shcov/internal/model"
)

// ReportStore persists coverage reports.
type ReportStore interface {
	SaveReport(path m.Path, report m.Report) error
	LoadReport(path m.Path) (m.Report, error)
}

// YAMLReportStore reads and writes reports as YAML. JSON reports load too,
// since YAML is a superset of JSON.
type YAMLReportStore struct{}

// NewReportStore creates a new ReportStore.
func NewReportStore() ReportStore {
	return &YAMLReportStore{}
}

// LoadReport reads the report at path. A missing file yields an empty report.
func (s *YAMLReportStore) LoadReport(path m.Path) (m.Report, error) {
	// #nosec G304 - report path comes from the user's configuration
	data, err := os.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("report not found, starting empty", "path", path)
			return m.NewReport(), nil
		}

		return m.Report{}, fmt.Errorf("read report %s: %w", path, err)
	}

	report := m.NewReport()
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	if report.Files == nil {
		report.Files = make(map[m.Path]m.FileCoverage)
	}

	slog.Debug("loaded report", "path", path, "files", len(report.Files))

	return report, nil
}

// SaveReport writes the report to path, creating parent directories.
func (s *YAMLReportStore) SaveReport(path m.Path, report m.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	slog.Debug("saved report", "path", path, "files", len(report.Files))

	return nil
}
