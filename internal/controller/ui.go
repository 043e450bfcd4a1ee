// Package controller provides output adapters for displaying coverage results.
package controller

import (
	"context"

	"shcov.dev/pkg/shcov/internal/lexer"
	m "shcov.dev/pkg/shcov/internal/model"
)

// UI defines the interface for displaying classification results.
// Implementations can use different output methods.
type UI interface {
	DisplayRelevantLines(ctx context.Context, path m.Path, lines []int) error
	DisplayClassification(ctx context.Context, path m.Path, lines []lexer.ClassifiedLine) error
	DisplaySummary(ctx context.Context, summaries []m.FileSummary) error
	DisplayFiles(ctx context.Context, summaries []m.FileSummary) error
}
