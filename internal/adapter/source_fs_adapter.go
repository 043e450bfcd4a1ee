// Package adapter contains infrastructure adapters for the shcov CLI.
package adapter

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	m "shcov.dev/pkg/shcov/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer relies
// on when scanning scripts. It hides direct `os` access so the workflow logic
// can be tested without touching the disk.
type SourceFSAdapter interface {
	// Abs resolves path against the working directory.
	Abs(path m.Path) (m.Path, error)

	// FileInfo returns metadata for a path, following symlinks.
	FileInfo(path m.Path) (os.FileInfo, error)

	// Open returns a read-only handle on the file. The caller closes it.
	Open(path m.Path) (io.ReadCloser, error)

	// ReadHead returns at most n bytes from the start of the file.
	ReadHead(path m.Path, n int) ([]byte, error)

	// Walk traverses every file below root.
	Walk(root m.Path, fn FilepathWalkFunc) error
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// skippedDirs are never descended into while walking.
var skippedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
}

// LocalSourceFSAdapter backs SourceFSAdapter with the local filesystem.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Abs returns the absolute, cleaned form of path.
func (a *LocalSourceFSAdapter) Abs(path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// Open opens the file for reading.
func (a *LocalSourceFSAdapter) Open(path m.Path) (io.ReadCloser, error) {
	// #nosec G304 - reading user scripts is the purpose of the tool
	return os.Open(string(path))
}

// ReadHead reads up to n bytes from the beginning of the file.
func (a *LocalSourceFSAdapter) ReadHead(path m.Path, n int) ([]byte, error) {
	f, err := a.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, n)

	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return buf[:read], nil
}

// Walk iterates over files under root, skipping VCS and dependency folders.
func (a *LocalSourceFSAdapter) Walk(root m.Path, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && path != rootStr && skippedDirs[info.Name()] {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}
