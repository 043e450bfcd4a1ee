// Package model defines the data structures for shell script coverage.
package model

// Path represents a file system path.
type Path string
