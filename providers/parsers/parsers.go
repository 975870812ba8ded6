/*
Package parsers provides parsers for dependency manifest files.

Goals:
  - Reading declared requirements in declaration order
  - Reading installed (locked) package versions when the format has them

Usage:

	parser := parsers.NewManifestParser(fetcher, "")
	reqs, err := parser.Requires(ctx)
*/
package parsers

import (
	"context"
	"errors"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

// DependencyParser represents basic interface for parsers in this package.
type DependencyParser interface {
	// Requires returns declared requirements in declaration order.
	Requires(context.Context) ([]Requirement, error)
	// Installed returns installed (locked) packages. Formats without lock
	// information return nil values.
	Installed(context.Context) ([]Package, error)
}

// Requirement represents one declared requirement (e.g. 'php' => '>=7.1.3').
type Requirement struct {
	Name       string
	Constraint string
}

// Package represents an installed package version.
type Package struct {
	Name    string
	Version string
}
