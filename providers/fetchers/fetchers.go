/*
Package fetchers provides manifest file access for in-memory, local directory
and GitHub repository sources.

Usage:

	fetcher := fetchers.NewDirFetcher("plugins/CustomAlerts")
	content, err := fetcher.FileContent(ctx, "plugin.json")
*/
package fetchers

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	// ErrFileNotFound matches every NotFoundError.
	ErrFileNotFound = errors.New("manifest file not found")
	// ErrNotAFile is returned when the path points to a directory.
	ErrNotAFile = errors.New("path is not a regular file")
)

// FileFetcher returns the content of a component file by its root-related path.
type FileFetcher interface {
	FileContent(ctx context.Context, path string) ([]byte, error)
}

// NotFoundError reports a missing file together with the requested path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "manifest file not found: " + e.Path
}

// Is makes errors.Is(err, ErrFileNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

func notFound(p string) error {
	return &NotFoundError{Path: p}
}

// cleanPath normalizes a root-related slash path.
// It returns false for absolute paths and paths escaping the root.
func cleanPath(p string) (string, bool) {
	if strings.HasPrefix(p, "/") {
		return "", false
	}
	rel := path.Clean(p)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
