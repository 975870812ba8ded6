package fetchers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirFetcher reads files from a local directory (e.g. an installed plugin directory).
type DirFetcher struct {
	Root string
}

// NewDirFetcher constructs DirFetcher rooted at dir.
func NewDirFetcher(dir string) FileFetcher {
	return &DirFetcher{Root: dir}
}

// FileContent reads the file at the root-related path.
// Paths escaping the root directory are treated as not found.
func (df DirFetcher) FileContent(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, ok := cleanPath(filepath.ToSlash(path))
	if !ok || filepath.IsAbs(path) {
		return nil, notFound(path)
	}

	b, err := os.ReadFile(filepath.Join(df.Root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(path)
		}
		return nil, fmt.Errorf("unable to read '%s' file: %w", path, err)
	}

	return b, nil
}
