package fetchers

import "context"

// MemoryFetcher serves files from a map keyed by root-related path.
type MemoryFetcher struct {
	Files map[string][]byte
}

// FileContent returns the stored content for path.
func (mf MemoryFetcher) FileContent(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, ok := cleanPath(path)
	if !ok {
		return nil, notFound(path)
	}
	v, ok := mf.Files[rel]
	if !ok {
		return nil, notFound(path)
	}
	return v, nil
}
