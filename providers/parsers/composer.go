package parsers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dephub/dephub-requirements/providers/fetchers"
)

// Default manifest file names.
const (
	PluginManifest   = "plugin.json"
	ComposerManifest = "composer.json"
	ComposerLock     = "composer.lock"
)

// OrderedRequire represents a manifest 'require' object.
//
// JSON objects are unordered for encoding/json maps, but requirements are
// evaluated in declaration order, so we decode the object token by token.
type OrderedRequire []Requirement

// UnmarshalJSON keeps the original 'require' keys order.
func (or *OrderedRequire) UnmarshalJSON(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("invalid slice length %d", len(data))
	}
	if string(data) == "null" {
		*or = nil
		return nil
	}

	d := json.NewDecoder(bytes.NewReader(data))
	t, err := d.Token()
	if err != nil {
		return fmt.Errorf("require custom unmarshaller failed: %w", err)
	}
	if t != json.Delim('{') {
		return fmt.Errorf("require custom unmarshaller failed: expected an object, got %v", t)
	}

	result := OrderedRequire{}
	for d.More() {
		t, err := d.Token()
		if err != nil {
			return fmt.Errorf("require custom unmarshaller failed: %w", err)
		}
		name, _ := t.(string)

		var constraint string
		if err := d.Decode(&constraint); err != nil {
			return fmt.Errorf("require custom unmarshaller failed decoding %q constraint: %w", name, err)
		}
		result = append(result, Requirement{Name: name, Constraint: constraint})
	}

	*or = result
	return nil
}

// Manifest represents a plugin.json or composer.json file.
type Manifest struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Require OrderedRequire `json:"require"`
}

// lockFile represents Composer lock file (composer.lock).
type lockFile struct {
	Packages []Package `json:"packages"`
}

// NewManifestParser constructs a manifest parser.
// If 'filename' parameter is an empty string - 'plugin.json' will be used instead.
func NewManifestParser(fetcher fetchers.FileFetcher, filename string) DependencyParser {
	if filename == "" {
		filename = PluginManifest
	}
	return &ManifestParser{fetcher: fetcher, SourceName: filename}
}

// NewComposerParser constructs Composer files parser (composer.json and composer.lock).
func NewComposerParser(fetcher fetchers.FileFetcher) DependencyParser {
	return &ManifestParser{fetcher: fetcher, SourceName: ComposerManifest, LockName: ComposerLock}
}

// ManifestParser represents concrete manifest parser implementation.
type ManifestParser struct {
	fetcher fetchers.FileFetcher
	// SourceName is the manifest filename (e.g. 'plugin.json')
	SourceName string
	// LockName is the lock filename, empty if the format has none.
	LockName string
}

// Manifest fetches and decodes the manifest file.
func (p ManifestParser) Manifest(ctx context.Context) (*Manifest, error) {
	b, err := p.fetch(ctx, p.SourceName)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unable to parse %s file content: %w", p.SourceName, err)
	}

	return &m, nil
}

// Requires returns the manifest 'require' entries in declaration order.
func (p ManifestParser) Requires(ctx context.Context) ([]Requirement, error) {
	m, err := p.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	if m.Require == nil {
		return []Requirement{}, nil
	}
	return m.Require, nil
}

// Installed returns locked packages versions, nil values if there is no lock file.
func (p ManifestParser) Installed(ctx context.Context) ([]Package, error) {
	if p.LockName == "" {
		return nil, nil
	}

	b, err := p.fetch(ctx, p.LockName)
	if err != nil {
		return nil, err
	}

	var lock lockFile
	if err := json.Unmarshal(b, &lock); err != nil {
		return nil, fmt.Errorf("unable to parse %s file content: %w", p.LockName, err)
	}

	return lock.Packages, nil
}

func (p ManifestParser) fetch(ctx context.Context, name string) ([]byte, error) {
	b, err := p.fetcher.FileContent(ctx, name)
	if err != nil {
		if errors.Is(err, fetchers.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("unable to fetch %s from the source: %w", name, err)
	}
	return b, nil
}
