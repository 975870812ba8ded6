/*
Package dephub provides requirements checking for components (plugins) declaring
dependencies on the host platform, the runtime and other components.

Usage:

	src := dephub.NewDirSource("plugins/CustomAlerts")
	reqs, err := src.Requires(ctx, dephub.ManifestType)

	evaluator := dephub.NewEvaluator(registry, dephub.WithHost("host", "3.2.0"))
	missing := evaluator.GetMissingDependencies(reqs)
*/
package dephub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/dephub/dephub-requirements/providers/components"
	"github.com/dephub/dephub-requirements/providers/fetchers"
	"github.com/dephub/dephub-requirements/providers/parsers"
)

var (
	ErrUnsupportedType = errors.New("unsupported manifest type")
)

// DepType represents manifest format flag.
type DepType string

// Available manifest formats
const (
	// ManifestType represents component manifest (plugin.json).
	ManifestType = DepType("plugin")
	// ComposerType represents PHP's Composer files (composer.json and composer.lock).
	ComposerType = DepType("composer")
)

// ParseDepType converts a flag value into a DepType.
func ParseDepType(s string) (DepType, error) {
	switch typ := DepType(strings.ToLower(strings.TrimSpace(s))); typ {
	case ManifestType, ComposerType:
		return typ, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// gitRepoRgx is used to parse repository info from GIT-compatible address string.
//
// Examples matching the regexp:
//
//	'git@myhostname:vendor/reponame.git'
//	'https://myhostname/vendor/reponame.git' and so on...
//
// Groups:
//
//	6: hostname (e.g. 'github.com')
//	8: full repo name (e.g. 'vendor/reponame')
var gitRepoRgx = regexp.MustCompile(`^(((git@)|(git:|ssh:|(http[s]?:\/\/))))([\w\.@\\-~]+)(:|\/)([\w\.@\:\/\-~]+)(\.git)(\/-)?`)

// DependencySource represents abstraction over manifest files and
// provides convenient interface to fetch requirements information.
type DependencySource interface {
	// Requires returns declared requirements in declaration order.
	Requires(ctx context.Context, typ DepType) (Requires, error)
	// Installed returns locked packages as loaded and activated components
	// (nil if the format has no lock file).
	Installed(ctx context.Context, typ DepType) ([]components.Info, error)
}

// NewMemorySource constructs a DependencySource over in-memory files.
func NewMemorySource(files map[string][]byte) DependencySource {
	return &FetcherDependencySource{
		fetcher: fetchers.MemoryFetcher{Files: files},
	}
}

// NewDirSource constructs a DependencySource reading a local component directory.
func NewDirSource(dir string) DependencySource {
	return &FetcherDependencySource{
		fetcher: fetchers.NewDirFetcher(dir),
	}
}

// gitRepo represents basic repository information.
type gitRepo struct {
	host, vendor, repo string
}

// supGitSrcs - supported git sources.
var supGitSrcs = []string{"github.com"}

// NewGitSource constructs new Git DependencySource implementation.
//
// SHA can both refer to commit hash/branch/tag.
//
// You can pass specific signed httpClient with any information you want the requests go with
// for example you would like to pass OAuth2/BasicAuth information to github API for increased
// rate limits and so on.
//
// repoAddr is your repository address (e.g. 'git@myhostname:vendor/reponame.git')
func NewGitSource(httpClient *http.Client, repoAddr, sha string) (DependencySource, error) {
	repoData, err := parseGitAddr(repoAddr)
	if err != nil {
		return nil, err
	}
	fetcher := fetchers.NewGitHubFetcher(httpClient, repoData.vendor, repoData.repo, sha)
	return &FetcherDependencySource{fetcher: fetcher}, nil
}

// FetcherDependencySource reads manifest files through a FileFetcher
// (memory, local directory or Git repository).
type FetcherDependencySource struct {
	fetcher fetchers.FileFetcher
}

// Requires returns declared requirements in declaration order.
func (fds FetcherDependencySource) Requires(ctx context.Context, typ DepType) (Requires, error) {
	parser, err := solveParser(typ, fds.fetcher)
	if err != nil {
		return nil, err
	}

	reqs, err := parser.Requires(ctx)
	if err != nil {
		return nil, err
	}

	result := make(Requires, 0, len(reqs))
	for _, req := range reqs {
		result = append(result, Requirement{Name: req.Name, Constraint: req.Constraint})
	}
	return result, nil
}

// Installed returns locked packages as loaded and activated components.
func (fds FetcherDependencySource) Installed(ctx context.Context, typ DepType) ([]components.Info, error) {
	parser, err := solveParser(typ, fds.fetcher)
	if err != nil {
		return nil, err
	}

	pkgs, err := parser.Installed(ctx)
	if err != nil || pkgs == nil {
		return nil, err
	}

	result := make([]components.Info, 0, len(pkgs))
	for _, pkg := range pkgs {
		result = append(result, components.Info{Name: pkg.Name, Version: pkg.Version, Loaded: true, Activated: true})
	}
	return result, nil
}

// solveParser - helper to get configured manifest files parser
func solveParser(typ DepType, fetcher fetchers.FileFetcher) (parsers.DependencyParser, error) {
	switch typ {
	case ManifestType:
		return parsers.NewManifestParser(fetcher, parsers.PluginManifest), nil
	case ComposerType:
		return parsers.NewComposerParser(fetcher), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
}

// parseGitAddr - helper to parse information from git repository address string
func parseGitAddr(addr string) (*gitRepo, error) {
	matches := gitRepoRgx.FindStringSubmatch(addr)
	if matches == nil || matches[6] == "" || matches[8] == "" {
		return nil, fmt.Errorf("unsupported git repository format %q", addr)
	}
	hostName, repoName := matches[6], matches[8]

	if !gitHostSupported(hostName) {
		return nil, fmt.Errorf("git source %q is not supported", hostName)
	}

	if !strings.Contains(repoName, "/") {
		return nil, fmt.Errorf("unable to parse vendor from name %q", repoName)
	}
	repoNameParts := strings.SplitN(repoName, "/", 2)

	return &gitRepo{host: hostName, vendor: repoNameParts[0], repo: repoNameParts[1]}, nil
}

// gitHostSupported - helper to check git source support status
func gitHostSupported(host string) bool {
	for _, v := range supGitSrcs {
		if v == host {
			return true
		}
	}
	return false
}
