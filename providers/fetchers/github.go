package fetchers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v33/github"
)

// GitHubFetcher reads component files from a GitHub repository at a fixed ref.
type GitHubFetcher struct {
	Owner string
	Repo  string
	// Ref is a commit SHA, branch or tag; empty means the default branch.
	Ref    string
	client *github.Client
}

// NewGitHubFetcher constructs a GitHubFetcher for '{owner}/{repo}'.
// httpClient may carry OAuth2 or BasicAuth credentials, nil uses http.DefaultClient.
func NewGitHubFetcher(httpClient *http.Client, owner, repo, ref string) FileFetcher {
	return &GitHubFetcher{
		Owner:  owner,
		Repo:   repo,
		Ref:    ref,
		client: github.NewClient(httpClient),
	}
}

// FileContent fetches and decodes the file at the root-related path.
func (gf GitHubFetcher) FileContent(ctx context.Context, path string) ([]byte, error) {
	rel, ok := cleanPath(path)
	if !ok {
		return nil, notFound(path)
	}

	file, dir, resp, err := gf.client.Repositories.GetContents(ctx, gf.Owner, gf.Repo, rel,
		&github.RepositoryContentGetOptions{Ref: gf.Ref})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, notFound(path)
		}
		return nil, fmt.Errorf("unable to load %s from %s/%s: %w", rel, gf.Owner, gf.Repo, err)
	}
	if dir != nil || file == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, rel)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s from %s/%s: %w", rel, gf.Owner, gf.Repo, err)
	}
	return []byte(content), nil
}
