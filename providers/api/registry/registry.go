/*
Package registry provides a client for a remote component registry API.

A registry API exposes the components (plugins) of a deployed host and the
host platform versions, so requirements can be checked from outside the host.

Usage:

	u, _ := url.Parse("https://host.example.com")
	cl, err := registry.NewClient(nil, u)
	reg, platform, err := cl.Snapshot(ctx)
*/
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/dephub/dephub-requirements/providers/components"
)

var (
	ErrNoURL = errors.New("registry url is required")
)

// apiPrefix - every registry endpoint lives under this path.
const apiPrefix = "api/registry"

// Client is used to send API requests to a component registry.
type Client struct {
	baseURL    url.URL
	HttpClient *http.Client
}

// NewClient creates and returns a new client.
//
// There is no public registry, so URL is required.
func NewClient(httpClient *http.Client, URL *url.URL) (*Client, error) {
	if URL == nil {
		return nil, ErrNoURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	u := *URL
	u.Path = strings.TrimSuffix(u.Path, "/")

	return &Client{baseURL: u, HttpClient: httpClient}, nil
}

// ComponentsList represents list of components.
type ComponentsList struct {
	Components []components.Info `json:"components"`
}

// ListOptions specifies the optional parameters to Components() method.
type ListOptions struct {
	// For filtering components by name.
	Names []string `url:"names,brackets,omitempty"`
	// Only loaded components.
	Loaded bool `url:"loaded,omitempty"`
	// Only activated components.
	Activated bool `url:"activated,omitempty"`
}

// Components lists components registered on the remote host.
func (c Client) Components(ctx context.Context, opts *ListOptions) (*ComponentsList, *http.Response, error) {
	v, err := query.Values(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing the options: %w", err)
	}

	route := fmt.Sprintf("%s/%s/components.json", &c.baseURL, apiPrefix)
	if len(v) > 0 {
		route += "?" + v.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}

	var cl ComponentsList
	var r *http.Response
	if r, err = parseResponse(&c, req, &cl); err != nil {
		return nil, nil, err
	}

	return &cl, r, nil
}

// NamedVersion represents a named platform version (e.g. host 3.2.0).
type NamedVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Platform represents the remote host and runtime versions.
type Platform struct {
	Host    NamedVersion `json:"host"`
	Runtime NamedVersion `json:"runtime"`
}

// Platform fetches the remote host and runtime versions.
func (c Client) Platform(ctx context.Context) (*Platform, *http.Response, error) {
	route := fmt.Sprintf("%s/%s/platform.json", &c.baseURL, apiPrefix)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}

	var pl Platform
	var r *http.Response
	if r, err = parseResponse(&c, req, &pl); err != nil {
		return nil, nil, err
	}

	return &pl, r, nil
}

// Snapshot loads every remote component into a MemoryRegistry along with the
// platform versions.
//
// The snapshot does not follow later remote changes.
func (c Client) Snapshot(ctx context.Context) (*components.MemoryRegistry, *Platform, error) {
	list, _, err := c.Components(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to list components: %w", err)
	}

	pl, _, err := c.Platform(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load platform versions: %w", err)
	}

	return components.NewMemoryRegistry(list.Components...), pl, nil
}

// errorResponse represents registry error response
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// parseResponse is used to execute the request and unmarshall the response to dt
func parseResponse(c *Client, req *http.Request, dt interface{}) (r *http.Response, err error) {
	if r, err = c.HttpClient.Do(req); err != nil {
		return nil, fmt.Errorf("unable to send a request: %w", err)
	}
	defer r.Body.Close()

	if r.StatusCode >= 400 {
		return nil, fmt.Errorf("registry responded with HTTP error '%d: %s'", r.StatusCode, http.StatusText(r.StatusCode))
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	// Handling error responses from registry api
	var ersp errorResponse
	if perr := json.Unmarshal(body, &ersp); perr == nil && (ersp.Message != "" && ersp.Status != "") {
		return nil, fmt.Errorf("registry api responded with error '%s'", ersp.Message)
	}

	if err = json.Unmarshal(body, dt); err != nil {
		return nil, fmt.Errorf("unable to parse response: %w", err)
	}

	return r, nil
}
