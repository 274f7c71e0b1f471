// Package github locates project files in a GitHub repository and resolves
// them to downloadable content.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/willibrandon/nugetcatalog/auth"
	"github.com/willibrandon/nugetcatalog/catalog"
	nugethttp "github.com/willibrandon/nugetcatalog/http"
	"github.com/willibrandon/nugetcatalog/observability"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// DefaultPatterns selects C# project files anywhere in the tree.
var DefaultPatterns = []string{"**/*.csproj"}

// Config identifies the repository and which files count as project files.
type Config struct {
	BaseURL  string
	Owner    string
	Repo     string
	Ref      string   // branch, tag or SHA; empty means HEAD
	Patterns []string // doublestar globs matched against repository paths
}

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error (%d) for %s: %s", e.StatusCode, e.URL, e.Body)
}

// Client talks to the GitHub REST API for one repository.
type Client struct {
	httpClient    *nugethttp.Client
	authenticator auth.Authenticator
	logger        observability.Logger
	cfg           Config
}

// NewClient validates cfg and returns a Client. authenticator and logger may be nil.
func NewClient(httpClient *nugethttp.Client, authenticator auth.Authenticator, logger observability.Logger, cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = DefaultPatterns
	}
	for _, p := range cfg.Patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("github: invalid path pattern %q", p)
		}
	}
	if logger == nil {
		logger = observability.NewNullLogger()
	}

	return &Client{
		httpClient:    httpClient,
		authenticator: authenticator,
		logger:        logger.ForContext("Repository", cfg.Owner+"/"+cfg.Repo),
		cfg:           cfg,
	}, nil
}

type treeResponse struct {
	SHA       string      `json:"sha"`
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// ListProjectFilePaths lists every blob in the repository tree whose path
// matches one of the configured patterns, in tree order.
func (c *Client) ListProjectFilePaths(ctx context.Context) ([]string, error) {
	ref := c.cfg.Ref
	if ref == "" {
		ref = "HEAD"
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Owner), url.PathEscape(c.cfg.Repo), url.PathEscape(ref))

	var tree treeResponse
	if err := c.getJSON(ctx, endpoint, true, &tree); err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}
	if tree.Truncated {
		c.logger.WarnContext(ctx, "Tree listing for {Ref} was truncated; some project files may be missing", ref)
	}

	var paths []string
	for _, entry := range tree.Tree {
		if entry.Type == "blob" && c.matches(entry.Path) {
			paths = append(paths, entry.Path)
		}
	}

	c.logger.DebugContext(ctx, "Located {Count} project files at {Ref}", len(paths), ref)
	return paths, nil
}

func (c *Client) matches(path string) bool {
	for _, pattern := range c.cfg.Patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

type contentResponse struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
}

// Resolve looks up the raw download URL of a repository file.
func (c *Client) Resolve(ctx context.Context, path string) (catalog.RepositoryFile, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Owner), url.PathEscape(c.cfg.Repo), strings.Join(segments, "/"))
	if c.cfg.Ref != "" {
		endpoint += "?ref=" + url.QueryEscape(c.cfg.Ref)
	}

	var content contentResponse
	if err := c.getJSON(ctx, endpoint, false, &content); err != nil {
		return catalog.RepositoryFile{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	if content.Type != "file" || content.DownloadURL == "" {
		return catalog.RepositoryFile{}, fmt.Errorf("resolve %s: not a file (type %q)", path, content.Type)
	}

	return catalog.RepositoryFile{Path: path, DownloadURL: content.DownloadURL}, nil
}

// Download fetches raw file text in a single attempt.
func (c *Client) Download(ctx context.Context, downloadURL string) (string, error) {
	text, err := c.httpClient.GetText(ctx, downloadURL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	return text, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, retry bool, v any) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.authenticator != nil {
		if err := c.authenticator.Authenticate(req); err != nil {
			return fmt.Errorf("authenticate request: %w", err)
		}
	}

	var resp *http.Response
	if retry {
		resp, err = c.httpClient.DoWithRetry(ctx, req)
	} else {
		resp, err = c.httpClient.Do(ctx, req)
	}
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{URL: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var (
	_ catalog.Locator      = (*Client)(nil)
	_ catalog.FileResolver = (*Client)(nil)
)
