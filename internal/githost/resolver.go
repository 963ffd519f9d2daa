package githost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUnsupportedHost = errors.New("unsupported git host")
	ErrMalformedURL    = errors.New("malformed repository URL")
	ErrNoCommits       = errors.New("no commits found on remote")
)

// Host selects the commit-lookup protocol for a repository URL. There is
// no generic fallback: a host matching neither provider is a hard error.
type Host int

const (
	HostUnsupported Host = iota
	HostGitHub
	HostGitLab
)

func (h Host) String() string {
	switch h {
	case HostGitHub:
		return "GitHub"
	case HostGitLab:
		return "GitLab"
	}
	return "unsupported"
}

// DetectHost matches a lowercased URL host against the supported providers.
func DetectHost(host string) Host {
	switch {
	case strings.Contains(host, "github.com"):
		return HostGitHub
	case strings.Contains(host, "gitlab"):
		return HostGitLab
	}
	return HostUnsupported
}

// ProviderError reports a non-2xx reply from a provider's commit API.
type ProviderError struct {
	Host       Host
	StatusCode int
	Snippet    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Host, e.StatusCode, e.Snippet)
}

// Resolver looks up the latest commit of a repository through the hosting
// provider's REST API.
type Resolver struct {
	Client *http.Client

	// GitHubAPI is the GitHub REST endpoint; GitLab instances are reached
	// on the repository URL's own scheme and host (self-hosted support).
	GitHubAPI string
}

// NewResolver creates a resolver with the given request timeout.
func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		Client:    &http.Client{Timeout: timeout},
		GitHubAPI: "https://api.github.com",
	}
}

// LatestCommit returns the newest commit identifier on the given branch.
// An empty branch asks the provider for its default branch. An empty
// remote yields ErrNoCommits, distinct from provider failures.
func (r *Resolver) LatestCommit(ctx context.Context, repoURL, branch string) (string, error) {
	parsed, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	segments := pathSegments(parsed.Path)
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: repo URL seems incomplete: %s", ErrMalformedURL, repoURL)
	}

	switch DetectHost(strings.ToLower(parsed.Host)) {
	case HostGitHub:
		return r.githubLatest(ctx, repoURL, segments, branch)
	case HostGitLab:
		return r.gitlabLatest(ctx, repoURL, parsed, segments, branch)
	}
	return "", fmt.Errorf("%w: %s (only GitHub/GitLab supported)", ErrUnsupportedHost, repoURL)
}

func (r *Resolver) githubLatest(ctx context.Context, repoURL string, segments []string, branch string) (string, error) {
	if len(segments) < 2 {
		return "", fmt.Errorf("%w: cannot parse GitHub repo from URL: %s", ErrMalformedURL, repoURL)
	}
	owner := segments[0]
	repo := strings.TrimSuffix(segments[1], ".git")
	if repo == "" {
		return "", fmt.Errorf("%w: cannot parse GitHub repo from URL: %s", ErrMalformedURL, repoURL)
	}

	query := url.Values{"per_page": {"1"}}
	if branch != "" {
		query.Set("sha", branch)
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits?%s", r.GitHubAPI, owner, repo, query.Encode())
	return r.firstCommit(ctx, HostGitHub, endpoint, "sha")
}

func (r *Resolver) gitlabLatest(ctx context.Context, repoURL string, parsed *url.URL, segments []string, branch string) (string, error) {
	segments[len(segments)-1] = strings.TrimSuffix(segments[len(segments)-1], ".git")
	parts := segments[:0:0]
	for _, segment := range segments {
		if segment != "" {
			parts = append(parts, segment)
		}
	}
	project := strings.Join(parts, "/")
	if project == "" {
		return "", fmt.Errorf("%w: cannot parse GitLab project from URL: %s", ErrMalformedURL, repoURL)
	}

	query := url.Values{"per_page": {"1"}}
	if branch != "" {
		query.Set("ref_name", branch)
	}
	// The project path is a single percent-encoded path parameter.
	endpoint := fmt.Sprintf("%s://%s/api/v4/projects/%s/repository/commits?%s",
		parsed.Scheme, parsed.Host, url.QueryEscape(project), query.Encode())
	return r.firstCommit(ctx, HostGitLab, endpoint, "id")
}

// firstCommit performs the single-item commit query and extracts the hash
// field, which is named differently per provider.
func (r *Resolver) firstCommit(ctx context.Context, host Host, endpoint, field string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build %s API request: %w", host, err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s API failed: %w", host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s API response: %w", host, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Host: host, StatusCode: resp.StatusCode, Snippet: snippet(body)}
	}

	var commits []map[string]any
	if err := json.Unmarshal(body, &commits); err != nil {
		return "", fmt.Errorf("decode %s API response: %w", host, err)
	}
	if len(commits) == 0 {
		return "", ErrNoCommits
	}
	commit, _ := commits[0][field].(string)
	if commit == "" {
		return "", ErrNoCommits
	}
	return commit, nil
}

func pathSegments(path string) []string {
	var segments []string
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func snippet(body []byte) string {
	const maxLen = 200
	if len(body) <= maxLen {
		return string(body)
	}
	return string(body[:maxLen])
}
