package githost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport sends every request to the test server regardless of
// the URL's host, preserving path and query.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = t.target.Scheme
	clone.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

func newTestResolver(t *testing.T, server *httptest.Server) *Resolver {
	t.Helper()
	target, err := url.Parse(server.URL)
	require.NoError(t, err)
	return &Resolver{
		Client:    &http.Client{Transport: rewriteTransport{target: target}, Timeout: 5 * time.Second},
		GitHubAPI: "https://api.github.com",
	}
}

func TestDetectHost(t *testing.T) {
	assert.Equal(t, HostGitHub, DetectHost("github.com"))
	assert.Equal(t, HostGitHub, DetectHost("www.github.com"))
	assert.Equal(t, HostGitLab, DetectHost("gitlab.com"))
	assert.Equal(t, HostGitLab, DetectHost("gitlab.internal.example.com"))
	assert.Equal(t, HostUnsupported, DetectHost("bitbucket.org"))
	assert.Equal(t, HostUnsupported, DetectHost(""))
}

func TestLatestCommitGitHub(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		json.NewEncoder(w).Encode([]map[string]any{{"sha": "abc123"}})
	}))
	defer server.Close()

	resolver := newTestResolver(t, server)
	commit, err := resolver.LatestCommit(context.Background(), "https://github.com/green-coding/example.git", "main")
	require.NoError(t, err)
	assert.Equal(t, "abc123", commit)
	assert.Equal(t, "/repos/green-coding/example/commits?per_page=1&sha=main", gotURI)
}

func TestLatestCommitGitHubDefaultBranch(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		json.NewEncoder(w).Encode([]map[string]any{{"sha": "abc123"}})
	}))
	defer server.Close()

	resolver := newTestResolver(t, server)
	_, err := resolver.LatestCommit(context.Background(), "https://github.com/green-coding/example", "")
	require.NoError(t, err)
	assert.Equal(t, "/repos/green-coding/example/commits?per_page=1", gotURI)
}

func TestLatestCommitGitLab(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		json.NewEncoder(w).Encode([]map[string]any{{"id": "deadbeef"}})
	}))
	defer server.Close()

	resolver := newTestResolver(t, server)
	commit, err := resolver.LatestCommit(context.Background(), "https://gitlab.example.com/group/sub/project.git", "dev")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", commit)
	assert.Equal(t, "/api/v4/projects/group%2Fsub%2Fproject/repository/commits?per_page=1&ref_name=dev", gotURI)
}

func TestLatestCommitUnsupportedHost(t *testing.T) {
	resolver := NewResolver(time.Second)
	_, err := resolver.LatestCommit(context.Background(), "https://bitbucket.org/team/repo", "main")
	require.ErrorIs(t, err, ErrUnsupportedHost)
}

func TestLatestCommitMalformedURL(t *testing.T) {
	resolver := NewResolver(time.Second)

	_, err := resolver.LatestCommit(context.Background(), "https://github.com", "main")
	require.ErrorIs(t, err, ErrMalformedURL)

	_, err = resolver.LatestCommit(context.Background(), "https://github.com/solo", "main")
	require.ErrorIs(t, err, ErrMalformedURL)

	_, err = resolver.LatestCommit(context.Background(), "https://gitlab.com/.git", "main")
	require.ErrorIs(t, err, ErrMalformedURL)
}

func TestLatestCommitEmptyRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer server.Close()

	resolver := newTestResolver(t, server)
	_, err := resolver.LatestCommit(context.Background(), "https://github.com/green-coding/empty", "main")
	require.ErrorIs(t, err, ErrNoCommits)
}

func TestLatestCommitMissingHashField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"message": "initial"}})
	}))
	defer server.Close()

	resolver := newTestResolver(t, server)
	_, err := resolver.LatestCommit(context.Background(), "https://github.com/green-coding/odd", "main")
	require.ErrorIs(t, err, ErrNoCommits)
}

func TestLatestCommitProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 300), http.StatusNotFound)
	}))
	defer server.Close()

	resolver := newTestResolver(t, server)
	_, err := resolver.LatestCommit(context.Background(), "https://github.com/green-coding/gone", "main")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusNotFound, provErr.StatusCode)
	assert.Equal(t, HostGitHub, provErr.Host)
	assert.Len(t, provErr.Snippet, 200)
	assert.Contains(t, provErr.Error(), "GitHub API error 404")
}

func TestLatestCommitTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	resolver := newTestResolver(t, server)
	_, err := resolver.LatestCommit(context.Background(), "https://github.com/green-coding/example", "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request to GitHub API failed")
}
