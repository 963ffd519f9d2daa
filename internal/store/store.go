package store

import "context"

// RepoState is the tracking record for one watched repo and branch.
type RepoState struct {
	LastCommit string `json:"last_commit"`
}

// Key builds the state key for a watched repo. Repos watched with a branch
// filter are keyed as url#branch, repos without one by URL alone.
func Key(repoURL, branch string) string {
	if branch == "" {
		return repoURL
	}
	return repoURL + "#" + branch
}

// Store defines the interface for state persistence between poll cycles.
type Store interface {
	Load(ctx context.Context) (map[string]RepoState, error)
	Save(ctx context.Context, state map[string]RepoState) error
	Close()
}
