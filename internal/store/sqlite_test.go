package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	state, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state)

	want := map[string]RepoState{
		"https://github.com/green-coding/example#main": {LastCommit: "abc123"},
		"https://gitlab.com/group/project":             {LastCommit: "def456"},
	}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteStoreSaveReplacesSnapshot(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, map[string]RepoState{
		"repo-a": {LastCommit: "aaa"},
		"repo-b": {LastCommit: "bbb"},
	}))
	require.NoError(t, s.Save(ctx, map[string]RepoState{
		"repo-b": {LastCommit: "ccc"},
	}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]RepoState{"repo-b": {LastCommit: "ccc"}}, got)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, map[string]RepoState{"repo-a": {LastCommit: "aaa"}}))
	s.Close()

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]RepoState{"repo-a": {LastCommit: "aaa"}}, got)
}
