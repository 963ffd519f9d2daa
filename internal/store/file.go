package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore keeps repo state in a single JSON file.
type FileStore struct {
	path   string
	logger *slog.Logger
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the state file. A missing file yields an empty state, and a
// corrupt one is logged and treated as empty.
func (s *FileStore) Load(ctx context.Context) (map[string]RepoState, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]RepoState{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state := map[string]RepoState{}
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logger.Warn("State file is corrupt, starting fresh", "path", s.path, "error", err)
		return map[string]RepoState{}, nil
	}
	return state, nil
}

// Save replaces the state file with the given snapshot. The write goes
// through a temp file in the same directory followed by a rename.
func (s *FileStore) Save(ctx context.Context, state map[string]RepoState) error {
	encoded, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	encoded = append(encoded, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".repo-state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() {}
