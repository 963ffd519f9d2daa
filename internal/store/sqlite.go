package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore initializes the SQLite database and creates necessary tables.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS repo_state (
		state_key TEXT PRIMARY KEY,
		last_commit TEXT NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create repo_state table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (map[string]RepoState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state_key, last_commit FROM repo_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	state := map[string]RepoState{}
	for rows.Next() {
		var key, commit string
		if err := rows.Scan(&key, &commit); err != nil {
			continue
		}
		state[key] = RepoState{LastCommit: commit}
	}
	return state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, state map[string]RepoState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM repo_state`); err != nil {
		return err
	}
	for key, entry := range state {
		if _, err := tx.ExecContext(ctx, `INSERT INTO repo_state (state_key, last_commit) VALUES (?, ?)`, key, entry.LastCommit); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}
