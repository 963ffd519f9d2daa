package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS repo_state (
		state_key TEXT PRIMARY KEY,
		last_commit TEXT NOT NULL
	);
	`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) (map[string]RepoState, error) {
	rows, err := s.pool.Query(ctx, `SELECT state_key, last_commit FROM repo_state`)
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

func (s *PostgresStore) Save(ctx context.Context, state map[string]RepoState) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM repo_state`); err != nil {
		return err
	}
	for key, entry := range state {
		if _, err := tx.Exec(ctx, `INSERT INTO repo_state (state_key, last_commit) VALUES ($1, $2)`, key, entry.LastCommit); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
