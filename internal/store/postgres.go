package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techronicle/newsroom/internal/transcript"
)

// PostgresStore archives sessions in PostgreSQL. The full summary is
// kept as a JSONB document next to the columns the listing queries
// need.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS newsroom_sessions (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			turns INT NOT NULL,
			selected INT NOT NULL,
			forced BOOLEAN NOT NULL DEFAULT FALSE,
			summary JSONB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_newsroom_sessions_finished ON newsroom_sessions (finished_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, summary transcript.Summary) error {
	doc, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO newsroom_sessions (id, started_at, finished_at, turns, selected, forced, summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   finished_at = EXCLUDED.finished_at,
		   turns = EXCLUDED.turns,
		   selected = EXCLUDED.selected,
		   forced = EXCLUDED.forced,
		   summary = EXCLUDED.summary`,
		summary.SessionID,
		summary.StartedAt,
		summary.FinishedAt,
		len(summary.Turns),
		len(summary.SelectedItems),
		summary.Forced,
		doc,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (transcript.Summary, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT summary FROM newsroom_sessions WHERE id=$1`, id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return transcript.Summary{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return transcript.Summary{}, fmt.Errorf("query session: %w", err)
	}
	var summary transcript.Summary
	if err := json.Unmarshal(doc, &summary); err != nil {
		return transcript.Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	return summary, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, limit int) ([]SessionHead, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, started_at, finished_at, turns, selected, forced
		 FROM newsroom_sessions ORDER BY finished_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	heads := make([]SessionHead, 0, limit)
	for rows.Next() {
		var h SessionHead
		if err := rows.Scan(&h.ID, &h.StartedAt, &h.FinishedAt, &h.Turns, &h.Selected, &h.Forced); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		heads = append(heads, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return heads, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
