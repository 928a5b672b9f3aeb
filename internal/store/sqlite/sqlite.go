package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_reels/internal/store"
)

var _ store.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id TEXT PRIMARY KEY,
	keyword TEXT NOT NULL,
	seed_keyword TEXT NOT NULL,
	creator_count INTEGER NOT NULL,
	media_count INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	creators TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS discovery_runs_keyword ON discovery_runs (lower(keyword));
`

// New opens (and migrates) a SQLite run store.
func New(dsn string) (store.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) SaveRun(ctx context.Context, run *store.Run) error {
	query := `
	INSERT INTO discovery_runs (
		id, keyword, seed_keyword, creator_count, media_count, duration_ms, creators, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := b.db.ExecContext(ctx, query,
		run.ID,
		run.Keyword,
		run.SeedKeyword,
		run.CreatorCount,
		run.MediaCount,
		run.Duration.Milliseconds(),
		string(run.Creators),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (b *sqliteBackend) ListRuns(ctx context.Context, filter store.Filter) ([]*store.Run, error) {
	query := `SELECT id, keyword, seed_keyword, creator_count, media_count, duration_ms, creators, created_at FROM discovery_runs WHERE 1=1`
	args := []any{}

	if filter.Keyword != "" {
		query += ` AND lower(keyword) = lower(?)`
		args = append(args, filter.Keyword)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC())
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.Run
	for rows.Next() {
		var r store.Run
		var creators string
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Keyword, &r.SeedKeyword, &r.CreatorCount, &r.MediaCount,
			&durationMs, &creators, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Creators = []byte(creators)
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
