package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_reels/internal/store"
)

var _ store.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id TEXT PRIMARY KEY,
	keyword TEXT NOT NULL,
	seed_keyword TEXT NOT NULL,
	creator_count INTEGER NOT NULL,
	media_count INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL,
	creators JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS discovery_runs_keyword ON discovery_runs (lower(keyword));
`

// New connects to Postgres and migrates the run store.
func New(ctx context.Context, dsn string) (store.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) SaveRun(ctx context.Context, run *store.Run) error {
	query := `
	INSERT INTO discovery_runs (
		id, keyword, seed_keyword, creator_count, media_count, duration_ms, creators, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := b.pool.Exec(ctx, query,
		run.ID,
		run.Keyword,
		run.SeedKeyword,
		run.CreatorCount,
		run.MediaCount,
		run.Duration.Milliseconds(),
		[]byte(run.Creators),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (b *postgresBackend) ListRuns(ctx context.Context, filter store.Filter) ([]*store.Run, error) {
	query := `SELECT id, keyword, seed_keyword, creator_count, media_count, duration_ms, creators, created_at FROM discovery_runs WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Keyword != "" {
		query += fmt.Sprintf(` AND lower(keyword) = lower($%d)`, paramCount)
		args = append(args, filter.Keyword)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.Run
	for rows.Next() {
		var r store.Run
		var creators []byte
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Keyword, &r.SeedKeyword, &r.CreatorCount, &r.MediaCount,
			&durationMs, &creators, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Creators = creators
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
