package click

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fob/internal/errx"
)

const schema = `
CREATE TABLE IF NOT EXISTS clicks (
	id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	ts          TIMESTAMPTZ NOT NULL DEFAULT now(),
	slug        TEXT NOT NULL DEFAULT '',
	destination TEXT NOT NULL DEFAULT '',
	client_addr TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_clicks_ts ON clicks (ts);
CREATE INDEX IF NOT EXISTS idx_clicks_slug ON clicks (slug);
`

// PGStore is the PostgreSQL-backed Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing connection pool. The caller owns the
// pool's lifecycle.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the clicks table and its indexes if missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	const op = "click.store.EnsureSchema"

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return mapStoreError(op, err)
	}
	return nil
}

func mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)
	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (s *PGStore) Insert(ctx context.Context, ev Event) error {
	const op = "click.store.Insert"

	_, err := s.pool.Exec(ctx,
		`INSERT INTO clicks (ts, slug, destination, client_addr, user_agent)
		 VALUES ($1, $2, $3, $4, $5)`,
		ev.Time, ev.Slug, ev.Destination, ev.ClientAddr, ev.UserAgent,
	)
	if err != nil {
		return mapStoreError(op, err)
	}
	return nil
}

func (s *PGStore) Count(ctx context.Context) (int64, error) {
	const op = "click.store.Count"

	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM clicks`).Scan(&n); err != nil {
		return 0, mapStoreError(op, err)
	}
	return n, nil
}

func (s *PGStore) StatsBySlug(ctx context.Context) ([]SlugCount, error) {
	const op = "click.store.StatsBySlug"

	rows, err := s.pool.Query(ctx,
		`SELECT slug, count(*) AS clicks
		 FROM clicks
		 GROUP BY slug
		 ORDER BY clicks DESC, slug`)
	if err != nil {
		return nil, mapStoreError(op, err)
	}
	defer rows.Close()

	var stats []SlugCount
	for rows.Next() {
		var sc SlugCount
		if err := rows.Scan(&sc.Slug, &sc.Clicks); err != nil {
			return nil, mapStoreError(op, err)
		}
		stats = append(stats, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError(op, err)
	}
	return stats, nil
}

func (s *PGStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	const op = "click.store.Recent"

	rows, err := s.pool.Query(ctx,
		`SELECT id, ts, slug, destination, client_addr, user_agent
		 FROM clicks
		 ORDER BY id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, mapStoreError(op, err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, mapStoreError(op, err)
	}
	return events, nil
}

func (s *PGStore) OnDay(ctx context.Context, day time.Time) ([]Event, error) {
	const op = "click.store.OnDay"

	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx,
		`SELECT id, ts, slug, destination, client_addr, user_agent
		 FROM clicks
		 WHERE ts >= $1 AND ts < $2
		 ORDER BY id`, start, end)
	if err != nil {
		return nil, mapStoreError(op, err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, mapStoreError(op, err)
	}
	return events, nil
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Time, &ev.Slug, &ev.Destination, &ev.ClientAddr, &ev.UserAgent); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
