package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// Store runs every statement of the site against Postgres. Pool is nil when
// the store wraps a plain *sql.DB (tests).
type Store struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// New opens a pool and waits for the database to answer, retrying with
// exponential backoff for up to maxWait.
func New(ctx context.Context, conn string, maxWait time.Duration) (*Store, error) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = maxWait

	if err := backoff.Retry(func() error {
		return pool.Ping(ctx)
	}, backoff.WithContext(b, ctx)); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{Pool: pool, DB: stdlib.OpenDBFromPool(pool)}, nil
}

// NewWithDB wraps an existing handle.
func NewWithDB(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() {
	_ = s.DB.Close()
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
