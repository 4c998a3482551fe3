package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const unlockTimeout = 5 * time.Second

// AdvisoryLocker serialises writers of a key across every process sharing the
// database, using session-level Postgres advisory locks. Each held lock pins
// one pooled connection until it is released.
type AdvisoryLocker struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLocker creates an AdvisoryLocker on pool.
func NewAdvisoryLocker(pool *pgxpool.Pool) *AdvisoryLocker {
	return &AdvisoryLocker{pool: pool}
}

// Lock blocks until key is held or ctx is done.
func (l *AdvisoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, key); err != nil {
		// The lock may have been granted after ctx fired; drop the session.
		_ = conn.Conn().Close(context.Background())
		conn.Release()
		return nil, fmt.Errorf("advisory lock %q: %w", key, err)
	}

	return releaseOnce(func() {
		ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, key); err != nil {
			slog.Warn("advisory unlock failed, closing connection", "key", key, "error", err)
			_ = conn.Conn().Close(ctx)
		}
		conn.Release()
	}), nil
}

// releaseOnce wraps release so that only the first call runs it.
func releaseOnce(release func()) func() {
	var once sync.Once
	return func() { once.Do(release) }
}
