package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// AdvisoryLocker serialises runs across processes with a session-level
// advisory lock. The lock lives on a dedicated connection that is held until
// release.
type AdvisoryLocker struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewAdvisoryLocker(db *sqlx.DB, logger *slog.Logger) *AdvisoryLocker {
	return &AdvisoryLocker{db: db, logger: logger}
}

func (l *AdvisoryLocker) TryLock(ctx context.Context, name string) (func(), bool, error) {
	conn, err := l.db.Connx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.GetContext(ctx, &acquired, "SELECT pg_try_advisory_lock(hashtext($1))", name); err != nil {
		conn.Close()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}

	if !acquired {
		conn.Close()
		return nil, false, nil
	}

	release := func() {
		// The caller's context may already be done.
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", name); err != nil {
			l.logger.Warn("failed to release advisory lock", "name", name, "error", err)
		}
		conn.Close()
	}

	return release, true, nil
}
