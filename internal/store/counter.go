package store

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	now := toMillis(s.now())
	expires := now + ttl.Milliseconds()

	var count int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO rate_counters (key, count, expires_at)
		VALUES (?, 1, ?)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE WHEN rate_counters.expires_at <= ? THEN 1 ELSE rate_counters.count + 1 END,
			expires_at = CASE WHEN rate_counters.expires_at <= ? THEN excluded.expires_at ELSE rate_counters.expires_at END
		RETURNING count`,
		key, expires, now, now,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}
	return count, nil
}

// PurgeExpired deletes counters whose expiry has passed and returns how
// many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM rate_counters WHERE expires_at <= ?`, toMillis(s.now()))
	if err != nil {
		return 0, fmt.Errorf("purge counters: %w", err)
	}
	return res.RowsAffected()
}
