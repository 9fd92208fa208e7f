package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func (s *Store) ListProfiles(ctx context.Context, limit int) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, created_at
		FROM profiles
		ORDER BY created_at, id
		LIMIT ?`,
		ClampProfileLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var (
			p         Profile
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.DisplayName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.CreatedAt = fromMillis(createdAt)
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var (
		p         Profile
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, created_at FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.DisplayName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}

// UpsertProfile creates the profile or renames an existing one. The
// original creation time is kept.
func (s *Store) UpsertProfile(ctx context.Context, p Profile) (*Profile, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("profile id is required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO profiles (id, display_name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET display_name = excluded.display_name
		RETURNING id, display_name, created_at`,
		p.ID, p.DisplayName, toMillis(p.CreatedAt),
	).Scan(&p.ID, &p.DisplayName, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}
