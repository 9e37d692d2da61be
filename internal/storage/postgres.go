package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/scsmash3r/fresh-seo/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = pq.ErrorCode("23505")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS overrides (
            seq BIGSERIAL PRIMARY KEY,
            id UUID UNIQUE NOT NULL,
            action VARCHAR(16) NOT NULL,
            route VARCHAR(2048) NOT NULL,
            changefreq VARCHAR(16) NOT NULL DEFAULT '',
            priority VARCHAR(8) NOT NULL DEFAULT '',
            lastmod TIMESTAMP,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_overrides_route ON overrides(route)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CreateOverride(ctx context.Context, override *models.Override) error {
	query := `
        INSERT INTO overrides (id, action, route, changefreq, priority, lastmod, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	_, err := s.db.ExecContext(ctx, query,
		override.ID,
		string(override.Action),
		override.Route,
		string(override.ChangeFreq),
		override.Priority,
		nullTime(override.LastMod),
		override.CreatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, override.ID)
	}

	return err
}

func (s *PostgresStore) GetOverride(ctx context.Context, id uuid.UUID) (*models.Override, error) {
	query := `
        SELECT id, action, route, changefreq, priority, lastmod, created_at
        FROM overrides
        WHERE id = $1
    `

	override, err := scanOverride(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return override, nil
}

func (s *PostgresStore) ListOverrides(ctx context.Context) ([]*models.Override, error) {
	query := `
        SELECT id, action, route, changefreq, priority, lastmod, created_at
        FROM overrides
        ORDER BY seq
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []*models.Override
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, override)
	}

	return overrides, rows.Err()
}

func (s *PostgresStore) DeleteOverride(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM overrides WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, id)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
