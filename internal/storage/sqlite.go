package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/scsmash3r/fresh-seo/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS overrides (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT UNIQUE NOT NULL,
            action TEXT NOT NULL,
            route TEXT NOT NULL,
            changefreq TEXT NOT NULL DEFAULT '',
            priority TEXT NOT NULL DEFAULT '',
            lastmod DATETIME,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
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

func (s *SQLiteStore) CreateOverride(ctx context.Context, override *models.Override) error {
	query := `
        INSERT INTO overrides (id, action, route, changefreq, priority, lastmod, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.ExecContext(ctx, query,
		override.ID.String(),
		string(override.Action),
		override.Route,
		string(override.ChangeFreq),
		override.Priority,
		nullTime(override.LastMod),
		override.CreatedAt,
	)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", ErrConflict, override.ID)
	}

	return err
}

func (s *SQLiteStore) GetOverride(ctx context.Context, id uuid.UUID) (*models.Override, error) {
	query := `
        SELECT id, action, route, changefreq, priority, lastmod, created_at
        FROM overrides
        WHERE id = ?
    `

	override, err := scanOverride(s.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return override, nil
}

func (s *SQLiteStore) ListOverrides(ctx context.Context) ([]*models.Override, error) {
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

func (s *SQLiteStore) DeleteOverride(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM overrides WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return checkAffected(res, id)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanOverride reads the column list shared by the SQLite and Postgres queries.
func scanOverride(row scanner) (*models.Override, error) {
	var override models.Override
	var idStr string
	var lastmod sql.NullTime

	err := row.Scan(
		&idStr,
		&override.Action,
		&override.Route,
		&override.ChangeFreq,
		&override.Priority,
		&lastmod,
		&override.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	override.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid override id %q: %w", idStr, err)
	}
	if lastmod.Valid {
		t := lastmod.Time
		override.LastMod = &t
	}

	return &override, nil
}

func checkAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
