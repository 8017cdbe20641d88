// Package repository provides data access for locally stored console data.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
)

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("not found")

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PreferencesRepository stores per-view table preferences.
type PreferencesRepository struct {
	db *sql.DB
}

// NewPreferencesRepository creates a new preferences repository.
func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the preference for view, or ErrNotFound.
func (r *PreferencesRepository) Get(ctx context.Context, view models.ViewID) (*models.ViewPreference, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT view, page_size, sort_column, sort_direction, updated_at
		FROM view_preferences
		WHERE view = ?`, string(view))

	p, err := scanPreference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting preference for %s: %w", view, err)
	}
	return p, nil
}

// Save inserts or replaces the preference for p.View. tx may be nil.
func (r *PreferencesRepository) Save(ctx context.Context, tx *sql.Tx, p *models.ViewPreference) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var ex execer = r.db
	if tx != nil {
		ex = tx
	}

	p.UpdatedAt = time.Now().UTC()
	_, err := ex.ExecContext(ctx, `
		INSERT INTO view_preferences (view, page_size, sort_column, sort_direction, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (view) DO UPDATE SET
			page_size = excluded.page_size,
			sort_column = excluded.sort_column,
			sort_direction = excluded.sort_direction,
			updated_at = excluded.updated_at`,
		string(p.View),
		p.PageSize,
		p.SortColumn,
		string(p.SortDirection),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving preference for %s: %w", p.View, err)
	}
	return nil
}

// Delete removes the preference for view. Deleting a missing row is not an
// error.
func (r *PreferencesRepository) Delete(ctx context.Context, view models.ViewID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM view_preferences WHERE view = ?", string(view)); err != nil {
		return fmt.Errorf("deleting preference for %s: %w", view, err)
	}
	return nil
}

// List returns every stored preference ordered by view.
func (r *PreferencesRepository) List(ctx context.Context) ([]models.ViewPreference, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT view, page_size, sort_column, sort_direction, updated_at
		FROM view_preferences
		ORDER BY view`)
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	var prefs []models.ViewPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		prefs = append(prefs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preferences: %w", err)
	}
	return prefs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreference(s scanner) (*models.ViewPreference, error) {
	var (
		p         models.ViewPreference
		view      string
		direction string
		updatedAt string
	)
	if err := s.Scan(&view, &p.PageSize, &p.SortColumn, &direction, &updatedAt); err != nil {
		return nil, err
	}

	p.View = models.ViewID(view)
	p.SortDirection = table.ParseDirection(direction)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}
