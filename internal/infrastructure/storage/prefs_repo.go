package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eravn/syncdeck/internal/domain/logs"
)

// Well-known preference keys.
const (
	PrefTheme    = "theme"
	PrefViewMode = "view_mode"
)

// PrefsRepository stores operator preferences as key/value pairs.
// Preferences are best-effort: a read miss falls back to the default and
// a write failure never blocks the operation that triggered it.
type PrefsRepository struct {
	db *sql.DB
}

// NewPrefsRepository creates a new preferences repository.
func NewPrefsRepository(db *sql.DB) *PrefsRepository {
	return &PrefsRepository{db: db}
}

// Get retrieves a preference value, or the fallback when unset.
func (r *PrefsRepository) Get(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM prefs WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, nil
}

// Set stores a preference value, replacing any previous value.
func (r *PrefsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

// Delete removes a preference. Deleting an unset key is not an error.
func (r *PrefsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM prefs WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// All returns every stored preference.
func (r *PrefsRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM prefs ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate preferences: %w", err)
	}

	return prefs, nil
}

// RecordFilter appends a log filter to the usage history, keeping the
// most recent entries for the console's filter recall.
func (r *PrefsRepository) RecordFilter(ctx context.Context, filter logs.Filter) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO filter_history (window_days, status, search) VALUES (?, ?, ?)",
		filter.WindowDays, filter.Status, filter.Search)
	if err != nil {
		return fmt.Errorf("failed to record filter: %w", err)
	}

	// Cap the history; old rows have no value.
	_, err = r.db.ExecContext(ctx, `
		DELETE FROM filter_history WHERE id NOT IN (
			SELECT id FROM filter_history ORDER BY id DESC LIMIT 20
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to trim filter history: %w", err)
	}
	return nil
}

// LastFilter returns the most recently used log filter, or ok=false when
// no filter has been recorded yet.
func (r *PrefsRepository) LastFilter(ctx context.Context) (logs.Filter, bool, error) {
	var f logs.Filter
	err := r.db.QueryRowContext(ctx,
		"SELECT window_days, status, search FROM filter_history ORDER BY id DESC LIMIT 1",
	).Scan(&f.WindowDays, &f.Status, &f.Search)
	if err == sql.ErrNoRows {
		return logs.Filter{}, false, nil
	}
	if err != nil {
		return logs.Filter{}, false, fmt.Errorf("failed to read filter history: %w", err)
	}
	return f, true, nil
}
