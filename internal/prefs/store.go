// Package prefs is the durable device-local preference store: the lead
// list view mode and the user's saved filter sets. Backed by a SQLite
// file so preferences survive restarts without touching the hosted
// backend. The view-mode preference is best-effort: read and write
// failures are logged and swallowed, never returned to the caller.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const viewModeKey = "view_mode"

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
	user_id TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   TEXT NOT NULL,
	PRIMARY KEY (user_id, key)
);
CREATE TABLE IF NOT EXISTS filter_sets (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	conditions TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_filter_sets_user ON filter_sets (user_id);
`

// Store persists preferences in a local SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the preference database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ============================================================
// View mode (best-effort)
// ============================================================

// ViewMode returns the stored view mode for the user, falling back to
// the default when nothing is stored, the stored value is unrecognized,
// or the read fails.
func (s *Store) ViewMode(ctx context.Context, userID string) domain.ViewMode {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM prefs WHERE user_id = ? AND key = ?`,
		userID, viewModeKey,
	).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		return domain.DefaultViewMode
	case err != nil:
		s.logger.Warn("prefs: view mode read failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return domain.DefaultViewMode
	}

	mode := domain.ViewMode(value)
	if !domain.ValidViewMode(mode) {
		return domain.DefaultViewMode
	}
	return mode
}

// SetViewMode persists the view mode. Write failures are logged, never
// surfaced; the preference is not correctness-critical.
func (s *Store) SetViewMode(ctx context.Context, userID string, mode domain.ViewMode) {
	if !domain.ValidViewMode(mode) {
		s.logger.Warn("prefs: ignoring unrecognized view mode",
			zap.String("user_id", userID),
			zap.String("mode", string(mode)),
		)
		return
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value`,
		userID, viewModeKey, string(mode),
	)
	if err != nil {
		s.logger.Warn("prefs: view mode write failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// ============================================================
// Saved filter sets
// ============================================================

// SaveFilterSet inserts or updates a named filter set. A missing ID means
// a new set; timestamps are maintained here.
func (s *Store) SaveFilterSet(ctx context.Context, userID string, fs *domain.SavedFilterSet) (*domain.SavedFilterSet, error) {
	if fs.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "filter set name is required"}
	}

	now := time.Now().UTC()
	saved := *fs
	saved.UpdatedAt = now
	if saved.ID == "" {
		saved.ID = uuid.New().String()
		saved.CreatedAt = now
	} else {
		// An id-addressed save stays inside the user's own sets. Someone
		// else's id reads as not-found, identical to a missing one, and
		// an owned id keeps its original created_at across updates.
		var owner, createdAt string
		err := s.db.QueryRowContext(ctx,
			`SELECT user_id, created_at FROM filter_sets WHERE id = ?`, saved.ID,
		).Scan(&owner, &createdAt)
		switch {
		case err == sql.ErrNoRows:
			saved.CreatedAt = now
		case err != nil:
			return nil, err
		case owner != userID:
			return nil, &domain.ErrNotFound{Resource: "filter set", ID: saved.ID}
		default:
			saved.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		}
	}

	conditions, err := json.Marshal(saved.Conditions)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO filter_sets (id, user_id, name, conditions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			conditions = excluded.conditions,
			updated_at = excluded.updated_at
		 WHERE filter_sets.user_id = excluded.user_id`,
		saved.ID, userID, saved.Name, string(conditions),
		saved.CreatedAt.Format(time.RFC3339Nano), saved.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListFilterSets returns the user's saved filter sets, oldest first.
// Condition order within each set is preserved exactly as saved.
func (s *Store) ListFilterSets(ctx context.Context, userID string) ([]domain.SavedFilterSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, conditions, created_at, updated_at
		 FROM filter_sets WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets := []domain.SavedFilterSet{}
	for rows.Next() {
		var fs domain.SavedFilterSet
		var conditions, createdAt, updatedAt string
		if err := rows.Scan(&fs.ID, &fs.Name, &conditions, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(conditions), &fs.Conditions); err != nil {
			return nil, err
		}
		fs.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		fs.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		sets = append(sets, fs)
	}
	return sets, rows.Err()
}

// DeleteFilterSet removes one saved filter set owned by the user.
func (s *Store) DeleteFilterSet(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM filter_sets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "filter set", ID: id}
	}
	return nil
}
