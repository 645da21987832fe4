package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/scene-adapter/internal/model"
)

// ExportAll returns all live entries, optionally filtered by kind, oldest first.
func (s *SQLiteStore) ExportAll(ctx context.Context, kind model.EntryKind) ([]model.Entry, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `SELECT ` + entryColumns + ` FROM entries WHERE ` + liveFilter
	args := []interface{}{now}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at, id`
	return s.queryEntries(ctx, query, args...)
}

// Import stores entries from an export, keeping their ids and timestamps.
// Entries whose id already exists are skipped. Returns the number inserted.
func (s *SQLiteStore) Import(ctx context.Context, entries []model.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for _, e := range entries {
		if !model.ValidKinds[e.Kind] {
			return 0, fmt.Errorf("import %s: invalid kind %q", e.ID, e.Kind)
		}
		id := e.ID
		if id == "" {
			id = s.newID(time.Now().UTC())
		}
		created := e.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}

		var stats, expires *string
		if e.Stats != "" {
			stats = &e.Stats
		}
		if e.ExpiresAt != nil {
			str := e.ExpiresAt.UTC().Format(time.RFC3339)
			expires = &str
		}

		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO entries (`+entryColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
			id, string(e.Kind), e.Model, e.Label, e.Batch, e.Input, e.Output,
			stats, boolInt(e.Compressed), created.UTC().Format(time.RFC3339), expires)
		if err != nil {
			return 0, fmt.Errorf("import %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}
