package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/scene-adapter/internal/model"
)

// SearchParams holds parameters for searching the journal.
type SearchParams struct {
	Query string
	Kind  model.EntryKind
	Limit int
}

// Search finds entries whose input, output or label contains the query
// substring (case-insensitive for ASCII), newest first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Entry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	q := "%" + p.Query + "%"
	now := time.Now().UTC().Format(time.RFC3339)
	where := []string{liveFilter}
	args := []interface{}{now}

	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(p.Kind))
	}

	query := fmt.Sprintf(`
		SELECT %s FROM entries
		WHERE %s AND (input LIKE ? OR output LIKE ? OR label LIKE ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, entryColumns, strings.Join(where, " AND "))
	args = append(args, q, q, q, limit)

	return s.queryEntries(ctx, query, args...)
}
