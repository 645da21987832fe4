package store

import (
	"context"
	"os"
	"time"
)

// Stats holds journal statistics.
type Stats struct {
	DBPath            string       `json:"db_path"`
	DBSizeBytes       int64        `json:"db_size_bytes"`
	TotalEntries      int          `json:"total_entries"`
	ActiveEntries     int          `json:"active_entries"`
	CompressedPrompts int          `json:"compressed_prompts"`
	Kinds             []GroupCount `json:"kinds"`
	Models            []GroupCount `json:"models"`
}

// GroupCount is a count of active entries sharing one value.
type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats returns journal statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Kinds: []GroupCount{}, Models: []GroupCount{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&st.TotalEntries)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE `+liveFilter, now).Scan(&st.ActiveEntries)
	s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE kind = 'prompt' AND compressed = 1 AND `+liveFilter, now).Scan(&st.CompressedPrompts)

	var err error
	if st.Kinds, err = s.groupCounts(ctx, "kind", now); err != nil {
		return st, err
	}
	if st.Models, err = s.groupCounts(ctx, "model", now); err != nil {
		return st, err
	}
	return st, nil
}

// groupCounts counts live entries by column, which must be a trusted name.
func (s *SQLiteStore) groupCounts(ctx context.Context, column, now string) ([]GroupCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+column+`, COUNT(*) AS cnt FROM entries
		WHERE `+liveFilter+` AND `+column+` != ''
		GROUP BY `+column+` ORDER BY cnt DESC, `+column, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GroupCount{}
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
