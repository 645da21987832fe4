package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/scene-adapter/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID returns a ULID; ids created by one store sort in creation order.
func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		model       TEXT NOT NULL DEFAULT '',
		label       TEXT NOT NULL DEFAULT '',
		batch       TEXT NOT NULL DEFAULT '',
		input       TEXT NOT NULL,
		output      TEXT NOT NULL,
		stats       TEXT,
		compressed  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		deleted_at  TEXT,
		expires_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries(kind);
	CREATE INDEX IF NOT EXISTS idx_entries_model ON entries(model);
	CREATE INDEX IF NOT EXISTS idx_entries_batch ON entries(batch);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_deleted ON entries(deleted_at);
	CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const entryColumns = `id, kind, model, label, batch, input, output, stats, compressed, created_at, deleted_at, expires_at`

// liveFilter excludes removed and expired entries; it takes the current
// time as its only argument.
const liveFilter = `deleted_at IS NULL AND (expires_at IS NULL OR expires_at > ?)`

func (s *SQLiteStore) Record(ctx context.Context, p RecordParams) (*model.Entry, error) {
	if !model.ValidKinds[p.Kind] {
		return nil, fmt.Errorf("invalid kind %q (valid: prompt, dialogue)", p.Kind)
	}

	now := time.Now().UTC()
	e := &model.Entry{
		ID:         s.newID(now),
		Kind:       p.Kind,
		Model:      p.Model,
		Label:      p.Label,
		Batch:      p.Batch,
		Input:      p.Input,
		Output:     p.Output,
		Compressed: p.Compressed,
		CreatedAt:  now.Truncate(time.Second),
	}

	var statsJSON *string
	if p.Stats != nil {
		b, err := json.Marshal(p.Stats)
		if err != nil {
			return nil, fmt.Errorf("marshal stats: %w", err)
		}
		js := string(b)
		statsJSON = &js
		e.Stats = js
	}

	var expiresAt *string
	if p.TTL != "" {
		d, err := parseTTL(p.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid ttl: %w", err)
		}
		exp := now.Add(d).Truncate(time.Second)
		e.ExpiresAt = &exp
		str := exp.Format(time.RFC3339)
		expiresAt = &str
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
		e.ID, string(e.Kind), e.Model, e.Label, e.Batch, e.Input, e.Output,
		statsJSON, boolInt(e.Compressed), now.Format(time.RFC3339), expiresAt)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Entry, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ? AND `+liveFilter, id, now)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Entry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	now := time.Now().UTC().Format(time.RFC3339)
	where := []string{liveFilter}
	args := []interface{}{now}

	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(p.Kind))
	}
	if p.Model != "" {
		where = append(where, "model = ?")
		args = append(args, p.Model)
	}
	if p.Batch != "" {
		where = append(where, "batch = ?")
		args = append(args, p.Batch)
	}

	query := fmt.Sprintf(`SELECT %s FROM entries WHERE %s ORDER BY created_at DESC, id DESC LIMIT ?`,
		entryColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.queryEntries(ctx, query, args...)
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	var res sql.Result
	var err error
	if p.Hard {
		res, err = s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, p.ID)
	} else {
		now := time.Now().UTC().Format(time.RFC3339)
		res, err = s.db.ExecContext(ctx,
			`UPDATE entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, p.ID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	return nil
}

// Prune hard-deletes expired and soft-deleted entries and returns how many
// were removed.
func (s *SQLiteStore) Prune(ctx context.Context) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE deleted_at IS NOT NULL OR (expires_at IS NOT NULL AND expires_at <= ?)`, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...interface{}) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.Entry, error) {
	var e model.Entry
	var kind, createdAt string
	var stats, deletedAt, expiresAt sql.NullString
	var compressed int

	err := row.Scan(
		&e.ID, &kind, &e.Model, &e.Label, &e.Batch, &e.Input, &e.Output,
		&stats, &compressed, &createdAt, &deletedAt, &expiresAt,
	)
	if err != nil {
		return e, err
	}

	e.Kind = model.EntryKind(kind)
	e.Compressed = compressed != 0
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if stats.Valid {
		e.Stats = stats.String
	}
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		e.DeletedAt = &t
	}
	if expiresAt.Valid {
		t, _ := time.Parse(time.RFC3339, expiresAt.String)
		e.ExpiresAt = &t
	}
	return e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTTL parses a TTL string like "7d", "24h", "30m" into a time.Duration.
var ttlRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

func parseTTL(s string) (time.Duration, error) {
	m := ttlRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid format %q (use e.g. 7d, 24h, 30m, 60s)", s)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("unknown unit %q", m[2])
}
