package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the playback history.
const (
	ActionStart      = "start"
	ActionStop       = "stop"
	ActionBrightness = "brightness"
)

// Entry is one recorded control action.
type Entry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Asset      string    `json:"asset,omitempty"`
	Brightness *int      `json:"brightness,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter controls which history entries to return.
type Filter struct {
	Action string // optional: filter by action
	Limit  int    // default 50, max 200
	Offset int    // pagination offset
}

// ListResult contains a page of history entries.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines playback history operations.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores playback history in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a playback history repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a history entry. ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = "play-" + uuid.NewString()[:8]
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO playback_history (id, action, asset, brightness, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Action, nullableString(e.Asset), e.Brightness,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings, for nullable TEXT columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns history entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM playback_history %s", where) //nolint:gosec // WHERE uses ? placeholders only
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting history entries: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE uses ? placeholders only
		`SELECT id, action, asset, brightness, created_at FROM playback_history
		 %s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, where)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, filter.Limit)
	for rows.Next() {
		var e Entry
		var asset sql.NullString
		var brightness sql.NullInt64
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Action, &asset, &brightness, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if asset.Valid {
			e.Asset = asset.String
		}
		if brightness.Valid {
			b := int(brightness.Int64)
			e.Brightness = &b
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
