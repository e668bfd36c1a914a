//go:build !sqlite_fts5

package activity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over summary and payload.
	return nil
}

func ftsInsert(_ context.Context, _ *sql.Tx, _ int64, _, _ string) error {
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (l *Log) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := l.conn.QueryContext(ctx, `
		SELECT id, user_id, kind, summary, payload, created_at
		FROM activity
		WHERE summary LIKE ? ESCAPE '\' OR payload LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("activity: search: %w", err)
	}
	return scanEntries(rows)
}
