//go:build sqlite_fts5

package activity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS activity_fts USING fts5(
			entry_id UNINDEXED,
			summary,
			payload,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(ctx context.Context, tx *sql.Tx, id int64, summary, payload string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO activity_fts (entry_id, summary, payload) VALUES (?, ?, ?)`,
		id, summary, payload)
	if err != nil {
		return fmt.Errorf("activity: insert fts: %w", err)
	}
	return nil
}

// matchExpr turns free text into an FTS5 expression where every word is a
// quoted string, so operators and punctuation are matched as text.
func matchExpr(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

// Search performs an FTS5 full-text search ranked by relevance. All words
// must match.
func (l *Log) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	expr := matchExpr(query)
	if expr == "" {
		return []Entry{}, nil
	}
	rows, err := l.conn.QueryContext(ctx, `
		SELECT a.id, a.user_id, a.kind, a.summary, a.payload, a.created_at
		FROM activity_fts f
		JOIN activity a ON a.id = f.entry_id
		WHERE activity_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("activity: search: %w", err)
	}
	return scanEntries(rows)
}
