package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const defaultLimit = 50

// Record appends an event. payload is stored as JSON; nil stores {}.
func (l *Log) Record(ctx context.Context, userID, kind, summary string, payload any) error {
	body := []byte("{}")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("activity: encode payload: %w", err)
		}
		body = b
	}

	tx, err := l.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("activity: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.ExecContext(ctx, `
		INSERT INTO activity (user_id, kind, summary, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, kind, summary, string(body), l.now().UTC())
	if err != nil {
		return fmt.Errorf("activity: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("activity: insert id: %w", err)
	}

	// FTS insert (no-op when FTS5 tag is absent).
	if err := ftsInsert(ctx, tx, id, summary, string(body)); err != nil {
		return err
	}
	return tx.Commit()
}

// ListByUser returns the newest entries for userID first.
func (l *Log) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := l.conn.QueryContext(ctx, `
		SELECT id, user_id, kind, summary, payload, created_at
		FROM activity
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("activity: list: %w", err)
	}
	return scanEntries(rows)
}

// CountsByKind counts userID's entries per kind. An empty userID counts
// every entry.
func (l *Log) CountsByKind(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := l.conn.QueryContext(ctx, `
		SELECT kind, count(*)
		FROM activity
		WHERE ? = '' OR user_id = ?
		GROUP BY kind
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("activity: counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		var payload string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Summary, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = json.RawMessage(payload)
		out = append(out, e)
	}
	return out, rows.Err()
}
