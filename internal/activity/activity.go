// Package activity keeps a SQLite log of user-facing events (logins, chat
// messages, quiz and practice submissions) with optional FTS5 search.
package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry kinds.
const (
	KindLogin    = "login"
	KindLogout   = "logout"
	KindChat     = "chat"
	KindQuiz     = "quiz"
	KindPractice = "practice"
	KindProgress = "progress"
	KindPattern  = "pattern"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS activity (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_activity_user ON activity(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_activity_kind ON activity(kind);
`

// Entry is one logged event.
type Entry struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	Summary   string          `json:"summary"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Recorder is the write side used by request handlers.
type Recorder interface {
	Record(ctx context.Context, userID, kind, summary string, payload any) error
}

// Store is the full log interface.
type Store interface {
	Recorder
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
	Search(ctx context.Context, query string, limit int) ([]Entry, error)
	CountsByKind(ctx context.Context, userID string) (map[string]int, error)
	Close() error
}

// Verify *Log satisfies Store at compile time.
var _ Store = (*Log)(nil)

// Log wraps a sql.DB holding the activity table.
type Log struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Log, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("activity: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("activity: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("activity: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("activity: apply fts schema: %w", err)
	}
	return &Log{conn: conn, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	return l.conn.Close()
}
