package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Schema for the suggestd history store.
const schema = `
CREATE TABLE IF NOT EXISTS key_events (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp_us    INTEGER NOT NULL,
    key             TEXT NOT NULL,
    char            TEXT NOT NULL DEFAULT '',
    action          TEXT NOT NULL,
    cursor_x        INTEGER NOT NULL,
    cursor_y        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_key_events_timestamp ON key_events(timestamp_us);

CREATE TABLE IF NOT EXISTS mouse_events (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp_us    INTEGER NOT NULL,
    action          TEXT NOT NULL,
    cursor_x        INTEGER NOT NULL,
    cursor_y        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cycles (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at_ns   INTEGER NOT NULL,
    transcript      TEXT NOT NULL,
    text            TEXT NOT NULL,
    outcome         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at_ns);
`

// SQLite is the production history store.
type SQLite struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InsertKeyEvent persists a keyboard event.
func (s *SQLite) InsertKeyEvent(row *KeyEventRow) error {
	result, err := s.db.Exec(`
		INSERT INTO key_events (timestamp_us, key, char, action, cursor_x, cursor_y)
		VALUES (?, ?, ?, ?, ?, ?)`,
		row.TimestampUs, row.Key, row.Char, row.Action, row.CursorX, row.CursorY,
	)
	if err != nil {
		return fmt.Errorf("insert key event: %w", err)
	}
	row.ID, _ = result.LastInsertId()
	return nil
}

// InsertMouseEvent persists a mouse button event.
func (s *SQLite) InsertMouseEvent(row *MouseEventRow) error {
	result, err := s.db.Exec(`
		INSERT INTO mouse_events (timestamp_us, action, cursor_x, cursor_y)
		VALUES (?, ?, ?, ?)`,
		row.TimestampUs, row.Action, row.CursorX, row.CursorY,
	)
	if err != nil {
		return fmt.Errorf("insert mouse event: %w", err)
	}
	row.ID, _ = result.LastInsertId()
	return nil
}

// RecordCycle persists a completed suggestion cycle.
func (s *SQLite) RecordCycle(transcriptPath, text, outcome string) error {
	_, err := s.db.Exec(`
		INSERT INTO cycles (started_at_ns, transcript, text, outcome)
		VALUES (?, ?, ?, ?)`,
		time.Now().UnixNano(), transcriptPath, text, outcome,
	)
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	return nil
}

// RecentCycles returns the newest cycles, most recent first.
func (s *SQLite) RecentCycles(limit int) ([]CycleRow, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at_ns, transcript, text, outcome
		FROM cycles ORDER BY started_at_ns DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRow
	for rows.Next() {
		var c CycleRow
		if err := rows.Scan(&c.ID, &c.StartedAt, &c.Transcript, &c.Text, &c.Outcome); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Summarize aggregates the stored session.
func (s *SQLite) Summarize() (Summary, error) {
	var sum Summary
	row := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM key_events),
			(SELECT COUNT(*) FROM mouse_events),
			(SELECT COUNT(*) FROM cycles),
			(SELECT COUNT(*) FROM cycles WHERE outcome LIKE 'injected%')`)
	if err := row.Scan(&sum.KeyboardEvents, &sum.MouseEvents, &sum.Cycles, &sum.Injected); err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return sum, nil
}
