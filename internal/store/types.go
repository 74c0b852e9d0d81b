// Package store provides SQLite-backed persistence of captured input events
// and suggestion cycles for the history subcommands.
package store

// KeyEventRow is one persisted keyboard event.
type KeyEventRow struct {
	ID          int64
	TimestampUs uint64
	Key         string
	Char        string // empty for non-printable keys
	Action      string // "keydown" or "keyup"
	CursorX     int32
	CursorY     int32
}

// MouseEventRow is one persisted mouse button event.
type MouseEventRow struct {
	ID          int64
	TimestampUs uint64
	Action      string // "leftdown", "rightup", ...
	CursorX     int32
	CursorY     int32
}

// CycleRow is one persisted suggestion cycle.
type CycleRow struct {
	ID         int64
	StartedAt  int64 // unix nanoseconds
	Transcript string
	Text       string
	Outcome    string // "injected", "injected_partial", "inject_failed", "discarded", "cancelled"
}

// Summary aggregates a capture session for the shutdown report.
type Summary struct {
	KeyboardEvents int64
	MouseEvents    int64
	Cycles         int64
	Injected       int64
}

// Store is the persistence interface; SQLite in production, memory in tests.
type Store interface {
	InsertKeyEvent(row *KeyEventRow) error
	InsertMouseEvent(row *MouseEventRow) error
	RecordCycle(transcriptPath, text, outcome string) error
	RecentCycles(limit int) ([]CycleRow, error)
	Summarize() (Summary, error)
	Close() error
}
