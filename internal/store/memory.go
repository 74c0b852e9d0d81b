package store

import (
	"sync"
	"time"
)

// Memory is an in-memory Store for tests and for running without a database.
type Memory struct {
	mu     sync.Mutex
	keys   []KeyEventRow
	mice   []MouseEventRow
	cycles []CycleRow
	nextID int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// InsertKeyEvent implements Store.
func (m *Memory) InsertKeyEvent(row *KeyEventRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.nextID
	m.nextID++
	m.keys = append(m.keys, *row)
	return nil
}

// InsertMouseEvent implements Store.
func (m *Memory) InsertMouseEvent(row *MouseEventRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.nextID
	m.nextID++
	m.mice = append(m.mice, *row)
	return nil
}

// RecordCycle implements Store.
func (m *Memory) RecordCycle(transcriptPath, text, outcome string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles = append(m.cycles, CycleRow{
		ID:         m.nextID,
		StartedAt:  time.Now().UnixNano(),
		Transcript: transcriptPath,
		Text:       text,
		Outcome:    outcome,
	})
	m.nextID++
	return nil
}

// RecentCycles implements Store.
func (m *Memory) RecentCycles(limit int) ([]CycleRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.cycles)
	if limit > n {
		limit = n
	}
	out := make([]CycleRow, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.cycles[i])
	}
	return out, nil
}

// Summarize implements Store.
func (m *Memory) Summarize() (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := Summary{
		KeyboardEvents: int64(len(m.keys)),
		MouseEvents:    int64(len(m.mice)),
		Cycles:         int64(len(m.cycles)),
	}
	for _, c := range m.cycles {
		if c.Outcome == "injected" || c.Outcome == "injected_partial" {
			sum.Injected++
		}
	}
	return sum, nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }

// KeyEvents returns a copy of the stored keyboard events, for tests.
func (m *Memory) KeyEvents() []KeyEventRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]KeyEventRow, len(m.keys))
	copy(out, m.keys)
	return out
}
