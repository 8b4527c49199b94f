// Package ledger accumulates completed-run summaries across a session.
// The ledger is append-only: entries are never edited in place, only
// appended or cleared in full.
package ledger

import (
	"sync"
	"time"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/engine"
)

// Entry is one completed run as it appears in the comparison table.
type Entry struct {
	RunID      string         `json:"run_id"`
	FinishedAt time.Time      `json:"finished_at"`
	Summary    engine.Summary `json:"summary"`
}

// Ledger is the session-scoped, in-memory comparison ledger.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make([]Entry, 0)}
}

// Append records a completed run.
func (l *Ledger) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the accumulated entries in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of accumulated entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear drops every entry.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}
