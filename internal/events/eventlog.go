// Package events provides the append-only session log of simulation events.
// Every completed round, run transition and strategy change lands here; the
// replay endpoint and the spectator hub both read from this log.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventTypeRunStarted        EventType = "RUN_STARTED"
	EventTypeRoundCompleted    EventType = "ROUND_COMPLETED"
	EventTypeRunCompleted      EventType = "RUN_COMPLETED"
	EventTypeRunReset          EventType = "RUN_RESET"
	EventTypeStrategiesChanged EventType = "STRATEGIES_CHANGED"
	EventTypeLedgerAppended    EventType = "LEDGER_APPENDED"
	EventTypeLedgerCleared     EventType = "LEDGER_CLEARED"
)

// SimEvent is an immutable record of something that happened in the session.
type SimEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id,omitempty"`
	Round     int         `json:"round,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event SimEvent) error
}

// EventLog is the in-memory append-only log for the session, with optional
// write-through to a persister (the SQLite archive, when enabled).
type EventLog struct {
	mu        sync.RWMutex
	events    []SimEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]SimEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event SimEvent) {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write-through; archive latency must not stall the round loop.
		go func(e SimEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByRun returns all events belonging to a specific run.
func (el *EventLog) GetByRun(runID string) []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []SimEvent
	for _, e := range el.events {
		if e.RunID == runID {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns a copy of the full session history in insertion order.
func (el *EventLog) Replay() []SimEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]SimEvent, len(el.events))
	copy(out, el.events)
	return out
}

// Len returns the number of recorded events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
