// Package storage provides the opt-in SQLite session archive. The engine
// itself persists nothing; when the operator passes a database path, the
// hosting layer writes completed runs and the event stream through here so a
// classroom session can be exported after the fact.
package storage

import (
	"context"
	"time"
)

// RunSummary mirrors the engine's run summary for persistence.
type RunSummary struct {
	RunID        string    `json:"run_id" db:"run_id"`
	StrategyA    string    `json:"strategy_a" db:"strategy_a"`
	StrategyB    string    `json:"strategy_b" db:"strategy_b"`
	Rounds       int       `json:"rounds" db:"rounds"`
	InitialA     int64     `json:"initial_a" db:"initial_a"`
	InitialB     int64     `json:"initial_b" db:"initial_b"`
	FinalA       int64     `json:"final_a" db:"final_a"`
	FinalB       int64     `json:"final_b" db:"final_b"`
	TotalGain    int64     `json:"total_gain" db:"total_gain"`
	FinishedAt   time.Time `json:"finished_at" db:"finished_at"`
}

// RoundRow mirrors one round record for persistence.
type RoundRow struct {
	RunID        string  `json:"run_id" db:"run_id"`
	Round        int     `json:"round" db:"round"`
	MoveA        string  `json:"move_a" db:"move_a"`
	MoveB        string  `json:"move_b" db:"move_b"`
	RawGainA     float64 `json:"raw_gain_a" db:"raw_gain_a"`
	RawGainB     float64 `json:"raw_gain_b" db:"raw_gain_b"`
	NetGainA     int64   `json:"net_gain_a" db:"net_gain_a"`
	NetGainB     int64   `json:"net_gain_b" db:"net_gain_b"`
	SpilloverToB int64   `json:"spillover_to_b" db:"spillover_to_b"`
	VolumeA      int64   `json:"volume_a" db:"volume_a"`
	VolumeB      int64   `json:"volume_b" db:"volume_b"`
}

// EventRow mirrors a session event for persistence.
type EventRow struct {
	ID        string    `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	EventType string    `json:"event_type" db:"event_type"`
	RunID     string    `json:"run_id" db:"run_id"`
	Round     int       `json:"round" db:"round"`
	Payload   string    `json:"payload" db:"payload"` // JSON blob
}

// Archive defines the persistence surface used by the hosting layer.
type Archive interface {
	// SaveRun stores a completed run's summary and its round records.
	SaveRun(ctx context.Context, summary RunSummary, rounds []RoundRow) error

	// AppendEvent stores one session event.
	AppendEvent(ctx context.Context, row EventRow) error

	// ListRuns returns archived run summaries in completion order.
	ListRuns(ctx context.Context) ([]RunSummary, error)

	// GetRounds returns the archived records of one run in round order.
	GetRounds(ctx context.Context, runID string) ([]RoundRow, error)
}
