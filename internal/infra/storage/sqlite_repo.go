package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteArchive implements Archive for SQLite.
type SQLiteArchive struct {
	db *sql.DB
}

func NewSQLiteArchive(db *sql.DB) *SQLiteArchive {
	return &SQLiteArchive{db: db}
}

// SaveRun stores the summary and every round record in one transaction so the
// archive never holds a half-written run.
func (a *SQLiteArchive) SaveRun(ctx context.Context, summary RunSummary, rounds []RoundRow) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, strategy_a, strategy_b, rounds, initial_a, initial_b, final_a, final_b, total_gain, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			strategy_a=excluded.strategy_a,
			strategy_b=excluded.strategy_b,
			rounds=excluded.rounds,
			final_a=excluded.final_a,
			final_b=excluded.final_b,
			total_gain=excluded.total_gain,
			finished_at=excluded.finished_at
	`,
		summary.RunID, summary.StrategyA, summary.StrategyB, summary.Rounds,
		summary.InitialA, summary.InitialB, summary.FinalA, summary.FinalB,
		summary.TotalGain, summary.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run summary: %w", err)
	}

	for _, r := range rounds {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO round_records (run_id, round, move_a, move_b, raw_gain_a, raw_gain_b, net_gain_a, net_gain_b, spillover_to_b, volume_a, volume_b)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, round) DO NOTHING
		`,
			r.RunID, r.Round, r.MoveA, r.MoveB, r.RawGainA, r.RawGainB,
			r.NetGainA, r.NetGainB, r.SpilloverToB, r.VolumeA, r.VolumeB,
		)
		if err != nil {
			return fmt.Errorf("failed to save round %d: %w", r.Round, err)
		}
	}

	return tx.Commit()
}

func (a *SQLiteArchive) AppendEvent(ctx context.Context, row EventRow) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO sim_events (id, timestamp, event_type, run_id, round, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		row.ID, row.Timestamp, row.EventType, row.RunID, row.Round, row.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (a *SQLiteArchive) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT run_id, strategy_a, strategy_b, rounds, initial_a, initial_b, final_a, final_b, total_gain, finished_at
		FROM runs ORDER BY finished_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(
			&s.RunID, &s.StrategyA, &s.StrategyB, &s.Rounds,
			&s.InitialA, &s.InitialB, &s.FinalA, &s.FinalB,
			&s.TotalGain, &s.FinishedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *SQLiteArchive) GetRounds(ctx context.Context, runID string) ([]RoundRow, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT run_id, round, move_a, move_b, raw_gain_a, raw_gain_b, net_gain_a, net_gain_b, spillover_to_b, volume_a, volume_b
		FROM round_records WHERE run_id = ? ORDER BY round ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoundRow
	for rows.Next() {
		var r RoundRow
		if err := rows.Scan(
			&r.RunID, &r.Round, &r.MoveA, &r.MoveB, &r.RawGainA, &r.RawGainB,
			&r.NetGainA, &r.NetGainB, &r.SpilloverToB, &r.VolumeA, &r.VolumeB,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
