// Package export renders run histories, the comparison ledger and reflection
// answers into downloadable documents. No format here is bit-exact contract;
// the engine stays free of serialization concerns.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/engine"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/ledger"
)

// WriteHistoryCSV dumps a run's round records as delimited text, one row per
// round in round order.
func WriteHistoryCSV(w io.Writer, history []engine.RoundRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"round", "move_a", "move_b",
		"raw_gain_a", "raw_gain_b", "net_gain_a", "net_gain_b",
		"spillover_to_b", "volume_a", "volume_b",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	for _, rec := range history {
		row := []string{
			strconv.Itoa(rec.Round),
			rec.MoveA.String(),
			rec.MoveB.String(),
			strconv.FormatFloat(rec.RawGainA, 'f', -1, 64),
			strconv.FormatFloat(rec.RawGainB, 'f', -1, 64),
			strconv.FormatInt(rec.NetGainA, 10),
			strconv.FormatInt(rec.NetGainB, 10),
			strconv.FormatInt(rec.SpilloverToB, 10),
			strconv.FormatInt(rec.VolumeAAfter, 10),
			strconv.FormatInt(rec.VolumeBAfter, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write history row %d: %w", rec.Round, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLedgerCSV dumps the comparison ledger as delimited text.
func WriteLedgerCSV(w io.Writer, entries []ledger.Entry) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "finished_at", "strategy_a", "strategy_b",
		"rounds_played", "final_a", "final_b", "total_gain",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.RunID,
			e.FinishedAt.Format(time.RFC3339),
			e.Summary.StrategyA.String(),
			e.Summary.StrategyB.String(),
			strconv.Itoa(e.Summary.RoundsPlayed),
			strconv.FormatInt(e.Summary.FinalVolumeA, 10),
			strconv.FormatInt(e.Summary.FinalVolumeB, 10),
			strconv.FormatInt(e.Summary.TotalGain, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write ledger row %s: %w", e.RunID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Reflection is one free-text post-simulation answer.
type Reflection struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ReflectionDoc is the key-value document students hand in after a session.
type ReflectionDoc struct {
	Student     string       `json:"student,omitempty"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Reflections []Reflection `json:"reflections"`
}

// WriteReflections renders the reflection document as indented JSON.
func WriteReflections(w io.Writer, doc ReflectionDoc) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode reflections: %w", err)
	}
	return nil
}
