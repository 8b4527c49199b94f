package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/engine"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/ledger"
)

func TestWriteHistoryCSV(t *testing.T) {
	history := []engine.RoundRecord{
		{
			Round: 1, MoveA: terminal.Cooperate, MoveB: terminal.Cooperate,
			RawGainA: 2500, RawGainB: 1000, NetGainA: 2000, NetGainB: 1000,
			VolumeAAfter: 52000, VolumeBAfter: 21000,
		},
		{
			Round: 2, MoveA: terminal.Defect, MoveB: terminal.Cooperate,
			RawGainA: 10000, RawGainB: -5000, NetGainA: 9500, NetGainB: -5000,
			SpilloverToB: 250, VolumeAAfter: 60000, VolumeBAfter: 16250,
		},
	}

	var buf bytes.Buffer
	if err := WriteHistoryCSV(&buf, history); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[1][1] != "Cooperate" || rows[2][1] != "Defect" {
		t.Errorf("move columns wrong: %v / %v", rows[1], rows[2])
	}
	if rows[2][7] != "250" {
		t.Errorf("spillover column = %s, want 250", rows[2][7])
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	entries := []ledger.Entry{
		{
			RunID:      "run-1",
			FinishedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
			Summary: engine.Summary{
				StrategyA: terminal.AlwaysCooperate, StrategyB: terminal.AlwaysDefect,
				RoundsPlayed: 10, FinalVolumeA: 45000, FinalVolumeB: 30000,
				TotalGain: 5000, Complete: true,
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteLedgerCSV(&buf, entries); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "run-1") || !strings.Contains(out, "AlwaysDefect") {
		t.Errorf("ledger CSV missing expected fields:\n%s", out)
	}
}

func TestWriteReflections(t *testing.T) {
	doc := ReflectionDoc{
		Student:     "cohort-3",
		SubmittedAt: time.Now(),
		Reflections: []Reflection{
			{Question: "Should Terminal A cooperate with B?", Answer: "Only under a credible tit-for-tat threat."},
		},
	}

	var buf bytes.Buffer
	if err := WriteReflections(&buf, doc); err != nil {
		t.Fatal(err)
	}

	var parsed ReflectionDoc
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatal(err)
	}
	if len(parsed.Reflections) != 1 || parsed.Reflections[0].Question == "" {
		t.Errorf("round-tripped document mismatch: %+v", parsed)
	}
}
