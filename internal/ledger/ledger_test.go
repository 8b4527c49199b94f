package ledger

import (
	"testing"
	"time"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
	"github.com/MRamiBalles/TerminalesGemelas/server/internal/engine"
)

func entry(runID string, finalA int64) Entry {
	return Entry{
		RunID:      runID,
		FinishedAt: time.Now(),
		Summary: engine.Summary{
			StrategyA:    terminal.AlwaysCooperate,
			StrategyB:    terminal.AlwaysDefect,
			RoundsPlayed: 10,
			FinalVolumeA: finalA,
			FinalVolumeB: 30000,
			TotalGain:    finalA + 30000 - 70000,
			Complete:     true,
		},
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	l := New()
	l.Append(entry("r1", 45000))
	l.Append(entry("r2", 52500))
	l.Append(entry("r3", 48000))

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{"r1", "r2", "r3"} {
		if entries[i].RunID != want {
			t.Errorf("entry %d = %s, want %s", i, entries[i].RunID, want)
		}
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := New()
	l.Append(entry("r1", 45000))

	snapshot := l.Entries()
	snapshot[0].RunID = "mutated"

	if l.Entries()[0].RunID != "r1" {
		t.Error("mutating the returned slice must not affect the ledger")
	}
}

func TestClear(t *testing.T) {
	l := New()
	l.Append(entry("r1", 45000))
	l.Append(entry("r2", 52500))

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("len after clear = %d, want 0", l.Len())
	}
}
