package engine

import (
	"errors"
	"testing"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
)

func TestUnconditionalStrategies(t *testing.T) {
	for _, opp := range []terminal.Move{terminal.MoveUnspecified, terminal.Cooperate, terminal.Defect} {
		for _, isFirst := range []bool{true, false} {
			move, err := ResolveMove(terminal.AlwaysCooperate, opp, isFirst, nil)
			if err != nil {
				t.Fatal(err)
			}
			if move != terminal.Cooperate {
				t.Errorf("AlwaysCooperate returned %v (opp=%v, first=%v)", move, opp, isFirst)
			}

			move, err = ResolveMove(terminal.AlwaysDefect, opp, isFirst, nil)
			if err != nil {
				t.Fatal(err)
			}
			if move != terminal.Defect {
				t.Errorf("AlwaysDefect returned %v (opp=%v, first=%v)", move, opp, isFirst)
			}
		}
	}
}

func TestTitForTatFirstRound(t *testing.T) {
	// Round 1 plays the strategy's fixed opener regardless of any last-move state.
	move, err := ResolveMove(terminal.TitForTatCooperate, terminal.Defect, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if move != terminal.Cooperate {
		t.Errorf("TitForTat-Cooperate opener = %v, want Cooperate", move)
	}

	move, err = ResolveMove(terminal.TitForTatDefect, terminal.Cooperate, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if move != terminal.Defect {
		t.Errorf("TitForTat-Defect opener = %v, want Defect", move)
	}
}

func TestTitForTatMirrors(t *testing.T) {
	for _, s := range []terminal.Strategy{terminal.TitForTatCooperate, terminal.TitForTatDefect} {
		for _, opp := range []terminal.Move{terminal.Cooperate, terminal.Defect} {
			move, err := ResolveMove(s, opp, false, nil)
			if err != nil {
				t.Fatal(err)
			}
			if move != opp {
				t.Errorf("%v should mirror %v after round 1, got %v", s, opp, move)
			}
		}
	}
}

func TestRandomStrategyReplicable(t *testing.T) {
	first := make([]terminal.Move, 20)
	rng := NewSeededRNG(42)
	for i := range first {
		move, err := ResolveMove(terminal.RandomChoice, terminal.MoveUnspecified, i == 0, rng)
		if err != nil {
			t.Fatal(err)
		}
		first[i] = move
	}

	rng = NewSeededRNG(42)
	for i := range first {
		move, err := ResolveMove(terminal.RandomChoice, terminal.MoveUnspecified, i == 0, rng)
		if err != nil {
			t.Fatal(err)
		}
		if move != first[i] {
			t.Fatalf("seeded Random diverged at draw %d", i)
		}
	}
}

func TestResolveRejectsUnknownStrategy(t *testing.T) {
	_, err := ResolveMove(terminal.StrategyUnspecified, terminal.Cooperate, true, nil)
	if !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("expected ErrInvalidStrategy, got %v", err)
	}
}

func TestParseStrategyAliases(t *testing.T) {
	cases := map[string]terminal.Strategy{
		"AlwaysCooperate":        terminal.AlwaysCooperate,
		"AlwaysDefect":           terminal.AlwaysDefect,
		"TitForTat-Cooperate":    terminal.TitForTatCooperate,
		"TitForTat - Cooperate":  terminal.TitForTatCooperate,
		"TitForTat-Defect":       terminal.TitForTatDefect,
		"TFT - Defect":           terminal.TitForTatDefect,
		"Random":                 terminal.RandomChoice,
	}
	for name, want := range cases {
		got, err := terminal.ParseStrategy(name)
		if err != nil {
			t.Fatalf("ParseStrategy(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := terminal.ParseStrategy("Unknown"); err == nil {
		t.Error("expected error for unknown strategy name")
	}
}
