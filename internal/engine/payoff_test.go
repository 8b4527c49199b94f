package engine

import (
	"testing"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
)

func TestPayoffTable(t *testing.T) {
	cases := []struct {
		moveA, moveB terminal.Move
		gainA, gainB int64
	}{
		{terminal.Cooperate, terminal.Cooperate, 2500, 1000},
		{terminal.Cooperate, terminal.Defect, -5000, 10000},
		{terminal.Defect, terminal.Cooperate, 10000, -5000},
		{terminal.Defect, terminal.Defect, -2000, -2000},
	}

	for _, c := range cases {
		gainA, gainB := Payoff(c.moveA, c.moveB)
		if gainA != c.gainA || gainB != c.gainB {
			t.Errorf("Payoff(%v, %v) = (%d, %d), want (%d, %d)",
				c.moveA, c.moveB, gainA, gainB, c.gainA, c.gainB)
		}
	}
}

func TestPayoffSymmetry(t *testing.T) {
	dcA, dcB := Payoff(terminal.Defect, terminal.Cooperate)
	cdA, cdB := Payoff(terminal.Cooperate, terminal.Defect)

	if dcA != cdB || dcB != cdA {
		t.Errorf("(Defect, Cooperate) = (%d, %d) should mirror (Cooperate, Defect) = (%d, %d)",
			dcA, dcB, cdA, cdB)
	}
}

func TestPayoffMissDegradesToZero(t *testing.T) {
	gainA, gainB := Payoff(terminal.MoveUnspecified, terminal.Cooperate)
	if gainA != 0 || gainB != 0 {
		t.Errorf("expected (0, 0) on lookup miss, got (%d, %d)", gainA, gainB)
	}
}
