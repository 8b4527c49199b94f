package engine

import (
	"fmt"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
)

// ResolveMove maps a strategy and the opponent's prior move to this round's
// move. Pure except for the Random strategy, which consumes one draw from rng.
// The switch is exhaustive over the Strategy enum; anything else is a
// configuration error, never a silently-defaulted move.
func ResolveMove(s terminal.Strategy, opponentLast terminal.Move, isFirst bool, rng RandomSource) (terminal.Move, error) {
	switch s {
	case terminal.AlwaysCooperate:
		return terminal.Cooperate, nil
	case terminal.AlwaysDefect:
		return terminal.Defect, nil
	case terminal.TitForTatCooperate:
		if isFirst {
			return terminal.Cooperate, nil
		}
		return opponentLast, nil
	case terminal.TitForTatDefect:
		if isFirst {
			return terminal.Defect, nil
		}
		return opponentLast, nil
	case terminal.RandomChoice:
		if rng.IntN(2) == 0 {
			return terminal.Cooperate, nil
		}
		return terminal.Defect, nil
	default:
		return terminal.MoveUnspecified, fmt.Errorf("%w: %v", ErrInvalidStrategy, s)
	}
}
