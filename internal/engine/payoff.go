package engine

import "github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"

// movePair keys the payoff table.
type movePair struct {
	A, B terminal.Move
}

// payoffs is the base economic model: raw TEU gains per (moveA, moveB).
// The asymmetric Cooperate/Cooperate split reflects Terminal A's larger base.
var payoffs = map[movePair][2]int64{
	{terminal.Cooperate, terminal.Cooperate}: {2500, 1000},
	{terminal.Cooperate, terminal.Defect}:    {-5000, 10000},
	{terminal.Defect, terminal.Cooperate}:    {10000, -5000},
	{terminal.Defect, terminal.Defect}:       {-2000, -2000},
}

// Payoff returns the raw gain pair for a move combination. The Move enum is
// closed, so a miss cannot happen through the public API; it still degrades
// to (0, 0) rather than panicking.
func Payoff(moveA, moveB terminal.Move) (gainA, gainB int64) {
	p, ok := payoffs[movePair{moveA, moveB}]
	if !ok {
		return 0, 0
	}
	return p[0], p[1]
}
