package engine

import (
	"math"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
)

// Per-round exogenous penalties, borne by Terminal A only.
const (
	CongestionPenalty = -300 // export gate congestion, until resolved
	CoastalPenalty    = -200 // loss-making coastal contract, until dropped
)

// NoiseRange bounds the regulatory noise draw: uniform integer in [-500, +500],
// drawn independently for each terminal.
const NoiseRange = 500

// Raw-gain multipliers.
const (
	bertrandFactor     = 0.5  // price war erodes margins toward marginal cost
	berthPoolingFactor = 1.10 // shared-berth synergy under mutual cooperation
	spilloverShare     = 0.5  // fraction of A's cooperative overflow routed to B
)

// Modifiers is the flat set of toggles consumed by the round engine. The
// "complexity level" gating of the front-end is not a core concept; every
// deployment passes the full struct.
type Modifiers struct {
	ResolveCongestion bool `json:"resolve_congestion" yaml:"resolve_congestion"`
	DropCoastal       bool `json:"drop_coastal" yaml:"drop_coastal"`
	ApplyNoise        bool `json:"apply_noise" yaml:"apply_noise"`
	BertrandMode      bool `json:"bertrand_mode" yaml:"bertrand_mode"`
	BerthPooling      bool `json:"berth_pooling" yaml:"berth_pooling"`
	StackelbergLeader bool `json:"stackelberg_leader" yaml:"stackelberg_leader"`
}

// RoundResult carries the gain figures of one resolved round. Raw gains are
// reported after the Bertrand/berth-pooling multipliers and may be fractional;
// net gains are rounded half away from zero and are what volumes move by.
type RoundResult struct {
	RawGainA float64
	RawGainB float64
	NetGainA int64
	NetGainB int64

	// SpilloverToB is the portion of A's over-capacity excess transferred to
	// B this round (0 unless both cooperated and A overflowed).
	SpilloverToB int64
}

// ApplyRound computes one round's gains under the active modifiers and mutates
// both terminals' volumes in place. The step order is load-bearing: raw-gain
// multipliers first, then additive adjustments, then A's clamp and cooperative
// spillover, then B's gain, then the final clamp of both sides.
func ApplyRound(moveA, moveB terminal.Move, a, b *terminal.Terminal, mods Modifiers, rng RandomSource) RoundResult {
	baseA, baseB := Payoff(moveA, moveB)
	rawA, rawB := float64(baseA), float64(baseB)

	if mods.BertrandMode {
		rawA *= bertrandFactor
		rawB *= bertrandFactor
	}
	if mods.BerthPooling && moveA == terminal.Cooperate && moveB == terminal.Cooperate {
		rawA *= berthPoolingFactor
		rawB *= berthPoolingFactor
	}

	var adjustA, adjustB float64
	if mods.ApplyNoise {
		adjustA += float64(rng.IntN(2*NoiseRange+1) - NoiseRange)
		adjustB += float64(rng.IntN(2*NoiseRange+1) - NoiseRange)
	}
	if !mods.ResolveCongestion {
		adjustA += CongestionPenalty
	}
	if !mods.DropCoastal {
		adjustA += CoastalPenalty
	}

	// Rounding policy: half away from zero, applied uniformly.
	netA := int64(math.Round(rawA + adjustA))
	netB := int64(math.Round(rawB + adjustB))

	res := RoundResult{RawGainA: rawA, RawGainB: rawB, NetGainA: netA, NetGainB: netB}

	a.Volume += netA
	if a.HasCapacity() {
		if excess := a.Volume - a.MaxCapacity; excess > 0 {
			a.Volume = a.MaxCapacity
			if moveA == terminal.Cooperate && moveB == terminal.Cooperate {
				res.SpilloverToB = int64(math.Floor(float64(excess) * spilloverShare))
				b.Volume += res.SpilloverToB
			}
		}
	}

	b.Volume += netB

	a.ClampVolume()
	b.ClampVolume()

	return res
}
