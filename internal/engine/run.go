package engine

import (
	"fmt"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/domain/terminal"
)

// Config fixes a run at initialization. Only the two strategies may change
// afterwards, via SetStrategies.
type Config struct {
	InitialVolumeA int64 `json:"initial_volume_a" yaml:"initial_volume_a"`
	InitialVolumeB int64 `json:"initial_volume_b" yaml:"initial_volume_b"`
	Rounds         int   `json:"rounds" yaml:"rounds"`

	StrategyA terminal.Strategy `json:"-" yaml:"-"`
	StrategyB terminal.Strategy `json:"-" yaml:"-"`

	// <= 0 means no ceiling for that terminal.
	MaxCapacityA int64 `json:"max_capacity_a,omitempty" yaml:"max_capacity_a"`
	MaxCapacityB int64 `json:"max_capacity_b,omitempty" yaml:"max_capacity_b"`

	Modifiers Modifiers `json:"modifiers" yaml:"modifiers"`
}

// RoundRecord is the immutable snapshot of one completed round. The ordered
// sequence of records is the run's history; insertion order is round order.
type RoundRecord struct {
	Round        int           `json:"round"` // 1-based
	MoveA        terminal.Move `json:"move_a"`
	MoveB        terminal.Move `json:"move_b"`
	RawGainA     float64       `json:"raw_gain_a"`
	RawGainB     float64       `json:"raw_gain_b"`
	NetGainA     int64         `json:"net_gain_a"`
	NetGainB     int64         `json:"net_gain_b"`
	SpilloverToB int64         `json:"spillover_to_b,omitempty"`
	VolumeAAfter int64         `json:"volume_a_after"`
	VolumeBAfter int64         `json:"volume_b_after"`
}

// Summary condenses a run for the comparison ledger.
type Summary struct {
	StrategyA    terminal.Strategy `json:"strategy_a"`
	StrategyB    terminal.Strategy `json:"strategy_b"`
	RoundsPlayed int               `json:"rounds_played"`
	FinalVolumeA int64             `json:"final_volume_a"`
	FinalVolumeB int64             `json:"final_volume_b"`
	TotalGain    int64             `json:"total_gain"` // joint gain over both initial volumes
	Complete     bool              `json:"complete"`
}

// Run owns the actor pair, configuration and history for one simulation.
// A Run is single-owner: it carries no locking, and concurrent Advance calls
// on the same handle must be serialized by the hosting layer.
type Run struct {
	cfg     Config
	a, b    *terminal.Terminal
	history []RoundRecord
	current int
	rng     RandomSource
}

func validate(cfg Config) error {
	if cfg.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be >= 1, got %d", ErrInvalidConfig, cfg.Rounds)
	}
	if cfg.InitialVolumeA < 0 || cfg.InitialVolumeB < 0 {
		return fmt.Errorf("%w: initial volumes must be non-negative", ErrInvalidConfig)
	}
	for _, s := range [2]terminal.Strategy{cfg.StrategyA, cfg.StrategyB} {
		if s == terminal.StrategyUnspecified || s > terminal.RandomChoice {
			return fmt.Errorf("%w: %v", ErrInvalidStrategy, s)
		}
	}
	return nil
}

// NewRun builds a fresh run from cfg. It fails fast on invalid configuration
// and never partially constructs state. A nil rng selects the crypto-backed
// default source.
func NewRun(cfg Config, rng RandomSource) (*Run, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Run{
		cfg: cfg,
		a: &terminal.Terminal{
			ID: "A", Name: "Terminal A",
			Volume: cfg.InitialVolumeA, MaxCapacity: cfg.MaxCapacityA,
			Strategy: cfg.StrategyA,
		},
		b: &terminal.Terminal{
			ID: "B", Name: "Terminal B",
			Volume: cfg.InitialVolumeB, MaxCapacity: cfg.MaxCapacityB,
			Strategy: cfg.StrategyB,
		},
		history: make([]RoundRecord, 0, cfg.Rounds),
		rng:     rng,
	}, nil
}

// Advance plays exactly one round: resolves both moves from the opponent's
// last move, applies the round engine, appends a record and updates the
// depth-1 move history. Fails with ErrRunComplete once all rounds are played,
// without touching volumes or the history.
func (r *Run) Advance() (RoundRecord, error) {
	if r.IsComplete() {
		return RoundRecord{}, fmt.Errorf("%w: %d rounds played", ErrRunComplete, r.current)
	}

	isFirst := r.current == 0

	var moveA, moveB terminal.Move
	var err error
	if r.cfg.Modifiers.StackelbergLeader {
		// Leader/follower sequencing: A commits first, B observes A's
		// current move in place of a prior one and is never "first".
		moveA, err = ResolveMove(r.a.Strategy, r.b.LastMove, isFirst, r.rng)
		if err != nil {
			return RoundRecord{}, err
		}
		moveB, err = ResolveMove(r.b.Strategy, moveA, false, r.rng)
		if err != nil {
			return RoundRecord{}, err
		}
	} else {
		moveA, err = ResolveMove(r.a.Strategy, r.b.LastMove, isFirst, r.rng)
		if err != nil {
			return RoundRecord{}, err
		}
		moveB, err = ResolveMove(r.b.Strategy, r.a.LastMove, isFirst, r.rng)
		if err != nil {
			return RoundRecord{}, err
		}
	}

	res := ApplyRound(moveA, moveB, r.a, r.b, r.cfg.Modifiers, r.rng)

	r.current++
	record := RoundRecord{
		Round:        r.current,
		MoveA:        moveA,
		MoveB:        moveB,
		RawGainA:     res.RawGainA,
		RawGainB:     res.RawGainB,
		NetGainA:     res.NetGainA,
		NetGainB:     res.NetGainB,
		SpilloverToB: res.SpilloverToB,
		VolumeAAfter: r.a.Volume,
		VolumeBAfter: r.b.Volume,
	}
	r.history = append(r.history, record)
	r.a.LastMove = moveA
	r.b.LastMove = moveB

	return record, nil
}

// RunToEnd advances through every remaining round and returns the full
// history. Batch mode is the stepwise loop without pauses; given the same
// configuration and random source the two modes are identical.
func (r *Run) RunToEnd() ([]RoundRecord, error) {
	for !r.IsComplete() {
		if _, err := r.Advance(); err != nil {
			return nil, err
		}
	}
	return r.History(), nil
}

// SetStrategies swaps the active strategies. Callable at any point, including
// mid-run; takes effect from the next Advance and never rewrites recorded
// rounds. Unknown strategies are rejected here, eagerly.
func (r *Run) SetStrategies(stratA, stratB terminal.Strategy) error {
	for _, s := range [2]terminal.Strategy{stratA, stratB} {
		if s == terminal.StrategyUnspecified || s > terminal.RandomChoice {
			return fmt.Errorf("%w: %v", ErrInvalidStrategy, s)
		}
	}
	r.cfg.StrategyA, r.cfg.StrategyB = stratA, stratB
	r.a.Strategy, r.b.Strategy = stratA, stratB
	return nil
}

// Reset discards all state and re-enters Running with the new configuration.
// Equivalent to NewRun on the same handle.
func (r *Run) Reset(cfg Config) error {
	fresh, err := NewRun(cfg, r.rng)
	if err != nil {
		return err
	}
	*r = *fresh
	return nil
}

// IsComplete reports whether every configured round has been played.
func (r *Run) IsComplete() bool { return r.current >= r.cfg.Rounds }

// CurrentRound returns the number of rounds played so far.
func (r *Run) CurrentRound() int { return r.current }

// Config returns the run configuration as currently in effect.
func (r *Run) Config() Config { return r.cfg }

// History returns a copy of the ordered round records.
func (r *Run) History() []RoundRecord {
	out := make([]RoundRecord, len(r.history))
	copy(out, r.history)
	return out
}

// Volumes returns the current volume pair.
func (r *Run) Volumes() (volumeA, volumeB int64) {
	return r.a.Volume, r.b.Volume
}

// Summary condenses the run's outcome for the comparison ledger.
func (r *Run) Summary() Summary {
	return Summary{
		StrategyA:    r.cfg.StrategyA,
		StrategyB:    r.cfg.StrategyB,
		RoundsPlayed: r.current,
		FinalVolumeA: r.a.Volume,
		FinalVolumeB: r.b.Volume,
		TotalGain:    r.a.Volume + r.b.Volume - r.cfg.InitialVolumeA - r.cfg.InitialVolumeB,
		Complete:     r.IsComplete(),
	}
}
