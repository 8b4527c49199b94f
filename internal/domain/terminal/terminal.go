// Package terminal defines the core domain entities for the competing port terminals.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package terminal

import "fmt"

// Move is one of the two actions a terminal can take in a round.
// MoveUnspecified is only ever valid as "no move recorded yet" (before round 1).
type Move uint8

const (
	MoveUnspecified Move = iota
	Cooperate
	Defect
)

func (m Move) String() string {
	switch m {
	case Cooperate:
		return "Cooperate"
	case Defect:
		return "Defect"
	default:
		return "Unspecified"
	}
}

// MarshalJSON encodes moves by name so round records read naturally on the wire.
func (m Move) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// Strategy identifies one of the fixed decision heuristics.
type Strategy uint8

const (
	StrategyUnspecified Strategy = iota
	AlwaysCooperate
	AlwaysDefect
	TitForTatCooperate
	TitForTatDefect
	RandomChoice
)

func (s Strategy) String() string {
	switch s {
	case AlwaysCooperate:
		return "AlwaysCooperate"
	case AlwaysDefect:
		return "AlwaysDefect"
	case TitForTatCooperate:
		return "TitForTat-Cooperate"
	case TitForTatDefect:
		return "TitForTat-Defect"
	case RandomChoice:
		return "Random"
	default:
		return "Unspecified"
	}
}

// MarshalJSON encodes strategies by their canonical name.
func (s Strategy) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ParseStrategy maps a strategy name to its enum value. The legacy spellings
// used by older front-ends ("TitForTat - Cooperate", "TFT - Defect") are
// accepted as aliases of the canonical names.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "AlwaysCooperate":
		return AlwaysCooperate, nil
	case "AlwaysDefect":
		return AlwaysDefect, nil
	case "TitForTat-Cooperate", "TitForTat - Cooperate":
		return TitForTatCooperate, nil
	case "TitForTat-Defect", "TFT - Defect":
		return TitForTatDefect, nil
	case "Random":
		return RandomChoice, nil
	default:
		return StrategyUnspecified, fmt.Errorf("unknown strategy %q", name)
	}
}

// Strategies lists every valid strategy in display order.
func Strategies() []Strategy {
	return []Strategy{AlwaysCooperate, AlwaysDefect, TitForTatCooperate, TitForTatDefect, RandomChoice}
}

// Terminal is the mutable per-side actor state. Volumes are TEUs.
type Terminal struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Volume   int64    `json:"volume"`
	Strategy Strategy `json:"strategy"`

	// MaxCapacity <= 0 means no ceiling. The floor at 0 is unconditional.
	MaxCapacity int64 `json:"max_capacity,omitempty"`

	// LastMove is owned exclusively by the run controller.
	// MoveUnspecified before the first round.
	LastMove Move `json:"last_move"`
}

// HasCapacity reports whether a ceiling is configured for this terminal.
func (t *Terminal) HasCapacity() bool {
	return t.MaxCapacity > 0
}

// ClampVolume applies the unconditional floor at 0 and the ceiling, if any.
func (t *Terminal) ClampVolume() {
	if t.Volume < 0 {
		t.Volume = 0
	}
	if t.HasCapacity() && t.Volume > t.MaxCapacity {
		t.Volume = t.MaxCapacity
	}
}
