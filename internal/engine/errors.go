package engine

import "errors"

var (
	// ErrInvalidConfig rejects a run configuration at initialization
	// (rounds < 1, negative initial volumes). No partial state is built.
	ErrInvalidConfig = errors.New("invalid run configuration")

	// ErrInvalidStrategy rejects an unrecognized strategy. Validation is
	// eager: NewRun and SetStrategies fail immediately rather than waiting
	// for the first advance that needs the strategy.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrRunComplete is returned by Advance once every configured round has
	// been played. Recoverable: the caller should Reset or stop advancing.
	ErrRunComplete = errors.New("run already complete")
)
