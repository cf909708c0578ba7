package dice

import "go.uber.org/zap"

// Roller wraps a Source, a pity threshold, and a logger.
// Every throw is logged at debug level with value, streak, and whether it was forced.
type Roller struct {
	src       Source
	threshold int
	logger    *zap.Logger
}

// NewLoggedRoller creates a Roller that throws with src and logs each throw to logger.
// A threshold below 1 falls back to DefaultPityThreshold.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, threshold int, logger *zap.Logger) *Roller {
	if threshold < 1 {
		threshold = DefaultPityThreshold
	}
	return &Roller{src: src, threshold: threshold, logger: logger}
}

// Threshold returns the number of misses that forces the next throw.
func (r *Roller) Threshold() int {
	return r.threshold
}

// Roll throws one die for a player with the given miss streak and logs the outcome.
// fields are appended to the log entry to identify the player and room.
//
// Postcondition: result satisfies the Throw postcondition for r.Threshold().
func (r *Roller) Roll(misses int, fields ...zap.Field) Outcome {
	out := Throw(r.src, misses, r.threshold)
	r.logger.Debug("dice roll", append(fields,
		zap.Int("value", out.Value),
		zap.Bool("forced", out.Forced),
		zap.Int("misses_before", misses),
		zap.Int("misses_after", out.Misses),
	)...)
	return out
}
