// Package strategy holds the IPD decision functions: the evolved neural
// strategy and the hand-coded reference strategies used for evaluation.
//
// History slices passed to Test are newest first and alternate between the
// opponent and the player: history[0] is the opponent's latest move,
// history[1] the player's own latest move, history[2] the opponent's move
// before that, and so on. true means cooperate.
package strategy

import (
	"errors"
	"math"
	"math/rand"
)

var (
	ErrInvalidDimensions = errors.New("invalid strategy dimensions")
	ErrHistoryLength     = errors.New("history length incompatible with strategy")
)

// Strategy maps a round number and a move history to cooperate (true) or
// defect (false).
type Strategy interface {
	Name() string
	Test(round int, history []bool) bool
}

// HistoryValidator is implemented by strategies that read a fixed number of
// history entries.
type HistoryValidator interface {
	ValidateHistory(length int) error
}

// MatchForker is implemented by stateful strategies that need a private
// instance per match. stream identifies the match and the side within it.
type MatchForker interface {
	ForMatch(stream uint64) Strategy
}

// StreamSeed derives the seed of one stream from a base seed with a
// splitmix64 finalizer, so neighbouring streams get unrelated sequences.
func StreamSeed(seed int64, stream uint64) int64 {
	z := uint64(seed) + (stream+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// uniform draws from [lo, hi) in float32, nudging the rare rounded-up draw
// back inside the interval.
func uniform(rng *rand.Rand, lo, hi float32) float32 {
	v := lo + float32(rng.Float64())*(hi-lo)
	if v >= hi {
		v = math.Nextafter32(hi, lo)
	}
	return v
}
