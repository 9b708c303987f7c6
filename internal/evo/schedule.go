package evo

// MutationSchedule gives the mutation range used for offspring of a
// generation.
type MutationSchedule interface {
	Range(generation int) float32
}

// DecayingSchedule shrinks the range linearly from 10 at generation 0 to a
// floor of 2 at generation 500.
type DecayingSchedule struct{}

func (DecayingSchedule) Range(generation int) float32 {
	decay := 0.002 * float32(500-generation)
	if decay < 0 {
		decay = 0
	}
	return 2 + 8*decay
}

// ConstSchedule uses the same range for every generation.
type ConstSchedule struct {
	Span float32
}

func (s ConstSchedule) Range(int) float32 {
	return s.Span
}
