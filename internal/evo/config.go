package evo

import (
	"errors"
	"fmt"

	"ipdevo/internal/game"
	"ipdevo/internal/nn"
	"ipdevo/internal/strategy"
	"ipdevo/internal/tournament"
)

var ErrInvalidConfig = errors.New("invalid evolver config")

const (
	DefaultPopulationSize = 20
	DefaultGenerations    = 1000
	DefaultInputNodes     = 7
	DefaultHiddenNodes    = 4
	DefaultParentPool     = 8
	// DefaultEntropyRange is the extra mutation applied to the last
	// offspring of every generation.
	DefaultEntropyRange = 10.0
)

type Config struct {
	PopulationSize int
	Generations    int
	InputNodes     int
	HiddenNodes    int
	HistoryLength  int
	HiddenBias     nn.BiasMode

	Repeats int
	Rounds  int
	Workers int
	Referee game.Referee

	// ParentPool is the number of top-ranked agents offspring are cloned from.
	ParentPool   int
	Selector     Selector
	Schedule     MutationSchedule
	EntropyRange float32

	Seed int64
	// StartGeneration offsets the schedule for continued runs.
	StartGeneration int
	// Initial seeds the population instead of random weights. Shorter slices
	// are topped up with randomized strategies.
	Initial []*strategy.Neural

	// OnGeneration, if set, receives every generation report in order.
	OnGeneration func(GenerationReport)
}

func DefaultConfig() Config {
	return Config{
		PopulationSize: DefaultPopulationSize,
		Generations:    DefaultGenerations,
		InputNodes:     DefaultInputNodes,
		HiddenNodes:    DefaultHiddenNodes,
		HistoryLength:  DefaultInputNodes - 1,
		HiddenBias:     nn.BiasPerRow,
		Repeats:        tournament.DefaultRepeats,
		Rounds:         tournament.DefaultRounds,
		Workers:        1,
		Referee:        game.DefaultReferee,
		ParentPool:     DefaultParentPool,
		Selector:       CyclicSelector{},
		Schedule:       DecayingSchedule{},
		EntropyRange:   DefaultEntropyRange,
		Seed:           1,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c *Config) validate() error {
	if c.PopulationSize < 2 {
		return invalid("population size must be >= 2, got %d", c.PopulationSize)
	}
	if c.Generations < 0 {
		return invalid("generations must be >= 0, got %d", c.Generations)
	}
	layout := nn.Layout{Inputs: c.InputNodes, Hidden: c.HiddenNodes}
	if err := layout.Validate(); err != nil {
		return invalid("%v", err)
	}
	if c.HistoryLength != c.InputNodes-1 {
		return invalid("history length %d must equal input nodes - 1 (%d)", c.HistoryLength, c.InputNodes-1)
	}
	if c.HiddenBias == "" {
		c.HiddenBias = nn.BiasPerRow
	}
	if _, err := nn.ParseBiasMode(string(c.HiddenBias)); err != nil {
		return invalid("%v", err)
	}
	if c.Repeats <= 0 {
		return invalid("repeats must be > 0, got %d", c.Repeats)
	}
	if c.Rounds <= 0 {
		return invalid("rounds must be > 0, got %d", c.Rounds)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Referee == (game.Referee{}) {
		c.Referee = game.DefaultReferee
	}
	if err := c.Referee.Payoff.Validate(); err != nil {
		return invalid("%v", err)
	}
	if c.ParentPool <= 0 {
		return invalid("parent pool must be > 0, got %d", c.ParentPool)
	}
	if c.ParentPool > c.PopulationSize {
		c.ParentPool = c.PopulationSize
	}
	if c.Selector == nil {
		c.Selector = CyclicSelector{}
	}
	if c.Schedule == nil {
		c.Schedule = DecayingSchedule{}
	}
	if c.EntropyRange < 0 {
		return invalid("entropy range must be >= 0, got %f", c.EntropyRange)
	}
	if c.StartGeneration < 0 {
		return invalid("start generation must be >= 0, got %d", c.StartGeneration)
	}
	if len(c.Initial) > c.PopulationSize {
		return invalid("initial population %d exceeds population size %d", len(c.Initial), c.PopulationSize)
	}
	for i, s := range c.Initial {
		if s == nil {
			return invalid("initial strategy %d is nil", i)
		}
		if s.Layout() != layout {
			return invalid("initial strategy %d has layout %dx%d, want %dx%d",
				i, s.Layout().Inputs, s.Layout().Hidden, layout.Inputs, layout.Hidden)
		}
	}
	return nil
}

func (c Config) tournament() tournament.Config {
	return tournament.Config{
		Repeats: c.Repeats,
		Rounds:  c.Rounds,
		Workers: c.Workers,
		Referee: c.Referee,
	}
}
