// Package tournament runs repeated round-robin IPD tournaments.
package tournament

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/sourcegraph/conc/pool"

	"ipdevo/internal/game"
)

const (
	DefaultRepeats = 5
	DefaultRounds  = 500
)

type Config struct {
	// Repeats is the number of full round-robins played.
	Repeats int
	// Rounds is the length of every match.
	Rounds int
	// Workers bounds the goroutines used for the matches of one repeat.
	// Values <= 1 play sequentially.
	Workers int
	Referee game.Referee
}

func DefaultConfig() Config {
	return Config{
		Repeats: DefaultRepeats,
		Rounds:  DefaultRounds,
		Workers: 1,
		Referee: game.DefaultReferee,
	}
}

func (c Config) validate() error {
	if c.Repeats <= 0 {
		return fmt.Errorf("tournament repeats must be > 0, got %d", c.Repeats)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("tournament rounds must be > 0, got %d", c.Rounds)
	}
	return c.Referee.Payoff.Validate()
}

// Pairing is one ordered match of a round-robin.
type Pairing struct {
	First  int
	Second int
}

// Pairings lists every ordered pair (p, q) of n agents, self-play included,
// in row-major order.
func Pairings(n int) []Pairing {
	out := make([]Pairing, 0, n*n)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			out = append(out, Pairing{First: p, Second: q})
		}
	}
	return out
}

// Run plays cfg.Repeats round-robins among agents and accumulates the
// match scores into them. Scores are not reset first.
func Run(ctx context.Context, agents []*game.Agent, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	pairings := Pairings(len(agents))
	for repeat := 0; repeat < cfg.Repeats; repeat++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		base := uint64(repeat) * uint64(len(pairings))
		if cfg.Workers > 1 {
			err = playParallel(ctx, agents, pairings, base, cfg)
		} else {
			err = playSequential(ctx, agents, pairings, base, cfg)
		}
		if err != nil {
			return err
		}
		if glog.V(1) {
			glog.Infof("tournament repeat %d/%d: %d agents, %d matches", repeat+1, cfg.Repeats, len(agents), len(pairings))
		}
	}
	return nil
}

func playSequential(ctx context.Context, agents []*game.Agent, pairings []Pairing, base uint64, cfg Config) error {
	for i, pair := range pairings {
		if i%len(agents) == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		playPair(agents, pair, base+uint64(i), cfg)
	}
	return nil
}

func playParallel(ctx context.Context, agents []*game.Agent, pairings []Pairing, base uint64, cfg Config) error {
	p := pool.New().WithContext(ctx).WithMaxGoroutines(cfg.Workers)
	for i, pair := range pairings {
		pair, stream := pair, base+uint64(i)
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			playPair(agents, pair, stream, cfg)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// playPair plays one match on its own stream, which is its index across all
// repeats, so stateful strategies draw the same values whatever the worker
// schedule.
func playPair(agents []*game.Agent, pair Pairing, stream uint64, cfg Config) {
	a1, a2 := agents[pair.First], agents[pair.Second]
	result := cfg.Referee.PlayStream(a1, a2, cfg.Rounds, stream)
	if glog.V(2) {
		glog.Infof("match %s vs %s: %d-%d", a1.Name(), a2.Name(), result.Score1, result.Score2)
	}
}
