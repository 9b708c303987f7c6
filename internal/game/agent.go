// Package game implements the per-side IPD state machine, the match runner
// and the score-accumulating Agent.
package game

import (
	"fmt"
	"sort"
	"sync/atomic"

	"ipdevo/internal/strategy"
)

// Agent wraps a strategy with a name, the history length its games keep and
// a cumulative score. Scores are atomic so matches may credit concurrently.
type Agent struct {
	name          string
	historyLength int
	strategy      strategy.Strategy
	score         atomic.Int64
}

func NewAgent(name string, historyLength int, s strategy.Strategy) (*Agent, error) {
	if s == nil {
		return nil, fmt.Errorf("agent %s: strategy is required", name)
	}
	if historyLength < 0 {
		return nil, fmt.Errorf("agent %s: history length must be >= 0, got %d", name, historyLength)
	}
	if v, ok := s.(strategy.HistoryValidator); ok {
		if err := v.ValidateHistory(historyLength); err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
	}
	return &Agent{name: name, historyLength: historyLength, strategy: s}, nil
}

// MustAgent is NewAgent for fixed, known-good wiring.
func MustAgent(name string, historyLength int, s strategy.Strategy) *Agent {
	a, err := NewAgent(name, historyLength, s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Agent) Name() string { return a.name }

func (a *Agent) HistoryLength() int { return a.historyLength }

func (a *Agent) Strategy() strategy.Strategy { return a.strategy }

func (a *Agent) Score() int64 { return a.score.Load() }

// Credit adds points to the cumulative score.
func (a *Agent) Credit(points int) {
	a.score.Add(int64(points))
}

// Reset zeroes the cumulative score.
func (a *Agent) Reset() {
	a.score.Store(0)
}

// NewGame starts a fresh game whose payments are credited to a.
func (a *Agent) NewGame() *Game {
	return a.NewStreamGame(0)
}

// NewStreamGame is NewGame with stateful strategies forked onto stream.
func (a *Agent) NewStreamGame(stream uint64) *Game {
	s := a.strategy
	if f, ok := s.(strategy.MatchForker); ok {
		s = f.ForMatch(stream)
	}
	return NewGame(s, a.historyLength, a)
}

func (a *Agent) String() string {
	return fmt.Sprintf("%s: %d", a.name, a.Score())
}

// SortByScore orders agents by cumulative score, highest first. Ties keep
// their current order.
func SortByScore(agents []*Agent) {
	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].Score() > agents[j].Score()
	})
}
