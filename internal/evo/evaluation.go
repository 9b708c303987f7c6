package evo

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"ipdevo/internal/game"
	"ipdevo/internal/model"
	"ipdevo/internal/strategy"
	"ipdevo/internal/tournament"
)

const (
	DefaultEvaluationRepeats = 10
	DefaultContenders        = 2
)

type EvaluationConfig struct {
	Repeats int
	Rounds  int
	Workers int
	Referee game.Referee
	// Seed drives the Random reference strategy.
	Seed int64
	// Contenders is how many of the supplied neural strategies take part.
	Contenders int
	// ReferenceNames selects the fixed strategies; nil is the default line-up.
	ReferenceNames []string
}

func DefaultEvaluationConfig() EvaluationConfig {
	return EvaluationConfig{
		Repeats:    DefaultEvaluationRepeats,
		Rounds:     tournament.DefaultRounds,
		Workers:    1,
		Referee:    game.DefaultReferee,
		Seed:       1,
		Contenders: DefaultContenders,
	}
}

// FinalEvaluation plays the leading neural strategies, named "Neural 1",
// "Neural 2", ..., against the fixed reference strategies and returns every
// participant sorted by score.
func FinalEvaluation(ctx context.Context, neural []*strategy.Neural, cfg EvaluationConfig) ([]*game.Agent, error) {
	if len(neural) == 0 {
		return nil, fmt.Errorf("final evaluation requires at least one neural strategy")
	}
	if cfg.Contenders <= 0 {
		cfg.Contenders = DefaultContenders
	}
	if cfg.Contenders > len(neural) {
		cfg.Contenders = len(neural)
	}
	if cfg.Referee == (game.Referee{}) {
		cfg.Referee = game.DefaultReferee
	}

	refs, err := strategy.ReferenceSet(cfg.ReferenceNames, cfg.Seed)
	if err != nil {
		return nil, err
	}

	agents := make([]*game.Agent, 0, cfg.Contenders+len(refs))
	for i := 0; i < cfg.Contenders; i++ {
		s := neural[i]
		agent, err := game.NewAgent(fmt.Sprintf("Neural %d", i+1), s.HistoryLength(), s)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	for _, ref := range refs {
		agent, err := game.NewAgent(ref.DisplayName, ref.HistoryLength, ref.Strategy)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	tcfg := tournament.Config{
		Repeats: cfg.Repeats,
		Rounds:  cfg.Rounds,
		Workers: cfg.Workers,
		Referee: cfg.Referee,
	}
	if err := tournament.Run(ctx, agents, tcfg); err != nil {
		return nil, fmt.Errorf("final evaluation: %w", err)
	}
	game.SortByScore(agents)

	for _, agent := range agents {
		glog.V(1).Infof("final evaluation: %s", agent)
	}
	return agents, nil
}

// Ranking converts sorted agents into ranking records.
func Ranking(agents []*game.Agent) []model.RankingEntry {
	out := make([]model.RankingEntry, 0, len(agents))
	for i, agent := range agents {
		out = append(out, model.RankingEntry{Rank: i + 1, Name: agent.Name(), Score: agent.Score()})
	}
	return out
}
