package evo

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/golang/glog"

	"ipdevo/internal/game"
	"ipdevo/internal/model"
	"ipdevo/internal/strategy"
	"ipdevo/internal/tournament"
)

const (
	OperationSeed    = "seed"
	OperationImport  = "import"
	OperationElite   = "elite"
	OperationClone   = "clone+mutate"
	OperationEntropy = "clone+mutate+entropy"
)

// GenerationReport describes one finished generation. Elite is a private
// copy of the generation's best strategy.
type GenerationReport struct {
	Generation  int
	EliteName   string
	Elite       *strategy.Neural
	Diagnostics model.GenerationDiagnostics
}

type RunResult struct {
	BestByGeneration      []int64
	GenerationDiagnostics []model.GenerationDiagnostics
	Lineage               []model.LineageRecord
	// FinalPopulation is the population the next generation would play,
	// retained elite first.
	FinalPopulation []*game.Agent
	BestName        string
	Best            *strategy.Neural
	Generations     int
}

// Evolver runs the mutation-only generational loop over a population of
// neural agents.
type Evolver struct {
	cfg        Config
	rng        *rand.Rand
	population []*game.Agent
	generation int
	nextID     int

	bestName string
	best     *strategy.Neural
	lineage  []model.LineageRecord
}

func NewEvolver(cfg Config) (*Evolver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Evolver{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		generation: cfg.StartGeneration,
		lineage:    make([]model.LineageRecord, 0, cfg.PopulationSize*(cfg.Generations+1)),
	}
	e.population = make([]*game.Agent, 0, cfg.PopulationSize)
	for i := 0; i < cfg.PopulationSize; i++ {
		var s *strategy.Neural
		operation := OperationImport
		if i < len(cfg.Initial) {
			s = cfg.Initial[i].Clone()
		} else {
			var err error
			s, err = strategy.NewNeural(cfg.InputNodes, cfg.HiddenNodes, cfg.HiddenBias)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
			s.Randomize(e.rng)
			operation = OperationSeed
		}
		agent, err := game.NewAgent(e.newName(), cfg.HistoryLength, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		e.population = append(e.population, agent)
		e.lineage = append(e.lineage, model.LineageRecord{
			AgentName:  agent.Name(),
			Generation: e.generation,
			Operation:  operation,
		})
	}
	e.bestName = e.population[0].Name()
	e.best = neuralOf(e.population[0])
	return e, nil
}

func (e *Evolver) newName() string {
	name := fmt.Sprintf("N%d", e.nextID)
	e.nextID++
	return name
}

// Population returns the current population; the retained elite is first
// after any completed generation.
func (e *Evolver) Population() []*game.Agent {
	return append([]*game.Agent(nil), e.population...)
}

// Generation is the index of the next generation to play.
func (e *Evolver) Generation() int { return e.generation }

// Best returns a copy of the latest elite strategy and its agent name.
func (e *Evolver) Best() (string, *strategy.Neural) {
	return e.bestName, e.best.Clone()
}

func (e *Evolver) Lineage() []model.LineageRecord {
	return append([]model.LineageRecord(nil), e.lineage...)
}

// Run plays cfg.Generations generations and stops early only on ctx
// cancellation.
func (e *Evolver) Run(ctx context.Context) (RunResult, error) {
	bestHistory := make([]int64, 0, e.cfg.Generations)
	diagnostics := make([]model.GenerationDiagnostics, 0, e.cfg.Generations)

	for i := 0; i < e.cfg.Generations; i++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		report, err := e.Step(ctx)
		if err != nil {
			return RunResult{}, err
		}
		bestHistory = append(bestHistory, report.Diagnostics.BestScore)
		diagnostics = append(diagnostics, report.Diagnostics)
	}

	name, best := e.Best()
	return RunResult{
		BestByGeneration:      bestHistory,
		GenerationDiagnostics: diagnostics,
		Lineage:               e.Lineage(),
		FinalPopulation:       e.Population(),
		BestName:              name,
		Best:                  best,
		Generations:           len(diagnostics),
	}, nil
}

// Step plays one generation: tournament, ranking, elitism and refill.
func (e *Evolver) Step(ctx context.Context) (GenerationReport, error) {
	gen := e.generation
	if err := tournament.Run(ctx, e.population, e.cfg.tournament()); err != nil {
		for _, agent := range e.population {
			agent.Reset()
		}
		return GenerationReport{}, fmt.Errorf("generation %d tournament: %w", gen, err)
	}

	ranked := append([]*game.Agent(nil), e.population...)
	game.SortByScore(ranked)

	span := e.cfg.Schedule.Range(gen)
	diag := summarizeGeneration(ranked, gen, span)

	elite := ranked[0]
	e.bestName = elite.Name()
	e.best = neuralOf(elite)

	next, lineage := e.nextGeneration(ranked, gen, span)
	e.population = next
	e.lineage = append(e.lineage, lineage...)
	e.generation++

	glog.Infof("generation %d: elite=%s best=%d mean=%.1f min=%d range=%.3f",
		gen, diag.EliteName, diag.BestScore, diag.MeanScore, diag.MinScore, diag.MutationRange)

	report := GenerationReport{
		Generation:  gen,
		EliteName:   elite.Name(),
		Elite:       e.best.Clone(),
		Diagnostics: diag,
	}
	if e.cfg.OnGeneration != nil {
		e.cfg.OnGeneration(report)
	}
	return report, nil
}

func summarizeGeneration(ranked []*game.Agent, generation int, span float32) model.GenerationDiagnostics {
	if len(ranked) == 0 {
		return model.GenerationDiagnostics{Generation: generation}
	}

	var total int64
	minScore := ranked[0].Score()
	for _, agent := range ranked {
		total += agent.Score()
		if agent.Score() < minScore {
			minScore = agent.Score()
		}
	}
	return model.GenerationDiagnostics{
		Generation:    generation,
		EliteName:     ranked[0].Name(),
		BestScore:     ranked[0].Score(),
		MeanScore:     float64(total) / float64(len(ranked)),
		MinScore:      minScore,
		MutationRange: float64(span),
	}
}

// nextGeneration keeps the top agent with a zeroed score and refills the
// population with mutated clones of ranked parents. The last offspring gets
// an extra entropy mutation.
func (e *Evolver) nextGeneration(ranked []*game.Agent, generation int, span float32) ([]*game.Agent, []model.LineageRecord) {
	size := e.cfg.PopulationSize
	next := make([]*game.Agent, 0, size)
	lineage := make([]model.LineageRecord, 0, size)

	elite := ranked[0]
	elite.Reset()
	next = append(next, elite)
	lineage = append(lineage, model.LineageRecord{
		AgentName:  elite.Name(),
		ParentName: elite.Name(),
		Generation: generation + 1,
		Operation:  OperationElite,
	})

	poolSize := e.cfg.ParentPool
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}
	for offspring := 0; len(next) < size; offspring++ {
		parent := ranked[e.cfg.Selector.Pick(e.rng, offspring, poolSize, len(ranked))]
		child := neuralOf(parent).Clone()
		child.Mutate(e.rng, span)

		agent := game.MustAgent(e.newName(), e.cfg.HistoryLength, child)
		next = append(next, agent)
		lineage = append(lineage, model.LineageRecord{
			AgentName:  agent.Name(),
			ParentName: parent.Name(),
			Generation: generation + 1,
			Operation:  OperationClone,
		})
	}

	if e.cfg.EntropyRange > 0 {
		last := len(next) - 1
		neuralOf(next[last]).Mutate(e.rng, e.cfg.EntropyRange)
		lineage[last].Operation = OperationEntropy
	}
	return next, lineage
}

func neuralOf(agent *game.Agent) *strategy.Neural {
	s, ok := agent.Strategy().(*strategy.Neural)
	if !ok {
		panic(fmt.Sprintf("evo: agent %s has non-neural strategy %T", agent.Name(), agent.Strategy()))
	}
	return s
}
