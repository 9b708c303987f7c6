// Package ipdevo is the programmatic entry point for training, evaluating
// and inspecting evolved IPD strategies.
package ipdevo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"ipdevo/internal/evo"
	"ipdevo/internal/game"
	"ipdevo/internal/model"
	"ipdevo/internal/nn"
	"ipdevo/internal/stats"
	"ipdevo/internal/storage"
	"ipdevo/internal/strategy"
	"ipdevo/internal/tournament"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "ipdevo.db"

	// createdAtLayout keeps a fixed width so timestamps order lexically.
	createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
}

type Client struct {
	store     storage.Store
	storeKind string

	benchmarksDir string
	exportsDir    string
}

type TrainRequest struct {
	RunID string
	// ContinueRunID seeds the population from a stored run's final
	// population and continues its mutation schedule.
	ContinueRunID string
	Population    int
	Generations   int
	InputNodes    int
	HiddenNodes   int
	HiddenBias    string
	Repeats       int
	Rounds        int
	ParentPool    int
	Selection     string
	EntropyRange  float64
	Workers       int
	Seed          int64
	EvalRepeats   int
	Contenders    int
	References    []string
	// Progress, if set, receives every generation report.
	Progress func(evo.GenerationReport)
}

type TrainSummary struct {
	RunID            string
	ContinuedFrom    string
	ArtifactsDir     string
	BestName         string
	BestByGeneration []int64
	FinalBestScore   int64
	Ranking          []model.RankingEntry
}

type EvaluateRequest struct {
	RunID      string
	Latest     bool
	Repeats    int
	Rounds     int
	Contenders int
	Workers    int
	Seed       int64
	References []string
}

type StrategyRequest struct {
	RunID  string
	Latest bool
	// StrategyID overrides the run's best strategy.
	StrategyID string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	ContinuedFrom  string
	Seed           int64
	Population     int
	Generations    int
	Selection      string
	HiddenBias     string
	FinalBestScore int64
	Winner         string
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type RecordsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		storeKind:     storeKind,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func applyTrainDefaults(req *TrainRequest) {
	defaults := evo.DefaultConfig()
	if req.Population <= 0 {
		req.Population = defaults.PopulationSize
	}
	if req.Generations <= 0 {
		req.Generations = defaults.Generations
	}
	if req.InputNodes <= 0 {
		req.InputNodes = defaults.InputNodes
	}
	if req.HiddenNodes <= 0 {
		req.HiddenNodes = defaults.HiddenNodes
	}
	if req.Repeats <= 0 {
		req.Repeats = defaults.Repeats
	}
	if req.Rounds <= 0 {
		req.Rounds = defaults.Rounds
	}
	if req.ParentPool <= 0 {
		req.ParentPool = defaults.ParentPool
	}
	if req.EntropyRange <= 0 {
		req.EntropyRange = float64(defaults.EntropyRange)
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	if req.EvalRepeats <= 0 {
		req.EvalRepeats = evo.DefaultEvaluationRepeats
	}
	if req.Contenders <= 0 {
		req.Contenders = evo.DefaultContenders
	}
}

// Train evolves a population, runs the final evaluation and persists the
// run to the store and the benchmarks directory.
func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	applyTrainDefaults(&req)

	selector, err := evo.SelectorFromName(req.Selection)
	if err != nil {
		return TrainSummary{}, err
	}
	bias, err := nn.ParseBiasMode(req.HiddenBias)
	if err != nil {
		return TrainSummary{}, err
	}
	if err := c.store.Init(ctx); err != nil {
		return TrainSummary{}, err
	}

	cfg := evo.DefaultConfig()
	cfg.PopulationSize = req.Population
	cfg.Generations = req.Generations
	cfg.InputNodes = req.InputNodes
	cfg.HiddenNodes = req.HiddenNodes
	cfg.HistoryLength = req.InputNodes - 1
	cfg.HiddenBias = bias
	cfg.Repeats = req.Repeats
	cfg.Rounds = req.Rounds
	cfg.Workers = req.Workers
	cfg.ParentPool = req.ParentPool
	cfg.Selector = selector
	cfg.EntropyRange = float32(req.EntropyRange)
	cfg.Seed = req.Seed
	cfg.OnGeneration = req.Progress

	if req.ContinueRunID != "" {
		prior, initial, err := c.loadPopulation(ctx, req.ContinueRunID)
		if err != nil {
			return TrainSummary{}, err
		}
		if len(initial) > cfg.PopulationSize {
			initial = initial[:cfg.PopulationSize]
		}
		cfg.Initial = initial
		cfg.InputNodes = initial[0].Layout().Inputs
		cfg.HiddenNodes = initial[0].Layout().Hidden
		cfg.HistoryLength = initial[0].HistoryLength()
		cfg.HiddenBias = initial[0].HiddenBias()
		cfg.StartGeneration = prior.StartGeneration + prior.Generations
		bias = cfg.HiddenBias
		glog.Infof("continuing run %s from generation %d with %d strategies", prior.ID, cfg.StartGeneration, len(initial))
	}

	evolver, err := evo.NewEvolver(cfg)
	if err != nil {
		return TrainSummary{}, err
	}
	result, err := evolver.Run(ctx)
	if err != nil {
		return TrainSummary{}, err
	}

	contenders := make([]*strategy.Neural, 0, len(result.FinalPopulation))
	for _, agent := range result.FinalPopulation {
		contenders = append(contenders, agent.Strategy().(*strategy.Neural))
	}
	ranked, err := evo.FinalEvaluation(ctx, contenders, evo.EvaluationConfig{
		Repeats:        req.EvalRepeats,
		Rounds:         req.Rounds,
		Workers:        req.Workers,
		Seed:           req.Seed,
		Contenders:     req.Contenders,
		ReferenceNames: req.References,
	})
	if err != nil {
		return TrainSummary{}, err
	}
	ranking := evo.Ranking(ranked)

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	now := time.Now().UTC()
	var finalBest int64
	if n := len(result.BestByGeneration); n > 0 {
		finalBest = result.BestByGeneration[n-1]
	}

	if err := c.persistRun(ctx, runID, now, req, cfg, result, finalBest, ranking); err != nil {
		return TrainSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:             runID,
			ContinueRunID:     req.ContinueRunID,
			InitialGeneration: cfg.StartGeneration,
			PopulationSize:    cfg.PopulationSize,
			Generations:       cfg.Generations,
			InputNodes:        cfg.InputNodes,
			HiddenNodes:       cfg.HiddenNodes,
			HistoryLength:     cfg.HistoryLength,
			HiddenBias:        string(bias),
			Repeats:           cfg.Repeats,
			Rounds:            cfg.Rounds,
			ParentPool:        cfg.ParentPool,
			Selection:         selector.Name(),
			EntropyRange:      req.EntropyRange,
			EvalRepeats:       req.EvalRepeats,
			Contenders:        req.Contenders,
			Seed:              req.Seed,
			Workers:           req.Workers,
			StoreKind:         c.storeKind,
		},
		BestByGeneration:      result.BestByGeneration,
		GenerationDiagnostics: result.GenerationDiagnostics,
		Lineage:               result.Lineage,
		FinalBestScore:        finalBest,
		Best:                  result.Best,
		Ranking:               ranking,
	})
	if err != nil {
		return TrainSummary{}, err
	}

	winner := ""
	if len(ranking) > 0 {
		winner = ranking[0].Name
	}
	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:          runID,
		ContinueRunID:  req.ContinueRunID,
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		Seed:           req.Seed,
		Workers:        req.Workers,
		Selection:      selector.Name(),
		HiddenBias:     string(bias),
		FinalBestScore: finalBest,
		Winner:         winner,
		CreatedAtUTC:   now.Format(createdAtLayout),
	}); err != nil {
		return TrainSummary{}, err
	}

	return TrainSummary{
		RunID:            runID,
		ContinuedFrom:    req.ContinueRunID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestName:         result.BestName,
		BestByGeneration: append([]int64(nil), result.BestByGeneration...),
		FinalBestScore:   finalBest,
		Ranking:          ranking,
	}, nil
}

func (c *Client) persistRun(ctx context.Context, runID string, now time.Time, req TrainRequest, cfg evo.Config, result evo.RunResult, finalBest int64, ranking []model.RankingEntry) error {
	generation := cfg.StartGeneration + result.Generations

	best := strategyRecord(storage.BestStrategyID(runID), runID, result.BestName, result.Best, generation, finalBest)
	if err := c.store.SaveStrategy(ctx, best); err != nil {
		return fmt.Errorf("save best strategy: %w", err)
	}

	populationIDs := make([]string, 0, len(result.FinalPopulation))
	for i, agent := range result.FinalPopulation {
		id := storage.PopulationStrategyID(runID, i)
		rec := strategyRecord(id, runID, agent.Name(), agent.Strategy().(*strategy.Neural), generation, agent.Score())
		if err := c.store.SaveStrategy(ctx, rec); err != nil {
			return fmt.Errorf("save population strategy %d: %w", i, err)
		}
		populationIDs = append(populationIDs, id)
	}

	run := model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              runID,
		CreatedAtUTC:    now.Format(createdAtLayout),
		ContinuedFrom:   req.ContinueRunID,
		StartGeneration: cfg.StartGeneration,
		Generations:     result.Generations,
		PopulationSize:  cfg.PopulationSize,
		InputNodes:      cfg.InputNodes,
		HiddenNodes:     cfg.HiddenNodes,
		Seed:            cfg.Seed,
		Selection:       cfg.Selector.Name(),
		HiddenBias:      string(cfg.HiddenBias),
		BestStrategyID:  best.ID,
		BestScore:       finalBest,
		PopulationIDs:   populationIDs,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, result.BestByGeneration); err != nil {
		return fmt.Errorf("save fitness history: %w", err)
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, runID, result.GenerationDiagnostics); err != nil {
		return fmt.Errorf("save diagnostics: %w", err)
	}

	lineage := make([]model.LineageRecord, len(result.Lineage))
	for i, rec := range result.Lineage {
		rec.VersionedRecord = storage.CurrentVersion()
		lineage[i] = rec
	}
	if err := c.store.SaveLineage(ctx, runID, lineage); err != nil {
		return fmt.Errorf("save lineage: %w", err)
	}
	if err := c.store.SaveRanking(ctx, runID, ranking); err != nil {
		return fmt.Errorf("save ranking: %w", err)
	}
	return nil
}

// Evaluate replays the final evaluation for a stored run's population and
// stores the new ranking.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) ([]model.RankingEntry, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	_, population, err := c.loadPopulation(ctx, runID)
	if err != nil {
		return nil, err
	}

	cfg := evo.DefaultEvaluationConfig()
	runCfg, ok, err := stats.ReadRunConfig(c.benchmarksDir, runID)
	if err != nil {
		return nil, err
	}
	if ok && runCfg.Rounds > 0 {
		cfg.Rounds = runCfg.Rounds
	}
	if req.Repeats > 0 {
		cfg.Repeats = req.Repeats
	}
	if req.Rounds > 0 {
		cfg.Rounds = req.Rounds
	}
	if req.Contenders > 0 {
		cfg.Contenders = req.Contenders
	}
	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	cfg.ReferenceNames = req.References

	agents, err := evo.FinalEvaluation(ctx, population, cfg)
	if err != nil {
		return nil, err
	}
	ranking := evo.Ranking(agents)
	if err := c.store.SaveRanking(ctx, runID, ranking); err != nil {
		return nil, err
	}

	runDir := filepath.Join(c.benchmarksDir, runID)
	if _, err := os.Stat(runDir); err == nil {
		if err := stats.WriteRankingFile(runDir, ranking); err != nil {
			return nil, err
		}
	}
	return ranking, nil
}

// MatchReport is a recorded match plus the last turn the neural strategy
// evaluated.
type MatchReport struct {
	Opponent string
	Result   game.MatchResult
	Last     strategy.Snapshot
}

// Match plays a single recorded match between a stored strategy and a
// reference strategy.
func (c *Client) Match(ctx context.Context, req StrategyRequest, opponent string, rounds int, seed int64) (MatchReport, error) {
	s, err := c.Strategy(ctx, req)
	if err != nil {
		return MatchReport{}, err
	}
	ref, err := strategy.NewReference(opponent, seed)
	if err != nil {
		return MatchReport{}, err
	}
	if rounds <= 0 {
		rounds = tournament.DefaultRounds
	}
	s.SetObserved(true)
	referee := game.Referee{Payoff: game.DefaultPayoff, RecordTurns: true}
	result := referee.Play(
		game.MustAgent("Neural", s.HistoryLength(), s),
		game.MustAgent(ref.DisplayName, ref.HistoryLength, ref.Strategy),
		rounds,
	)
	return MatchReport{Opponent: ref.DisplayName, Result: result, Last: s.Snapshot()}, nil
}

// Strategy loads a stored neural strategy, by default the run's best.
func (c *Client) Strategy(ctx context.Context, req StrategyRequest) (*strategy.Neural, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	id := req.StrategyID
	if id == "" {
		runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
		if err != nil {
			return nil, err
		}
		id = storage.BestStrategyID(runID)
	}
	rec, ok, err := c.store.GetStrategy(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("strategy not found: %s", id)
	}
	return neuralFromRecord(rec)
}

// DecisionTable writes the decision table of a stored strategy.
func (c *Client) DecisionTable(ctx context.Context, req StrategyRequest, w io.Writer) error {
	s, err := c.Strategy(ctx, req)
	if err != nil {
		return err
	}
	return stats.WriteDecisionTable(w, s, s.HistoryLength())
}

// Weights writes the weight vector of a stored strategy as CSV.
func (c *Client) Weights(ctx context.Context, req StrategyRequest, w io.Writer) error {
	s, err := c.Strategy(ctx, req)
	if err != nil {
		return err
	}
	return stats.WriteWeightsCSV(w, s.Weights())
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:          e.RunID,
			CreatedAtUTC:   e.CreatedAtUTC,
			ContinuedFrom:  e.ContinueRunID,
			Seed:           e.Seed,
			Population:     e.PopulationSize,
			Generations:    e.Generations,
			Selection:      e.Selection,
			HiddenBias:     e.HiddenBias,
			FinalBestScore: e.FinalBestScore,
			Winner:         e.Winner,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) Lineage(ctx context.Context, req RecordsRequest) ([]model.LineageRecord, error) {
	runID, err := c.resolveRecordsRun(ctx, req)
	if err != nil {
		return nil, err
	}
	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lineage not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(lineage) > req.Limit {
		lineage = lineage[:req.Limit]
	}
	return lineage, nil
}

// FitnessSeries is a run's best score per generation. FirstGeneration is the
// schedule generation of Best[0], non-zero for continued runs.
type FitnessSeries struct {
	RunID           string
	FirstGeneration int
	Best            []int64
}

func (c *Client) FitnessHistory(ctx context.Context, req RecordsRequest) (FitnessSeries, error) {
	runID, err := c.resolveRecordsRun(ctx, req)
	if err != nil {
		return FitnessSeries{}, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return FitnessSeries{}, err
	}
	if !ok {
		// Runs trained against another store still leave their CSV series.
		history, ok, err = stats.ReadFitnessSeries(c.benchmarksDir, runID)
		if err != nil {
			return FitnessSeries{}, err
		}
	}
	if !ok {
		return FitnessSeries{}, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	first, err := c.startGeneration(ctx, runID)
	if err != nil {
		return FitnessSeries{}, err
	}
	return FitnessSeries{RunID: runID, FirstGeneration: first, Best: history}, nil
}

func (c *Client) startGeneration(ctx context.Context, runID string) (int, error) {
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return 0, err
	}
	if ok {
		return run.StartGeneration, nil
	}
	cfg, ok, err := stats.ReadRunConfig(c.benchmarksDir, runID)
	if err != nil || !ok {
		return 0, err
	}
	return cfg.InitialGeneration, nil
}

func (c *Client) Diagnostics(ctx context.Context, req RecordsRequest) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRecordsRun(ctx, req)
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return diagnostics, nil
}

func (c *Client) Ranking(ctx context.Context, req RecordsRequest) ([]model.RankingEntry, error) {
	runID, err := c.resolveRecordsRun(ctx, req)
	if err != nil {
		return nil, err
	}
	ranking, ok, err := c.store.GetRanking(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("ranking not found for run id: %s", runID)
	}
	return ranking, nil
}

func (c *Client) resolveRecordsRun(ctx context.Context, req RecordsRequest) (string, error) {
	if req.Limit < 0 {
		return "", errors.New("limit must be >= 0")
	}
	if err := c.store.Init(ctx); err != nil {
		return "", err
	}
	return c.resolveRunID(ctx, req.RunID, req.Latest)
}

// resolveRunID picks the explicit run id or, with latest, the newest run in
// the store.
func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id or latest is required")
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	return runs[0].ID, nil
}

func (c *Client) loadPopulation(ctx context.Context, runID string) (model.RunRecord, []*strategy.Neural, error) {
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, nil, err
	}
	if !ok {
		return model.RunRecord{}, nil, fmt.Errorf("run not found: %s", runID)
	}
	if len(run.PopulationIDs) == 0 {
		return model.RunRecord{}, nil, fmt.Errorf("run %s has no stored population", runID)
	}

	population := make([]*strategy.Neural, 0, len(run.PopulationIDs))
	for _, id := range run.PopulationIDs {
		rec, ok, err := c.store.GetStrategy(ctx, id)
		if err != nil {
			return model.RunRecord{}, nil, err
		}
		if !ok {
			return model.RunRecord{}, nil, fmt.Errorf("strategy not found: %s", id)
		}
		s, err := neuralFromRecord(rec)
		if err != nil {
			return model.RunRecord{}, nil, err
		}
		population = append(population, s)
	}
	return run, population, nil
}

func strategyRecord(id, runID, name string, s *strategy.Neural, generation int, score int64) model.StrategyRecord {
	layout := s.Layout()
	return model.StrategyRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              id,
		RunID:           runID,
		Name:            name,
		InputNodes:      layout.Inputs,
		HiddenNodes:     layout.Hidden,
		HistoryLength:   s.HistoryLength(),
		HiddenBias:      string(s.HiddenBias()),
		Weights:         s.Weights(),
		Generation:      generation,
		Score:           score,
	}
}

func neuralFromRecord(rec model.StrategyRecord) (*strategy.Neural, error) {
	bias, err := nn.ParseBiasMode(rec.HiddenBias)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", rec.ID, err)
	}
	s, err := strategy.NewNeuralFromWeights(rec.InputNodes, rec.HiddenNodes, bias, rec.Weights)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", rec.ID, err)
	}
	return s, nil
}
