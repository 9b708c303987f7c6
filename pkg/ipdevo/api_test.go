package ipdevo

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ipdevo/internal/evo"
	"ipdevo/internal/stats"
	"ipdevo/internal/storage"
)

func newTestClient(t *testing.T, storeKind string) (*Client, string) {
	t.Helper()
	base := t.TempDir()
	client, err := New(Options{
		StoreKind:     storeKind,
		DBPath:        filepath.Join(base, "ipdevo.db"),
		BenchmarksDir: filepath.Join(base, "benchmarks"),
		ExportsDir:    filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, base
}

func smallTrain(runID string) TrainRequest {
	return TrainRequest{
		RunID:       runID,
		Population:  4,
		Generations: 2,
		Repeats:     1,
		Rounds:      20,
		ParentPool:  2,
		Seed:        7,
		Workers:     2,
		EvalRepeats: 1,
	}
}

func TestClientTrainPersistsRun(t *testing.T) {
	client, base := newTestClient(t, "memory")
	ctx := context.Background()

	var reports int
	req := smallTrain("run-a")
	req.Progress = func(evo.GenerationReport) { reports++ }
	summary, err := client.Train(ctx, req)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if summary.RunID != "run-a" {
		t.Fatalf("run id: got=%s want=run-a", summary.RunID)
	}
	if reports != 2 {
		t.Fatalf("progress reports: got=%d want=2", reports)
	}
	if len(summary.BestByGeneration) != 2 {
		t.Fatalf("best by generation: got=%d want=2", len(summary.BestByGeneration))
	}
	if summary.FinalBestScore != summary.BestByGeneration[1] {
		t.Fatalf("final best: got=%d want=%d", summary.FinalBestScore, summary.BestByGeneration[1])
	}
	// Two contenders and five fixed strategies.
	if len(summary.Ranking) != 7 {
		t.Fatalf("ranking size: got=%d want=7", len(summary.Ranking))
	}
	for i := 1; i < len(summary.Ranking); i++ {
		if summary.Ranking[i-1].Score < summary.Ranking[i].Score {
			t.Fatalf("ranking not sorted at %d: %+v", i, summary.Ranking)
		}
	}

	for _, file := range []string{"config.json", "fitness_series.csv", "best_weights.csv", "decision_table.csv", "ranking.txt", "lineage.json"} {
		if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, file)); err != nil {
			t.Fatalf("missing artifact %s: %v", file, err)
		}
	}
	cfg, ok, err := stats.ReadRunConfig(filepath.Join(base, "benchmarks"), "run-a")
	if err != nil || !ok {
		t.Fatalf("read run config: ok=%t err=%v", ok, err)
	}
	if cfg.StoreKind != "memory" || cfg.Selection != "cyclic" || cfg.HiddenBias != "per_row" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	history, err := client.FitnessHistory(ctx, RecordsRequest{RunID: "run-a"})
	if err != nil {
		t.Fatalf("fitness history: %v", err)
	}
	if len(history.Best) != 2 || history.FirstGeneration != 0 {
		t.Fatalf("history: got=%d entries from %d want=2 from 0", len(history.Best), history.FirstGeneration)
	}
	lineage, err := client.Lineage(ctx, RecordsRequest{Latest: true})
	if err != nil {
		t.Fatalf("lineage: %v", err)
	}
	if len(lineage) == 0 {
		t.Fatal("expected lineage records")
	}
	for _, rec := range lineage {
		if rec.SchemaVersion != storage.CurrentSchemaVersion {
			t.Fatalf("lineage schema version: got=%d want=%d", rec.SchemaVersion, storage.CurrentSchemaVersion)
		}
	}
	diagnostics, err := client.Diagnostics(ctx, RecordsRequest{RunID: "run-a", Limit: 1})
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != 1 {
		t.Fatalf("diagnostics limit: got=%d want=1", len(diagnostics))
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-a" || runs[0].Winner != summary.Ranking[0].Name {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestClientTrainGeneratesRunID(t *testing.T) {
	client, _ := newTestClient(t, "memory")
	summary, err := client.Train(context.Background(), smallTrain(""))
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if len(summary.RunID) != 36 {
		t.Fatalf("expected uuid run id, got=%q", summary.RunID)
	}
}

func TestClientStrategyDumps(t *testing.T) {
	client, _ := newTestClient(t, "memory")
	ctx := context.Background()
	if _, err := client.Train(ctx, smallTrain("run-a")); err != nil {
		t.Fatalf("train: %v", err)
	}

	var table bytes.Buffer
	if err := client.DecisionTable(ctx, StrategyRequest{Latest: true}, &table); err != nil {
		t.Fatalf("decision table: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(table.String(), "\n"), "\n")
	if want := len(stats.DecisionRounds) * 64; len(lines) != want {
		t.Fatalf("decision table lines: got=%d want=%d", len(lines), want)
	}

	var weights bytes.Buffer
	if err := client.Weights(ctx, StrategyRequest{RunID: "run-a"}, &weights); err != nil {
		t.Fatalf("weights: %v", err)
	}
	// 7 inputs, 4 hidden: (7+1)*4 + 4 + 1.
	if got := strings.Count(weights.String(), ",") + 1; got != 37 {
		t.Fatalf("weight count: got=%d want=37", got)
	}

	best, err := client.Strategy(ctx, StrategyRequest{StrategyID: storage.BestStrategyID("run-a")})
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	report, err := client.Match(ctx, StrategyRequest{RunID: "run-a"}, "tit_for_tat", 10, 1)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(report.Result.Turns) != 10 {
		t.Fatalf("turns: got=%d want=10", len(report.Result.Turns))
	}
	if report.Last.LastRound != 10 || len(report.Last.LastHistory) != 6 {
		t.Fatalf("snapshot: round=%d history=%d", report.Last.LastRound, len(report.Last.LastHistory))
	}
	if best.HistoryLength() != 6 {
		t.Fatalf("history length: got=%d want=6", best.HistoryLength())
	}
}

func TestClientEvaluateRewritesRanking(t *testing.T) {
	client, _ := newTestClient(t, "memory")
	ctx := context.Background()
	summary, err := client.Train(ctx, smallTrain("run-a"))
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	ranking, err := client.Evaluate(ctx, EvaluateRequest{
		RunID:      "run-a",
		Repeats:    1,
		Rounds:     10,
		Contenders: 1,
		References: []string{"always_defect", "always_cooperate"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(ranking) != 3 {
		t.Fatalf("ranking size: got=%d want=3", len(ranking))
	}
	stored, err := client.Ranking(ctx, RecordsRequest{RunID: "run-a"})
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("stored ranking size: got=%d want=3", len(stored))
	}
	data, err := os.ReadFile(filepath.Join(summary.ArtifactsDir, "ranking.txt"))
	if err != nil {
		t.Fatalf("read ranking.txt: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 3 {
		t.Fatalf("ranking.txt lines: got=%d want=3", got)
	}
}

func TestClientContinueRun(t *testing.T) {
	client, _ := newTestClient(t, "sqlite")
	ctx := context.Background()
	if _, err := client.Train(ctx, smallTrain("run-a")); err != nil {
		t.Fatalf("train: %v", err)
	}

	req := smallTrain("run-b")
	req.ContinueRunID = "run-a"
	req.InputNodes = 3
	summary, err := client.Train(ctx, req)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if summary.ContinuedFrom != "run-a" {
		t.Fatalf("continued from: got=%s want=run-a", summary.ContinuedFrom)
	}
	// The stored population fixes the layout.
	best, err := client.Strategy(ctx, StrategyRequest{RunID: "run-b"})
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	if best.Layout().Inputs != 7 {
		t.Fatalf("inputs: got=%d want=7", best.Layout().Inputs)
	}

	runs, err := client.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ContinuedFrom != "run-a" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	// run-a played generations 0 and 1.
	history, err := client.FitnessHistory(ctx, RecordsRequest{RunID: "run-b"})
	if err != nil {
		t.Fatalf("fitness history: %v", err)
	}
	if history.FirstGeneration != 2 {
		t.Fatalf("first generation: got=%d want=2", history.FirstGeneration)
	}
	diagnostics, err := client.Diagnostics(ctx, RecordsRequest{RunID: "run-b"})
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if diagnostics[0].Generation != history.FirstGeneration {
		t.Fatalf("diagnostics generation: got=%d want=%d", diagnostics[0].Generation, history.FirstGeneration)
	}
}

func TestClientExport(t *testing.T) {
	client, base := newTestClient(t, "memory")
	ctx := context.Background()
	if _, err := client.Train(ctx, smallTrain("run-a")); err != nil {
		t.Fatalf("train: %v", err)
	}

	exported, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.RunID != "run-a" {
		t.Fatalf("export run id: got=%s want=run-a", exported.RunID)
	}
	if want := filepath.Join(base, "exports", "run-a"); exported.Directory != want {
		t.Fatalf("export dir: got=%s want=%s", exported.Directory, want)
	}
	if _, err := os.Stat(filepath.Join(exported.Directory, "decision_table.csv")); err != nil {
		t.Fatalf("exported decision table: %v", err)
	}
}

func TestClientRequestValidation(t *testing.T) {
	client, _ := newTestClient(t, "memory")
	ctx := context.Background()

	if _, err := client.Train(ctx, TrainRequest{Selection: "roulette"}); err == nil {
		t.Fatal("expected unknown selection error")
	}
	if _, err := client.Train(ctx, TrainRequest{HiddenBias: "none"}); err == nil {
		t.Fatal("expected unknown bias error")
	}
	if _, err := client.Train(ctx, TrainRequest{ContinueRunID: "missing", Population: 2, Generations: 1}); err == nil {
		t.Fatal("expected missing continue run error")
	}
	if _, err := client.Lineage(ctx, RecordsRequest{RunID: "a", Latest: true}); err == nil {
		t.Fatal("expected run id and latest conflict")
	}
	if _, err := client.Lineage(ctx, RecordsRequest{Latest: true}); err == nil {
		t.Fatal("expected no runs error")
	}
	if _, err := client.Lineage(ctx, RecordsRequest{RunID: "a", Limit: -1}); err == nil {
		t.Fatal("expected negative limit error")
	}
	if _, err := client.Export(ctx, ExportRequest{}); err == nil {
		t.Fatal("expected export selector error")
	}
	if err := client.DecisionTable(ctx, StrategyRequest{RunID: "missing"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected missing strategy error")
	}
}

func TestClientFitnessHistoryFallsBackToArtifacts(t *testing.T) {
	client, base := newTestClient(t, "memory")
	ctx := context.Background()
	if _, err := client.Train(ctx, smallTrain("run-a")); err != nil {
		t.Fatalf("train: %v", err)
	}

	fresh, err := New(Options{StoreKind: "memory", BenchmarksDir: filepath.Join(base, "benchmarks")})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer fresh.Close()

	history, err := fresh.FitnessHistory(ctx, RecordsRequest{RunID: "run-a"})
	if err != nil {
		t.Fatalf("fitness history: %v", err)
	}
	if len(history.Best) != 2 {
		t.Fatalf("history length: got=%d want=2", len(history.Best))
	}
	if _, err := fresh.FitnessHistory(ctx, RecordsRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected missing history error")
	}
}
