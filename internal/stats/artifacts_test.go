package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ipdevo/internal/model"
	"ipdevo/internal/nn"
	"ipdevo/internal/strategy"
)

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	best, err := strategy.NewNeural(7, 4, nn.BiasPerRow)
	if err != nil {
		t.Fatalf("new neural: %v", err)
	}

	runID := "run-123"
	artifacts := RunArtifacts{
		Config: RunConfig{
			RunID:          runID,
			PopulationSize: 4,
			Generations:    3,
			InputNodes:     7,
			HiddenNodes:    4,
			HistoryLength:  6,
			Seed:           1,
			Workers:        2,
		},
		BestByGeneration: []int64{1200, 1500, 1800},
		FinalBestScore:   1800,
		Lineage: []model.LineageRecord{{
			AgentName:  "N0",
			Generation: 0,
			Operation:  "seed",
		}},
		Best:    best,
		Ranking: []model.RankingEntry{{Rank: 1, Name: "Neural 1", Score: 9}},
	}

	runDir, err := WriteRunArtifacts(baseDir, artifacts)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	for _, file := range runFiles {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	table, err := os.ReadFile(filepath.Join(runDir, "decision_table.csv"))
	if err != nil {
		t.Fatalf("read decision table: %v", err)
	}
	if got, want := strings.Count(string(table), "\n"), len(DecisionRounds)*64; got != want {
		t.Fatalf("decision table lines: got=%d want=%d", got, want)
	}

	exportedDir, err := ExportRunArtifacts(baseDir, runID, outDir)
	if err != nil {
		t.Fatalf("export artifacts: %v", err)
	}
	for _, file := range runFiles {
		if _, err := os.Stat(filepath.Join(exportedDir, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}

	cfg, ok, err := ReadRunConfig(baseDir, runID)
	if err != nil || !ok {
		t.Fatalf("read run config: ok=%t err=%v", ok, err)
	}
	if cfg.PopulationSize != 4 || cfg.HistoryLength != 6 {
		t.Fatalf("unexpected run config: %+v", cfg)
	}

	series, ok, err := ReadFitnessSeries(baseDir, runID)
	if err != nil || !ok {
		t.Fatalf("read fitness series: ok=%t err=%v", ok, err)
	}
	if len(series) != 3 || series[2] != 1800 {
		t.Fatalf("unexpected fitness series: %v", series)
	}
}

func TestWriteRunArtifactsWithoutBest(t *testing.T) {
	baseDir := t.TempDir()
	runDir, err := WriteRunArtifacts(baseDir, RunArtifacts{Config: RunConfig{RunID: "bare"}})
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if _, err := os.Stat(filepath.Join(runDir, "best_weights.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected no weight dump without best strategy, err=%v", err)
	}

	exported, err := ExportRunArtifacts(baseDir, "bare", t.TempDir())
	if err != nil {
		t.Fatalf("export partial run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(exported, "config.json")); err != nil {
		t.Fatalf("expected exported config: %v", err)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected missing run id error")
	}
}

func TestRunIndexAppendListAndUpsert(t *testing.T) {
	baseDir := t.TempDir()

	err := AppendRunIndex(baseDir, RunIndexEntry{
		RunID:          "run-1",
		PopulationSize: 20,
		Generations:    3,
		Seed:           1,
		FinalBestScore: 1800,
		CreatedAtUTC:   "2026-02-10T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("append run-1: %v", err)
	}

	err = AppendRunIndex(baseDir, RunIndexEntry{
		RunID:          "run-2",
		PopulationSize: 20,
		Generations:    3,
		Seed:           2,
		FinalBestScore: 1900,
		CreatedAtUTC:   "2026-02-10T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("append run-2: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-2" || entries[1].RunID != "run-1" {
		t.Fatalf("unexpected order: %+v", entries)
	}

	err = AppendRunIndex(baseDir, RunIndexEntry{
		RunID:          "run-1",
		PopulationSize: 20,
		Generations:    3,
		Seed:           1,
		FinalBestScore: 2000,
		CreatedAtUTC:   "2026-02-10T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("upsert run-1: %v", err)
	}

	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list after upsert: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after upsert, got %d", len(entries))
	}
	if entries[0].RunID != "run-1" || entries[0].FinalBestScore != 2000 {
		t.Fatalf("unexpected upsert result: %+v", entries[0])
	}
}

func TestRunIndexEqualTimestampPrefersLaterAppend(t *testing.T) {
	baseDir := t.TempDir()
	ts := "2026-02-10T12:00:00Z"

	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-a", CreatedAtUTC: ts}); err != nil {
		t.Fatalf("append run-a: %v", err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-b", CreatedAtUTC: ts}); err != nil {
		t.Fatalf("append run-b: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-b" {
		t.Fatalf("expected latest appended run-b first, got %+v", entries)
	}
}

func TestWriteRunConfigRejectsMismatch(t *testing.T) {
	baseDir := t.TempDir()
	if err := WriteRunConfig(baseDir, "run-x", RunConfig{RunID: "run-y"}); err == nil {
		t.Fatal("expected run id mismatch error")
	}
	if err := WriteRunConfig(baseDir, "run-x", RunConfig{Seed: 3}); err != nil {
		t.Fatalf("write run config: %v", err)
	}
	cfg, ok, err := ReadRunConfig(baseDir, "run-x")
	if err != nil || !ok {
		t.Fatalf("read run config: ok=%t err=%v", ok, err)
	}
	if cfg.RunID != "run-x" || cfg.Seed != 3 {
		t.Fatalf("unexpected run config: %+v", cfg)
	}
}
