package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRequiresCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), nil, &out); err == nil {
		t.Fatal("expected missing command error")
	}
	err := run(context.Background(), []string{"bogus"}, &out)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunTrainAndInspect(t *testing.T) {
	base := t.TempDir()
	dbPath := filepath.Join(base, "ipdevo.db")
	benchDir := filepath.Join(base, "benchmarks")
	ctx := context.Background()
	store := []string{"-store", "sqlite", "-db-path", dbPath, "-benchmarks-dir", benchDir}

	var out bytes.Buffer
	args := append([]string{"train", "-run-id", "cli-run", "-pop", "4", "-gens", "2", "-repeats", "1", "-rounds", "20", "-pool", "2", "-eval-repeats", "1", "-workers", "2", "-progress"}, store...)
	if err := run(ctx, args, &out); err != nil {
		t.Fatalf("train: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "run_id=cli-run generations=2") {
		t.Fatalf("unexpected train output: %s", text)
	}
	if got := strings.Count(text, "generation="); got != 2 {
		t.Fatalf("progress lines: got=%d want=2", got)
	}
	if !strings.Contains(text, "Tit for tat: ") {
		t.Fatalf("expected ranking in output: %s", text)
	}

	out.Reset()
	if err := run(ctx, append([]string{"table", "-latest"}, store...), &out); err != nil {
		t.Fatalf("table: %v", err)
	}
	if got := strings.Count(out.String(), "\n"); got != 5*64 {
		t.Fatalf("table lines: got=%d want=%d", got, 5*64)
	}

	weightsPath := filepath.Join(base, "weights.csv")
	if err := run(ctx, append([]string{"weights", "-run-id", "cli-run", "-out", weightsPath}, store...), &out); err != nil {
		t.Fatalf("weights: %v", err)
	}
	data, err := os.ReadFile(weightsPath)
	if err != nil {
		t.Fatalf("read weights: %v", err)
	}
	if got := strings.Count(string(data), ",") + 1; got != 37 {
		t.Fatalf("weights: got=%d want=37", got)
	}

	out.Reset()
	if err := run(ctx, append([]string{"match", "-latest", "-opponent", "always_defect", "-rounds", "10", "-transcript"}, store...), &out); err != nil {
		t.Fatalf("match: %v", err)
	}
	if !strings.Contains(out.String(), "rounds=10") {
		t.Fatalf("unexpected match output: %s", out.String())
	}

	out.Reset()
	if err := run(ctx, append([]string{"evaluate", "-run-id", "cli-run", "-repeats", "1", "-rounds", "10", "-refs", "always_cooperate"}, store...), &out); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := strings.Count(out.String(), "\n"); got != 3 {
		t.Fatalf("evaluate lines: got=%d want=3", got)
	}

	for _, cmd := range []string{"lineage", "fitness", "diagnostics"} {
		out.Reset()
		if err := run(ctx, append([]string{cmd, "-run-id", "cli-run"}, store...), &out); err != nil {
			t.Fatalf("%s: %v", cmd, err)
		}
		if out.Len() == 0 {
			t.Fatalf("%s: expected output", cmd)
		}
	}

	out.Reset()
	if err := run(ctx, append([]string{"runs"}, store...), &out); err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out.String(), "run_id=cli-run") {
		t.Fatalf("unexpected runs output: %s", out.String())
	}

	out.Reset()
	exportDir := filepath.Join(base, "exports")
	if err := run(ctx, append([]string{"export", "-latest", "-out", exportDir}, store...), &out); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(exportDir, "cli-run", "ranking.txt")); err != nil {
		t.Fatalf("exported ranking: %v", err)
	}

	out.Reset()
	args = append([]string{"train", "-run-id", "cli-next", "-continue", "cli-run", "-pop", "4", "-gens", "1", "-repeats", "1", "-rounds", "20", "-pool", "2", "-eval-repeats", "1"}, store...)
	if err := run(ctx, args, &out); err != nil {
		t.Fatalf("continue: %v", err)
	}
	out.Reset()
	if err := run(ctx, append([]string{"fitness", "-run-id", "cli-next"}, store...), &out); err != nil {
		t.Fatalf("fitness: %v", err)
	}
	if !strings.HasPrefix(out.String(), "generation=2 ") || strings.Count(out.String(), "\n") != 1 {
		t.Fatalf("continued fitness should start at generation 2: %s", out.String())
	}
}

func TestRunTrainFromConfig(t *testing.T) {
	base := t.TempDir()
	cfg := writeConfig(t, "train.yaml", `run_id: yaml-run
population: 3
generations: 1
repeats: 1
rounds: 10
parent_pool: 2
eval_repeats: 1
contenders: 1
references: [always_defect]
`)

	var out bytes.Buffer
	args := []string{"train", "-config", cfg, "-gens", "2", "-benchmarks-dir", filepath.Join(base, "benchmarks")}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("train: %v", err)
	}
	if !strings.Contains(out.String(), "run_id=yaml-run generations=2") {
		t.Fatalf("flag should override config generations: %s", out.String())
	}
	// One contender and one fixed strategy.
	if got := strings.Count(out.String(), ": "); got != 2 {
		t.Fatalf("ranking lines: got=%d want=2\n%s", got, out.String())
	}
}

func TestUsageMentionsPersistentStores(t *testing.T) {
	err := run(context.Background(), nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "-store sqlite|leveldb") {
		t.Fatalf("usage should explain persistent stores, got %v", err)
	}
}

func TestStartProfileRejectsUnknownMode(t *testing.T) {
	if _, err := startProfile("trace", t.TempDir()); err == nil {
		t.Fatal("expected unsupported profile mode error")
	}
	stop, err := startProfile("", "")
	if err != nil {
		t.Fatalf("disabled profile: %v", err)
	}
	stop()
}

func TestSplitNames(t *testing.T) {
	got := splitNames(" tit_for_tat, ,always_defect ")
	if len(got) != 2 || got[0] != "tit_for_tat" || got[1] != "always_defect" {
		t.Fatalf("got=%v", got)
	}
	if splitNames("") != nil {
		t.Fatal("empty list should be nil")
	}
}
