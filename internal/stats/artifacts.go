package stats

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ipdevo/internal/model"
	"ipdevo/internal/strategy"
)

const runIndexFile = "run_index.json"

var runFiles = []string{
	"config.json",
	"fitness_history.json",
	"fitness_series.csv",
	"generation_diagnostics.json",
	"lineage.json",
	"best_weights.csv",
	"decision_table.csv",
	"ranking.txt",
}

type RunConfig struct {
	RunID             string  `json:"run_id"`
	ContinueRunID     string  `json:"continue_run_id,omitempty"`
	InitialGeneration int     `json:"initial_generation"`
	PopulationSize    int     `json:"population_size"`
	Generations       int     `json:"generations"`
	InputNodes        int     `json:"input_nodes"`
	HiddenNodes       int     `json:"hidden_nodes"`
	HistoryLength     int     `json:"history_length"`
	HiddenBias        string  `json:"hidden_bias"`
	Repeats           int     `json:"repeats"`
	Rounds            int     `json:"rounds"`
	ParentPool        int     `json:"parent_pool"`
	Selection         string  `json:"selection"`
	EntropyRange      float64 `json:"entropy_range"`
	EvalRepeats       int     `json:"eval_repeats"`
	Contenders        int     `json:"contenders"`
	Seed              int64   `json:"seed"`
	Workers           int     `json:"workers"`
	StoreKind         string  `json:"store_kind"`
}

type RunArtifacts struct {
	Config                RunConfig
	BestByGeneration      []int64
	GenerationDiagnostics []model.GenerationDiagnostics
	Lineage               []model.LineageRecord
	FinalBestScore        int64
	// Best is dumped as best_weights.csv and decision_table.csv when set.
	Best    *strategy.Neural
	Ranking []model.RankingEntry
}

type RunIndexEntry struct {
	RunID          string `json:"run_id"`
	ContinueRunID  string `json:"continue_run_id,omitempty"`
	PopulationSize int    `json:"population_size"`
	Generations    int    `json:"generations"`
	Seed           int64  `json:"seed"`
	Workers        int    `json:"workers"`
	Selection      string `json:"selection"`
	HiddenBias     string `json:"hidden_bias"`
	FinalBestScore int64  `json:"final_best_score"`
	Winner         string `json:"winner,omitempty"`
	CreatedAtUTC   string `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := WriteRunConfig(baseDir, artifacts.Config.RunID, artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "fitness_history.json"), map[string]any{"best_by_generation": artifacts.BestByGeneration, "final_best_score": artifacts.FinalBestScore}); err != nil {
		return "", err
	}
	if err := WriteFitnessSeries(runDir, artifacts.Config.InitialGeneration, artifacts.BestByGeneration); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "generation_diagnostics.json"), artifacts.GenerationDiagnostics); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "lineage.json"), artifacts.Lineage); err != nil {
		return "", err
	}
	if artifacts.Best != nil {
		best := artifacts.Best
		if err := writeFile(filepath.Join(runDir, "best_weights.csv"), func(w io.Writer) error {
			return WriteWeightsCSV(w, best.Weights())
		}); err != nil {
			return "", err
		}
		if err := writeFile(filepath.Join(runDir, "decision_table.csv"), func(w io.Writer) error {
			return WriteDecisionTable(w, best, best.HistoryLength())
		}); err != nil {
			return "", err
		}
	}
	if len(artifacts.Ranking) > 0 {
		if err := WriteRankingFile(runDir, artifacts.Ranking); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

// WriteRankingFile writes ranking.txt into an existing run directory.
func WriteRankingFile(runDir string, ranking []model.RankingEntry) error {
	return writeFile(filepath.Join(runDir, "ranking.txt"), func(w io.Writer) error {
		return WriteRanking(w, ranking)
	})
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns indexed runs, newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies the files of one run directory to outDir/runID.
// Files the run never produced are skipped.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range runFiles {
		path := filepath.Join(src, file)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		if err := copyFile(path, filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

func WriteRunConfig(baseDir, runID string, cfg RunConfig) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = strings.TrimSpace(runID)
	}
	if cfg.RunID != strings.TrimSpace(runID) {
		return fmt.Errorf("run config run id mismatch: got=%s want=%s", cfg.RunID, strings.TrimSpace(runID))
	}
	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, "config.json"), cfg)
}

// WriteFitnessSeries writes fitness_series.csv with one row per generation.
func WriteFitnessSeries(runDir string, firstGeneration int, bestByGeneration []int64) error {
	return writeFile(filepath.Join(runDir, "fitness_series.csv"), func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.Write([]string{"generation", "best_score"}); err != nil {
			return err
		}
		for i, best := range bestByGeneration {
			if err := writer.Write([]string{
				strconv.Itoa(firstGeneration + i),
				strconv.FormatInt(best, 10),
			}); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// ReadFitnessSeries returns the best score column of fitness_series.csv.
func ReadFitnessSeries(baseDir, runID string) ([]int64, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, "fitness_series.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []int64{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("fitness series header must have at least 2 columns")
	}

	series := make([]int64, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		value, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
