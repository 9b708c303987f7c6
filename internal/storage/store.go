package storage

import (
	"context"
	"fmt"

	"ipdevo/internal/model"
)

// Store persists runs, their strategies and the per-run evolution records.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns every stored run, newest first.
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveStrategy(ctx context.Context, strategy model.StrategyRecord) error
	GetStrategy(ctx context.Context, id string) (model.StrategyRecord, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []int64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]int64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
	SaveRanking(ctx context.Context, runID string, ranking []model.RankingEntry) error
	GetRanking(ctx context.Context, runID string) ([]model.RankingEntry, bool, error)
}

// BestStrategyID is the id of a run's best strategy.
func BestStrategyID(runID string) string {
	return runID + "/best"
}

// PopulationStrategyID is the id of the i-th member of a run's final
// population.
func PopulationStrategyID(runID string, i int) string {
	return fmt.Sprintf("%s/pop/%d", runID, i)
}
