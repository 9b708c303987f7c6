package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"ipdevo/internal/model"
)

// Key prefixes partition the single LevelDB keyspace by record kind.
const (
	runPrefix         = "run:"
	strategyPrefix    = "st:"
	historyPrefix     = "fh:"
	diagnosticsPrefix = "gd:"
	lineagePrefix     = "ln:"
	rankingPrefix     = "rk:"
)

// LevelDBStore keeps records as JSON values in an on-disk LevelDB database.
type LevelDBStore struct {
	path string

	mu    sync.RWMutex
	db    *leveldb.DB
	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
}

func NewLevelDBStore(path string) *LevelDBStore {
	return &LevelDBStore{path: path}
}

func (s *LevelDBStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("leveldb path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := leveldb.OpenFile(s.path, nil)
	if err != nil {
		return err
	}
	glog.V(1).Infof("leveldb store opened at %s", s.path)
	s.db = db
	return nil
}

func (s *LevelDBStore) SaveRun(_ context.Context, run model.RunRecord) error {
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}
	return s.put(runPrefix+run.ID, payload)
}

func (s *LevelDBStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	payload, ok, err := s.get(runPrefix + id)
	if err != nil || !ok {
		return model.RunRecord{}, ok, err
	}
	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *LevelDBStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	iter := db.NewIterator(util.BytesPrefix([]byte(runPrefix)), s.rOpts)
	defer iter.Release()

	var runs []model.RunRecord
	for iter.Next() {
		run, err := DecodeRun(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", iter.Key()[len(runPrefix):], err)
		}
		runs = append(runs, run)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sortRuns(runs)
	return runs, nil
}

func (s *LevelDBStore) SaveStrategy(_ context.Context, strategy model.StrategyRecord) error {
	payload, err := EncodeStrategy(strategy)
	if err != nil {
		return err
	}
	return s.put(strategyPrefix+strategy.ID, payload)
}

func (s *LevelDBStore) GetStrategy(_ context.Context, id string) (model.StrategyRecord, bool, error) {
	payload, ok, err := s.get(strategyPrefix + id)
	if err != nil || !ok {
		return model.StrategyRecord{}, ok, err
	}
	strategy, err := DecodeStrategy(payload)
	if err != nil {
		return model.StrategyRecord{}, false, fmt.Errorf("decode strategy %s: %w", id, err)
	}
	return strategy, true, nil
}

func (s *LevelDBStore) SaveFitnessHistory(_ context.Context, runID string, history []int64) error {
	payload, err := EncodeFitnessHistory(history)
	if err != nil {
		return err
	}
	return s.put(historyPrefix+runID, payload)
}

func (s *LevelDBStore) GetFitnessHistory(_ context.Context, runID string) ([]int64, bool, error) {
	payload, ok, err := s.get(historyPrefix + runID)
	if err != nil || !ok {
		return nil, ok, err
	}
	history, err := DecodeFitnessHistory(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode fitness history %s: %w", runID, err)
	}
	return history, true, nil
}

func (s *LevelDBStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	payload, err := EncodeGenerationDiagnostics(diagnostics)
	if err != nil {
		return err
	}
	return s.put(diagnosticsPrefix+runID, payload)
}

func (s *LevelDBStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	payload, ok, err := s.get(diagnosticsPrefix + runID)
	if err != nil || !ok {
		return nil, ok, err
	}
	diagnostics, err := DecodeGenerationDiagnostics(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode diagnostics %s: %w", runID, err)
	}
	return diagnostics, true, nil
}

func (s *LevelDBStore) SaveLineage(_ context.Context, runID string, lineage []model.LineageRecord) error {
	payload, err := EncodeLineage(lineage)
	if err != nil {
		return err
	}
	return s.put(lineagePrefix+runID, payload)
}

func (s *LevelDBStore) GetLineage(_ context.Context, runID string) ([]model.LineageRecord, bool, error) {
	payload, ok, err := s.get(lineagePrefix + runID)
	if err != nil || !ok {
		return nil, ok, err
	}
	lineage, err := DecodeLineage(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode lineage %s: %w", runID, err)
	}
	return lineage, true, nil
}

func (s *LevelDBStore) SaveRanking(_ context.Context, runID string, ranking []model.RankingEntry) error {
	payload, err := EncodeRanking(ranking)
	if err != nil {
		return err
	}
	return s.put(rankingPrefix+runID, payload)
}

func (s *LevelDBStore) GetRanking(_ context.Context, runID string) ([]model.RankingEntry, bool, error) {
	payload, ok, err := s.get(rankingPrefix + runID)
	if err != nil || !ok {
		return nil, ok, err
	}
	ranking, err := DecodeRanking(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode ranking %s: %w", runID, err)
	}
	return ranking, true, nil
}

func (s *LevelDBStore) put(key string, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	return db.Put([]byte(key), payload, s.wOpts)
}

func (s *LevelDBStore) get(key string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}
	buf, err := db.Get([]byte(key), s.rOpts)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return buf, true, nil
}

func (s *LevelDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *LevelDBStore) getDB() (*leveldb.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}
