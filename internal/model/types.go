package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// StrategyRecord is the persisted form of a neural strategy.
type StrategyRecord struct {
	VersionedRecord
	ID            string    `json:"id"`
	RunID         string    `json:"run_id,omitempty"`
	Name          string    `json:"name,omitempty"`
	InputNodes    int       `json:"input_nodes"`
	HiddenNodes   int       `json:"hidden_nodes"`
	HistoryLength int       `json:"history_length"`
	HiddenBias    string    `json:"hidden_bias"`
	Weights       []float32 `json:"weights"`
	Generation    int       `json:"generation"`
	Score         int64     `json:"score"`
}

type RunRecord struct {
	VersionedRecord
	ID            string `json:"id"`
	CreatedAtUTC  string `json:"created_at_utc"`
	ContinuedFrom string `json:"continued_from,omitempty"`
	// StartGeneration is the schedule offset the run began at.
	StartGeneration int      `json:"start_generation"`
	Generations     int      `json:"generations"`
	PopulationSize  int      `json:"population_size"`
	InputNodes      int      `json:"input_nodes"`
	HiddenNodes     int      `json:"hidden_nodes"`
	Seed            int64    `json:"seed"`
	Selection       string   `json:"selection"`
	HiddenBias      string   `json:"hidden_bias"`
	BestStrategyID  string   `json:"best_strategy_id"`
	BestScore       int64    `json:"best_score"`
	PopulationIDs   []string `json:"population_ids"`
}

type GenerationDiagnostics struct {
	Generation    int     `json:"generation"`
	EliteName     string  `json:"elite_name"`
	BestScore     int64   `json:"best_score"`
	MeanScore     float64 `json:"mean_score"`
	MinScore      int64   `json:"min_score"`
	MutationRange float64 `json:"mutation_range"`
}

type LineageRecord struct {
	VersionedRecord
	AgentName  string `json:"agent_name"`
	ParentName string `json:"parent_name,omitempty"`
	Generation int    `json:"generation"`
	Operation  string `json:"operation"`
}

// RankingEntry is one line of a final evaluation, highest score first.
type RankingEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
}
