package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"ipdevo/pkg/ipdevo"
)

// trainConfig is the on-disk form of a train request. Zero values fall back
// to the request defaults.
type trainConfig struct {
	RunID         string   `json:"run_id" yaml:"run_id" ini:"run_id"`
	ContinueRunID string   `json:"continue_run_id" yaml:"continue_run_id" ini:"continue_run_id"`
	Population    int      `json:"population" yaml:"population" ini:"population"`
	Generations   int      `json:"generations" yaml:"generations" ini:"generations"`
	InputNodes    int      `json:"input_nodes" yaml:"input_nodes" ini:"input_nodes"`
	HiddenNodes   int      `json:"hidden_nodes" yaml:"hidden_nodes" ini:"hidden_nodes"`
	HiddenBias    string   `json:"hidden_bias" yaml:"hidden_bias" ini:"hidden_bias"`
	Repeats       int      `json:"repeats" yaml:"repeats" ini:"repeats"`
	Rounds        int      `json:"rounds" yaml:"rounds" ini:"rounds"`
	ParentPool    int      `json:"parent_pool" yaml:"parent_pool" ini:"parent_pool"`
	Selection     string   `json:"selection" yaml:"selection" ini:"selection"`
	EntropyRange  float64  `json:"entropy_range" yaml:"entropy_range" ini:"entropy_range"`
	Workers       int      `json:"workers" yaml:"workers" ini:"workers"`
	Seed          int64    `json:"seed" yaml:"seed" ini:"seed"`
	EvalRepeats   int      `json:"eval_repeats" yaml:"eval_repeats" ini:"eval_repeats"`
	Contenders    int      `json:"contenders" yaml:"contenders" ini:"contenders"`
	References    []string `json:"references" yaml:"references" ini:"references" delim:","`
}

func loadTrainRequest(path string) (ipdevo.TrainRequest, error) {
	var cfg trainConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ini":
		file, err := ini.Load(path)
		if err != nil {
			return ipdevo.TrainRequest{}, err
		}
		if err := file.MapTo(&cfg); err != nil {
			return ipdevo.TrainRequest{}, err
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return ipdevo.TrainRequest{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return ipdevo.TrainRequest{}, err
		}
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return ipdevo.TrainRequest{}, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return ipdevo.TrainRequest{}, err
		}
	default:
		return ipdevo.TrainRequest{}, fmt.Errorf("unsupported config format: %q", ext)
	}
	return cfg.request(), nil
}

func (c trainConfig) request() ipdevo.TrainRequest {
	return ipdevo.TrainRequest{
		RunID:         c.RunID,
		ContinueRunID: c.ContinueRunID,
		Population:    c.Population,
		Generations:   c.Generations,
		InputNodes:    c.InputNodes,
		HiddenNodes:   c.HiddenNodes,
		HiddenBias:    c.HiddenBias,
		Repeats:       c.Repeats,
		Rounds:        c.Rounds,
		ParentPool:    c.ParentPool,
		Selection:     c.Selection,
		EntropyRange:  c.EntropyRange,
		Workers:       c.Workers,
		Seed:          c.Seed,
		EvalRepeats:   c.EvalRepeats,
		Contenders:    c.Contenders,
		References:    c.References,
	}
}

// mergeTrainRequest applies the explicitly set flags on top of a request
// loaded from a config file.
func mergeTrainRequest(base, flags ipdevo.TrainRequest, set map[string]bool) ipdevo.TrainRequest {
	for name := range set {
		switch name {
		case "run-id":
			base.RunID = flags.RunID
		case "continue":
			base.ContinueRunID = flags.ContinueRunID
		case "pop":
			base.Population = flags.Population
		case "gens":
			base.Generations = flags.Generations
		case "inputs":
			base.InputNodes = flags.InputNodes
		case "hidden":
			base.HiddenNodes = flags.HiddenNodes
		case "bias":
			base.HiddenBias = flags.HiddenBias
		case "repeats":
			base.Repeats = flags.Repeats
		case "rounds":
			base.Rounds = flags.Rounds
		case "pool":
			base.ParentPool = flags.ParentPool
		case "selection":
			base.Selection = flags.Selection
		case "entropy":
			base.EntropyRange = flags.EntropyRange
		case "workers":
			base.Workers = flags.Workers
		case "seed":
			base.Seed = flags.Seed
		case "eval-repeats":
			base.EvalRepeats = flags.EvalRepeats
		case "contenders":
			base.Contenders = flags.Contenders
		case "refs":
			base.References = flags.References
		}
	}
	if base.Seed == 0 {
		base.Seed = flags.Seed
	}
	if base.Workers == 0 {
		base.Workers = flags.Workers
	}
	return base
}
