package evo

import (
	"fmt"
	"math/rand"
	"strings"
)

// Selector chooses which ranked agent the next offspring is cloned from.
// offspring counts the children already produced this generation; the
// returned index addresses the population sorted by score.
type Selector interface {
	Name() string
	Pick(rng *rand.Rand, offspring, poolSize, populationSize int) int
}

// CyclicSelector walks the top poolSize agents in rank order and wraps.
type CyclicSelector struct{}

func (CyclicSelector) Name() string {
	return "cyclic"
}

func (CyclicSelector) Pick(_ *rand.Rand, offspring, poolSize, _ int) int {
	return offspring % poolSize
}

// LinearSelector walks the ranking without wrapping, so every survivor but
// the last parents exactly one child when the pool is the whole population.
type LinearSelector struct{}

func (LinearSelector) Name() string {
	return "linear"
}

func (LinearSelector) Pick(_ *rand.Rand, offspring, _, populationSize int) int {
	if offspring >= populationSize {
		return populationSize - 1
	}
	return offspring
}

// EliteSelector picks uniformly from the top poolSize agents.
type EliteSelector struct{}

func (EliteSelector) Name() string {
	return "random"
}

func (EliteSelector) Pick(rng *rand.Rand, _, poolSize, _ int) int {
	return rng.Intn(poolSize)
}

// SelectorFromName resolves a selector by name; "" selects cyclic.
func SelectorFromName(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cyclic":
		return CyclicSelector{}, nil
	case "linear":
		return LinearSelector{}, nil
	case "random", "elite":
		return EliteSelector{}, nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}
