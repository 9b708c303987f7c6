package strategy

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"ipdevo/internal/nn"
)

const (
	// WeightInitRange bounds Randomize: weights are drawn from
	// [-WeightInitRange, +WeightInitRange).
	WeightInitRange = 5.0
)

// Neural is a two-layer network strategy: cooperate iff the output is >= 0.
//
// Weights are read-only while a tournament runs; Randomize, Mutate and Clone
// are meant for the gaps between generations.
type Neural struct {
	layout  nn.Layout
	bias    nn.BiasMode
	weights []float32

	observed atomic.Bool
	mu       sync.Mutex
	snapshot Snapshot
}

// Snapshot is the last evaluated turn plus the weights, for renderers.
type Snapshot struct {
	LastRound   int
	LastHistory []bool
	Layout      nn.Layout
	HiddenBias  nn.BiasMode
	Weights     []float32
}

// NewNeural returns a zero-weighted strategy; call Randomize to seed it.
func NewNeural(inputNodes, hiddenNodes int, bias nn.BiasMode) (*Neural, error) {
	layout := nn.Layout{Inputs: inputNodes, Hidden: hiddenNodes}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimensions, err)
	}
	bias, err := nn.ParseBiasMode(string(bias))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDimensions, err)
	}
	return &Neural{
		layout:  layout,
		bias:    bias,
		weights: make([]float32, layout.WeightCount()),
	}, nil
}

// NewNeuralFromWeights rebuilds a strategy from a persisted weight vector.
func NewNeuralFromWeights(inputNodes, hiddenNodes int, bias nn.BiasMode, weights []float32) (*Neural, error) {
	n, err := NewNeural(inputNodes, hiddenNodes, bias)
	if err != nil {
		return nil, err
	}
	if len(weights) != len(n.weights) {
		return nil, fmt.Errorf("%w: got %d weights, layout %dx%d requires %d",
			ErrInvalidDimensions, len(weights), inputNodes, hiddenNodes, len(n.weights))
	}
	copy(n.weights, weights)
	return n, nil
}

func (n *Neural) Name() string { return "neural" }

func (n *Neural) Layout() nn.Layout { return n.layout }

func (n *Neural) HiddenBias() nn.BiasMode { return n.bias }

// HistoryLength is the history size the network consumes: one entry per
// input after the round input.
func (n *Neural) HistoryLength() int { return n.layout.Inputs - 1 }

func (n *Neural) ValidateHistory(length int) error {
	if length != n.HistoryLength() {
		return fmt.Errorf("%w: neural strategy with %d inputs needs history %d, got %d",
			ErrHistoryLength, n.layout.Inputs, n.HistoryLength(), length)
	}
	return nil
}

// Weights returns a copy of the weight vector.
func (n *Neural) Weights() []float32 {
	return append([]float32(nil), n.weights...)
}

// Randomize draws every weight independently from [-5, +5).
func (n *Neural) Randomize(rng *rand.Rand) {
	for i := range n.weights {
		n.weights[i] = uniform(rng, -WeightInitRange, WeightInitRange)
	}
}

// Mutate perturbs exactly one weight by a delta from [-span/2, +span/2) and
// returns its index.
func (n *Neural) Mutate(rng *rand.Rand, span float32) int {
	idx := rng.Intn(len(n.weights))
	n.weights[idx] += uniform(rng, -span/2, span/2)
	return idx
}

// Clone returns a strategy with an independent copy of the weights.
func (n *Neural) Clone() *Neural {
	clone := &Neural{
		layout:  n.layout,
		bias:    n.bias,
		weights: append([]float32(nil), n.weights...),
	}
	if len(clone.weights) != n.layout.WeightCount() {
		panic(fmt.Sprintf("strategy: clone produced %d weights, want %d", len(clone.weights), n.layout.WeightCount()))
	}
	return clone
}

// Output returns the raw network output for a turn.
func (n *Neural) Output(round int, history []bool) float32 {
	var buf [16]float32
	inputs := nn.EncodeInputs(buf[:0], n.layout.Inputs, round, history)
	return nn.Forward(n.layout, n.bias, n.weights, inputs)
}

func (n *Neural) Test(round int, history []bool) bool {
	out := n.Output(round, history)
	if n.observed.Load() {
		n.mu.Lock()
		n.snapshot.LastRound = round
		n.snapshot.LastHistory = append(n.snapshot.LastHistory[:0], history[:n.HistoryLength()]...)
		n.mu.Unlock()
	}
	return out >= 0
}

// SetObserved toggles recording of the last evaluated turn for Snapshot.
func (n *Neural) SetObserved(observed bool) {
	n.observed.Store(observed)
}

func (n *Neural) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	return Snapshot{
		LastRound:   n.snapshot.LastRound,
		LastHistory: append([]bool(nil), n.snapshot.LastHistory...),
		Layout:      n.layout,
		HiddenBias:  n.bias,
		Weights:     n.Weights(),
	}
}

func (n *Neural) String() string {
	parts := make([]string, len(n.weights))
	for i, w := range n.weights {
		parts[i] = strconv.FormatFloat(float64(w), 'f', -1, 32)
	}
	return fmt.Sprintf("Neural{inputs=%d hidden=%d bias=%s weights=[%s]}",
		n.layout.Inputs, n.layout.Hidden, n.bias, strings.Join(parts, ", "))
}
