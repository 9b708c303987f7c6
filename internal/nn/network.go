package nn

import (
	"fmt"
)

// RoundScale normalizes the round counter fed to input 0. It belongs to the
// input encoding and does not follow the configured match length.
const RoundScale = 500.0

// Layout describes a fully connected input -> ReLU hidden -> scalar network
// stored as one flat, row-major weight vector:
//
//	row r:  w[r*(in+1) .. r*(in+1)+in-1] inputs, w[r*(in+1)+in] bias
//	output: w[(in+1)*hidden + r] per hidden row, then one output bias
type Layout struct {
	Inputs int
	Hidden int
}

func (l Layout) Validate() error {
	if l.Inputs < 2 {
		return fmt.Errorf("input nodes must be >= 2, got %d", l.Inputs)
	}
	if l.Hidden < 1 {
		return fmt.Errorf("hidden nodes must be >= 1, got %d", l.Hidden)
	}
	return nil
}

func (l Layout) WeightCount() int {
	return (l.Inputs+1)*l.Hidden + l.Hidden + 1
}

func (l Layout) HiddenWeightIndex(row, col int) int {
	return row*(l.Inputs+1) + col
}

// HiddenBiasIndex returns where the bias of a hidden row is read from.
func (l Layout) HiddenBiasIndex(row int, mode BiasMode) int {
	if mode == BiasShared {
		return l.Inputs
	}
	return row*(l.Inputs+1) + l.Inputs
}

func (l Layout) OutputWeightIndex(row int) int {
	return (l.Inputs+1)*l.Hidden + row
}

func (l Layout) OutputBiasIndex() int {
	return (l.Inputs+1)*l.Hidden + l.Hidden
}

// EncodeInputs appends the network inputs for a turn to dst: the scaled round
// followed by +1/-1 for each of the first Inputs-1 history entries.
func EncodeInputs(dst []float32, inputs, round int, history []bool) []float32 {
	if len(history) < inputs-1 {
		panic(fmt.Sprintf("nn: history length %d shorter than %d inputs", len(history), inputs-1))
	}
	dst = append(dst, float32(round)/RoundScale)
	for i := 0; i < inputs-1; i++ {
		if history[i] {
			dst = append(dst, 1)
		} else {
			dst = append(dst, -1)
		}
	}
	return dst
}

// Forward evaluates the network and returns the pre-threshold output.
func Forward(layout Layout, mode BiasMode, weights, inputs []float32) float32 {
	if len(weights) != layout.WeightCount() {
		panic(fmt.Sprintf("nn: weight vector length %d, layout requires %d", len(weights), layout.WeightCount()))
	}
	if len(inputs) != layout.Inputs {
		panic(fmt.Sprintf("nn: got %d inputs, layout requires %d", len(inputs), layout.Inputs))
	}

	output := weights[layout.OutputBiasIndex()]
	for row := 0; row < layout.Hidden; row++ {
		var z float32
		for col, x := range inputs {
			z += x * weights[layout.HiddenWeightIndex(row, col)]
		}
		z += weights[layout.HiddenBiasIndex(row, mode)]
		output += ReLU(z) * weights[layout.OutputWeightIndex(row)]
	}
	return output
}

func ReLU(x float32) float32 {
	if x < 0 {
		return 0
	}
	return x
}
