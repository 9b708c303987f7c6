package nn

import (
	"fmt"
	"strings"
)

// BiasMode selects which weight slot biases each hidden row.
type BiasMode string

const (
	// BiasPerRow reads each row's own bias slot.
	BiasPerRow BiasMode = "per_row"
	// BiasShared reads w[Inputs] for every row, leaving the other row bias
	// slots unused by the forward pass.
	BiasShared BiasMode = "shared"
)

func ParseBiasMode(name string) (BiasMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(BiasPerRow):
		return BiasPerRow, nil
	case string(BiasShared):
		return BiasShared, nil
	default:
		return "", fmt.Errorf("unsupported hidden bias mode: %s", name)
	}
}
