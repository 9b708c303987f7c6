package stats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"ipdevo/internal/model"
	"ipdevo/internal/strategy"
)

// DecisionRounds are the round numbers a decision table is sampled at.
var DecisionRounds = []int{0, 100, 200, 300, 400}

// WriteWeightsCSV writes the weights as one comma-separated line.
func WriteWeightsCSV(w io.Writer, weights []float32) error {
	bw := bufio.NewWriter(w)
	for i, weight := range weights {
		if i > 0 {
			if err := bw.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(strconv.FormatFloat(float64(weight), 'f', -1, 32)); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteDecisionTable enumerates every history of the given length at each of
// DecisionRounds and writes "round,h0,...,hN,decision" lines. Bit i of the
// state number sets history[i]; 1 means cooperate.
func WriteDecisionTable(w io.Writer, s strategy.Strategy, historyLength int) error {
	if historyLength < 0 || historyLength > 20 {
		return fmt.Errorf("decision table history length out of range: %d", historyLength)
	}
	bw := bufio.NewWriter(w)
	history := make([]bool, historyLength)
	line := make([]byte, 0, 8+2*historyLength+2)
	states := 1 << historyLength
	for _, round := range DecisionRounds {
		for state := 0; state < states; state++ {
			line = strconv.AppendInt(line[:0], int64(round), 10)
			for i := range history {
				history[i] = state>>i&1 == 1
				line = append(line, ',', digit(history[i]))
			}
			line = append(line, ',', digit(s.Test(round, history)), '\n')
			if _, err := bw.Write(line); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func digit(b bool) byte {
	if b {
		return '1'
	}
	return '0'
}

// WriteRanking writes one "<name>: <score>" line per entry.
func WriteRanking(w io.Writer, ranking []model.RankingEntry) error {
	bw := bufio.NewWriter(w)
	for _, entry := range ranking {
		if _, err := fmt.Fprintf(bw, "%s: %d\n", entry.Name, entry.Score); err != nil {
			return err
		}
	}
	return bw.Flush()
}
