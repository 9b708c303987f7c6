package strategy

import (
	"errors"
	"testing"
)

func TestFixedPredicates(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		history  []bool
		want     bool
	}{
		{name: "always-cooperate", strategy: AlwaysCooperate(), want: true},
		{name: "always-defect", strategy: AlwaysDefect(), want: false},
		{name: "tft-mirrors-cooperate", strategy: TitForTat(), history: []bool{true}, want: true},
		{name: "tft-mirrors-defect", strategy: TitForTat(), history: []bool{false}, want: false},
		{name: "t2t-single-defect", strategy: TitForTwoTats(), history: []bool{false, true, true}, want: true},
		{name: "t2t-older-defect", strategy: TitForTwoTats(), history: []bool{true, false, false}, want: true},
		{name: "t2t-double-defect", strategy: TitForTwoTats(), history: []bool{false, true, false}, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.strategy.Test(1, tc.history); got != tc.want {
				t.Fatalf("got=%t want=%t", got, tc.want)
			}
		})
	}
}

func TestTitForTwoTatsNeedsThreeEntries(t *testing.T) {
	if err := TitForTwoTats().ValidateHistory(2); !errors.Is(err, ErrHistoryLength) {
		t.Fatalf("expected ErrHistoryLength, got %v", err)
	}
	if err := TitForTwoTats().ValidateHistory(6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRandomCooperationRate(t *testing.T) {
	r := NewRandom(21, DefaultCooperation)
	cooperated := 0
	const trials = 10000
	for i := 0; i < trials; i++ {
		if r.Test(i, nil) {
			cooperated++
		}
	}
	rate := float64(cooperated) / trials
	if rate < 0.77 || rate > 0.83 {
		t.Fatalf("unexpected cooperation rate: %f", rate)
	}
}

func TestReferenceSetDefaults(t *testing.T) {
	refs, err := ReferenceSet(nil, 1)
	if err != nil {
		t.Fatalf("reference set: %v", err)
	}
	if len(refs) != len(DefaultReferenceNames) {
		t.Fatalf("unexpected reference count: got=%d want=%d", len(refs), len(DefaultReferenceNames))
	}
	for _, ref := range refs {
		v, ok := ref.Strategy.(HistoryValidator)
		if !ok {
			continue
		}
		if err := v.ValidateHistory(ref.HistoryLength); err != nil {
			t.Fatalf("%s: reference history length rejected: %v", ref.DisplayName, err)
		}
	}
}

func TestNewReferenceUnknown(t *testing.T) {
	if _, err := NewReference("grudger", 0); err == nil {
		t.Fatal("expected unknown strategy error")
	}
}

func drawMoves(s Strategy, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = s.Test(i+1, nil)
	}
	return out
}

func TestRandomForMatchStreams(t *testing.T) {
	parent := NewRandom(5, DefaultCooperation)
	// Draws on the parent must not shift the streams.
	drawMoves(parent, 17)

	first := drawMoves(parent.ForMatch(3), 200)
	again := drawMoves(NewRandom(5, DefaultCooperation).ForMatch(3), 200)
	other := drawMoves(parent.ForMatch(4), 200)

	same := true
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("stream 3 move %d: got=%t want=%t", i, again[i], first[i])
		}
		if first[i] != other[i] {
			same = false
		}
	}
	if same {
		t.Fatal("streams 3 and 4 drew identical moves")
	}
}

func TestStreamSeedSpreads(t *testing.T) {
	seen := map[int64]bool{}
	for stream := uint64(0); stream < 1000; stream++ {
		seed := StreamSeed(1, stream)
		if seen[seed] {
			t.Fatalf("duplicate seed at stream %d", stream)
		}
		seen[seed] = true
	}
}
