package evo

import (
	"math"
	"math/rand"
	"testing"
)

func TestCyclicSelectorWraps(t *testing.T) {
	s := CyclicSelector{}
	for offspring, want := range []int{0, 1, 2, 3, 4, 5, 6, 7, 0, 1, 2} {
		if got := s.Pick(nil, offspring, 8, 20); got != want {
			t.Fatalf("offspring %d: got=%d want=%d", offspring, got, want)
		}
	}
}

func TestLinearSelectorClamps(t *testing.T) {
	s := LinearSelector{}
	if got := s.Pick(nil, 9, 8, 20); got != 9 {
		t.Fatalf("got=%d want=9", got)
	}
	if got := s.Pick(nil, 25, 8, 20); got != 19 {
		t.Fatalf("clamp: got=%d want=19", got)
	}
}

func TestEliteSelectorStaysInPool(t *testing.T) {
	s := EliteSelector{}
	rng := rand.New(rand.NewSource(42))
	seen := map[int]struct{}{}
	for i := 0; i < 200; i++ {
		idx := s.Pick(rng, i, 8, 20)
		if idx < 0 || idx >= 8 {
			t.Fatalf("pick outside pool: %d", idx)
		}
		seen[idx] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("expected spread across pool, got %d distinct picks", len(seen))
	}
}

func TestSelectorFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "", want: "cyclic"},
		{name: "cyclic", want: "cyclic"},
		{name: "LINEAR", want: "linear"},
		{name: "random", want: "random"},
		{name: "elite", want: "random"},
	}
	for _, tc := range tests {
		s, err := SelectorFromName(tc.name)
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if s.Name() != tc.want {
			t.Fatalf("%q: got=%s want=%s", tc.name, s.Name(), tc.want)
		}
	}
	if _, err := SelectorFromName("roulette"); err == nil {
		t.Fatal("expected unsupported selector error")
	}
}

func TestDecayingSchedule(t *testing.T) {
	tests := []struct {
		generation int
		want       float64
	}{
		{generation: 0, want: 10},
		{generation: 250, want: 6},
		{generation: 500, want: 2},
		{generation: 5000, want: 2},
	}
	for _, tc := range tests {
		got := float64(DecayingSchedule{}.Range(tc.generation))
		if math.Abs(got-tc.want) > 1e-4 {
			t.Fatalf("generation %d: got=%f want=%f", tc.generation, got, tc.want)
		}
	}
	if got := (ConstSchedule{Span: 3}).Range(99); got != 3 {
		t.Fatalf("const schedule: got=%f want=3", got)
	}
}
