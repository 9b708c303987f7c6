package strategy

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
)

// Fixed is a hand-coded predicate strategy.
type Fixed struct {
	name    string
	history int
	decide  func(round int, history []bool) bool
}

func (f Fixed) Name() string { return f.name }

// HistoryLength is the number of history entries the predicate reads.
func (f Fixed) HistoryLength() int { return f.history }

func (f Fixed) Test(round int, history []bool) bool {
	return f.decide(round, history)
}

func (f Fixed) ValidateHistory(length int) error {
	if length < f.history {
		return fmt.Errorf("%w: %s needs history >= %d, got %d", ErrHistoryLength, f.name, f.history, length)
	}
	return nil
}

func AlwaysCooperate() Fixed {
	return Fixed{name: "always_cooperate", decide: func(int, []bool) bool { return true }}
}

func AlwaysDefect() Fixed {
	return Fixed{name: "always_defect", decide: func(int, []bool) bool { return false }}
}

// TitForTat mirrors the opponent's latest move.
func TitForTat() Fixed {
	return Fixed{name: "tit_for_tat", history: 1, decide: func(_ int, h []bool) bool { return h[0] }}
}

// TitForTwoTats defects only after two consecutive opponent defections.
func TitForTwoTats() Fixed {
	return Fixed{name: "tit_for_two_tats", history: 3, decide: func(_ int, h []bool) bool { return h[0] || h[2] }}
}

// Random cooperates with a fixed probability. Each match should play a
// ForMatch copy so draws do not depend on how matches are scheduled.
type Random struct {
	mu          sync.Mutex
	seed        int64
	rng         *rand.Rand
	cooperation float64
}

// DefaultCooperation is the probability used by the reference Random player.
const DefaultCooperation = 0.8

func NewRandom(seed int64, cooperation float64) *Random {
	return &Random{seed: seed, rng: rand.New(rand.NewSource(seed)), cooperation: cooperation}
}

func (r *Random) Name() string { return "random" }

func (r *Random) HistoryLength() int { return 0 }

func (r *Random) Test(int, []bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() > 1-r.cooperation
}

// ForMatch returns an independent Random whose draws depend only on the
// parent seed and stream.
func (r *Random) ForMatch(stream uint64) Strategy {
	return NewRandom(StreamSeed(r.seed, stream), r.cooperation)
}

// Reference couples a fixed strategy with its display name and the history
// length its agent is built with.
type Reference struct {
	DisplayName   string
	Strategy      Strategy
	HistoryLength int
}

var fixedBuilders = map[string]func(seed int64) Reference{
	"always_cooperate": func(int64) Reference {
		return Reference{DisplayName: "Always Cooperate", Strategy: AlwaysCooperate()}
	},
	"always_defect": func(int64) Reference {
		return Reference{DisplayName: "Always Defect", Strategy: AlwaysDefect()}
	},
	"tit_for_tat": func(int64) Reference {
		return Reference{DisplayName: "Tit for tat", Strategy: TitForTat(), HistoryLength: 1}
	},
	"tit_for_two_tats": func(int64) Reference {
		return Reference{DisplayName: "Tit for two tat", Strategy: TitForTwoTats(), HistoryLength: 3}
	},
	"random": func(seed int64) Reference {
		return Reference{DisplayName: "Random", Strategy: NewRandom(seed, DefaultCooperation)}
	},
}

// DefaultReferenceNames is the evaluation line-up, in seating order.
var DefaultReferenceNames = []string{"tit_for_tat", "tit_for_two_tats", "always_defect", "always_cooperate", "random"}

// NewReference builds a registered fixed strategy by name. seed only matters
// to random strategies.
func NewReference(name string, seed int64) (Reference, error) {
	build, ok := fixedBuilders[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Reference{}, fmt.Errorf("unknown fixed strategy: %s (known: %s)", name, strings.Join(ReferenceNames(), ", "))
	}
	return build(seed), nil
}

// ReferenceSet builds the named fixed strategies; nil names selects the
// default line-up.
func ReferenceSet(names []string, seed int64) ([]Reference, error) {
	if names == nil {
		names = DefaultReferenceNames
	}
	out := make([]Reference, 0, len(names))
	for _, name := range names {
		ref, err := NewReference(name, seed)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

func ReferenceNames() []string {
	names := make([]string, 0, len(fixedBuilders))
	for name := range fixedBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
