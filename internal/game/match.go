package game

import (
	"fmt"
	"strings"
)

// Payoff is the per-turn IPD scoring rule.
type Payoff struct {
	Reward     int // both cooperate
	Punishment int // both defect
	Temptation int // lone defector
	Sucker     int // lone cooperator
}

var DefaultPayoff = Payoff{Reward: 3, Punishment: 0, Temptation: 5, Sucker: 0}

// Score returns the points for each side given their moves.
func (p Payoff) Score(cooperate1, cooperate2 bool) (int, int) {
	switch {
	case cooperate1 && cooperate2:
		return p.Reward, p.Reward
	case !cooperate1 && !cooperate2:
		return p.Punishment, p.Punishment
	case cooperate1:
		return p.Sucker, p.Temptation
	default:
		return p.Temptation, p.Sucker
	}
}

func (p Payoff) Validate() error {
	if p.Reward < 0 || p.Punishment < 0 || p.Temptation < 0 || p.Sucker < 0 {
		return fmt.Errorf("payoff values must be >= 0: %+v", p)
	}
	return nil
}

// Turn is the pair of moves played in one round.
type Turn struct {
	Move1 bool
	Move2 bool
}

type MatchResult struct {
	Score1 int
	Score2 int
	Turns  []Turn
}

// Sign is -1, 0 or +1 as side 1 scored less than, equal to or more than side 2.
func (r MatchResult) Sign() int {
	switch {
	case r.Score1 > r.Score2:
		return 1
	case r.Score1 < r.Score2:
		return -1
	default:
		return 0
	}
}

// Transcript renders the turns as "11 10 00 ..." (1 = cooperate).
func (r MatchResult) Transcript() string {
	var b strings.Builder
	for i, turn := range r.Turns {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(moveDigit(turn.Move1))
		b.WriteByte(moveDigit(turn.Move2))
	}
	return b.String()
}

func moveDigit(cooperate bool) byte {
	if cooperate {
		return '1'
	}
	return '0'
}

// Referee plays matches under a payoff rule.
type Referee struct {
	Payoff Payoff
	// RecordTurns keeps every turn in MatchResult.Turns.
	RecordTurns bool
}

var DefaultReferee = Referee{Payoff: DefaultPayoff}

// Play runs a match of the given length between fresh games of a1 and a2.
// Both sides choose simultaneously: each sees only the other's previous move,
// which is cooperate before the first round.
func (r Referee) Play(a1, a2 *Agent, rounds int) MatchResult {
	return r.PlayStream(a1, a2, rounds, 0)
}

// PlayStream is Play for the match numbered stream. Side 1 forks its strategy
// on stream 2*stream and side 2 on 2*stream+1, so a self-play match still
// draws two independent sequences.
func (r Referee) PlayStream(a1, a2 *Agent, rounds int, stream uint64) MatchResult {
	g1 := a1.NewStreamGame(2 * stream)
	g2 := a2.NewStreamGame(2*stream + 1)

	var turns []Turn
	if r.RecordTurns {
		turns = make([]Turn, 0, rounds)
	}

	last1, last2 := true, true
	for round := 0; round < rounds; round++ {
		m1 := g1.Play(last2)
		m2 := g2.Play(last1)
		p1, p2 := r.Payoff.Score(m1, m2)
		if p1 > 0 {
			g1.AcceptPayment(p1)
		}
		if p2 > 0 {
			g2.AcceptPayment(p2)
		}
		if r.RecordTurns {
			turns = append(turns, Turn{Move1: m1, Move2: m2})
		}
		last1, last2 = m1, m2
	}

	return MatchResult{Score1: g1.GameScore(), Score2: g2.GameScore(), Turns: turns}
}

// PlayMatch plays a match under the default payoff.
func PlayMatch(a1, a2 *Agent, rounds int) MatchResult {
	return DefaultReferee.Play(a1, a2, rounds)
}

// Compete plays a match under the default payoff and returns its sign from
// a1's point of view.
func Compete(a1, a2 *Agent, rounds int) int {
	return PlayMatch(a1, a2, rounds).Sign()
}
