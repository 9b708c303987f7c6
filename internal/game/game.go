package game

import "ipdevo/internal/strategy"

// ScoreSink receives the points a game earns.
type ScoreSink interface {
	Credit(points int)
}

// Game is one side of a match. It keeps the alternating opponent/self
// history, newest first, and the points earned in this match.
type Game struct {
	strategy strategy.Strategy
	sink     ScoreSink
	history  []bool
	round    int
	score    int
}

// NewGame starts a game with an all-cooperate history. sink may be nil.
func NewGame(s strategy.Strategy, historyLength int, sink ScoreSink) *Game {
	history := make([]bool, historyLength)
	for i := range history {
		history[i] = true
	}
	return &Game{strategy: s, sink: sink, history: history}
}

// Play records the opponent's last move, asks the strategy for this turn's
// move and records it. After Play, history[0] is this side's move and
// history[1] the opponent's.
func (g *Game) Play(opponentLast bool) bool {
	g.round++
	g.push(opponentLast)
	move := g.strategy.Test(g.round, g.history)
	g.push(move)
	return move
}

func (g *Game) push(move bool) {
	if len(g.history) == 0 {
		return
	}
	copy(g.history[1:], g.history[:len(g.history)-1])
	g.history[0] = move
}

// AcceptPayment credits points to this game and to the sink.
func (g *Game) AcceptPayment(points int) {
	g.score += points
	if g.sink != nil {
		g.sink.Credit(points)
	}
}

func (g *Game) GameScore() int { return g.score }

func (g *Game) Round() int { return g.round }

// History returns a copy of the current history buffer.
func (g *Game) History() []bool {
	return append([]bool(nil), g.history...)
}
