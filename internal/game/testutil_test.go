package game

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/wolfgoatpig/internal/randutil"
)

// testCourse is 18 par fours of 400 yards with stroke index equal to the
// hole number.
func testCourse() []HoleInfo {
	course := make([]HoleInfo, 18)
	for i := range course {
		course[i] = HoleInfo{Par: 4, StrokeIndex: i + 1, Yardage: 400}
	}
	return course
}

func testRoster(n int) []RosterEntry {
	roster := make([]RosterEntry, n)
	for i := range roster {
		id := PlayerID(fmt.Sprintf("p%d", i+1))
		roster[i] = RosterEntry{ID: id, Name: string(id)}
	}
	return roster
}

func ids(n int) []PlayerID {
	out := make([]PlayerID, n)
	for i := range out {
		out[i] = PlayerID(fmt.Sprintf("p%d", i+1))
	}
	return out
}

type testOption func(*Game)

// withPoints sets running totals before the hole starts.
func withPoints(points map[PlayerID]float64) testOption {
	return func(g *Game) {
		for id, v := range points {
			g.Player(id).Points = v
		}
	}
}

// atHole restarts the game at hole n.
func atHole(n int) testOption {
	return func(g *Game) { g.startHole(n) }
}

func withRules(fn func(*Rules)) testOption {
	return func(g *Game) { fn(&g.Rules) }
}

// newTestGame builds an n-player game whose toss order is p1..pn and whose
// events are stamped by a mock clock.
func newTestGame(t *testing.T, n int, opts ...testOption) (*Engine, *Game) {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	e := NewEngine(WithClock(clock), WithLogger(zerolog.New(io.Discard)))
	g, err := e.NewGame("test", testRoster(n), testCourse(), DefaultRules(), randutil.New(1))
	require.NoError(t, err)

	g.TossOrder = ids(n)
	g.startHole(1)
	for _, opt := range opts {
		opt(g)
	}
	g.startHole(g.Hole.Number)
	return e, g
}

func mustApply(t *testing.T, e *Engine, g *Game, cmd Command) *Game {
	t.Helper()
	res, err := e.Apply(g, cmd)
	require.NoError(t, err, "%s by %s", cmd.Kind, cmd.Actor)
	return res.Game
}

func shot(actor PlayerID, distance int) Command {
	return Command{Kind: ActionPlayShot, Actor: actor, Payload: Payload{Distance: &distance}}
}

func requestPartner(captain, partner PlayerID) Command {
	return Command{Kind: ActionRequestPartner, Actor: captain, Payload: Payload{Partner: partner}}
}

func respond(kind ActionKind, actor PlayerID, accept bool) Command {
	return Command{Kind: kind, Actor: actor, Payload: Payload{Accept: accept}}
}

func declareSolo(actor PlayerID) Command {
	return Command{Kind: ActionDeclareSolo, Actor: actor}
}

func special(actor PlayerID, rule SpecialRule) Command {
	return Command{Kind: ActionInvokeSpecial, Actor: actor, Payload: Payload{Rule: rule}}
}

func scores(actor PlayerID, gross map[PlayerID]int) Command {
	return Command{Kind: ActionSubmitScores, Actor: actor, Payload: Payload{Scores: gross}}
}

// partners forms captain+partner on the current hole.
func partners(t *testing.T, e *Engine, g *Game, captain, partner PlayerID) *Game {
	t.Helper()
	g = mustApply(t, e, g, requestPartner(captain, partner))
	return mustApply(t, e, g, respond(ActionRespondPartnership, partner, true))
}

func requireRule(t *testing.T, err error, rule string) {
	t.Helper()
	require.Error(t, err)
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, rule, gerr.Rule, gerr.Error())
}

func zeroSum(t *testing.T, g *Game) {
	t.Helper()
	var total float64
	for _, p := range g.Players {
		total += p.Points
	}
	require.InDelta(t, 0, total, zeroSumTolerance)
	for _, r := range g.History {
		require.InDelta(t, 0, r.Sum(), zeroSumTolerance, "hole %d", r.Hole)
	}
}
