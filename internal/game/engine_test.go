package game

import (
	"bytes"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wolfgoatpig/internal/randutil"
)

func TestNewGameValidation(t *testing.T) {
	e := NewEngine()
	badCourse := testCourse()
	badCourse[1].StrokeIndex = 1

	dup := testRoster(4)
	dup[1].ID = "p1"

	badHandicap := testRoster(4)
	badHandicap[2].Handicap = -1

	badRules := DefaultRules()
	badRules.BaseQuarters = 0

	tests := []struct {
		name   string
		roster []RosterEntry
		course []HoleInfo
		rules  Rules
		field  string
	}{
		{"one player", testRoster(1), testCourse(), DefaultRules(), "roster"},
		{"seven players", testRoster(7), testCourse(), DefaultRules(), "roster"},
		{"duplicate id", dup, testCourse(), DefaultRules(), "roster[1].id"},
		{"negative handicap", badHandicap, testCourse(), DefaultRules(), "roster[2].handicap"},
		{"short course", testRoster(4), testCourse()[:17], DefaultRules(), "course"},
		{"repeated stroke index", testRoster(4), badCourse, DefaultRules(), "course[1].stroke_index"},
		{"zero base", testRoster(4), testCourse(), badRules, "rules.base_quarters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.NewGame("bad", tt.roster, tt.course, tt.rules, randutil.New(1))
			require.True(t, IsValidation(err), "got %v", err)
			var gerr *Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.field, gerr.Field)
		})
	}
}

func TestTossIsDeterministic(t *testing.T) {
	e := NewEngine()
	a, err := e.NewGame("a", testRoster(5), testCourse(), DefaultRules(), randutil.New(42))
	require.NoError(t, err)
	b, err := e.NewGame("b", testRoster(5), testCourse(), DefaultRules(), randutil.New(42))
	require.NoError(t, err)

	assert.Equal(t, a.TossOrder, b.TossOrder)
	assert.ElementsMatch(t, ids(5), a.TossOrder)
	assert.Equal(t, a.TossOrder, a.Hole.HittingOrder)
	assert.Equal(t, a.TossOrder[0], a.Hole.Captain)
	assert.Equal(t, a.TossOrder[4:], a.Hole.Aardvarks)
}

func TestCaptainRotation(t *testing.T) {
	_, g := newTestGame(t, 4)
	for _, hole := range []int{1, 5, 9, 13} {
		assert.Equal(t, PlayerID("p1"), g.CaptainFor(hole), "hole %d", hole)
	}
	assert.Equal(t, PlayerID("p2"), g.CaptainFor(2))
	assert.Equal(t, PlayerID("p4"), g.CaptainFor(16))

	_, g = newTestGame(t, 5)
	assert.Equal(t, PlayerID("p1"), g.CaptainFor(11))
	assert.Equal(t, PlayerID("p5"), g.CaptainFor(15))
}

func TestFullRound(t *testing.T) {
	e, g := newTestGame(t, 4)
	for hole := 1; hole <= 18; hole++ {
		require.Equal(t, hole, g.Hole.Number)
		captain := g.Hole.Captain
		require.Equal(t, g.TossOrder[(hole-1)%4], captain, "hole %d", hole)

		g = mustApply(t, e, g, declareSolo(captain))
		even := make(map[PlayerID]int)
		for _, p := range ids(4) {
			even[p] = 4
		}
		if hole%3 == 0 {
			even[captain] = 5
		}
		g = mustApply(t, e, g, scores(captain, even))
		zeroSum(t, g)
	}

	assert.Equal(t, PhaseComplete, g.Phase)
	assert.Len(t, g.History, 18)
	solos := make(map[PlayerID]int)
	for _, p := range g.Players {
		solos[p.ID] = p.SoloCount
	}
	assert.Equal(t, map[PlayerID]int{"p1": 5, "p2": 5, "p3": 4, "p4": 4}, solos)

	_, err := e.Apply(g, declareSolo("p1"))
	requireRule(t, err, RuleGameOver)
	assert.Empty(t, NextActions(g))
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	e, g := newTestGame(t, 4)
	before, err := Snapshot(g)
	require.NoError(t, err)

	res, err := e.Apply(g, requestPartner("p1", "p2"))
	require.NoError(t, err)
	require.NotSame(t, g, res.Game)

	after, err := Snapshot(g)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Nil(t, g.Hole.Negotiation.Offer)
	assert.NotNil(t, res.Game.Hole.Negotiation.Offer)
}

func TestRejectedCommands(t *testing.T) {
	e, g := newTestGame(t, 4)
	far := 2000

	tests := []struct {
		name       string
		cmd        Command
		validation bool
		rule       string
	}{
		{"unknown kind", Command{Kind: "mulligan", Actor: "p1"}, true, ""},
		{"unknown actor", declareSolo("zz"), true, ""},
		{"out of turn", shot("p2", 200), false, RuleOutOfTurn},
		{"missing distance", Command{Kind: ActionPlayShot, Actor: "p1"}, true, ""},
		{"distance out of range", Command{Kind: ActionPlayShot, Actor: "p1", Payload: Payload{Distance: &far}}, true, ""},
		{"double before teams", offerDouble("p1"), false, RuleFormation},
		{"scores before teams", scores("p1", map[PlayerID]int{"p1": 4}), false, RuleFormation},
		{"nothing to answer", respond(ActionRespondPartnership, "p2", true), false, RuleFormation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Apply(g, tt.cmd)
			require.Error(t, err)
			assert.Nil(t, res)
			if tt.validation {
				assert.True(t, IsValidation(err), "got %v", err)
				return
			}
			assert.True(t, IsRuleViolation(err), "got %v", err)
			requireRule(t, err, tt.rule)
		})
	}
	assert.Len(t, g.Timeline, 1)
}

func TestInvariantViolationCommitsNothing(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(WithLogger(zerolog.New(&buf)))
	e.settle = func(g *Game) (*HoleResult, error) {
		res, err := settleHole(g)
		if err != nil {
			return nil, err
		}
		res.Deltas["p1"] += 0.5
		return res, nil
	}
	_, g := newTestGame(t, 4)
	g = partners(t, e, g, "p1", "p2")

	_, err := e.Apply(g, scores("p1", map[PlayerID]int{"p1": 3, "p2": 4, "p3": 4, "p4": 4}))
	require.Error(t, err)
	require.True(t, IsInvariantViolation(err))

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 1, gerr.Context["hole"])
	assert.Contains(t, gerr.Context, "deltas")
	assert.Contains(t, gerr.Context, "modifiers")

	assert.Equal(t, 1, g.Hole.Number)
	assert.Empty(t, g.History)
	assert.Zero(t, g.Player("p1").Points)
	assert.Contains(t, buf.String(), "Zero-sum invariant violated")
}

func TestTimeline(t *testing.T) {
	clock := quartz.NewMock(t)
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	clock.Set(start)
	e := NewEngine(WithClock(clock))

	g, err := e.NewGame("tl", testRoster(4), testCourse(), DefaultRules(), randutil.New(3))
	require.NoError(t, err)
	require.Len(t, g.Timeline, 1)
	assert.Equal(t, EventGameStarted, g.Timeline[0].Kind)
	assert.Equal(t, start, g.Timeline[0].Time)
	assert.Equal(t, start, g.CreatedAt)

	clock.Advance(time.Minute)
	captain := g.Hole.Captain
	res, err := e.Apply(g, declareSolo(captain))
	require.NoError(t, err)

	ev := res.Event
	require.NotNil(t, ev)
	assert.Equal(t, 2, ev.Seq)
	assert.Equal(t, EventSoloDeclared, ev.Kind)
	assert.Equal(t, captain, ev.Actor)
	assert.Equal(t, 1, ev.Hole)
	assert.Equal(t, start.Add(time.Minute), ev.Time)
	assert.Equal(t, 2, ev.Detail["wager"])
	assert.Contains(t, res.Narration, "the Duncan")
	assert.Equal(t, *ev, res.Game.Timeline[1])
}

func TestCompletedHoleEventNamesTheHole(t *testing.T) {
	e, g := newTestGame(t, 4)
	g = partners(t, e, g, "p1", "p2")
	res, err := e.Apply(g, scores("p3", map[PlayerID]int{"p1": 4, "p2": 4, "p3": 4, "p4": 4}))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Event.Hole, "event belongs to the hole the command was played on")
	assert.Equal(t, EventScoresSubmitted, res.Event.Kind)
	assert.Contains(t, res.Event.Effects(), "hole 1 is a push")
	assert.Contains(t, res.Event.Effects(), "hole 2 begins, p2 captains")
}
