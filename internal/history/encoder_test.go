package history_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wolfgoatpig/internal/course"
	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/history"
	"github.com/lox/wolfgoatpig/internal/randutil"
)

func roster() []game.RosterEntry {
	return []game.RosterEntry{
		{ID: "ann", Name: "Ann", Handicap: 0},
		{ID: "bo", Name: "Bo", Handicap: 0},
		{ID: "cy", Name: "Cy", Handicap: 0},
		{ID: "di", Name: "Di", Handicap: 0},
	}
}

func allScores(g *game.Game, gross int, except game.PlayerID, theirs int) map[game.PlayerID]int {
	out := make(map[game.PlayerID]int)
	for _, p := range g.Players {
		out[p.ID] = gross
	}
	out[except] = theirs
	return out
}

// playTwoHoles plays a won Duncan then a push.
func playTwoHoles(t *testing.T) *game.Game {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 5, 4, 9, 30, 0, 0, time.UTC))
	e := game.NewEngine(game.WithClock(clock))

	g, err := e.NewGame("round-1", roster(), course.Standard().Holes, game.DefaultRules(), randutil.New(11))
	require.NoError(t, err)

	for hole := 1; hole <= 2; hole++ {
		captain := g.Hole.Captain
		res, err := e.Apply(g, game.Command{Kind: game.ActionDeclareSolo, Actor: captain})
		require.NoError(t, err)
		g = res.Game

		theirs := 4
		if hole == 1 {
			theirs = 3
		}
		res, err = e.Apply(g, game.Command{
			Kind:    game.ActionSubmitScores,
			Actor:   captain,
			Payload: game.Payload{Scores: allScores(g, 4, captain, theirs)},
		})
		require.NoError(t, err)
		g = res.Game
	}
	return g
}

func TestBuild(t *testing.T) {
	g := playTwoHoles(t)
	sc := history.Build(g, "Standard 72")

	assert.Equal(t, "round-1", sc.Game)
	assert.Equal(t, "2024-05-04T09:30:00Z", sc.Time)
	assert.Equal(t, "regular", sc.Phase)
	assert.Equal(t, []string{"ann", "bo", "cy", "di"}, sc.Players)
	assert.Equal(t, []string{"Ann", "Bo", "Cy", "Di"}, sc.Names)
	assert.Len(t, sc.TossOrder, 4)
	require.Len(t, sc.Holes, 2)

	first := sc.Holes[0]
	captain := g.History[0].Captain
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 4, first.Par)
	assert.Equal(t, 7, first.StrokeIndex)
	assert.Equal(t, string(captain), first.Captain)
	assert.Equal(t, "solo", first.Formation)
	assert.Equal(t, 2, first.Wager)
	assert.Contains(t, first.Modifiers, "duncan x1.5 by "+string(captain))

	var sum float64
	for i, id := range sc.Players {
		if id == string(captain) {
			assert.Equal(t, 9.0, first.Deltas[i])
			assert.Equal(t, 3, first.Gross[i])
		} else {
			assert.Equal(t, -3.0, first.Deltas[i])
		}
		sum += first.Deltas[i]
	}
	assert.Zero(t, sum)

	assert.True(t, sc.Holes[1].Push)
	assert.Equal(t, []float64{0, 0, 0, 0}, sc.Holes[1].Deltas)
}

func TestFormatModifier(t *testing.T) {
	assert.Equal(t, "carry_over x2", history.FormatModifier(game.AppliedModifier{Kind: game.ModCarryOver, Factor: 2}))
	assert.Equal(t, "tunkarri x1.5 by p5", history.FormatModifier(game.AppliedModifier{Kind: game.ModTunkarri, Factor: 1.5, Invoker: "p5"}))
}

func TestFormatAmendment(t *testing.T) {
	players := []*game.Player{{ID: "p3"}, {ID: "p4"}}
	a := game.Amendment{OnHole: 4, Reason: "karl_marx", Deltas: map[game.PlayerID]float64{"p3": -0.5, "p4": 0.5}}
	assert.Equal(t, "karl_marx on hole 4: p3 -0.5, p4 +0.5", history.FormatAmendment(a, players))
}

func TestEncodeDecode(t *testing.T) {
	sc := history.Build(playTwoHoles(t), "Standard 72")

	var buf bytes.Buffer
	require.NoError(t, history.Encode(&buf, sc))
	assert.Contains(t, buf.String(), `game = "round-1"`)
	assert.Contains(t, buf.String(), "[[holes]]")

	back, err := history.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, sc, back)

	require.Error(t, history.Encode(&buf, nil))
}

func TestExport(t *testing.T) {
	g := playTwoHoles(t)
	dir := filepath.Join(t.TempDir(), "cards")

	path, err := history.Export(dir, g, "Standard 72")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "round-1.toml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sc, err := history.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, sc.Holes, 2)
}
