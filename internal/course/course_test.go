package course

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/handicap"
)

func TestLoadCourse(t *testing.T) {
	c, err := LoadCourse(filepath.Join("testdata", "course.toml"))
	require.NoError(t, err)
	assert.Equal(t, "Wing Point", c.Name)
	require.Len(t, c.Holes, 18)
	assert.Equal(t, game.HoleInfo{Par: 4, StrokeIndex: 7, Yardage: 380}, c.Holes[0])
	assert.Equal(t, game.HoleInfo{Par: 5, StrokeIndex: 12, Yardage: 520}, c.Holes[17])
}

func TestCourseRoundTrip(t *testing.T) {
	c, err := LoadCourse(filepath.Join("testdata", "course.toml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	again, err := DecodeCourse(&buf)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestDecodeCourseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short", "name = \"x\"\n[[holes]]\npar = 4\nstroke_index = 1\nyardage = 300\n"},
		{"unknown key", "name = \"x\"\nslope = 113\n"},
		{"syntax", "name = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCourse(strings.NewReader(tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadRoster(t *testing.T) {
	ro, err := LoadRoster(filepath.Join("testdata", "roster.toml"))
	require.NoError(t, err)
	require.Len(t, ro.Players, 4)
	assert.Equal(t, game.RosterEntry{ID: "bob", Name: "bob", Handicap: 22.5}, ro.Players[2])
}

func TestDecodeRosterRejectsBadHandicap(t *testing.T) {
	body := "[[players]]\nid = \"a\"\nhandicap = 60.0\n\n[[players]]\nid = \"b\"\nhandicap = 1.0\n"
	_, err := DecodeRoster(strings.NewReader(body))
	require.Error(t, err)
	assert.True(t, game.IsValidation(err))
}

func TestLoadScript(t *testing.T) {
	s, err := LoadScript(filepath.Join("testdata", "script.toml"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.Seed)

	cmds := s.Commands()
	require.Len(t, cmds, 4)
	assert.Equal(t, game.Command{Kind: game.ActionRequestPartner, Actor: "p1", Payload: game.Payload{Partner: "p2"}}, cmds[0])
	assert.True(t, cmds[1].Payload.Accept)
	require.NotNil(t, cmds[2].Payload.Distance)
	assert.Equal(t, 250, *cmds[2].Payload.Distance)
	assert.Equal(t, map[game.PlayerID]int{"p1": 4, "p2": 5, "p3": 4, "p4": 6}, cmds[3].Payload.Scores)
}

func TestDecodeScriptRequiresActor(t *testing.T) {
	_, err := DecodeScript(strings.NewReader("[[step]]\nkind = \"declare_solo\"\n"))
	require.Error(t, err)
}

func TestStrokeTable(t *testing.T) {
	c, err := LoadCourse(filepath.Join("testdata", "course.toml"))
	require.NoError(t, err)
	ro, err := LoadRoster(filepath.Join("testdata", "roster.toml"))
	require.NoError(t, err)

	table := StrokeTable(c, ro.Players, handicap.Relative)
	require.Len(t, table, 4)

	// Dan is the low handicap and plays off zero.
	for _, s := range table["dan"] {
		assert.Zero(t, s)
	}
	// Stuart plays off 6: a stroke on stroke indexes 1 to 6.
	assert.Equal(t, 1.0, table["stuart"][1])
	assert.Equal(t, 0.0, table["stuart"][0])
	assert.Equal(t, 6.0, sum(table["stuart"]))

	official := StrokeTable(c, ro.Players, handicap.Official)
	assert.Equal(t, 4.0, sum(official["dan"]))
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

func TestStandard(t *testing.T) {
	c := Standard()
	assert.Equal(t, "Standard 72", c.Name)
	require.NoError(t, game.ValidateCourse(c.Holes))

	par := 0
	for _, h := range c.Holes {
		par += h.Par
	}
	assert.Equal(t, 72, par)
}
