package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/wolfgoatpig/internal/course"
	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/store"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type testServer struct {
	*httptest.Server
	games *GameManager
}

func newTestServer(t *testing.T, exportDir string) *testServer {
	t.Helper()
	std := course.Standard()
	games := NewGameManager(game.NewEngine(), store.NewMemoryStore(nil), ManagerConfig{
		Rules:      game.DefaultRules(),
		Course:     std.Holes,
		CourseName: std.Name,
		ExportDir:  exportDir,
	}, testLogger())
	srv, err := NewServer("", games, testLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, games: games}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func fourPlayers() []game.RosterEntry {
	return []game.RosterEntry{
		{ID: "p1", Name: "Ann", Handicap: 2},
		{ID: "p2", Name: "Bo", Handicap: 10},
		{ID: "p3", Name: "Cy", Handicap: 15},
		{ID: "p4", Name: "Di", Handicap: 7},
	}
}

// createGame creates a seeded game and returns its view.
func (ts *testServer) createGame(t *testing.T, id string) GameView {
	t.Helper()
	seed := int64(1)
	resp := ts.do(t, http.MethodPost, "/games", NewGameRequest{ID: id, Seed: &seed, Roster: fourPlayers()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[GameView](t, resp)
}

func evenScores(g *game.Game, gross int) map[game.PlayerID]int {
	out := make(map[game.PlayerID]int, len(g.Players))
	for _, p := range g.Players {
		out[p.ID] = gross
	}
	return out
}
