// Package server exposes games over HTTP: a JSON command API and a
// websocket timeline stream per game.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/history"
)

const maxBodySize = 1 << 20

// Server represents the HTTP server
type Server struct {
	addr      string
	games     *GameManager
	validator *Validator
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
}

// NewServer creates a server around a game manager.
func NewServer(addr string, games *GameManager, logger zerolog.Logger) (*Server, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &Server{
		addr:      addr,
		games:     games,
		validator: v,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "server").Logger(),
	}, nil
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /games", s.handleListGames)
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	mux.HandleFunc("DELETE /games/{id}", s.handleDeleteGame)
	mux.HandleFunc("POST /games/{id}/commands", s.handleCommand)
	mux.HandleFunc("GET /games/{id}/scorecard", s.handleScorecard)
	mux.HandleFunc("GET /games/{id}/timeline", s.handleTimeline)
	return mux
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("Server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	list, err := s.games.List(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// readBody reads and schema-checks a request body.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema string) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, &requestError{msg: fmt.Sprintf("read body: %v", err)}
	}
	if err := s.validator.Validate(schema, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r, SchemaNewGame)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req NewGameRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeError(w, s.logger, &requestError{msg: err.Error()})
		return
	}
	g, err := s.games.Create(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Location", "/games/"+g.ID)
	writeJSON(w, http.StatusCreated, GameView{Game: g, NextActions: game.NextActions(g)})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, GameView{Game: g, NextActions: game.NextActions(g)})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.games.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r, SchemaCommand)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var cmd game.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		writeError(w, s.logger, &requestError{msg: err.Error()})
		return
	}
	res, err := s.games.Apply(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleScorecard(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	data, err := history.EncodeToBytes(history.Build(g, s.games.courseName))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/toml")
	_, _ = w.Write(data)
}

// handleTimeline upgrades to a websocket that replays events after the
// "after" query parameter and then streams new ones.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	after := 0
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, s.logger, &requestError{msg: "after must be a non-negative sequence number"})
			return
		}
		after = n
	}

	sub, backlog, err := s.games.Subscribe(r.Context(), r.PathValue("id"), after)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.games.Unsubscribe(sub)
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}
	s.logger.Debug().Str("game_id", sub.gameID).Int("backlog", len(backlog)).Msg("Timeline client connected")
	newConnection(conn, sub, s.games, s.validator, s.logger).serve(backlog)
}
