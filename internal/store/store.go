// Package store persists game snapshots between commands.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/wolfgoatpig/internal/game"
)

// ErrNotFound is returned when no game is stored under an id.
var ErrNotFound = errors.New("store: game not found")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Summary describes a stored game without restoring it.
type Summary struct {
	ID      string    `json:"id"`
	Hole    int       `json:"hole"`
	Phase   string    `json:"phase"`
	SavedAt time.Time `json:"saved_at"`
}

// Store is the persistence collaborator. Implementations must be safe for
// concurrent use across different games.
type Store interface {
	Save(ctx context.Context, g *game.Game) error
	Load(ctx context.Context, id string) (*game.Game, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

// ValidateID checks an id is safe to use as a file name.
func ValidateID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("store: invalid game id %q", id)
	}
	return nil
}

func seal(g *game.Game, now time.Time) (*Envelope, error) {
	if err := ValidateID(g.ID); err != nil {
		return nil, err
	}
	payload, err := game.Snapshot(g)
	if err != nil {
		return nil, fmt.Errorf("store: snapshot %s: %w", g.ID, err)
	}
	env := &Envelope{
		Version: FormatVersion,
		GameID:  g.ID,
		SavedAt: now.UTC(),
		Phase:   string(g.Phase),
		Payload: payload,
	}
	if g.Hole != nil {
		env.Hole = g.Hole.Number
	}
	return env, nil
}

func (env *Envelope) summary() Summary {
	return Summary{ID: env.GameID, Hole: env.Hole, Phase: env.Phase, SavedAt: env.SavedAt}
}

func (env *Envelope) restore() (*game.Game, error) {
	g, err := game.Restore(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("store: restore %s: %w", env.GameID, err)
	}
	return g, nil
}

func sortSummaries(out []Summary) {
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
}

// MemoryStore keeps envelopes in memory.
type MemoryStore struct {
	clock quartz.Clock

	mu    sync.RWMutex
	games map[string]*Envelope
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MemoryStore{clock: clock, games: make(map[string]*Envelope)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, g *game.Game) error {
	env, err := seal(g, s.clock.Now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.games[g.ID] = env
	s.mu.Unlock()
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (*game.Game, error) {
	s.mu.RLock()
	env, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return env.restore()
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.games))
	for _, env := range s.games {
		out = append(out, env.summary())
	}
	s.mu.RUnlock()
	sortSummaries(out)
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return ErrNotFound
	}
	delete(s.games, id)
	return nil
}
