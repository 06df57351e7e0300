package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/gameid"
	"github.com/lox/wolfgoatpig/internal/history"
	"github.com/lox/wolfgoatpig/internal/randutil"
	"github.com/lox/wolfgoatpig/internal/store"
)

// NewGameRequest is the body of POST /games.
type NewGameRequest struct {
	ID         string             `json:"id,omitempty"`
	Seed       *int64             `json:"seed,omitempty"`
	CourseName string             `json:"course_name,omitempty"`
	Roster     []game.RosterEntry `json:"roster"`
	Course     []game.HoleInfo    `json:"course,omitempty"`
	Rules      json.RawMessage    `json:"rules,omitempty"`
}

// GameView is a game plus what may be played next.
type GameView struct {
	Game        *game.Game     `json:"game"`
	NextActions []game.Command `json:"next_actions"`
}

// subscriberBuffer bounds how far a timeline reader may fall behind before
// it is dropped.
const subscriberBuffer = 64

// Subscriber receives timeline events for one game.
type Subscriber struct {
	gameID string
	events chan game.TimelineEvent
	once   sync.Once
}

// Events is closed when the subscriber is dropped or unsubscribed.
func (s *Subscriber) Events() <-chan game.TimelineEvent { return s.events }

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.events) })
}

// gameEntry serializes commands for one game and fans its events out.
// refs counts callers holding or waiting for mu and is guarded by the
// manager's lock.
type gameEntry struct {
	mu          sync.Mutex
	refs        int
	subscribers map[*Subscriber]struct{}
}

// GameManager applies commands to stored games. Commands for the same game
// run one at a time; different games proceed in parallel.
type GameManager struct {
	engine     *game.Engine
	store      store.Store
	rules      game.Rules
	course     []game.HoleInfo
	courseName string
	exportDir  string
	logger     zerolog.Logger

	mu      sync.Mutex
	entries map[string]*gameEntry
}

// ManagerConfig holds the defaults applied to new games.
type ManagerConfig struct {
	Rules      game.Rules
	Course     []game.HoleInfo
	CourseName string
	ExportDir  string
}

// NewGameManager constructs a manager over the given store.
func NewGameManager(engine *game.Engine, st store.Store, cfg ManagerConfig, logger zerolog.Logger) *GameManager {
	return &GameManager{
		engine:     engine,
		store:      st,
		rules:      cfg.Rules,
		course:     cfg.Course,
		courseName: cfg.CourseName,
		exportDir:  cfg.ExportDir,
		logger:     logger.With().Str("component", "game_manager").Logger(),
		entries:    make(map[string]*gameEntry),
	}
}

// acquire locks the entry for id, creating it on first use.
func (gm *GameManager) acquire(id string) *gameEntry {
	gm.mu.Lock()
	e, ok := gm.entries[id]
	if !ok {
		e = &gameEntry{subscribers: make(map[*Subscriber]struct{})}
		gm.entries[id] = e
	}
	e.refs++
	gm.mu.Unlock()

	e.mu.Lock()
	return e
}

// release unlocks the entry and forgets it once nobody holds it and no
// subscriber is listening.
func (gm *GameManager) release(id string, e *gameEntry) {
	e.mu.Unlock()

	gm.mu.Lock()
	defer gm.mu.Unlock()
	e.refs--
	if e.refs == 0 && len(e.subscribers) == 0 {
		delete(gm.entries, id)
	}
}

// Create starts and stores a new game.
func (gm *GameManager) Create(ctx context.Context, req NewGameRequest) (*game.Game, error) {
	id := req.ID
	if id == "" {
		id = gameid.Generate()
	}

	rules := gm.rules
	rules.Precedence = slices.Clone(rules.Precedence)
	rules.DoublePointsHoles = slices.Clone(rules.DoublePointsHoles)
	if len(req.Rules) > 0 {
		if err := json.Unmarshal(req.Rules, &rules); err != nil {
			return nil, &requestError{msg: fmt.Sprintf("rules: %v", err)}
		}
	}
	holes := req.Course
	if len(holes) == 0 {
		holes = gm.course
	}

	var rng *rand.Rand
	var seed int64
	if req.Seed != nil {
		seed = *req.Seed
		rng = randutil.New(seed)
	} else {
		rng, seed = randutil.NewTimeSeeded()
	}

	e := gm.acquire(id)
	defer gm.release(id, e)

	if _, err := gm.store.Load(ctx, id); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameExists, id)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	g, err := gm.engine.NewGame(id, req.Roster, holes, rules, rng)
	if err != nil {
		return nil, err
	}
	if err := gm.store.Save(ctx, g); err != nil {
		return nil, err
	}
	gm.logger.Info().Str("game_id", id).Int64("seed", seed).Int("players", len(g.Players)).Msg("Game created")
	return g, nil
}

// Get loads a game.
func (gm *GameManager) Get(ctx context.Context, id string) (*game.Game, error) {
	return gm.store.Load(ctx, id)
}

// List summarises stored games.
func (gm *GameManager) List(ctx context.Context) ([]store.Summary, error) {
	return gm.store.List(ctx)
}

// Apply runs one command against a stored game, saves the result and
// publishes the event. A rejected command leaves the stored game untouched.
func (gm *GameManager) Apply(ctx context.Context, id string, cmd game.Command) (*game.Result, error) {
	e := gm.acquire(id)
	defer gm.release(id, e)

	g, err := gm.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := gm.engine.Apply(g, cmd)
	if err != nil {
		return nil, err
	}
	if err := gm.store.Save(ctx, res.Game); err != nil {
		return nil, err
	}
	if res.Event != nil {
		gm.publish(e, *res.Event)
	}
	if res.Completed != nil && res.Game.Phase == game.PhaseComplete && gm.exportDir != "" {
		path, err := history.Export(gm.exportDir, res.Game, gm.courseName)
		if err != nil {
			gm.logger.Error().Err(err).Str("game_id", id).Msg("Scorecard export failed")
		} else {
			gm.logger.Info().Str("game_id", id).Str("path", path).Msg("Scorecard exported")
		}
	}
	return res, nil
}

// Delete removes a game and drops its subscribers.
func (gm *GameManager) Delete(ctx context.Context, id string) error {
	e := gm.acquire(id)
	defer gm.release(id, e)

	if err := gm.store.Delete(ctx, id); err != nil {
		return err
	}
	for sub := range e.subscribers {
		sub.close()
	}
	e.subscribers = make(map[*Subscriber]struct{})
	return nil
}

// Subscribe registers for a game's events after seq and returns the
// recorded events the caller has not seen yet. Registration happens under
// the game's lock so no event falls between the backlog and the stream.
func (gm *GameManager) Subscribe(ctx context.Context, id string, after int) (*Subscriber, []game.TimelineEvent, error) {
	e := gm.acquire(id)
	defer gm.release(id, e)

	g, err := gm.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var backlog []game.TimelineEvent
	for _, ev := range g.Timeline {
		if ev.Seq > after {
			backlog = append(backlog, ev)
		}
	}
	sub := &Subscriber{gameID: id, events: make(chan game.TimelineEvent, subscriberBuffer)}
	e.subscribers[sub] = struct{}{}
	return sub, backlog, nil
}

// Unsubscribe stops delivery to sub.
func (gm *GameManager) Unsubscribe(sub *Subscriber) {
	e := gm.acquire(sub.gameID)
	delete(e.subscribers, sub)
	gm.release(sub.gameID, e)
	sub.close()
}

// publish must be called with e.mu held.
func (gm *GameManager) publish(e *gameEntry, ev game.TimelineEvent) {
	for sub := range e.subscribers {
		select {
		case sub.events <- ev:
		default:
			gm.logger.Warn().Str("game_id", sub.gameID).Msg("Timeline subscriber too slow, dropping")
			delete(e.subscribers, sub)
			sub.close()
		}
	}
}
