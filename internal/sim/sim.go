// Package sim plays whole rounds by choosing randomly among the legal
// actions, to exercise the engine and check that every hole is zero-sum.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/randutil"
)

// DefaultMaxCommands bounds a single round.
const DefaultMaxCommands = 5000

// ErrNoProgress is returned when a round does not finish within MaxCommands.
var ErrNoProgress = errors.New("sim: round did not finish")

// Config holds configuration for running simulations
type Config struct {
	Players     int
	Seed        int64
	Rules       game.Rules
	Course      []game.HoleInfo
	MaxCommands int
	Logger      zerolog.Logger
}

// Outcome is the result of one simulated round.
type Outcome struct {
	GameID   string
	Seed     int64
	Commands int
	Rejected int
	Points   map[game.PlayerID]float64
	Game     *game.Game
}

var weights = map[game.ActionKind]int{
	game.ActionPlayShot:           8,
	game.ActionConcede:            1,
	game.ActionRequestPartner:     3,
	game.ActionRespondPartnership: 4,
	game.ActionDeclareSolo:        1,
	game.ActionAardvarkRequest:    3,
	game.ActionAardvarkRespond:    4,
	game.ActionAardvarkSolo:       1,
	game.ActionOfferDouble:        1,
	game.ActionRespondDouble:      4,
	game.ActionInvokeSpecial:      1,
	game.ActionRespondBigDick:     4,
	game.ActionChoosePosition:     2,
	game.ActionSetWager:           2,
	game.ActionSubmitScores:       1,
}

func roster(n int) []game.RosterEntry {
	out := make([]game.RosterEntry, n)
	for i := range out {
		out[i] = game.RosterEntry{
			ID:       game.PlayerID(fmt.Sprintf("p%d", i+1)),
			Name:     fmt.Sprintf("Player %d", i+1),
			Handicap: float64((i * 7) % 25),
		}
	}
	return out
}

// Play runs one round to completion.
func Play(ctx context.Context, e *game.Engine, cfg Config) (*Outcome, error) {
	if cfg.MaxCommands <= 0 {
		cfg.MaxCommands = DefaultMaxCommands
	}
	id := fmt.Sprintf("sim-%d", cfg.Seed)
	g, err := e.NewGame(id, roster(cfg.Players), cfg.Course, cfg.Rules, randutil.New(cfg.Seed))
	if err != nil {
		return nil, err
	}
	rng := randutil.New(randutil.DeriveSeed(cfg.Seed, 1))
	out := &Outcome{GameID: id, Seed: cfg.Seed}

	for g.Phase != game.PhaseComplete {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if out.Commands >= cfg.MaxCommands {
			return nil, fmt.Errorf("%w: %s stuck on hole %d after %d commands", ErrNoProgress, id, g.Hole.Number, out.Commands)
		}
		actions := game.NextActions(g)
		if len(actions) == 0 {
			return nil, fmt.Errorf("sim: %s has no legal actions on hole %d", id, g.Hole.Number)
		}
		cmd := fill(g, choose(rng, actions), rng)
		out.Commands++

		res, err := e.Apply(g, cmd)
		if err != nil {
			if game.IsInvariantViolation(err) {
				return nil, fmt.Errorf("sim: %s hole %d: %w", id, g.Hole.Number, err)
			}
			out.Rejected++
			cfg.Logger.Debug().Err(err).Str("game_id", id).Str("kind", string(cmd.Kind)).Msg("Listed action rejected")
			continue
		}
		g = res.Game
	}

	if err := CheckZeroSum(g); err != nil {
		return nil, err
	}
	out.Game = g
	out.Points = g.Points()
	cfg.Logger.Debug().Str("game_id", id).Int("commands", out.Commands).Msg("Round finished")
	return out, nil
}

// choose picks an action, weighted by kind.
func choose(rng *rand.Rand, actions []game.Command) game.Command {
	total := 0
	for _, a := range actions {
		total += weightOf(a, actions)
	}
	n := rng.IntN(total)
	for _, a := range actions {
		n -= weightOf(a, actions)
		if n < 0 {
			return a
		}
	}
	return actions[len(actions)-1]
}

func weightOf(a game.Command, actions []game.Command) int {
	if a.Kind == game.ActionSubmitScores && !hasKind(actions, game.ActionPlayShot) {
		// Nothing left to play, so finish the hole.
		return 20
	}
	return max(weights[a.Kind], 1)
}

func hasKind(actions []game.Command, kind game.ActionKind) bool {
	for _, a := range actions {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// fill supplies the free-form arguments legal actions leave empty.
func fill(g *game.Game, cmd game.Command, rng *rand.Rand) game.Command {
	h := g.Hole
	switch cmd.Kind {
	case game.ActionPlayShot:
		ball := h.Balls[cmd.Actor]
		remaining := ball.Distance
		if ball.TeeSeq == 0 {
			remaining = g.Course[h.Number-1].Yardage
		}
		var next int
		switch {
		case ball.TeeSeq == 0 && remaining > 300:
			next = remaining - 170 - rng.IntN(110)
		case remaining < 15 && rng.IntN(3) > 0:
			next = 0
		default:
			next = int(float64(remaining) * (0.03 + 0.4*rng.Float64()))
		}
		if next <= 0 {
			cmd.Payload.Holed = true
			cmd.Payload.Distance = nil
		} else {
			d := next
			cmd.Payload.Distance = &d
		}
	case game.ActionSubmitScores:
		par := g.Course[h.Number-1].Par
		scores := make(map[game.PlayerID]int, len(g.Players))
		for _, p := range g.Players {
			scores[p.ID] = max(1, par-1+rng.IntN(4))
		}
		cmd.Payload.Scores = scores
	}
	return cmd
}

// CheckZeroSum verifies every archived hole and the running totals sum to
// zero.
func CheckZeroSum(g *game.Game) error {
	for _, r := range g.History {
		if s := r.Sum(); math.Abs(s) > 1e-6 {
			return fmt.Errorf("sim: %s hole %d deltas sum to %g", g.ID, r.Hole, s)
		}
	}
	var total float64
	for _, p := range g.Players {
		total += p.Points
	}
	if math.Abs(total) > 1e-6 {
		return fmt.Errorf("sim: %s points sum to %g", g.ID, total)
	}
	return nil
}

// RunMany plays games rounds in parallel, at most workers at a time. Each
// round's seed derives from cfg.Seed so a run can be replayed.
func RunMany(ctx context.Context, e *game.Engine, cfg Config, games, workers int) ([]*Outcome, error) {
	outcomes := make([]*Outcome, games)
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range games {
		roundCfg := cfg
		roundCfg.Seed = randutil.DeriveSeed(cfg.Seed, i)
		g.Go(func() error {
			out, err := Play(ctx, e, roundCfg)
			if err != nil {
				return fmt.Errorf("round %d (seed %d): %w", i+1, roundCfg.Seed, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
