package game

import (
	"fmt"
	"math"
	rand "math/rand/v2"
	"strings"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/wolfgoatpig/internal/rotation"
)

// handler validates and applies one command kind. check must not mutate
// the game: it also gates the legal action list.
type handler struct {
	check func(g *Game, cmd Command) error
	apply func(g *Game, cmd Command, fx *effects) (string, error)
}

var handlers = map[ActionKind]handler{
	ActionPlayShot:           {checkPlayShot, applyPlayShot},
	ActionConcede:            {checkConcede, applyConcede},
	ActionRequestPartner:     {checkRequestPartner, applyRequestPartner},
	ActionRespondPartnership: {checkRespondPartnership, applyRespondPartnership},
	ActionDeclareSolo:        {checkDeclareSolo, applyDeclareSolo},
	ActionAardvarkRequest:    {checkAardvarkRequest, applyAardvarkRequest},
	ActionAardvarkRespond:    {checkAardvarkRespond, applyAardvarkRespond},
	ActionAardvarkSolo:       {checkAardvarkSolo, applyAardvarkSolo},
	ActionOfferDouble:        {checkOfferDouble, applyOfferDouble},
	ActionRespondDouble:      {checkRespondDouble, applyRespondDouble},
	ActionInvokeSpecial:      {checkInvokeSpecial, applyInvokeSpecial},
	ActionRespondBigDick:     {checkRespondBigDick, applyRespondBigDick},
	ActionChoosePosition:     {checkChoosePosition, applyChoosePosition},
	ActionSetWager:           {checkSetWager, applySetWager},
	ActionSubmitScores:       {checkSubmitScores, applySubmitScores},
}

// Engine applies commands to games. It holds no game state of its own, so
// one Engine serves any number of games; callers serialize commands per game.
type Engine struct {
	clock  quartz.Clock
	logger zerolog.Logger
	settle func(g *Game) (*HoleResult, error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used to stamp timeline events.
func WithClock(clock quartz.Clock) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine with a real clock and a silent logger unless
// options say otherwise.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		clock:  quartz.NewReal(),
		logger: zerolog.Nop(),
		settle: settleHole,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "engine").Logger()
	return e
}

// NewGame starts a game and records the toss on its timeline.
func (e *Engine) NewGame(id string, roster []RosterEntry, course []HoleInfo, rules Rules, rng *rand.Rand) (*Game, error) {
	g, err := NewGame(id, roster, course, rules, rng, e.clock.Now())
	if err != nil {
		return nil, err
	}
	names := make([]string, len(g.TossOrder))
	for i, p := range g.TossOrder {
		names[i] = g.Name(p)
	}
	g.appendEvent(TimelineEvent{
		Time:        e.clock.Now(),
		Kind:        EventGameStarted,
		Hole:        1,
		Description: "toss order: " + strings.Join(names, ", "),
		Detail:      map[string]any{"toss_order": g.TossOrder, "players": len(g.Players)},
	})
	e.logger.Info().
		Str("game_id", id).
		Int("players", len(g.Players)).
		Msg("Game started")
	return g, nil
}

// Apply validates cmd and applies it to a copy of g. On success the copy is
// returned in the Result and g is left untouched; on error nothing changed.
func (e *Engine) Apply(g *Game, cmd Command) (*Result, error) {
	res, err := e.apply(g, cmd)
	if err != nil {
		if !IsInvariantViolation(err) {
			e.logger.Debug().
				Err(err).
				Str("game_id", g.ID).
				Str("kind", string(cmd.Kind)).
				Str("actor", string(cmd.Actor)).
				Msg("Command rejected")
		}
		return nil, err
	}
	return res, nil
}

func (e *Engine) apply(g *Game, cmd Command) (*Result, error) {
	if g.Phase == PhaseComplete {
		return nil, ruleViolation(RuleGameOver, "the round is over")
	}
	h, ok := handlers[cmd.Kind]
	if !ok {
		return nil, validationError("kind", "unknown command kind %q", cmd.Kind)
	}
	if g.Player(cmd.Actor) == nil {
		return nil, validationError("actor", "unknown player %q", cmd.Actor)
	}

	work, err := g.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone game: %w", err)
	}
	if cmd.Kind != ActionChoosePosition && cmd.Kind != ActionSetWager {
		work.Hole.GoatChoice.Open = false
	}
	if err := h.check(work, cmd); err != nil {
		return nil, err
	}

	hole := work.Hole.Number
	fx := &effects{}
	narration, err := h.apply(work, cmd, fx)
	if err != nil {
		return nil, err
	}
	completed, err := e.resolve(work, fx)
	if err != nil {
		return nil, err
	}

	detail := map[string]any{"wager": work.Hole.Betting.Wager()}
	if len(fx.notes) > 0 {
		detail["effects"] = fx.notes
	}
	ev := work.appendEvent(TimelineEvent{
		Time:        e.clock.Now(),
		Kind:        eventKinds[cmd.Kind],
		Actor:       cmd.Actor,
		Hole:        hole,
		Description: narration,
		Detail:      detail,
	})
	return &Result{
		Game:        work,
		Narration:   strings.Join(append([]string{narration}, fx.notes...), ". "),
		NextActions: NextActions(work),
		Event:       &ev,
		Completed:   completed,
	}, nil
}

// resolve runs the game-time conditions a command may have triggered:
// unanswered offers accept on the next shot, lapsed windows, wagering
// closure and hole completion.
func (e *Engine) resolve(g *Game, fx *effects) (*HoleResult, error) {
	h := g.Hole
	b := &h.Betting
	if pd := b.PendingDouble; pd != nil && h.shotSince(pd.Seq) {
		fx.add("the double was not answered before the next shot")
		g.resolveDouble(fx)
	}
	if bd := b.BigDick; bd != nil && !bd.Resolved && h.shotSince(bd.Seq) {
		if err := g.resolveBigDick(fx); err != nil {
			return nil, err
		}
	}
	if err := g.resolveFormation(fx); err != nil {
		return nil, err
	}
	if !h.TeeShotsComplete && h.allTeed() {
		h.TeeShotsComplete = true
	}
	if !b.Closed && ((g.Phase == PhaseHoepfinger && h.allTeed()) || h.allIn()) {
		b.Closed = true
		fx.add("wagering closed at %d quarters", b.Wager())
	}
	if !g.readyToSettle() {
		return nil, nil
	}
	return e.completeHole(g, fx)
}

// readyToSettle reports whether the hole can be scored: scores are in,
// every pair of sides has conceded, or nobody covered a Big Dick.
func (g *Game) readyToSettle() bool {
	h := g.Hole
	b := &h.Betting
	if h.Scores != nil {
		return true
	}
	if bd := b.BigDick; bd != nil && bd.Resolved && !bd.Active {
		return true
	}
	if !h.Formation.Final() {
		return false
	}
	k := len(h.Formation.Sides())
	return len(b.Concessions) == k*(k-1)/2
}

// completeHole settles the hole, checks the zero-sum invariant and commits
// the result before starting the next hole.
func (e *Engine) completeHole(g *Game, fx *effects) (*HoleResult, error) {
	h := g.Hole
	res, err := e.settle(g)
	if err != nil {
		return nil, err
	}
	if sum := res.Sum(); math.Abs(sum) > zeroSumTolerance {
		verr := invariantViolation("hole %d point deltas sum to %g, not zero", h.Number, sum).
			With("game_id", g.ID).
			With("hole", h.Number).
			With("sides", res.Sides).
			With("wager", res.Wager).
			With("modifiers", res.Modifiers).
			With("net", res.Net).
			With("deltas", res.Deltas)
		e.logger.Error().
			Str("game_id", g.ID).
			Int("hole", h.Number).
			Float64("sum", sum).
			Str("formation", string(res.Formation)).
			Interface("sides", res.Sides).
			Int("wager", res.Wager).
			Interface("modifiers", res.Modifiers).
			Interface("net", res.Net).
			Interface("deltas", res.Deltas).
			Msg("Zero-sum invariant violated, hole not committed")
		return nil, verr
	}

	for id, d := range res.Deltas {
		if p := g.Player(id); p != nil {
			p.Points += d
		}
	}
	h.Complete = true
	g.History = append(g.History, *res)
	g.PendingSplits = append(g.PendingSplits, res.Deferred...)
	g.resolvePendingSplits(fx)
	g.Carry = CarryState{Pushed: res.Push, Wager: res.Wager, Applied: res.CarryOver}

	if res.Push {
		fx.add("hole %d is a push", h.Number)
	} else {
		fx.add("hole %d settled at %d quarters", h.Number, res.Wager)
	}
	e.logger.Info().
		Str("game_id", g.ID).
		Int("hole", h.Number).
		Int("wager", res.Wager).
		Bool("push", res.Push).
		Msg("Hole committed")

	if h.Number == rotation.Holes {
		g.Phase = PhaseComplete
		fx.add("round complete")
	} else {
		g.startHole(h.Number + 1)
		fx.add("hole %d begins, %s captains", g.Hole.Number, g.Name(g.Hole.Captain))
	}
	out := g.History[len(g.History)-1]
	return &out, nil
}

func checkPlayShot(g *Game, cmd Command) error {
	h := g.Hole
	next := h.ToAct()
	if next == "" {
		return ruleViolation(RuleHoleComplete, "every ball is in")
	}
	if cmd.Actor != next {
		return ruleViolation(RuleOutOfTurn, "%s is away and plays next", g.Name(next)).
			With("to_act", next)
	}
	return nil
}

func applyPlayShot(g *Game, cmd Command, _ *effects) (string, error) {
	h := g.Hole
	dist := 0
	if !cmd.Payload.Holed {
		if cmd.Payload.Distance == nil {
			return "", validationError("payload.distance", "distance is required unless the ball is holed")
		}
		dist = *cmd.Payload.Distance
		if dist <= 0 || dist > 1000 {
			return "", validationError("payload.distance", "distance %d out of range 1-1000", dist)
		}
	}
	b := h.Balls[cmd.Actor]
	h.ShotSeq++
	tee := !b.Teed()
	if tee {
		b.TeeSeq = h.ShotSeq
	}
	b.Strokes++
	b.Distance = dist
	b.Holed = cmd.Payload.Holed
	h.Shots = append(h.Shots, Shot{Seq: h.ShotSeq, Player: cmd.Actor, Tee: tee, Distance: dist, Holed: b.Holed})

	if b.Holed {
		return fmt.Sprintf("%s holes out in %d", g.Name(cmd.Actor), b.Strokes), nil
	}
	return fmt.Sprintf("%s plays to %d yards", g.Name(cmd.Actor), dist), nil
}

func checkConcede(g *Game, cmd Command) error {
	h := g.Hole
	target := cmd.Payload.Player
	if target == "" {
		target = cmd.Actor
	}
	b, ok := h.Balls[target]
	if !ok {
		return validationError("payload.player", "unknown player %q", target)
	}
	if !b.InPlay() {
		return ruleViolation(RuleHoleComplete, "%s's ball is already finished", g.Name(target))
	}
	if target == cmd.Actor {
		return nil
	}
	if !h.Formation.Final() {
		return ruleViolation(RuleFormation, "putts can only be conceded once teams are final")
	}
	mine, theirs := sideOf(h.Formation, cmd.Actor), sideOf(h.Formation, target)
	if mine < 0 || mine == theirs {
		return ruleViolation(RuleWrongActor, "only an opponent may concede %s's ball", g.Name(target))
	}
	return nil
}

func applyConcede(g *Game, cmd Command, _ *effects) (string, error) {
	target := cmd.Payload.Player
	if target == "" {
		target = cmd.Actor
	}
	g.Hole.Balls[target].Conceded = true
	if target == cmd.Actor {
		return fmt.Sprintf("%s picks up", g.Name(cmd.Actor)), nil
	}
	return fmt.Sprintf("%s concedes %s's ball", g.Name(cmd.Actor), g.Name(target)), nil
}

func checkSubmitScores(g *Game, cmd Command) error {
	h := g.Hole
	b := &h.Betting
	if !h.Formation.Final() {
		return ruleViolation(RuleFormation, "scores need final teams")
	}
	if b.PendingDouble != nil {
		return ruleViolation(RulePendingDecision, "a double is waiting for an answer")
	}
	if g.bigDickPending() {
		return ruleViolation(RulePendingDecision, "the Big Dick is waiting for an answer")
	}
	return nil
}

func applySubmitScores(g *Game, cmd Command, fx *effects) (string, error) {
	h := g.Hole
	scores := cmd.Payload.Scores
	for id, s := range scores {
		field := fmt.Sprintf("payload.scores.%s", id)
		if g.Player(id) == nil {
			return "", validationError(field, "unknown player %q", id)
		}
		if s < 1 || s > 20 {
			return "", validationError(field, "gross score %d out of range 1-20", s)
		}
	}
	var missing []string
	for _, side := range h.Formation.Sides() {
		for _, p := range h.active(side) {
			if _, ok := scores[p]; !ok {
				missing = append(missing, string(p))
			}
		}
	}
	if len(missing) > 0 {
		return "", ruleViolation(RuleScoresIncomplete, "missing scores for %s", strings.Join(missing, ", ")).
			With("missing", missing)
	}
	h.Scores = make(map[PlayerID]int, len(scores))
	for id, s := range scores {
		h.Scores[id] = s
	}
	h.Betting.Closed = true
	return fmt.Sprintf("%s submits scores for hole %d", g.Name(cmd.Actor), h.Number), nil
}
