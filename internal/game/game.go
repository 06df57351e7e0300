package game

import (
	rand "math/rand/v2"
	"slices"
	"time"

	"github.com/lox/wolfgoatpig/internal/handicap"
	"github.com/lox/wolfgoatpig/internal/rotation"
)

// Phase is the stage of the round.
type Phase string

const (
	PhaseRegular    Phase = "regular"
	PhaseHoepfinger Phase = "hoepfinger"
	PhaseComplete   Phase = "complete"
)

// CarryState remembers what the previous hole means for carry-over.
type CarryState struct {
	Pushed  bool `json:"pushed"`  // previous hole moved no points
	Wager   int  `json:"wager"`   // previous hole's final wager
	Applied bool `json:"applied"` // carry-over applied to the previous hole
}

// Game is the authoritative state of one round. The engine never mutates a
// Game in place: commands are applied to a copy that replaces it on success.
type Game struct {
	ID            string               `json:"id"`
	Rules         Rules                `json:"rules"`
	Players       []*Player            `json:"players"`
	Course        []HoleInfo           `json:"course"`
	TossOrder     []PlayerID           `json:"toss_order"`
	NetHandicaps  map[PlayerID]float64 `json:"net_handicaps"`
	Phase         Phase                `json:"phase"`
	Hole          *HoleState           `json:"hole"`
	History       []HoleResult         `json:"history,omitempty"`
	PendingSplits []PendingSplit       `json:"pending_splits,omitempty"`
	Carry         CarryState           `json:"carry"`
	Timeline      []TimelineEvent      `json:"timeline,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// NewGame validates the roster, course and rules, tosses for the starting
// order and sets up hole 1.
func NewGame(id string, roster []RosterEntry, course []HoleInfo, rules Rules, rng *rand.Rand, now time.Time) (*Game, error) {
	if err := ValidateRoster(roster); err != nil {
		return nil, err
	}
	if err := ValidateCourse(course); err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	g := &Game{
		ID:           id,
		Rules:        rules,
		Course:       slices.Clone(course),
		NetHandicaps: make(map[PlayerID]float64, len(roster)),
		Phase:        PhaseRegular,
		CreatedAt:    now,
	}
	ids := make([]PlayerID, len(roster))
	raw := make([]float64, len(roster))
	for i, r := range roster {
		g.Players = append(g.Players, &Player{ID: r.ID, Name: r.Name, Handicap: r.Handicap})
		ids[i] = r.ID
		raw[i] = r.Handicap
	}
	for i, net := range handicap.NetHandicaps(raw, rules.HandicapMode) {
		g.NetHandicaps[ids[i]] = net
	}
	g.TossOrder = rotation.Toss(rng, ids)
	g.startHole(1)
	return g, nil
}

// Player returns the player with id, or nil.
func (g *Game) Player(id PlayerID) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Name returns a player's display name, falling back to the id.
func (g *Game) Name(id PlayerID) string {
	if p := g.Player(id); p != nil && p.Name != "" {
		return p.Name
	}
	return string(id)
}

// Points returns every player's running total.
func (g *Game) Points() map[PlayerID]float64 {
	out := make(map[PlayerID]float64, len(g.Players))
	for _, p := range g.Players {
		out[p.ID] = p.Points
	}
	return out
}

// CaptainFor returns the captain of a hole from the toss order.
func (g *Game) CaptainFor(hole int) PlayerID {
	return rotation.CaptainFor(g.TossOrder, hole)
}

// goatOf returns the player furthest down in points. Ties go to the earlier
// position in order.
func (g *Game) goatOf(order []PlayerID) PlayerID {
	goat := order[0]
	for _, id := range order[1:] {
		if g.Player(id).Points < g.Player(goat).Points {
			goat = id
		}
	}
	return goat
}

// strictlyLowest reports whether id has fewer points than everyone else.
func (g *Game) strictlyLowest(id PlayerID) bool {
	pts := g.Player(id).Points
	for _, p := range g.Players {
		if p.ID != id && p.Points <= pts {
			return false
		}
	}
	return true
}

func (g *Game) startHole(n int) {
	order := rotation.NaturalOrder(g.TossOrder, n)
	h := newHoleState(n, g.Course[n-1], order)
	h.Goat = g.goatOf(order)
	g.Hole = h

	if rotation.IsHoepfinger(len(g.Players), n) {
		g.Phase = PhaseHoepfinger
		h.GoatChoice.Open = true
	} else {
		g.Phase = PhaseRegular
	}
	g.beginNegotiation()
	g.assignRoles()
	g.recomputeBase()
}

// assignRoles marks the captain, Aardvarks and Goat for the hole.
func (g *Game) assignRoles() {
	h := g.Hole
	for _, p := range g.Players {
		switch {
		case p.ID == h.Captain:
			p.Role = RoleCaptain
		case h.isAardvark(p.ID):
			p.Role = RoleAardvark
		case p.ID == h.Goat:
			p.Role = RoleGoat
		default:
			p.Role = RoleNone
		}
	}
}

// recomputeBase rebuilds the base wager after one of its inputs changed.
func (g *Game) recomputeBase() {
	h := g.Hole
	b := &h.Betting
	carry := g.Carry.Pushed && !g.Carry.Applied && g.Rules.enabled(RuleCarryOver)
	in := baseInputs{
		hole:         h.Number,
		players:      len(g.Players),
		hoepfinger:   g.Phase == PhaseHoepfinger,
		carry:        carry,
		prevWager:    g.Carry.Wager,
		joesChoice:   b.JoesChoice,
		optionActive: g.optionOn(),
		captain:      h.Captain,
		goat:         h.Goat,
		floatBy:      b.FloatBy,
		seq:          h.ShotSeq,
	}
	base, natural, mods := computeBase(g.Rules, in)
	b.BaseWager = base
	b.Natural = natural
	b.CarryOver = carry
	kept := slices.DeleteFunc(slices.Clone(b.Modifiers), func(m AppliedModifier) bool { return m.Kind.Base() })
	b.Modifiers = append(mods, kept...)
}

// optionOn reports whether the Option applies: the captain is strictly
// furthest down and has not disabled it.
func (g *Game) optionOn() bool {
	h := g.Hole
	return g.Rules.enabled(RuleOption) && !h.Betting.OptionDisabled && g.strictlyLowest(h.Captain)
}
