package game

import (
	"slices"

	"github.com/lox/wolfgoatpig/internal/rotation"
)

// ModifierKind names something that changed the wager or the payout.
type ModifierKind string

const (
	ModVinnie       ModifierKind = "vinnie"
	ModCarryOver    ModifierKind = "carry_over"
	ModJoesSpecial  ModifierKind = "joes_special"
	ModOption       ModifierKind = "option"
	ModDoublePoints ModifierKind = "double_points"
	ModFloat        ModifierKind = "float"
	ModSolo         ModifierKind = "solo"
	ModDuncan       ModifierKind = "duncan"
	ModTunkarri     ModifierKind = "tunkarri"
	ModAardvarkToss ModifierKind = "aardvark_toss"
	ModDouble       ModifierKind = "double"
	ModBigDick      ModifierKind = "big_dick"
)

// Base reports whether the modifier is part of the base wager, which is
// rebuilt whenever one of its inputs changes.
func (k ModifierKind) Base() bool {
	switch k {
	case ModVinnie, ModCarryOver, ModJoesSpecial, ModOption, ModDoublePoints, ModFloat:
		return true
	}
	return false
}

// PayoutOnly reports whether the modifier changes what a winner collects
// rather than the wager itself.
func (k ModifierKind) PayoutOnly() bool {
	return k == ModDuncan || k == ModTunkarri
}

// AppliedModifier is one entry in a hole's wager log.
type AppliedModifier struct {
	Kind     ModifierKind `json:"kind"`
	Factor   float64      `json:"factor"`
	Invoker  PlayerID     `json:"invoker,omitempty"`
	HoleTime int          `json:"hole_time"` // shot sequence number when applied
}

// Response is one player's answer to an offer.
type Response struct {
	Player PlayerID `json:"player"`
	Accept bool     `json:"accept"`
}

// DoubleOffer is a double waiting for the target side's answers.
type DoubleOffer struct {
	By        PlayerID   `json:"by"`
	FromSide  int        `json:"from_side"`
	ToSide    int        `json:"to_side"`
	PreWager  int        `json:"pre_wager"`
	Seq       int        `json:"seq"`
	Responses []Response `json:"responses,omitempty"`
}

// BigDick is the final-hole all-or-nothing challenge.
type BigDick struct {
	Player    PlayerID   `json:"player"`
	Stake     float64    `json:"stake"`
	PreWager  int        `json:"pre_wager"`
	Seq       int        `json:"seq"`
	Responses []Response `json:"responses,omitempty"`
	Resolved  bool       `json:"resolved"`
	Active    bool       `json:"active"` // covered by at least one player
}

// Forfeit records a player who left the hole by declining, paying their
// stake up front.
type Forfeit struct {
	Player PlayerID   `json:"player"`
	Amount float64    `json:"amount"`
	To     []PlayerID `json:"to"`
	Reason string     `json:"reason"`
}

// Concession settles one pair of sides early: the losing side declined a
// double in full.
type Concession struct {
	Winner int `json:"winner"` // side index
	Loser  int `json:"loser"`
	Wager  int `json:"wager"`
}

// BettingState tracks the wager for the current hole.
type BettingState struct {
	BaseWager      int               `json:"base_wager"`
	Natural        int               `json:"natural"` // base before Joe's Special
	Multiplier     int               `json:"multiplier"`
	Modifiers      []AppliedModifier `json:"modifiers"`
	Closed         bool              `json:"closed"`
	CarryOver      bool              `json:"carry_over"`
	JoesChoice     int               `json:"joes_choice,omitempty"`
	OptionDisabled bool              `json:"option_disabled,omitempty"`
	FloatBy        PlayerID          `json:"float_by,omitempty"`
	LastDoubler    int               `json:"last_doubler"`
	PendingDouble  *DoubleOffer      `json:"pending_double,omitempty"`
	BigDick        *BigDick          `json:"big_dick,omitempty"`
	Forfeits       []Forfeit         `json:"forfeits,omitempty"`
	Concessions    []Concession      `json:"concessions,omitempty"`
}

func newBettingState() BettingState {
	return BettingState{Multiplier: 1, LastDoubler: -1}
}

// Wager returns the effective wager in quarters.
func (b *BettingState) Wager() int {
	return b.BaseWager * b.Multiplier
}

// compound records an in-hole modifier and applies its factor.
func (b *BettingState) compound(kind ModifierKind, factor int, invoker PlayerID, seq int) {
	b.Multiplier *= factor
	b.Modifiers = append(b.Modifiers, AppliedModifier{Kind: kind, Factor: float64(factor), Invoker: invoker, HoleTime: seq})
}

// note records a payout-only modifier.
func (b *BettingState) note(kind ModifierKind, factor float64, invoker PlayerID, seq int) {
	b.Modifiers = append(b.Modifiers, AppliedModifier{Kind: kind, Factor: factor, Invoker: invoker, HoleTime: seq})
}

// bonusPlayer returns the player entitled to the 3-for-2 payout, if any.
func (b *BettingState) bonusPlayer() PlayerID {
	for _, m := range b.Modifiers {
		if m.Kind.PayoutOnly() {
			return m.Invoker
		}
	}
	return ""
}

func (b *BettingState) hasModifier(kind ModifierKind) bool {
	return slices.ContainsFunc(b.Modifiers, func(m AppliedModifier) bool { return m.Kind == kind })
}

func (b *BettingState) forfeited(p PlayerID) bool {
	return slices.ContainsFunc(b.Forfeits, func(f Forfeit) bool { return f.Player == p })
}

// baseInputs is everything the base wager depends on.
type baseInputs struct {
	hole         int
	players      int
	hoepfinger   bool
	carry        bool
	prevWager    int
	joesChoice   int
	optionActive bool
	captain      PlayerID
	goat         PlayerID
	floatBy      PlayerID
	seq          int
}

// computeBase walks the configured precedence and returns the base wager,
// the natural value Joe's Special is measured against, and the modifiers that
// produced it.
func computeBase(rules Rules, in baseInputs) (int, int, []AppliedModifier) {
	start := rules.startingQuarters()
	running := start
	natural := start
	var mods []AppliedModifier

	apply := func(kind ModifierKind, next int, invoker PlayerID) {
		if next == running {
			return
		}
		mods = append(mods, AppliedModifier{
			Kind:     kind,
			Factor:   float64(next) / float64(running),
			Invoker:  invoker,
			HoleTime: in.seq,
		})
		running = next
	}
	double := func() int {
		if rules.Stacking == StackReplace {
			return max(running, start*2)
		}
		return running * 2
	}

	for _, rule := range rules.Precedence {
		switch rule {
		case RuleVinnie:
			if rotation.VinnieWindow(in.players, in.hole) {
				apply(ModVinnie, double(), "")
			}
		case RuleDoublePoints:
			if rules.isDoublePoints(in.hole) {
				apply(ModDoublePoints, double(), "")
			}
		case RuleCarryOver:
			if in.carry {
				apply(ModCarryOver, max(running, in.prevWager*2), "")
			}
		case RuleJoesSpecial:
			if in.hoepfinger {
				natural = running
				choice := in.joesChoice
				if choice == 0 {
					choice = max(2, natural)
				}
				apply(ModJoesSpecial, choice, in.goat)
			}
		case RuleOption:
			if in.optionActive {
				apply(ModOption, double(), in.captain)
			}
		}
	}
	if !rules.enabled(RuleJoesSpecial) || !in.hoepfinger {
		natural = running
	}
	if in.floatBy != "" {
		apply(ModFloat, running*2, in.floatBy)
	}
	return running, natural, mods
}

// JoesSpecialChoices lists the wagers the Goat may set: 2, 4 or 8 quarters,
// or the natural value when it already exceeds 8.
func JoesSpecialChoices(natural int) []int {
	choices := []int{2, 4, 8}
	if natural > 8 {
		choices = append(choices, natural)
	}
	return choices
}

func (b *BettingState) conceded(x, y int) bool {
	return slices.ContainsFunc(b.Concessions, func(c Concession) bool {
		return (c.Winner == x && c.Loser == y) || (c.Winner == y && c.Loser == x)
	})
}
