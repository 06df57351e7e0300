package game

import (
	"fmt"

	"github.com/lox/wolfgoatpig/internal/handicap"
)

// BaseRule is one of the rules that set a hole's base wager.
type BaseRule string

const (
	RuleVinnie       BaseRule = "vinnie"        // holes 13 to Hoepfinger, four players
	RuleCarryOver    BaseRule = "carry_over"    // previous hole pushed
	RuleJoesSpecial  BaseRule = "joes_special"  // Goat sets 2/4/8 in the Hoepfinger
	RuleOption       BaseRule = "option"        // captain is the Goat
	RuleDoublePoints BaseRule = "double_points" // configured double-points holes
)

func (r BaseRule) valid() bool {
	switch r {
	case RuleVinnie, RuleCarryOver, RuleJoesSpecial, RuleOption, RuleDoublePoints:
		return true
	}
	return false
}

// Stacking controls how doubling base rules combine.
type Stacking string

const (
	// StackMultiply doubles the running base for each rule that applies.
	StackMultiply Stacking = "multiply"
	// StackReplace doubles the starting base; several rules do not compound.
	StackReplace Stacking = "replace"
)

// Rules are the per-game settings. They travel inside snapshots so a
// restored game keeps playing under the rules it started with.
type Rules struct {
	BaseQuarters      int           `json:"base_quarters"`
	HighStakes        bool          `json:"high_stakes"`
	HandicapMode      handicap.Mode `json:"handicap_mode"`
	RequireSolo       bool          `json:"require_solo"`
	Precedence        []BaseRule    `json:"precedence"`
	Stacking          Stacking      `json:"stacking"`
	DoublePointsHoles []int         `json:"double_points_holes,omitempty"`
}

// DefaultPrecedence is the base-wager order: Vinnie's Variation, carry-over,
// Joe's Special, the Option, then double-points holes.
func DefaultPrecedence() []BaseRule {
	return []BaseRule{RuleVinnie, RuleCarryOver, RuleJoesSpecial, RuleOption, RuleDoublePoints}
}

// DefaultRules returns the house rules.
func DefaultRules() Rules {
	return Rules{
		BaseQuarters: 1,
		HandicapMode: handicap.Relative,
		RequireSolo:  true,
		Precedence:   DefaultPrecedence(),
		Stacking:     StackMultiply,
	}
}

// Validate checks the rules are usable.
func (r Rules) Validate() error {
	if r.BaseQuarters < 1 {
		return validationError("rules.base_quarters", "base wager must be at least one quarter")
	}
	if !r.HandicapMode.Valid() {
		return validationError("rules.handicap_mode", "unknown handicap mode %q", r.HandicapMode)
	}
	if r.Stacking != StackMultiply && r.Stacking != StackReplace {
		return validationError("rules.stacking", "unknown stacking %q", r.Stacking)
	}
	seen := make(map[BaseRule]bool)
	for i, rule := range r.Precedence {
		field := fmt.Sprintf("rules.precedence[%d]", i)
		if !rule.valid() {
			return validationError(field, "unknown base rule %q", rule)
		}
		if seen[rule] {
			return validationError(field, "base rule %q listed twice", rule)
		}
		seen[rule] = true
	}
	for i, h := range r.DoublePointsHoles {
		if err := ValidateHoleNumber(h); err != nil {
			e := err.(*Error)
			e.Field = fmt.Sprintf("rules.double_points_holes[%d]", i)
			return e
		}
	}
	if len(r.DoublePointsHoles) > 0 && !r.enabled(RuleDoublePoints) {
		return validationError("rules.double_points_holes", "double-points holes are set but %q is not in the precedence", RuleDoublePoints)
	}
	return nil
}

func (r Rules) enabled(rule BaseRule) bool {
	for _, p := range r.Precedence {
		if p == rule {
			return true
		}
	}
	return false
}

func (r Rules) startingQuarters() int {
	if r.HighStakes {
		return r.BaseQuarters * 2
	}
	return r.BaseQuarters
}

func (r Rules) isDoublePoints(hole int) bool {
	for _, h := range r.DoublePointsHoles {
		if h == hole {
			return true
		}
	}
	return false
}
