package game

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a command was rejected.
type ErrorKind string

const (
	// KindValidation covers malformed input: out-of-range handicaps, stroke
	// indexes, hole numbers or player counts.
	KindValidation ErrorKind = "validation"
	// KindRuleViolation covers well-formed commands the rules do not allow
	// right now: wrong actor, closed windows, illegal doubles.
	KindRuleViolation ErrorKind = "rule_violation"
	// KindInvariant is an internal defect, such as a hole whose point deltas
	// do not sum to zero. It is never the caller's fault.
	KindInvariant ErrorKind = "invariant_violation"
)

// Error is the structured error returned by the engine. A command that
// returns an Error has not changed the game.
type Error struct {
	Kind    ErrorKind      `json:"kind"`
	Rule    string         `json:"rule,omitempty"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *Error) Error() string {
	var s string
	if e.Rule != "" {
		s = fmt.Sprintf("%s (%s): %s", e.Kind, e.Rule, e.Message)
	} else {
		s = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Field != "" {
		s += " [" + e.Field + "]"
	}
	return s
}

// With returns a copy of e carrying an extra context entry.
func (e *Error) With(key string, value any) *Error {
	out := *e
	out.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		out.Context[k] = v
	}
	out.Context[key] = value
	return &out
}

func validationError(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func ruleViolation(rule, format string, args ...any) *Error {
	return &Error{Kind: KindRuleViolation, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

func invariantViolation(format string, args ...any) *Error {
	return &Error{Kind: KindInvariant, Rule: "zero_sum", Message: fmt.Sprintf(format, args...)}
}

func kindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsRuleViolation reports whether err is a rule violation.
func IsRuleViolation(err error) bool { return kindOf(err) == KindRuleViolation }

// IsInvariantViolation reports whether err signals an internal defect.
func IsInvariantViolation(err error) bool { return kindOf(err) == KindInvariant }

// Rule names used in rule violations. They are stable and safe to match on.
const (
	RuleGameOver         = "game_over"
	RuleWrongActor       = "wrong_actor"
	RuleOutOfTurn        = "out_of_turn"
	RuleHoleComplete     = "hole_complete"
	RuleFormation        = "team_formation"
	RuleEligibility      = "partner_eligibility"
	RuleAardvark         = "aardvark"
	RuleSoloRequired     = "solo_required"
	RuleCoverage         = "team_coverage"
	RuleWageringClosed   = "wagering_closed"
	RuleLineOfScrimmage  = "line_of_scrimmage"
	RuleRedouble         = "redouble"
	RulePendingDecision  = "pending_decision"
	RuleSpecial          = "special_rule"
	RuleHoepfinger       = "hoepfinger"
	RuleScoresIncomplete = "scores_incomplete"
)
