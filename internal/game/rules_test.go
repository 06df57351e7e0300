package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wolfgoatpig/internal/handicap"
)

func TestDefaultRulesAreValid(t *testing.T) {
	r := DefaultRules()
	require.NoError(t, r.Validate())
	assert.Equal(t, 1, r.startingQuarters())
	assert.True(t, r.enabled(RuleVinnie))
	assert.True(t, r.enabled(RuleDoublePoints))
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Rules)
		field  string
	}{
		{"zero base", func(r *Rules) { r.BaseQuarters = 0 }, "rules.base_quarters"},
		{"handicap mode", func(r *Rules) { r.HandicapMode = handicap.Mode("gross") }, "rules.handicap_mode"},
		{"stacking", func(r *Rules) { r.Stacking = "add" }, "rules.stacking"},
		{"unknown rule", func(r *Rules) { r.Precedence = []BaseRule{"mulligan"} }, "rules.precedence[0]"},
		{"repeated rule", func(r *Rules) { r.Precedence = []BaseRule{RuleOption, RuleOption} }, "rules.precedence[1]"},
		{"double points hole", func(r *Rules) { r.DoublePointsHoles = []int{3, 19} }, "rules.double_points_holes[1]"},
		{"double points disabled", func(r *Rules) {
			r.Precedence = []BaseRule{RuleVinnie, RuleOption}
			r.DoublePointsHoles = []int{18}
		}, "rules.double_points_holes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.modify(&r)
			err := r.Validate()
			require.True(t, IsValidation(err), "got %v", err)
			assert.Equal(t, tt.field, err.(*Error).Field)
		})
	}
}

func TestHighStakesDoublesStart(t *testing.T) {
	r := DefaultRules()
	r.HighStakes = true
	r.BaseQuarters = 2
	assert.Equal(t, 4, r.startingQuarters())
}

func TestDisabledRuleDoesNotApply(t *testing.T) {
	_, g := newTestGame(t, 4, withRules(func(r *Rules) {
		r.Precedence = []BaseRule{RuleCarryOver, RuleJoesSpecial, RuleOption}
	}), atHole(13))
	assert.Equal(t, 1, g.Hole.Betting.BaseWager)
}

func TestDoublePointsHoleDoublesDefaultBase(t *testing.T) {
	_, g := newTestGame(t, 4, withRules(func(r *Rules) {
		r.DoublePointsHoles = []int{1}
	}), atHole(1))
	assert.Equal(t, 2, g.Hole.Betting.BaseWager)
	assert.True(t, g.Hole.Betting.hasModifier(ModDoublePoints))
}

func TestErrorFormatting(t *testing.T) {
	err := ruleViolation(RuleEligibility, "window closed").With("partner", "p2")
	assert.Equal(t, "rule_violation (partner_eligibility): window closed", err.Error())
	assert.Equal(t, "p2", err.Context["partner"])

	verr := validationError("payload.distance", "bad")
	assert.Equal(t, "validation: bad [payload.distance]", verr.Error())
	assert.True(t, IsValidation(verr))
	assert.False(t, IsRuleViolation(verr))
}
