package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBase(t *testing.T) {
	withDoublePoints := DefaultRules()
	withDoublePoints.DoublePointsHoles = []int{5}

	replace := DefaultRules()
	replace.Stacking = StackReplace

	highStakes := DefaultRules()
	highStakes.HighStakes = true

	noJoes := DefaultRules()
	noJoes.Precedence = []BaseRule{RuleVinnie, RuleCarryOver, RuleOption}

	tests := []struct {
		name        string
		rules       Rules
		in          baseInputs
		wantBase    int
		wantNatural int
		wantKinds   []ModifierKind
	}{
		{
			name:        "plain hole",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 1, players: 4},
			wantBase:    1,
			wantNatural: 1,
		},
		{
			name:        "vinnie",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 13, players: 4},
			wantBase:    2,
			wantNatural: 2,
			wantKinds:   []ModifierKind{ModVinnie},
		},
		{
			name:        "no vinnie with five players",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 13, players: 5},
			wantBase:    1,
			wantNatural: 1,
		},
		{
			name:        "carry-over doubles the previous wager",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 4, players: 4, carry: true, prevWager: 2},
			wantBase:    4,
			wantNatural: 4,
			wantKinds:   []ModifierKind{ModCarryOver},
		},
		{
			name:        "vinnie then carry-over",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 14, players: 4, carry: true, prevWager: 2},
			wantBase:    4,
			wantNatural: 4,
			wantKinds:   []ModifierKind{ModVinnie, ModCarryOver},
		},
		{
			name:        "carry-over never lowers the base",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 14, players: 4, carry: true, prevWager: 1},
			wantBase:    2,
			wantNatural: 2,
			wantKinds:   []ModifierKind{ModVinnie},
		},
		{
			name:        "joe's special defaults to two",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 17, players: 4, hoepfinger: true, goat: "p3"},
			wantBase:    2,
			wantNatural: 1,
			wantKinds:   []ModifierKind{ModJoesSpecial},
		},
		{
			name:        "joe's special choice",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 17, players: 4, hoepfinger: true, joesChoice: 8, goat: "p3"},
			wantBase:    8,
			wantNatural: 1,
			wantKinds:   []ModifierKind{ModJoesSpecial},
		},
		{
			name:        "joe's special with the option",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 17, players: 4, hoepfinger: true, optionActive: true, captain: "p3", goat: "p3"},
			wantBase:    4,
			wantNatural: 1,
			wantKinds:   []ModifierKind{ModJoesSpecial, ModOption},
		},
		{
			name:        "hoepfinger without joe's special",
			rules:       noJoes,
			in:          baseInputs{hole: 17, players: 4, hoepfinger: true},
			wantBase:    1,
			wantNatural: 1,
		},
		{
			name:        "option",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 2, players: 4, optionActive: true, captain: "p1"},
			wantBase:    2,
			wantNatural: 2,
			wantKinds:   []ModifierKind{ModOption},
		},
		{
			name:        "vinnie and option multiply",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 13, players: 4, optionActive: true, captain: "p1"},
			wantBase:    4,
			wantNatural: 4,
			wantKinds:   []ModifierKind{ModVinnie, ModOption},
		},
		{
			name:        "vinnie and option replace",
			rules:       replace,
			in:          baseInputs{hole: 13, players: 4, optionActive: true, captain: "p1"},
			wantBase:    2,
			wantNatural: 2,
			wantKinds:   []ModifierKind{ModVinnie},
		},
		{
			name:        "float doubles last",
			rules:       DefaultRules(),
			in:          baseInputs{hole: 2, players: 4, optionActive: true, captain: "p1", floatBy: "p1"},
			wantBase:    4,
			wantNatural: 2,
			wantKinds:   []ModifierKind{ModOption, ModFloat},
		},
		{
			name:        "double points hole",
			rules:       withDoublePoints,
			in:          baseInputs{hole: 5, players: 4},
			wantBase:    2,
			wantNatural: 2,
			wantKinds:   []ModifierKind{ModDoublePoints},
		},
		{
			name:        "high stakes",
			rules:       highStakes,
			in:          baseInputs{hole: 1, players: 4},
			wantBase:    2,
			wantNatural: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, natural, mods := computeBase(tt.rules, tt.in)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantNatural, natural)
			var kinds []ModifierKind
			for _, m := range mods {
				kinds = append(kinds, m.Kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestJoesSpecialChoices(t *testing.T) {
	assert.Equal(t, []int{2, 4, 8}, JoesSpecialChoices(1))
	assert.Equal(t, []int{2, 4, 8}, JoesSpecialChoices(8))
	assert.Equal(t, []int{2, 4, 8, 16}, JoesSpecialChoices(16))
}

func TestCarryOverNotOnConsecutiveHoles(t *testing.T) {
	e, g := newTestGame(t, 4)
	even := func(n int) map[PlayerID]int {
		out := make(map[PlayerID]int)
		for _, p := range ids(n) {
			out[p] = 4
		}
		return out
	}

	g = mustApply(t, e, g, shot("p1", 250))
	g = mustApply(t, e, g, declareSolo("p1"))
	require.Equal(t, 2, g.Hole.Betting.Wager())
	g = mustApply(t, e, g, scores("p1", even(4)))

	require.True(t, g.History[0].Push)
	assert.Equal(t, CarryState{Pushed: true, Wager: 2}, g.Carry)
	assert.Equal(t, 4, g.Hole.Betting.BaseWager)
	assert.True(t, g.Hole.Betting.CarryOver)

	g = partners(t, e, g, "p2", "p3")
	g = mustApply(t, e, g, scores("p2", even(4)))
	require.True(t, g.History[1].Push)
	assert.True(t, g.History[1].CarryOver)
	assert.Equal(t, CarryState{Pushed: true, Wager: 4, Applied: true}, g.Carry)

	assert.Equal(t, 3, g.Hole.Number)
	assert.Equal(t, 1, g.Hole.Betting.BaseWager)
	assert.False(t, g.Hole.Betting.CarryOver)
}

func TestVinnieVariation(t *testing.T) {
	_, g := newTestGame(t, 4, atHole(13))
	assert.Equal(t, 2, g.Hole.Betting.BaseWager)

	_, g = newTestGame(t, 5, atHole(13))
	assert.Equal(t, 1, g.Hole.Betting.BaseWager)
}

func TestOption(t *testing.T) {
	e, g := newTestGame(t, 4, withPoints(map[PlayerID]float64{"p1": -2, "p2": 2}))
	require.Equal(t, 2, g.Hole.Betting.BaseWager)
	require.True(t, g.Hole.Betting.hasModifier(ModOption))

	_, err := e.Apply(g, special("p2", SpecialDisableOption))
	requireRule(t, err, RuleWrongActor)

	off := mustApply(t, e, g, special("p1", SpecialDisableOption))
	assert.Equal(t, 1, off.Hole.Betting.BaseWager)
	assert.False(t, off.Hole.Betting.hasModifier(ModOption))

	_, err = e.Apply(off, special("p1", SpecialDisableOption))
	requireRule(t, err, RuleSpecial)

	teed := mustApply(t, e, g, shot("p1", 250))
	_, err = e.Apply(teed, special("p1", SpecialDisableOption))
	requireRule(t, err, RuleSpecial)
}

func TestOptionNeedsStrictlyLowestCaptain(t *testing.T) {
	_, g := newTestGame(t, 4, withPoints(map[PlayerID]float64{"p1": -2, "p2": -2, "p3": 4}))
	assert.Equal(t, 1, g.Hole.Betting.BaseWager)
}

func TestFloat(t *testing.T) {
	e, g := newTestGame(t, 4)

	_, err := e.Apply(g, special("p2", SpecialFloat))
	requireRule(t, err, RuleWrongActor)

	g = mustApply(t, e, g, special("p1", SpecialFloat))
	assert.Equal(t, 2, g.Hole.Betting.BaseWager)
	assert.True(t, g.Player("p1").FloatUsed)

	_, err = e.Apply(g, special("p1", SpecialFloat))
	requireRule(t, err, RuleSpecial)

	// The float survives partner negotiation and in-hole doubles.
	g = partners(t, e, g, "p1", "p2")
	assert.Equal(t, 2, g.Hole.Betting.Wager())
}

func TestHoepfingerGoatChoices(t *testing.T) {
	e, g := newTestGame(t, 4, atHole(17), withPoints(map[PlayerID]float64{"p1": 1, "p2": 1, "p3": -3, "p4": 1}))
	require.Equal(t, PhaseHoepfinger, g.Phase)
	require.Equal(t, PlayerID("p3"), g.Hole.Goat)
	require.True(t, g.Hole.GoatChoice.Open)
	assert.Equal(t, 2, g.Hole.Betting.BaseWager)

	_, err := e.Apply(g, Command{Kind: ActionChoosePosition, Actor: "p1", Payload: Payload{Position: 1}})
	requireRule(t, err, RuleWrongActor)

	g = mustApply(t, e, g, Command{Kind: ActionChoosePosition, Actor: "p3", Payload: Payload{Position: 1}})
	assert.Equal(t, []PlayerID{"p3", "p1", "p2", "p4"}, g.Hole.HittingOrder)
	assert.Equal(t, PlayerID("p3"), g.Hole.Captain)
	assert.Equal(t, RoleCaptain, g.Player("p3").Role)
	assert.Equal(t, 4, g.Hole.Betting.BaseWager, "joe's special then the option")

	_, err = e.Apply(g, Command{Kind: ActionSetWager, Actor: "p3", Payload: Payload{Quarters: 3}})
	require.True(t, IsValidation(err))

	g = mustApply(t, e, g, Command{Kind: ActionSetWager, Actor: "p3", Payload: Payload{Quarters: 8}})
	assert.Equal(t, 16, g.Hole.Betting.BaseWager)
	assert.False(t, g.Hole.GoatChoice.Open)

	_, err = e.Apply(g, Command{Kind: ActionSetWager, Actor: "p3", Payload: Payload{Quarters: 4}})
	requireRule(t, err, RuleHoepfinger)
}

func TestGoatChoiceLapsesOnOtherCommands(t *testing.T) {
	e, g := newTestGame(t, 4, atHole(17), withPoints(map[PlayerID]float64{"p1": 1, "p2": 1, "p3": -3, "p4": 1}))
	g = mustApply(t, e, g, shot("p1", 250))

	assert.False(t, g.Hole.GoatChoice.Open)
	_, err := e.Apply(g, Command{Kind: ActionChoosePosition, Actor: "p3", Payload: Payload{Position: 1}})
	requireRule(t, err, RuleHoepfinger)
	assert.Equal(t, 2, g.Hole.Betting.BaseWager)
}

func TestHoepfingerClosesWageringAfterTeeShots(t *testing.T) {
	e, g := newTestGame(t, 4, atHole(17))
	g = mustApply(t, e, g, declareSolo("p1"))
	for i, p := range ids(4) {
		g = mustApply(t, e, g, shot(p, 300-i*10))
	}
	require.True(t, g.Hole.Betting.Closed)

	_, err := e.Apply(g, Command{Kind: ActionOfferDouble, Actor: "p2"})
	requireRule(t, err, RuleWageringClosed)

	// Only the solo player may still double.
	_, err = e.Apply(g, Command{Kind: ActionOfferDouble, Actor: "p1"})
	require.NoError(t, err)
}
