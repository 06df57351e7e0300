package game

import (
	"fmt"
	"slices"

	"github.com/lox/wolfgoatpig/internal/rotation"
)

// doubleTarget resolves the side a double is aimed at. Zero means the other
// side, which is only unambiguous when two sides are in play.
func (g *Game) doubleTarget(from, target int) (int, error) {
	sides := g.Hole.Formation.Sides()
	if target == 0 {
		if len(sides) != 2 {
			return 0, validationError("payload.target_side", "target side is required when three sides are in play")
		}
		return 1 - from, nil
	}
	to := target - 1
	if to < 0 || to >= len(sides) {
		return 0, validationError("payload.target_side", "target side %d out of range 1-%d", target, len(sides))
	}
	if to == from {
		return 0, ruleViolation(RuleFormation, "a side cannot double itself")
	}
	return to, nil
}

func checkOfferDouble(g *Game, cmd Command) error {
	h := g.Hole
	b := &h.Betting
	if !h.Formation.Final() {
		return ruleViolation(RuleFormation, "doubles need final teams")
	}
	if bd := b.BigDick; bd != nil && bd.Active {
		return ruleViolation(RuleSpecial, "no doubles during a Big Dick")
	}
	if b.PendingDouble != nil {
		return ruleViolation(RulePendingDecision, "a double is already waiting for an answer")
	}
	from := sideOf(h.Formation, cmd.Actor)
	if from < 0 || b.forfeited(cmd.Actor) {
		return ruleViolation(RuleWrongActor, "%s is not playing this hole", g.Name(cmd.Actor))
	}
	to, err := g.doubleTarget(from, cmd.Payload.TargetSide)
	if err != nil {
		return err
	}
	if b.conceded(from, to) {
		return ruleViolation(RuleHoleComplete, "that match has already been conceded")
	}
	if b.Closed {
		if solo, ok := h.Formation.(Solo); !ok || solo.Player != cmd.Actor {
			return ruleViolation(RuleWageringClosed, "wagering is closed; only a solo player may still double")
		}
	} else {
		// The whole side must be behind the line, not just the player offering.
		for _, p := range h.active(h.Formation.Sides()[from]) {
			if !h.behindLine(p) {
				return ruleViolation(RuleLineOfScrimmage, "%s has passed the line of scrimmage", g.Name(p)).
					With("line", h.lineOfScrimmage()).
					With("player", p)
			}
		}
	}
	if b.LastDoubler == from {
		return ruleViolation(RuleRedouble, "side %d doubled last and must wait to be redoubled", from+1)
	}
	return nil
}

func applyOfferDouble(g *Game, cmd Command, _ *effects) (string, error) {
	h := g.Hole
	b := &h.Betting
	from := sideOf(h.Formation, cmd.Actor)
	to, _ := g.doubleTarget(from, cmd.Payload.TargetSide)
	b.PendingDouble = &DoubleOffer{
		By:       cmd.Actor,
		FromSide: from,
		ToSide:   to,
		PreWager: b.Wager(),
		Seq:      h.ShotSeq,
	}
	return fmt.Sprintf("%s doubles side %d to %d quarters", g.Name(cmd.Actor), to+1, b.Wager()*2), nil
}

func checkRespondDouble(g *Game, cmd Command) error {
	h := g.Hole
	pd := h.Betting.PendingDouble
	if pd == nil {
		return ruleViolation(RulePendingDecision, "no double is waiting for an answer")
	}
	if !slices.Contains(h.active(h.Formation.Sides()[pd.ToSide]), cmd.Actor) {
		return ruleViolation(RuleWrongActor, "the double is aimed at side %d", pd.ToSide+1)
	}
	if slices.ContainsFunc(pd.Responses, func(r Response) bool { return r.Player == cmd.Actor }) {
		return ruleViolation(RuleWrongActor, "%s has already answered", g.Name(cmd.Actor))
	}
	return nil
}

func applyRespondDouble(g *Game, cmd Command, fx *effects) (string, error) {
	h := g.Hole
	pd := h.Betting.PendingDouble
	pd.Responses = append(pd.Responses, Response{Player: cmd.Actor, Accept: cmd.Payload.Accept})
	verb := "declines"
	if cmd.Payload.Accept {
		verb = "accepts"
	}
	narration := fmt.Sprintf("%s %s the double", g.Name(cmd.Actor), verb)
	if len(pd.Responses) == len(h.active(h.Formation.Sides()[pd.ToSide])) {
		g.resolveDouble(fx)
	}
	return narration, nil
}

// resolveDouble settles a double offer. Members who never answered accept.
func (g *Game) resolveDouble(fx *effects) {
	h := g.Hole
	b := &h.Betting
	pd := b.PendingDouble
	b.PendingDouble = nil
	sides := h.Formation.Sides()

	var accepted, declined []PlayerID
	for _, p := range h.active(sides[pd.ToSide]) {
		i := slices.IndexFunc(pd.Responses, func(r Response) bool { return r.Player == p })
		if i >= 0 && !pd.Responses[i].Accept {
			declined = append(declined, p)
		} else {
			accepted = append(accepted, p)
		}
	}

	switch {
	case len(declined) == 0:
		b.compound(ModDouble, 2, pd.By, h.ShotSeq)
		b.LastDoubler = pd.FromSide
		fx.add("double accepted, wager now %d", b.Wager())
	case len(accepted) == 0:
		b.Concessions = append(b.Concessions, Concession{Winner: pd.FromSide, Loser: pd.ToSide, Wager: pd.PreWager})
		fx.add("side %d concedes to side %d at %d quarters", pd.ToSide+1, pd.FromSide+1, pd.PreWager)
	default:
		stake := float64(max(len(sides[pd.FromSide]), len(sides[pd.ToSide])))
		share := float64(pd.PreWager) * stake / float64(len(sides[pd.ToSide]))
		for _, p := range declined {
			b.Forfeits = append(b.Forfeits, Forfeit{
				Player: p,
				Amount: share,
				To:     h.active(sides[pd.FromSide]),
				Reason: "ackerley",
			})
			fx.add("%s forfeits %.2f quarters and leaves the hole", g.Name(p), share)
		}
		b.compound(ModDouble, 2, pd.By, h.ShotSeq)
		b.LastDoubler = pd.FromSide
		fx.add("Ackerley's Gambit: the rest play on at %d", b.Wager())
	}
}

func checkInvokeSpecial(g *Game, cmd Command) error {
	h := g.Hole
	b := &h.Betting
	switch cmd.Payload.Rule {
	case SpecialFloat:
		if cmd.Actor != h.Captain {
			return ruleViolation(RuleWrongActor, "only the captain may float")
		}
		if g.Player(cmd.Actor).FloatUsed {
			return ruleViolation(RuleSpecial, "%s has already used their float", g.Name(cmd.Actor))
		}
		if h.captainTeed() {
			return ruleViolation(RuleSpecial, "the float must be called before the captain tees off")
		}
	case SpecialDisableOption:
		if cmd.Actor != h.Captain {
			return ruleViolation(RuleWrongActor, "only the captain may turn off the Option")
		}
		if !g.optionOn() {
			return ruleViolation(RuleSpecial, "the Option is not in effect")
		}
		if h.captainTeed() {
			return ruleViolation(RuleSpecial, "the Option must be turned off before the captain tees off")
		}
	case SpecialBigDick:
		if h.Number != rotation.Holes {
			return ruleViolation(RuleSpecial, "the Big Dick is only offered on the final hole")
		}
		if g.Player(cmd.Actor).Points <= 0 {
			return ruleViolation(RuleSpecial, "%s has no winnings to risk", g.Name(cmd.Actor))
		}
		if b.BigDick != nil {
			return ruleViolation(RuleSpecial, "the Big Dick has already been offered")
		}
		if h.Formation.Final() {
			return ruleViolation(RuleFormation, "the Big Dick must be offered before teams are final")
		}
		if b.Closed {
			return ruleViolation(RuleWageringClosed, "wagering is closed")
		}
	default:
		return validationError("payload.rule", "unknown special rule %q", cmd.Payload.Rule)
	}
	return nil
}

func applyInvokeSpecial(g *Game, cmd Command, _ *effects) (string, error) {
	h := g.Hole
	b := &h.Betting
	switch cmd.Payload.Rule {
	case SpecialFloat:
		b.FloatBy = cmd.Actor
		g.Player(cmd.Actor).FloatUsed = true
		g.recomputeBase()
		return fmt.Sprintf("%s floats, base wager %d", g.Name(cmd.Actor), b.BaseWager), nil
	case SpecialDisableOption:
		b.OptionDisabled = true
		g.recomputeBase()
		return fmt.Sprintf("%s turns off the Option, base wager %d", g.Name(cmd.Actor), b.BaseWager), nil
	default:
		p := g.Player(cmd.Actor)
		b.BigDick = &BigDick{Player: cmd.Actor, Stake: p.Points, PreWager: b.Wager(), Seq: h.ShotSeq}
		return fmt.Sprintf("%s puts %.2f quarters on the line: the Big Dick", g.Name(cmd.Actor), p.Points), nil
	}
}

func checkRespondBigDick(g *Game, cmd Command) error {
	bd := g.Hole.Betting.BigDick
	if bd == nil || bd.Resolved {
		return ruleViolation(RulePendingDecision, "no Big Dick is waiting for an answer")
	}
	if cmd.Actor == bd.Player {
		return ruleViolation(RuleWrongActor, "%s cannot answer their own Big Dick", g.Name(cmd.Actor))
	}
	if slices.ContainsFunc(bd.Responses, func(r Response) bool { return r.Player == cmd.Actor }) {
		return ruleViolation(RuleWrongActor, "%s has already answered", g.Name(cmd.Actor))
	}
	return nil
}

func applyRespondBigDick(g *Game, cmd Command, fx *effects) (string, error) {
	bd := g.Hole.Betting.BigDick
	bd.Responses = append(bd.Responses, Response{Player: cmd.Actor, Accept: cmd.Payload.Accept})
	verb := "declines"
	if cmd.Payload.Accept {
		verb = "covers"
	}
	narration := fmt.Sprintf("%s %s the Big Dick", g.Name(cmd.Actor), verb)
	if len(bd.Responses) == len(g.Players)-1 {
		if err := g.resolveBigDick(fx); err != nil {
			return "", err
		}
	}
	return narration, nil
}

// resolveBigDick settles the challenge. Players who never answered cover it;
// decliners forfeit the pre-offer wager to the challenger.
func (g *Game) resolveBigDick(fx *effects) error {
	h := g.Hole
	b := &h.Betting
	bd := b.BigDick
	bd.Resolved = true

	var accepted []PlayerID
	for _, p := range h.HittingOrder {
		if p == bd.Player {
			continue
		}
		i := slices.IndexFunc(bd.Responses, func(r Response) bool { return r.Player == p })
		if i >= 0 && !bd.Responses[i].Accept {
			b.Forfeits = append(b.Forfeits, Forfeit{
				Player: p,
				Amount: float64(bd.PreWager),
				To:     []PlayerID{bd.Player},
				Reason: "big_dick",
			})
			continue
		}
		if i < 0 {
			bd.Responses = append(bd.Responses, Response{Player: p, Accept: true})
		}
		accepted = append(accepted, p)
	}
	if len(accepted) == 0 {
		fx.add("nobody covers the Big Dick")
		return nil
	}

	bd.Active = true
	neg := &h.Negotiation
	neg.Offer = nil
	neg.Negotiator = ""
	neg.Stage = StageDone
	for i := range neg.Aardvarks {
		neg.Aardvarks[i].Asked = -1
		neg.Aardvarks[i].Settled = true
	}
	h.Formation = Solo{Player: bd.Player, Opponents: accepted, Origin: SoloBigDick}
	return g.formationFinal(fx)
}

func (g *Game) checkGoatChoice(actor PlayerID, done bool) error {
	h := g.Hole
	if !h.GoatChoice.Open || done {
		return ruleViolation(RuleHoepfinger, "the Goat's choice is not open")
	}
	if actor != h.Goat {
		return ruleViolation(RuleWrongActor, "only the Goat, %s, may choose", g.Name(h.Goat))
	}
	return nil
}

func checkChoosePosition(g *Game, cmd Command) error {
	h := g.Hole
	if err := g.checkGoatChoice(cmd.Actor, h.GoatChoice.Position); err != nil {
		return err
	}
	if pos := cmd.Payload.Position; pos < 1 || pos > len(h.HittingOrder) {
		return validationError("payload.position", "position %d out of range 1-%d", pos, len(h.HittingOrder))
	}
	return nil
}

func applyChoosePosition(g *Game, cmd Command, fx *effects) (string, error) {
	h := g.Hole
	order, err := rotation.WithGoatPosition(h.HittingOrder, cmd.Actor, cmd.Payload.Position)
	if err != nil {
		return "", validationError("payload.position", "%v", err)
	}
	h.setOrder(order)
	g.beginNegotiation()
	g.assignRoles()
	g.recomputeBase()
	h.GoatChoice.Position = true
	h.GoatChoice.Open = !h.GoatChoice.Wager
	fx.add("%s captains", g.Name(h.Captain))
	return fmt.Sprintf("%s chooses to hit %s", g.Name(cmd.Actor), ordinal(cmd.Payload.Position)), nil
}

func checkSetWager(g *Game, cmd Command) error {
	h := g.Hole
	if err := g.checkGoatChoice(cmd.Actor, h.GoatChoice.Wager); err != nil {
		return err
	}
	if !g.Rules.enabled(RuleJoesSpecial) {
		return ruleViolation(RuleSpecial, "Joe's Special is not in play")
	}
	if !slices.Contains(JoesSpecialChoices(h.Betting.Natural), cmd.Payload.Quarters) {
		return validationError("payload.quarters", "wager must be one of %v", JoesSpecialChoices(h.Betting.Natural))
	}
	return nil
}

func applySetWager(g *Game, cmd Command, _ *effects) (string, error) {
	h := g.Hole
	h.Betting.JoesChoice = cmd.Payload.Quarters
	g.recomputeBase()
	h.GoatChoice.Wager = true
	h.GoatChoice.Open = !h.GoatChoice.Position
	return fmt.Sprintf("%s sets the wager at %d quarters: Joe's Special", g.Name(cmd.Actor), cmd.Payload.Quarters), nil
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	case 4:
		return "fourth"
	case 5:
		return "fifth"
	case 6:
		return "sixth"
	}
	return fmt.Sprintf("#%d", n)
}
