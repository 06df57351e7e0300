package game

// NextActions lists every command the rules allow right now, one entry per
// actor and argument choice, by running each command's checks against
// candidate commands. Commands with free-form arguments (shot distances,
// scores) appear once with those arguments empty.
func NextActions(g *Game) []Command {
	if g.Phase == PhaseComplete || g.Hole == nil {
		return nil
	}
	var out []Command
	for _, kind := range ActionKinds() {
		h := handlers[kind]
		for _, actor := range g.Hole.HittingOrder {
			for _, p := range candidatePayloads(g, kind) {
				cmd := Command{Kind: kind, Actor: actor, Payload: p}
				if h.check(g, cmd) == nil {
					out = append(out, cmd)
				}
			}
		}
	}
	return out
}

// IsLegal reports whether a command of this kind by actor appears in the
// legal action list.
func IsLegal(actions []Command, kind ActionKind, actor PlayerID) bool {
	for _, a := range actions {
		if a.Kind == kind && a.Actor == actor {
			return true
		}
	}
	return false
}

func candidatePayloads(g *Game, kind ActionKind) []Payload {
	h := g.Hole
	answers := []Payload{{Accept: true}, {Accept: false}}
	switch kind {
	case ActionConcede:
		out := make([]Payload, 0, len(h.HittingOrder))
		for _, p := range h.HittingOrder {
			out = append(out, Payload{Player: p})
		}
		return out
	case ActionRequestPartner:
		out := make([]Payload, 0, len(h.HittingOrder))
		for _, p := range h.HittingOrder {
			out = append(out, Payload{Partner: p})
		}
		return out
	case ActionRespondPartnership, ActionRespondDouble, ActionRespondBigDick:
		return answers
	case ActionAardvarkRequest:
		return []Payload{{Team: 1}, {Team: 2}}
	case ActionAardvarkRespond:
		var out []Payload
		for _, a := range h.Aardvarks {
			out = append(out, Payload{Player: a, Accept: true}, Payload{Player: a, Accept: false})
		}
		return out
	case ActionOfferDouble:
		sides := h.Formation.Sides()
		if len(sides) == 2 {
			return []Payload{{}}
		}
		out := make([]Payload, 0, len(sides))
		for i := range sides {
			out = append(out, Payload{TargetSide: i + 1})
		}
		return out
	case ActionInvokeSpecial:
		return []Payload{{Rule: SpecialFloat}, {Rule: SpecialDisableOption}, {Rule: SpecialBigDick}}
	case ActionChoosePosition:
		out := make([]Payload, 0, len(h.HittingOrder))
		for i := range h.HittingOrder {
			out = append(out, Payload{Position: i + 1})
		}
		return out
	case ActionSetWager:
		var out []Payload
		for _, q := range JoesSpecialChoices(h.Betting.Natural) {
			out = append(out, Payload{Quarters: q})
		}
		return out
	}
	return []Payload{{}}
}
