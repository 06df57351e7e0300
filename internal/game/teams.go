package game

import (
	"fmt"
	"slices"

	"github.com/thoas/go-funk"

	"github.com/lox/wolfgoatpig/internal/rotation"
)

// beginNegotiation resets team formation for the hole's hitting order.
func (g *Game) beginNegotiation() {
	h := g.Hole
	h.Negotiation = Negotiation{Stage: StageCaptain, Negotiator: h.Captain}
	for _, a := range h.Aardvarks {
		h.Negotiation.Aardvarks = append(h.Negotiation.Aardvarks, AardvarkStatus{Player: a, Team: -1, Asked: -1})
	}
	h.Formation = Pending{}
	if len(h.HittingOrder) == 2 {
		h.Negotiation.Stage = StageDone
		h.Negotiation.Negotiator = ""
		h.Formation = Solo{Player: h.HittingOrder[0], Opponents: []PlayerID{h.HittingOrder[1]}, Origin: SoloHeadToHead}
	}
}

// soloRequired reports whether a four-player captain must go alone because
// this is their last captaincy before the Hoepfinger and they have never
// played a hole solo.
func (g *Game) soloRequired() bool {
	h := g.Hole
	if !g.Rules.RequireSolo || len(g.Players) != 4 {
		return false
	}
	return g.Player(h.Captain).SoloCount == 0 && rotation.LastCaptaincyBeforeHoepfinger(len(g.Players), h.Number)
}

func (g *Game) bigDickPending() bool {
	bd := g.Hole.Betting.BigDick
	return bd != nil && !bd.Resolved
}

// checkNegotiator verifies the actor may make a captain's decision now.
func (g *Game) checkNegotiator(actor PlayerID) error {
	neg := &g.Hole.Negotiation
	if neg.Stage != StageCaptain && neg.Stage != StageSecondCaptain {
		return ruleViolation(RuleFormation, "teams are no longer being picked")
	}
	if actor != neg.Negotiator {
		return ruleViolation(RuleWrongActor, "only %s may pick a partner", g.Name(neg.Negotiator))
	}
	if neg.Offer != nil {
		return ruleViolation(RulePendingDecision, "%s has not answered the invitation yet", g.Name(neg.Offer.To))
	}
	if g.bigDickPending() {
		return ruleViolation(RulePendingDecision, "the Big Dick must be answered first")
	}
	return nil
}

func checkRequestPartner(g *Game, cmd Command) error {
	if err := g.checkNegotiator(cmd.Actor); err != nil {
		return err
	}
	h := g.Hole
	partner := cmd.Payload.Partner
	if partner == "" {
		return validationError("payload.partner", "partner is required")
	}
	if g.Player(partner) == nil {
		return validationError("payload.partner", "unknown player %q", partner)
	}
	if partner == cmd.Actor {
		return ruleViolation(RuleFormation, "a captain cannot partner with themselves")
	}
	if h.isAardvark(partner) {
		return ruleViolation(RuleAardvark, "%s is an Aardvark and must join through the Aardvark phase", g.Name(partner))
	}
	if !funk.Contains(h.candidates(), partner) {
		return ruleViolation(RuleFormation, "%s is already on a team", g.Name(partner))
	}
	if h.Negotiation.Stage == StageCaptain && g.soloRequired() {
		return ruleViolation(RuleSoloRequired, "%s has not gone solo yet and must do so on their last captaincy", g.Name(cmd.Actor))
	}
	if !h.eligible(partner, cmd.Actor) {
		return ruleViolation(RuleEligibility, "the window to invite %s has closed", g.Name(partner)).
			With("partner", partner)
	}
	return nil
}

func applyRequestPartner(g *Game, cmd Command, _ *effects) (string, error) {
	h := g.Hole
	h.Negotiation.Offer = &PartnerOffer{From: cmd.Actor, To: cmd.Payload.Partner, Seq: h.ShotSeq}
	return fmt.Sprintf("%s asks %s to be their partner", g.Name(cmd.Actor), g.Name(cmd.Payload.Partner)), nil
}

func checkRespondPartnership(g *Game, cmd Command) error {
	offer := g.Hole.Negotiation.Offer
	if offer == nil {
		return ruleViolation(RuleFormation, "no partnership invitation is open")
	}
	if cmd.Actor != offer.To {
		return ruleViolation(RuleWrongActor, "the invitation is addressed to %s", g.Name(offer.To))
	}
	if g.bigDickPending() {
		return ruleViolation(RulePendingDecision, "the Big Dick must be answered first")
	}
	return nil
}

func applyRespondPartnership(g *Game, cmd Command, fx *effects) (string, error) {
	offer := *g.Hole.Negotiation.Offer
	if cmd.Payload.Accept {
		if err := g.finishTeam([]PlayerID{offer.From, offer.To}, "", fx); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s accepts %s's invitation", g.Name(offer.To), g.Name(offer.From)), nil
	}
	if err := g.finishTeam([]PlayerID{offer.From}, SoloDeclined, fx); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s declines, %s plays alone", g.Name(offer.To), g.Name(offer.From)), nil
}

func checkDeclareSolo(g *Game, cmd Command) error {
	return g.checkNegotiator(cmd.Actor)
}

func applyDeclareSolo(g *Game, cmd Command, fx *effects) (string, error) {
	h := g.Hole
	duncan := h.Negotiation.Stage == StageCaptain && !h.captainTeed()
	if duncan {
		h.Betting.note(ModDuncan, 1.5, cmd.Actor, h.ShotSeq)
	}
	if err := g.finishTeam([]PlayerID{cmd.Actor}, SoloDeclared, fx); err != nil {
		return "", err
	}
	if duncan {
		return fmt.Sprintf("%s goes solo before teeing off: the Duncan", g.Name(cmd.Actor)), nil
	}
	return fmt.Sprintf("%s goes solo", g.Name(cmd.Actor)), nil
}

// unteamed lists non-Aardvarks not yet on a team, in hitting order.
func (g *Game) unteamed(exclude []PlayerID) []PlayerID {
	h := g.Hole
	var out []PlayerID
	for _, p := range h.HittingOrder {
		if h.isAardvark(p) || h.onTeam(p) || funk.Contains(exclude, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// finishTeam closes the current negotiation with team. A non-empty solo
// origin means the negotiator plays alone, doubling the wager.
func (g *Game) finishTeam(team []PlayerID, solo SoloOrigin, fx *effects) error {
	h := g.Hole
	neg := &h.Negotiation
	neg.Offer = nil
	if solo != "" {
		h.Betting.compound(ModSolo, 2, team[0], h.ShotSeq)
	}
	rest := g.unteamed(team)

	switch neg.Stage {
	case StageCaptain:
		neg.Teams = [][]PlayerID{team}
		neg.CaptainSolo = solo
		switch len(h.Aardvarks) {
		case 0:
			neg.Teams = append(neg.Teams, rest)
			return g.finalizeTeams(fx)
		case 1:
			neg.Teams = append(neg.Teams, rest)
			g.openAardvarkPhase(fx)
			return nil
		}
		neg.Stage = StageSecondCaptain
		neg.Negotiator = rest[0]
		fx.add("%s captains the second team", g.Name(rest[0]))
	case StageSecondCaptain:
		neg.Teams = append(neg.Teams, team, rest)
		g.openAardvarkPhase(fx)
	default:
		return fmt.Errorf("finish team in stage %q", neg.Stage)
	}
	return nil
}

func (g *Game) openAardvarkPhase(fx *effects) {
	h := g.Hole
	neg := &h.Negotiation
	neg.Stage = StageAardvark
	neg.Negotiator = ""
	teams := funk.Filter(neg.Teams, func(t []PlayerID) bool { return len(t) > 0 }).([][]PlayerID)
	h.Formation = AardvarkPending{Teams: teams, Aardvarks: slices.Clone(h.Aardvarks)}
	fx.add("Aardvarks may now ask to join a team")
}

func (g *Game) aardvarkStatus(p PlayerID) *AardvarkStatus {
	for i := range g.Hole.Negotiation.Aardvarks {
		if g.Hole.Negotiation.Aardvarks[i].Player == p {
			return &g.Hole.Negotiation.Aardvarks[i]
		}
	}
	return nil
}

func (g *Game) checkAardvark(actor PlayerID) (*AardvarkStatus, error) {
	h := g.Hole
	st := g.aardvarkStatus(actor)
	if st == nil {
		return nil, ruleViolation(RuleAardvark, "%s is not an Aardvark on this hole", g.Name(actor))
	}
	if st.Settled || h.Negotiation.Stage == StageDone {
		return nil, ruleViolation(RuleAardvark, "%s has already settled on a team", g.Name(actor))
	}
	if st.Asked >= 0 {
		return nil, ruleViolation(RulePendingDecision, "team %d has not answered %s yet", st.Asked+1, g.Name(actor))
	}
	if g.bigDickPending() {
		return nil, ruleViolation(RulePendingDecision, "the Big Dick must be answered first")
	}
	if !h.aardvarkWindowOpen() {
		return nil, ruleViolation(RuleEligibility, "the Aardvark window has closed")
	}
	return st, nil
}

func checkAardvarkRequest(g *Game, cmd Command) error {
	st, err := g.checkAardvark(cmd.Actor)
	if err != nil {
		return err
	}
	if g.Hole.Negotiation.Stage != StageAardvark {
		return ruleViolation(RuleAardvark, "the teams have not formed yet")
	}
	team := cmd.Payload.Team - 1
	if team != teamA && team != teamB {
		return validationError("payload.team", "team must be 1 or 2")
	}
	if st.tossedBy(team) {
		return ruleViolation(RuleAardvark, "team %d has already tossed %s", team+1, g.Name(cmd.Actor))
	}
	return nil
}

func applyAardvarkRequest(g *Game, cmd Command, _ *effects) (string, error) {
	st := g.aardvarkStatus(cmd.Actor)
	st.Asked = cmd.Payload.Team - 1
	st.AskSeq = g.Hole.ShotSeq
	return fmt.Sprintf("%s asks to join team %d", g.Name(cmd.Actor), cmd.Payload.Team), nil
}

// askedOf returns the Aardvarks waiting on the team actor answers for.
func (g *Game) askedOf(actor PlayerID) []*AardvarkStatus {
	neg := &g.Hole.Negotiation
	var out []*AardvarkStatus
	for i := range neg.Aardvarks {
		st := &neg.Aardvarks[i]
		if st.Settled || st.Asked < 0 || st.Asked >= len(neg.Teams) {
			continue
		}
		if team := neg.Teams[st.Asked]; len(team) > 0 && team[0] == actor {
			out = append(out, st)
		}
	}
	return out
}

func (g *Game) pendingAsk(cmd Command) *AardvarkStatus {
	for _, st := range g.askedOf(cmd.Actor) {
		if cmd.Payload.Player == "" || st.Player == cmd.Payload.Player {
			return st
		}
	}
	return nil
}

func checkAardvarkRespond(g *Game, cmd Command) error {
	if g.Hole.Negotiation.Stage != StageAardvark {
		return ruleViolation(RuleAardvark, "no Aardvark is waiting for an answer")
	}
	if g.pendingAsk(cmd) == nil {
		return ruleViolation(RuleWrongActor, "no Aardvark is waiting on %s", g.Name(cmd.Actor))
	}
	return nil
}

func applyAardvarkRespond(g *Game, cmd Command, fx *effects) (string, error) {
	h := g.Hole
	st := g.pendingAsk(cmd)
	asked := st.Asked
	var narration string
	if cmd.Payload.Accept {
		st.Team, st.Asked, st.Settled = asked, -1, true
		narration = fmt.Sprintf("team %d takes %s", asked+1, g.Name(st.Player))
	} else {
		st.TossedBy = append(st.TossedBy, asked)
		h.Betting.compound(ModAardvarkToss, 2, cmd.Actor, h.ShotSeq)
		other := 1 - asked
		if st.tossedBy(other) {
			st.Team, st.Asked, st.Settled = other, -1, true
			narration = fmt.Sprintf("team %d tosses %s back to team %d", asked+1, g.Name(st.Player), other+1)
		} else {
			st.Asked, st.AskSeq = other, h.ShotSeq
			narration = fmt.Sprintf("team %d tosses %s to team %d", asked+1, g.Name(st.Player), other+1)
			fx.add("team %d may toss %s back", other+1, g.Name(st.Player))
		}
	}
	if err := g.maybeFinishAardvarks(fx); err != nil {
		return "", err
	}
	return narration, nil
}

func checkAardvarkSolo(g *Game, cmd Command) error {
	_, err := g.checkAardvark(cmd.Actor)
	return err
}

func applyAardvarkSolo(g *Game, cmd Command, fx *effects) (string, error) {
	h := g.Hole
	neg := &h.Negotiation
	tunkarri := !h.captainTeed()
	if tunkarri {
		h.Betting.note(ModTunkarri, 1.5, cmd.Actor, h.ShotSeq)
	}
	h.Betting.compound(ModSolo, 2, cmd.Actor, h.ShotSeq)
	neg.Offer = nil
	neg.Negotiator = ""
	neg.Stage = StageDone
	for i := range neg.Aardvarks {
		neg.Aardvarks[i].Asked = -1
		neg.Aardvarks[i].Settled = true
	}
	others := funk.Filter(h.HittingOrder, func(p PlayerID) bool { return p != cmd.Actor }).([]PlayerID)
	h.Formation = Solo{Player: cmd.Actor, Opponents: others, Origin: SoloAardvark}
	if err := g.formationFinal(fx); err != nil {
		return "", err
	}
	if tunkarri {
		return fmt.Sprintf("%s takes on the field before the captain tees off: the Tunkarri", g.Name(cmd.Actor)), nil
	}
	return fmt.Sprintf("%s takes on the field alone", g.Name(cmd.Actor)), nil
}

// maybeFinishAardvarks places settled Aardvarks and finalizes the teams
// once every Aardvark has settled.
func (g *Game) maybeFinishAardvarks(fx *effects) error {
	neg := &g.Hole.Negotiation
	if neg.Stage != StageAardvark {
		return nil
	}
	for _, st := range neg.Aardvarks {
		if !st.Settled {
			return nil
		}
	}
	for _, st := range neg.Aardvarks {
		for len(neg.Teams) <= st.Team {
			neg.Teams = append(neg.Teams, nil)
		}
		neg.Teams[st.Team] = append(neg.Teams[st.Team], st.Player)
	}
	return g.finalizeTeams(fx)
}

// finalizeTeams turns the negotiated teams into a final formation.
func (g *Game) finalizeTeams(fx *effects) error {
	h := g.Hole
	neg := &h.Negotiation
	sides := funk.Filter(neg.Teams, func(t []PlayerID) bool { return len(t) > 0 }).([][]PlayerID)
	switch len(sides) {
	case 2:
		captains := sides[0]
		if len(captains) == 1 {
			origin := neg.CaptainSolo
			if origin == "" {
				origin = SoloLapsed
			}
			h.Formation = Solo{Player: captains[0], Opponents: sides[1], Origin: origin}
		} else {
			h.Formation = Partners{Captain: captains[0], Partners: slices.Clone(captains[1:]), Opponents: sides[1]}
		}
	case 3:
		h.Formation = ThreeWay{Teams: [3][]PlayerID{sides[0], sides[1], sides[2]}}
	default:
		return ruleViolation(RuleCoverage, "%d sides formed", len(sides))
	}
	neg.Stage = StageDone
	neg.Negotiator = ""
	return g.formationFinal(fx)
}

// formationFinal checks coverage of a final formation and books solo play.
func (g *Game) formationFinal(fx *effects) error {
	h := g.Hole
	if err := checkCoverage(h.Formation, h.participants()); err != nil {
		return err
	}
	if solo, ok := h.Formation.(Solo); ok && solo.Origin != SoloHeadToHead {
		g.Player(solo.Player).SoloCount++
	}
	fx.add("teams set: %s", g.describeSides(h.Formation.Sides()))
	return nil
}

// resolveFormation applies lapsed windows and unanswered asks after a
// command. It loops because one lapse can open the next stage.
func (g *Game) resolveFormation(fx *effects) error {
	h := g.Hole
	neg := &h.Negotiation
	for {
		switch neg.Stage {
		case StageCaptain, StageSecondCaptain:
			if g.bigDickPending() {
				return nil
			}
			if offer := neg.Offer; offer != nil {
				if h.eligible(offer.To, offer.From) {
					return nil
				}
				fx.add("%s's invitation to %s lapsed", g.Name(offer.From), g.Name(offer.To))
				if err := g.finishTeam([]PlayerID{offer.From}, SoloLapsed, fx); err != nil {
					return err
				}
				continue
			}
			open := slices.ContainsFunc(h.candidates(), func(p PlayerID) bool {
				return h.eligible(p, neg.Negotiator)
			})
			if open {
				return nil
			}
			if neg.Stage == StageCaptain {
				fx.add("%s ran out of partners and plays alone", g.Name(neg.Negotiator))
				if err := g.finishTeam([]PlayerID{neg.Negotiator}, SoloLapsed, fx); err != nil {
					return err
				}
				continue
			}
			fx.add("%s's team is the remaining players", g.Name(neg.Negotiator))
			if err := g.finishTeam(g.unteamed(nil), "", fx); err != nil {
				return err
			}
		case StageAardvark:
			if g.bigDickPending() {
				return nil
			}
			for i := range neg.Aardvarks {
				st := &neg.Aardvarks[i]
				if st.Settled || st.Asked < 0 || !h.shotSince(st.AskSeq) {
					continue
				}
				st.Team, st.Asked, st.Settled = st.Asked, -1, true
				fx.add("team %d took %s without answering", st.Team+1, g.Name(st.Player))
			}
			if !h.aardvarkWindowOpen() {
				fallback := teamB
				if len(h.HittingOrder) == 6 {
					fallback = teamC
				}
				for i := range neg.Aardvarks {
					st := &neg.Aardvarks[i]
					if st.Settled {
						continue
					}
					st.Team, st.Asked, st.Settled = fallback, -1, true
					fx.add("%s missed the Aardvark window and joins team %d", g.Name(st.Player), fallback+1)
				}
			}
			return g.maybeFinishAardvarks(fx)
		default:
			return nil
		}
	}
}

func (g *Game) describeSides(sides [][]PlayerID) string {
	var s string
	for i, side := range sides {
		if i > 0 {
			s += " vs "
		}
		for j, p := range side {
			if j > 0 {
				s += "+"
			}
			s += g.Name(p)
		}
	}
	return s
}
