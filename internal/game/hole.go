package game

import (
	"encoding/json"
	"slices"

	"github.com/thoas/go-funk"
)

// DistanceClass buckets a ball's distance to the pin for display.
type DistanceClass string

const (
	ClassTee      DistanceClass = "tee"
	ClassLong     DistanceClass = "long"
	ClassApproach DistanceClass = "approach"
	ClassShort    DistanceClass = "short"
	ClassHoled    DistanceClass = "holed"
	ClassConceded DistanceClass = "conceded"
)

// Ball tracks one player's ball on the current hole.
type Ball struct {
	Strokes  int  `json:"strokes"`
	Distance int  `json:"distance"` // yards to the pin
	Holed    bool `json:"holed,omitempty"`
	Conceded bool `json:"conceded,omitempty"`
	TeeSeq   int  `json:"tee_seq,omitempty"` // shot sequence of the tee shot, 0 before teeing
}

// InPlay reports whether the ball still has to be played.
func (b *Ball) InPlay() bool {
	return !b.Holed && !b.Conceded
}

// Teed reports whether the tee shot has been struck.
func (b *Ball) Teed() bool {
	return b.TeeSeq > 0
}

// Class returns the distance bucket.
func (b *Ball) Class() DistanceClass {
	switch {
	case b.Holed:
		return ClassHoled
	case b.Conceded:
		return ClassConceded
	case !b.Teed():
		return ClassTee
	case b.Distance > 150:
		return ClassLong
	case b.Distance > 30:
		return ClassApproach
	default:
		return ClassShort
	}
}

// Shot is one recorded stroke.
type Shot struct {
	Seq      int      `json:"seq"`
	Player   PlayerID `json:"player"`
	Tee      bool     `json:"tee,omitempty"`
	Distance int      `json:"distance"`
	Holed    bool     `json:"holed,omitempty"`
}

// Stage is where team formation has got to on a hole.
type Stage string

const (
	StageCaptain       Stage = "captain"
	StageSecondCaptain Stage = "second_captain"
	StageAardvark      Stage = "aardvark"
	StageDone          Stage = "done"
)

// PartnerOffer is a captain's request waiting for an answer.
type PartnerOffer struct {
	From PlayerID `json:"from"`
	To   PlayerID `json:"to"`
	Seq  int      `json:"seq"`
}

// Aardvark sides. Team C only exists in six-player games.
const (
	teamA = 0
	teamB = 1
	teamC = 2
)

// AardvarkStatus tracks one Aardvark through the join and toss sub-phase.
type AardvarkStatus struct {
	Player   PlayerID `json:"player"`
	Team     int      `json:"team"`  // team index once settled, -1 before
	Asked    int      `json:"asked"` // team currently asked, -1 when no ask is open
	AskSeq   int      `json:"ask_seq,omitempty"`
	TossedBy []int    `json:"tossed_by,omitempty"`
	Settled  bool     `json:"settled"`
}

func (a *AardvarkStatus) tossedBy(team int) bool {
	return slices.Contains(a.TossedBy, team)
}

// Negotiation is the team formation state machine for a hole.
type Negotiation struct {
	Stage       Stage            `json:"stage"`
	Negotiator  PlayerID         `json:"negotiator,omitempty"`
	Offer       *PartnerOffer    `json:"offer,omitempty"`
	Teams       [][]PlayerID     `json:"teams,omitempty"`
	Aardvarks   []AardvarkStatus `json:"aardvarks,omitempty"`
	CaptainSolo SoloOrigin       `json:"captain_solo,omitempty"`
}

// GoatChoice tracks the Hoepfinger Goat's pre-hole choices.
type GoatChoice struct {
	Open     bool `json:"open"`
	Position bool `json:"position,omitempty"`
	Wager    bool `json:"wager,omitempty"`
}

// HoleState is the single mutable state of the hole being played.
type HoleState struct {
	Number           int                `json:"number"`
	Par              int                `json:"par"`
	StrokeIndex      int                `json:"stroke_index"`
	Yardage          int                `json:"yardage"`
	HittingOrder     []PlayerID         `json:"hitting_order"`
	Captain          PlayerID           `json:"captain"`
	Goat             PlayerID           `json:"goat"`
	Aardvarks        []PlayerID         `json:"aardvarks,omitempty"`
	Formation        Formation          `json:"-"`
	Negotiation      Negotiation        `json:"negotiation"`
	Betting          BettingState       `json:"betting"`
	Balls            map[PlayerID]*Ball `json:"balls"`
	Shots            []Shot             `json:"shots,omitempty"`
	ShotSeq          int                `json:"shot_seq"`
	Scores           map[PlayerID]int   `json:"scores,omitempty"`
	TeeShotsComplete bool               `json:"tee_shots_complete"`
	Complete         bool               `json:"complete"`
	GoatChoice       GoatChoice         `json:"goat_choice"`
}

type holeStateJSON HoleState

// MarshalJSON encodes the formation as a tagged variant.
func (h *HoleState) MarshalJSON() ([]byte, error) {
	f, err := marshalFormation(h.Formation)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		*holeStateJSON
		Formation json.RawMessage `json:"formation"`
	}{(*holeStateJSON)(h), f})
}

// UnmarshalJSON decodes the tagged formation variant.
func (h *HoleState) UnmarshalJSON(data []byte) error {
	aux := struct {
		*holeStateJSON
		Formation json.RawMessage `json:"formation"`
	}{holeStateJSON: (*holeStateJSON)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f, err := unmarshalFormation(aux.Formation)
	if err != nil {
		return err
	}
	h.Formation = f
	return nil
}

func newHoleState(number int, info HoleInfo, order []PlayerID) *HoleState {
	h := &HoleState{
		Number:       number,
		Par:          info.Par,
		StrokeIndex:  info.StrokeIndex,
		Yardage:      info.Yardage,
		HittingOrder: order,
		Formation:    Pending{},
		Betting:      newBettingState(),
		Balls:        make(map[PlayerID]*Ball, len(order)),
	}
	for _, p := range order {
		h.Balls[p] = &Ball{Distance: info.Yardage}
	}
	h.setOrder(order)
	return h
}

// setOrder installs a hitting order and the roles it implies.
func (h *HoleState) setOrder(order []PlayerID) {
	h.HittingOrder = order
	h.Captain = order[0]
	h.Aardvarks = aardvarksOf(order)
}

// position returns p's 0-based hitting position.
func (h *HoleState) position(p PlayerID) int {
	return funk.IndexOf(h.HittingOrder, p)
}

func (h *HoleState) isAardvark(p PlayerID) bool {
	return funk.Contains(h.Aardvarks, p)
}

// ToAct returns the player due to hit next: the first player yet to tee,
// then the ball farthest from the hole with ties going to the earlier
// hitting position. It returns "" once every ball is in.
func (h *HoleState) ToAct() PlayerID {
	if h.Complete {
		return ""
	}
	for _, p := range h.HittingOrder {
		b := h.Balls[p]
		if !b.Teed() && b.InPlay() {
			return p
		}
	}
	var next PlayerID
	farthest := -1
	for _, p := range h.HittingOrder {
		b := h.Balls[p]
		if b.InPlay() && b.Distance > farthest {
			next, farthest = p, b.Distance
		}
	}
	return next
}

// allTeed reports whether every ball still in play has been struck from the tee.
func (h *HoleState) allTeed() bool {
	for _, b := range h.Balls {
		if b.InPlay() && !b.Teed() {
			return false
		}
	}
	return true
}

func (h *HoleState) allIn() bool {
	for _, b := range h.Balls {
		if b.InPlay() {
			return false
		}
	}
	return true
}

// lineOfScrimmage is the distance of the ball farthest from the hole.
// Balls yet to tee sit at the hole's yardage.
func (h *HoleState) lineOfScrimmage() int {
	line := 0
	for _, b := range h.Balls {
		if b.InPlay() && b.Distance > line {
			line = b.Distance
		}
	}
	return line
}

// behindLine reports whether p has not passed the line of scrimmage.
func (h *HoleState) behindLine(p PlayerID) bool {
	b := h.Balls[p]
	return b.InPlay() && b.Distance >= h.lineOfScrimmage()
}

// eligible reports whether candidate's invitation window is still open for
// negotiator: the candidate has not played a second shot and nobody else
// has struck a ball since the candidate's tee shot.
func (h *HoleState) eligible(candidate, negotiator PlayerID) bool {
	b := h.Balls[candidate]
	if b.Strokes >= 2 {
		return false
	}
	if !b.Teed() {
		return true
	}
	for _, s := range h.Shots {
		if s.Seq > b.TeeSeq && s.Player != candidate && s.Player != negotiator {
			return false
		}
	}
	return true
}

// aardvarkWindowOpen reports whether no shot has been played from anywhere
// but the tee.
func (h *HoleState) aardvarkWindowOpen() bool {
	return !slices.ContainsFunc(h.Shots, func(s Shot) bool { return !s.Tee })
}

// captainTeed reports whether the captain has struck their tee shot.
func (h *HoleState) captainTeed() bool {
	return h.Balls[h.Captain].Teed()
}

// shotSince reports whether any shot was recorded after seq.
func (h *HoleState) shotSince(seq int) bool {
	return h.ShotSeq > seq
}

// candidates lists the players the current negotiator may still invite.
func (h *HoleState) candidates() []PlayerID {
	var out []PlayerID
	for _, p := range h.HittingOrder {
		if p == h.Negotiation.Negotiator || h.isAardvark(p) || h.onTeam(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (h *HoleState) onTeam(p PlayerID) bool {
	for _, t := range h.Negotiation.Teams {
		if funk.Contains(t, p) {
			return true
		}
	}
	return false
}

// active filters out players who forfeited their stake and left the hole.
func (h *HoleState) active(side []PlayerID) []PlayerID {
	return funk.Filter(side, func(p PlayerID) bool {
		return !h.Betting.forfeited(p)
	}).([]PlayerID)
}

// participants are the players on a side once formation is final: everyone
// except Big Dick decliners.
func (h *HoleState) participants() []PlayerID {
	bd := h.Betting.BigDick
	if bd == nil {
		return h.HittingOrder
	}
	return funk.Filter(h.HittingOrder, func(p PlayerID) bool {
		if p == bd.Player {
			return true
		}
		for _, r := range bd.Responses {
			if r.Player == p {
				return r.Accept
			}
		}
		return true
	}).([]PlayerID)
}

func aardvarksOf(order []PlayerID) []PlayerID {
	if len(order) < 5 {
		return nil
	}
	return slices.Clone(order[4:])
}
