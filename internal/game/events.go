package game

import (
	"fmt"
	"time"
)

// EventKind tags a timeline event.
type EventKind string

// EventKind constants for the timeline. Every accepted command produces one
// event of the matching kind.
const (
	EventGameStarted         EventKind = "game_started"
	EventShotPlayed          EventKind = "shot_played"
	EventBallConceded        EventKind = "ball_conceded"
	EventPartnerRequested    EventKind = "partner_requested"
	EventPartnershipAnswered EventKind = "partnership_answered"
	EventSoloDeclared        EventKind = "solo_declared"
	EventAardvarkRequested   EventKind = "aardvark_requested"
	EventAardvarkAnswered    EventKind = "aardvark_answered"
	EventAardvarkSolo        EventKind = "aardvark_solo"
	EventDoubleOffered       EventKind = "double_offered"
	EventDoubleAnswered      EventKind = "double_answered"
	EventSpecialInvoked      EventKind = "special_invoked"
	EventBigDickAnswered     EventKind = "big_dick_answered"
	EventPositionChosen      EventKind = "position_chosen"
	EventWagerSet            EventKind = "wager_set"
	EventScoresSubmitted     EventKind = "scores_submitted"
)

var eventKinds = map[ActionKind]EventKind{
	ActionPlayShot:           EventShotPlayed,
	ActionConcede:            EventBallConceded,
	ActionRequestPartner:     EventPartnerRequested,
	ActionRespondPartnership: EventPartnershipAnswered,
	ActionDeclareSolo:        EventSoloDeclared,
	ActionAardvarkRequest:    EventAardvarkRequested,
	ActionAardvarkRespond:    EventAardvarkAnswered,
	ActionAardvarkSolo:       EventAardvarkSolo,
	ActionOfferDouble:        EventDoubleOffered,
	ActionRespondDouble:      EventDoubleAnswered,
	ActionInvokeSpecial:      EventSpecialInvoked,
	ActionRespondBigDick:     EventBigDickAnswered,
	ActionChoosePosition:     EventPositionChosen,
	ActionSetWager:           EventWagerSet,
	ActionSubmitScores:       EventScoresSubmitted,
}

// String returns the string representation of the event kind
func (k EventKind) String() string {
	return string(k)
}

// TimelineEvent is an immutable record of one state transition.
type TimelineEvent struct {
	Seq         int            `json:"seq"`
	Time        time.Time      `json:"time"`
	Kind        EventKind      `json:"kind"`
	Actor       PlayerID       `json:"actor,omitempty"`
	Hole        int            `json:"hole"`
	Description string         `json:"description"`
	Detail      map[string]any `json:"detail,omitempty"`
}

// Effects returns the secondary effects recorded with the event.
func (e TimelineEvent) Effects() []string {
	switch v := e.Detail["effects"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			out = append(out, fmt.Sprint(s))
		}
		return out
	}
	return nil
}

// effects collects the knock-on results of a command: lapsed windows,
// auto-accepted offers, closures and hole changes.
type effects struct {
	notes []string
}

func (fx *effects) add(format string, args ...any) {
	fx.notes = append(fx.notes, fmt.Sprintf(format, args...))
}

// appendEvent stamps and records an event on the game's timeline.
func (g *Game) appendEvent(ev TimelineEvent) TimelineEvent {
	ev.Seq = len(g.Timeline) + 1
	g.Timeline = append(g.Timeline, ev)
	return ev
}
