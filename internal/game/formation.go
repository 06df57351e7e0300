package game

import (
	"encoding/json"
	"fmt"

	"github.com/thoas/go-funk"
)

// FormationKind tags the Formation variants on the wire.
type FormationKind string

const (
	FormationPending         FormationKind = "pending"
	FormationPartners        FormationKind = "partners"
	FormationSolo            FormationKind = "solo"
	FormationAardvarkPending FormationKind = "aardvark_pending"
	FormationThreeWay        FormationKind = "three_way"
)

// Formation is the team structure for a hole. It is one of Pending,
// Partners, Solo, AardvarkPending or ThreeWay.
type Formation interface {
	Kind() FormationKind
	// Sides lists the sides in play. Pending formations have none.
	Sides() [][]PlayerID
	// Final reports whether every player is on exactly one side.
	Final() bool
	formation()
}

// Pending means the captain has not decided.
type Pending struct{}

// Partners is a captain with one or more partners against the rest.
type Partners struct {
	Captain   PlayerID   `json:"captain"`
	Partners  []PlayerID `json:"partners"`
	Opponents []PlayerID `json:"opponents"`
}

// SoloOrigin says how a player ended up alone.
type SoloOrigin string

const (
	SoloDeclared   SoloOrigin = "declared"
	SoloDeclined   SoloOrigin = "declined"
	SoloLapsed     SoloOrigin = "lapsed"
	SoloHeadToHead SoloOrigin = "head_to_head"
	SoloAardvark   SoloOrigin = "aardvark"
	SoloBigDick    SoloOrigin = "big_dick"
)

// Solo is one player against the best ball of everyone else in the hole.
type Solo struct {
	Player    PlayerID   `json:"player"`
	Opponents []PlayerID `json:"opponents"`
	Origin    SoloOrigin `json:"origin"`
}

// AardvarkPending holds the teams formed so far while Aardvarks decide.
type AardvarkPending struct {
	Teams     [][]PlayerID `json:"teams"`
	Aardvarks []PlayerID   `json:"aardvarks"`
}

// ThreeWay is the six-player case where three sides each play the others.
type ThreeWay struct {
	Teams [3][]PlayerID `json:"teams"`
}

func (Pending) Kind() FormationKind         { return FormationPending }
func (Partners) Kind() FormationKind        { return FormationPartners }
func (Solo) Kind() FormationKind            { return FormationSolo }
func (AardvarkPending) Kind() FormationKind { return FormationAardvarkPending }
func (ThreeWay) Kind() FormationKind        { return FormationThreeWay }

func (Pending) Sides() [][]PlayerID { return nil }

func (f Partners) Sides() [][]PlayerID {
	return [][]PlayerID{append([]PlayerID{f.Captain}, f.Partners...), f.Opponents}
}

func (f Solo) Sides() [][]PlayerID {
	return [][]PlayerID{{f.Player}, f.Opponents}
}

func (f AardvarkPending) Sides() [][]PlayerID { return f.Teams }

func (f ThreeWay) Sides() [][]PlayerID { return f.Teams[:] }

func (Pending) Final() bool         { return false }
func (Partners) Final() bool        { return true }
func (Solo) Final() bool            { return true }
func (AardvarkPending) Final() bool { return false }
func (ThreeWay) Final() bool        { return true }

func (Pending) formation()         {}
func (Partners) formation()        {}
func (Solo) formation()            {}
func (AardvarkPending) formation() {}
func (ThreeWay) formation()        {}

// sideOf returns the index of the side holding p, or -1.
func sideOf(f Formation, p PlayerID) int {
	for i, side := range f.Sides() {
		if funk.Contains(side, p) {
			return i
		}
	}
	return -1
}

// checkCoverage verifies every player appears on exactly one side.
func checkCoverage(f Formation, players []PlayerID) error {
	seen := make(map[PlayerID]int, len(players))
	for _, side := range f.Sides() {
		if len(side) == 0 {
			return ruleViolation(RuleCoverage, "%s formation has an empty side", f.Kind())
		}
		for _, p := range side {
			seen[p]++
		}
	}
	for _, p := range players {
		switch seen[p] {
		case 0:
			return ruleViolation(RuleCoverage, "player %s is on no side", p).With("player", p)
		case 1:
		default:
			return ruleViolation(RuleCoverage, "player %s is on more than one side", p).With("player", p)
		}
	}
	if len(seen) != len(players) {
		return ruleViolation(RuleCoverage, "formation names players outside the hole")
	}
	return nil
}

type formationEnvelope struct {
	Kind FormationKind   `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

func marshalFormation(f Formation) ([]byte, error) {
	if f == nil {
		f = Pending{}
	}
	var env formationEnvelope
	env.Kind = f.Kind()
	if _, ok := f.(Pending); !ok {
		data, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

func unmarshalFormation(data []byte) (Formation, error) {
	var env formationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	decode := func(v any) error {
		if len(env.Data) == 0 {
			return fmt.Errorf("formation %q has no data", env.Kind)
		}
		return json.Unmarshal(env.Data, v)
	}
	switch env.Kind {
	case FormationPending, "":
		return Pending{}, nil
	case FormationPartners:
		var f Partners
		if err := decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case FormationSolo:
		var f Solo
		if err := decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case FormationAardvarkPending:
		var f AardvarkPending
		if err := decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case FormationThreeWay:
		var f ThreeWay
		if err := decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	}
	return nil, fmt.Errorf("unknown formation kind %q", env.Kind)
}
