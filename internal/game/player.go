package game

import (
	"fmt"

	"github.com/lox/wolfgoatpig/internal/handicap"
	"github.com/lox/wolfgoatpig/internal/rotation"
)

// PlayerID identifies a player for the lifetime of a game.
type PlayerID string

// Role is a player's job on the current hole.
type Role string

const (
	RoleNone     Role = ""
	RoleCaptain  Role = "captain"
	RoleAardvark Role = "aardvark"
	RoleGoat     Role = "goat"
)

// Player represents a player in a game
type Player struct {
	ID        PlayerID `json:"id"`
	Name      string   `json:"name"`
	Handicap  float64  `json:"handicap"`
	Points    float64  `json:"points"`     // running total in quarters
	FloatUsed bool     `json:"float_used"` // one float per round
	SoloCount int      `json:"solo_count"` // holes played alone
	Role      Role     `json:"role,omitempty"`
}

// RosterEntry is what the roster collaborator supplies at game start.
type RosterEntry struct {
	ID       PlayerID `json:"id" toml:"id"`
	Name     string   `json:"name" toml:"name"`
	Handicap float64  `json:"handicap" toml:"handicap"`
}

// HoleInfo is what the course collaborator supplies for each hole.
type HoleInfo struct {
	Par         int `json:"par" toml:"par"`
	StrokeIndex int `json:"stroke_index" toml:"stroke_index"`
	Yardage     int `json:"yardage" toml:"yardage"`
}

// ValidateRoster checks player count, identities and handicaps.
func ValidateRoster(roster []RosterEntry) error {
	if len(roster) < rotation.MinPlayers || len(roster) > rotation.MaxPlayers {
		return validationError("roster", "player count %d out of range %d-%d",
			len(roster), rotation.MinPlayers, rotation.MaxPlayers)
	}
	seen := make(map[PlayerID]bool, len(roster))
	for i, r := range roster {
		field := fmt.Sprintf("roster[%d]", i)
		if r.ID == "" {
			return validationError(field+".id", "player id is required")
		}
		if seen[r.ID] {
			return validationError(field+".id", "duplicate player id %q", r.ID)
		}
		seen[r.ID] = true
		if err := handicap.ValidateHandicap(r.Handicap); err != nil {
			return validationError(field+".handicap", "%v", err)
		}
	}
	return nil
}

// ValidateCourse checks the course has 18 holes and each stroke index 1-18
// is used exactly once.
func ValidateCourse(course []HoleInfo) error {
	if len(course) != rotation.Holes {
		return validationError("course", "course must have %d holes, got %d", rotation.Holes, len(course))
	}
	seen := make(map[int]bool, len(course))
	for i, h := range course {
		field := fmt.Sprintf("course[%d]", i)
		if err := handicap.ValidateStrokeIndex(h.StrokeIndex); err != nil {
			return validationError(field+".stroke_index", "%v", err)
		}
		if seen[h.StrokeIndex] {
			return validationError(field+".stroke_index", "stroke index %d used twice", h.StrokeIndex)
		}
		seen[h.StrokeIndex] = true
		if h.Par < 3 || h.Par > 6 {
			return validationError(field+".par", "par %d out of range 3-6", h.Par)
		}
		if h.Yardage <= 0 {
			return validationError(field+".yardage", "yardage must be positive")
		}
	}
	return nil
}

// ValidateHoleNumber checks a hole number is 1-18.
func ValidateHoleNumber(n int) error {
	if n < 1 || n > rotation.Holes {
		return validationError("hole", "hole number %d out of range 1-%d", n, rotation.Holes)
	}
	return nil
}
