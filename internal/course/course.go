// Package course reads the course, roster and script files the command line
// tools feed into the engine.
package course

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/handicap"
)

// Course is a named set of 18 holes.
type Course struct {
	Name  string          `toml:"name"`
	Holes []game.HoleInfo `toml:"holes"`
}

// Roster is the list of players for a round.
type Roster struct {
	Players []game.RosterEntry `toml:"players"`
}

// DecodeCourse reads a course from TOML and validates it.
func DecodeCourse(r io.Reader) (*Course, error) {
	var c Course
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, fmt.Errorf("decode course: %w", err)
	}
	if err := undecoded(md); err != nil {
		return nil, err
	}
	if err := game.ValidateCourse(c.Holes); err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeRoster reads a roster from TOML and validates it.
func DecodeRoster(r io.Reader) (*Roster, error) {
	var ro Roster
	md, err := toml.NewDecoder(r).Decode(&ro)
	if err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if err := undecoded(md); err != nil {
		return nil, err
	}
	for i := range ro.Players {
		if ro.Players[i].Name == "" {
			ro.Players[i].Name = string(ro.Players[i].ID)
		}
	}
	if err := game.ValidateRoster(ro.Players); err != nil {
		return nil, err
	}
	return &ro, nil
}

// LoadCourse reads a course file.
func LoadCourse(path string) (*Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := DecodeCourse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadRoster reads a roster file.
func LoadRoster(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ro, err := DecodeRoster(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ro, nil
}

func undecoded(md toml.MetaData) error {
	if keys := md.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("unknown key %q", keys[0].String())
	}
	return nil
}

// Encode writes a course as TOML.
func (c *Course) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(c)
}

// StrokeTable returns, per player, the strokes received on each hole of the
// course in playing order.
func StrokeTable(c *Course, players []game.RosterEntry, mode handicap.Mode) map[game.PlayerID][]float64 {
	raw := make([]float64, len(players))
	for i, p := range players {
		raw[i] = p.Handicap
	}
	net := handicap.NetHandicaps(raw, mode)

	table := make(map[game.PlayerID][]float64, len(players))
	for i, p := range players {
		row := make([]float64, len(c.Holes))
		for h, hole := range c.Holes {
			row[h] = handicap.StrokesFor(net[i], hole.StrokeIndex)
		}
		table[p.ID] = row
	}
	return table
}

//go:embed standard.toml
var standardTOML string

// Standard returns the built-in par 72 course used when no course file is
// given.
func Standard() *Course {
	c, err := DecodeCourse(strings.NewReader(standardTOML))
	if err != nil {
		panic(fmt.Sprintf("course: built-in course invalid: %v", err))
	}
	return c
}
