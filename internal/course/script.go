package course

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lox/wolfgoatpig/internal/game"
)

// Step is one scripted command. Payload fields sit beside kind and actor so
// scripts stay flat.
type Step struct {
	Kind       string         `toml:"kind"`
	Actor      string         `toml:"actor"`
	Partner    string         `toml:"partner,omitempty"`
	Accept     bool           `toml:"accept,omitempty"`
	Distance   *int           `toml:"distance,omitempty"`
	Holed      bool           `toml:"holed,omitempty"`
	Player     string         `toml:"player,omitempty"`
	Scores     map[string]int `toml:"scores,omitempty"`
	Rule       string         `toml:"rule,omitempty"`
	Quarters   int            `toml:"quarters,omitempty"`
	Position   int            `toml:"position,omitempty"`
	Team       int            `toml:"team,omitempty"`
	TargetSide int            `toml:"target_side,omitempty"`
}

// Script is an ordered list of commands replayed against a game.
type Script struct {
	Seed  int64  `toml:"seed"`
	Steps []Step `toml:"step"`
}

// Command converts the step into an engine command.
func (s Step) Command() game.Command {
	cmd := game.Command{
		Kind:  game.ActionKind(s.Kind),
		Actor: game.PlayerID(s.Actor),
		Payload: game.Payload{
			Partner:    game.PlayerID(s.Partner),
			Accept:     s.Accept,
			Distance:   s.Distance,
			Holed:      s.Holed,
			Player:     game.PlayerID(s.Player),
			Rule:       game.SpecialRule(s.Rule),
			Quarters:   s.Quarters,
			Position:   s.Position,
			Team:       s.Team,
			TargetSide: s.TargetSide,
		},
	}
	if len(s.Scores) > 0 {
		cmd.Payload.Scores = make(map[game.PlayerID]int, len(s.Scores))
		for id, v := range s.Scores {
			cmd.Payload.Scores[game.PlayerID(id)] = v
		}
	}
	return cmd
}

// Commands returns the script's steps as engine commands.
func (s *Script) Commands() []game.Command {
	out := make([]game.Command, len(s.Steps))
	for i, step := range s.Steps {
		out[i] = step.Command()
	}
	return out
}

// DecodeScript reads a script from TOML.
func DecodeScript(r io.Reader) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := undecoded(md); err != nil {
		return nil, err
	}
	for i, step := range s.Steps {
		if step.Kind == "" || step.Actor == "" {
			return nil, fmt.Errorf("step %d: kind and actor are required", i+1)
		}
	}
	return &s, nil
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := DecodeScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
