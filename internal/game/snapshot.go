package game

import (
	"encoding/json"
	"fmt"
)

// Snapshot serializes the entire game, including the hole in progress, its
// betting state and the timeline.
func Snapshot(g *Game) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("snapshot game %s: %w", g.ID, err)
	}
	return data, nil
}

// Restore rebuilds a game from a snapshot.
func Restore(data []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("restore game: %w", err)
	}
	if g.Hole == nil {
		return nil, fmt.Errorf("restore game %s: no hole state", g.ID)
	}
	if len(g.Players) != len(g.TossOrder) {
		return nil, fmt.Errorf("restore game %s: %d players but toss order of %d", g.ID, len(g.Players), len(g.TossOrder))
	}
	return &g, nil
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() (*Game, error) {
	data, err := Snapshot(g)
	if err != nil {
		return nil, err
	}
	return Restore(data)
}
