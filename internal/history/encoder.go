// Package history exports completed holes as TOML scorecards.
package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/store"
)

// Build converts a game's archived holes into a scorecard. Players without a
// score on a hole (they forfeited before holing out) show a gross of zero.
func Build(g *game.Game, courseName string) *Scorecard {
	sc := &Scorecard{
		Game:   g.ID,
		Course: courseName,
		Phase:  string(g.Phase),
	}
	if !g.CreatedAt.IsZero() {
		sc.Time = g.CreatedAt.UTC().Format(time.RFC3339)
	}
	for _, p := range g.Players {
		sc.Players = append(sc.Players, string(p.ID))
		sc.Names = append(sc.Names, p.Name)
		sc.Handicaps = append(sc.Handicaps, p.Handicap)
		sc.FinalPoints = append(sc.FinalPoints, p.Points)
	}
	for _, id := range g.TossOrder {
		sc.TossOrder = append(sc.TossOrder, string(id))
	}

	for _, r := range g.History {
		info := g.Course[r.Hole-1]
		h := Hole{
			Number:      r.Hole,
			Par:         info.Par,
			StrokeIndex: info.StrokeIndex,
			Captain:     string(r.Captain),
			Formation:   string(r.Formation),
			Wager:       r.Wager,
			Push:        r.Push,
			CarryOver:   r.CarryOver,
		}
		for _, side := range r.Sides {
			ids := make([]string, len(side))
			for i, id := range side {
				ids[i] = string(id)
			}
			h.Sides = append(h.Sides, ids)
		}
		for _, m := range r.Modifiers {
			h.Modifiers = append(h.Modifiers, FormatModifier(m))
		}
		for _, p := range g.Players {
			h.Gross = append(h.Gross, r.Gross[p.ID])
			h.Net = append(h.Net, r.Net[p.ID])
			h.Deltas = append(h.Deltas, r.Deltas[p.ID])
		}
		for _, a := range r.Amendments {
			h.Amendments = append(h.Amendments, FormatAmendment(a, g.Players))
		}
		sc.Holes = append(sc.Holes, h)
	}
	return sc
}

// FormatModifier renders a modifier as "kind xfactor", with the invoker when
// one is recorded.
func FormatModifier(m game.AppliedModifier) string {
	s := fmt.Sprintf("%s x%g", m.Kind, m.Factor)
	if m.Invoker != "" {
		s += " by " + string(m.Invoker)
	}
	return s
}

// FormatAmendment renders a retroactive correction in player order.
func FormatAmendment(a game.Amendment, players []*game.Player) string {
	var parts []string
	for _, p := range players {
		if d, ok := a.Deltas[p.ID]; ok && d != 0 {
			parts = append(parts, fmt.Sprintf("%s %+g", p.ID, d))
		}
	}
	return fmt.Sprintf("%s on hole %d: %s", a.Reason, a.OnHole, strings.Join(parts, ", "))
}

// Encode writes the scorecard to the provided writer.
func Encode(w io.Writer, sc *Scorecard) error {
	if sc == nil {
		return fmt.Errorf("history: scorecard is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(sc)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(sc *Scorecard) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, sc); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// Decode reads a scorecard back.
func Decode(r io.Reader) (*Scorecard, error) {
	var sc Scorecard
	if _, err := toml.NewDecoder(r).Decode(&sc); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &sc, nil
}

// Export writes the game's scorecard to dir/<game id>.toml and returns the
// path.
func Export(dir string, g *game.Game, courseName string) (string, error) {
	data, err := EncodeToBytes(Build(g, courseName))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("history: create export dir: %w", err)
	}
	path := filepath.Join(dir, g.ID+".toml")
	if err := store.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
