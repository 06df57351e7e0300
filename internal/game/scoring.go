package game

import (
	"cmp"
	"math"
	"slices"

	"github.com/lox/wolfgoatpig/internal/handicap"
)

// zeroSumTolerance bounds floating error when checking a hole's deltas.
const zeroSumTolerance = 1e-6

// PendingSplit is a Karl Marx split deferred because the players it
// favours were tied on points. Shares are ordered most favourable first.
type PendingSplit struct {
	Hole        int        `json:"hole"`
	Players     []PlayerID `json:"players"`
	Shares      []float64  `json:"shares"`
	Provisional float64    `json:"provisional"`
}

// Amendment is a correction applied to an archived hole.
type Amendment struct {
	OnHole int                  `json:"on_hole"` // hole whose commit triggered it
	Deltas map[PlayerID]float64 `json:"deltas"`
	Reason string               `json:"reason"`
}

// HoleResult is the archived outcome of a completed hole.
type HoleResult struct {
	Hole       int                  `json:"hole"`
	Captain    PlayerID             `json:"captain"`
	Formation  FormationKind        `json:"formation"`
	Sides      [][]PlayerID         `json:"sides,omitempty"`
	Wager      int                  `json:"wager"`
	Modifiers  []AppliedModifier    `json:"modifiers,omitempty"`
	Gross      map[PlayerID]int     `json:"gross,omitempty"`
	Net        map[PlayerID]float64 `json:"net,omitempty"`
	Deltas     map[PlayerID]float64 `json:"deltas"`
	Push       bool                 `json:"push"`
	CarryOver  bool                 `json:"carry_over"`
	Deferred   []PendingSplit       `json:"deferred,omitempty"`
	Amendments []Amendment          `json:"amendments,omitempty"`
}

// Sum returns the total of the hole's deltas.
func (r *HoleResult) Sum() float64 {
	var sum float64
	for _, d := range r.Deltas {
		sum += d
	}
	return sum
}

// settleHole computes the point transfer for the current hole. Sides settle
// pairwise: the side with the lower best net score wins the wager times the
// larger side's stake, and each side divides its total by the Karl Marx rule.
func settleHole(g *Game) (*HoleResult, error) {
	h := g.Hole
	b := &h.Betting
	points := g.Points()
	res := &HoleResult{
		Hole:      h.Number,
		Captain:   h.Captain,
		Formation: h.Formation.Kind(),
		Sides:     h.Formation.Sides(),
		Wager:     b.Wager(),
		Modifiers: slices.Clone(b.Modifiers),
		Deltas:    make(map[PlayerID]float64, len(g.Players)),
		CarryOver: b.CarryOver,
	}
	for _, p := range g.Players {
		res.Deltas[p.ID] = 0
	}
	credit := func(total float64, members []PlayerID) {
		shares, deferred := distribute(h.Number, total, members, points, h.HittingOrder)
		for p, v := range shares {
			res.Deltas[p] += v
		}
		res.Deferred = append(res.Deferred, deferred...)
	}
	pay := func(total float64, winners, losers []PlayerID) {
		credit(total, winners)
		credit(-total, losers)
	}

	for _, f := range b.Forfeits {
		res.Deltas[f.Player] -= f.Amount
		credit(f.Amount, f.To)
	}

	if h.Scores != nil {
		res.Gross = make(map[PlayerID]int, len(h.Scores))
		res.Net = make(map[PlayerID]float64, len(h.Scores))
		for p, gross := range h.Scores {
			res.Gross[p] = gross
			res.Net[p] = handicap.NetScore(gross, g.NetHandicaps[p], h.StrokeIndex)
		}
	}
	best := func(side []PlayerID) (float64, bool) {
		low, ok := math.Inf(1), false
		for _, p := range h.active(side) {
			if net, scored := res.Net[p]; scored {
				low, ok = min(low, net), true
			}
		}
		return low, ok
	}

	if bd := b.BigDick; bd != nil && bd.Active {
		solo, _ := h.Formation.(Solo)
		mine, ok1 := best([]PlayerID{solo.Player})
		theirs, ok2 := best(solo.Opponents)
		switch {
		case !ok1 || !ok2 || mine == theirs:
		case mine < theirs:
			pay(bd.Stake, []PlayerID{solo.Player}, solo.Opponents)
		default:
			pay(bd.Stake, solo.Opponents, []PlayerID{solo.Player})
		}
	} else {
		sides := res.Sides
		for i := range sides {
			for j := i + 1; j < len(sides); j++ {
				stake := float64(max(len(sides[i]), len(sides[j])))
				if c, ok := concession(b, i, j); ok {
					pay(float64(c.Wager)*stake, h.active(sides[c.Winner]), h.active(sides[c.Loser]))
					continue
				}
				bi, ok1 := best(sides[i])
				bj, ok2 := best(sides[j])
				if !ok1 || !ok2 || bi == bj {
					continue
				}
				w, l := i, j
				if bj < bi {
					w, l = j, i
				}
				total := float64(b.Wager()) * stake
				if g.bonusApplies(w) {
					total *= 1.5
				}
				pay(total, h.active(sides[w]), h.active(sides[l]))
			}
		}
	}

	res.Push = true
	for _, d := range res.Deltas {
		if math.Abs(d) > zeroSumTolerance {
			res.Push = false
			break
		}
	}
	return res, nil
}

// bonusApplies reports whether the winning side is a Duncan or Tunkarri
// player collecting three for two.
func (g *Game) bonusApplies(winner int) bool {
	h := g.Hole
	bonus := h.Betting.bonusPlayer()
	if bonus == "" {
		return false
	}
	solo, ok := h.Formation.(Solo)
	return ok && winner == 0 && solo.Player == bonus
}

func concession(b *BettingState, i, j int) (Concession, bool) {
	for _, c := range b.Concessions {
		if (c.Winner == i && c.Loser == j) || (c.Winner == j && c.Loser == i) {
			return c, true
		}
	}
	return Concession{}, false
}

// distribute divides total among members in whole quarters. The player
// furthest down in points receives the most favourable share: the smaller
// payment when losing and the larger receipt when winning. Tied players who
// straddle a share boundary all get the average now and the split is
// returned for later resolution.
func distribute(hole int, total float64, members []PlayerID, points map[PlayerID]float64, order []PlayerID) (map[PlayerID]float64, []PendingSplit) {
	out := make(map[PlayerID]float64, len(members))
	if len(members) == 0 {
		return out, nil
	}
	ranked := slices.Clone(members)
	slices.SortStableFunc(ranked, func(a, b PlayerID) int {
		if c := cmp.Compare(points[a], points[b]); c != 0 {
			return c
		}
		return cmp.Compare(slices.Index(order, a), slices.Index(order, b))
	})
	shares := splitShares(total, len(ranked))

	var deferred []PendingSplit
	for i := 0; i < len(ranked); {
		j := i + 1
		for j < len(ranked) && points[ranked[j]] == points[ranked[i]] {
			j++
		}
		group, gs := ranked[i:j], shares[i:j]
		if gs[0] != gs[len(gs)-1] {
			var sum float64
			for _, s := range gs {
				sum += s
			}
			avg := sum / float64(len(gs))
			for _, p := range group {
				out[p] = avg
			}
			deferred = append(deferred, PendingSplit{
				Hole:        hole,
				Players:     slices.Clone(group),
				Shares:      slices.Clone(gs),
				Provisional: avg,
			})
		} else {
			for k, p := range group {
				out[p] = gs[k]
			}
		}
		i = j
	}
	return out, deferred
}

// splitShares divides total into n shares in the largest whole unit that
// fits (a quarter, a half or a quarter of a quarter), ordered from the
// largest share down. Totals with no such unit are split evenly.
func splitShares(total float64, n int) []float64 {
	shares := make([]float64, n)
	unit := 0.0
	for _, u := range []float64{1, 0.5, 0.25} {
		if q := total / u; math.Abs(q-math.Round(q)) < zeroSumTolerance {
			unit = u
			break
		}
	}
	if unit == 0 {
		for i := range shares {
			shares[i] = total / float64(n)
		}
		return shares
	}
	units := int(math.Round(total / unit))
	base := units / n
	if units%n != 0 && units < 0 {
		base--
	}
	rem := units - base*n
	for i := range shares {
		q := base
		if i < rem {
			q++
		}
		shares[i] = float64(q) * unit
	}
	return shares
}

// resolvePendingSplits applies deferred Karl Marx splits whose players are
// no longer tied, amending the archived hole they came from.
func (g *Game) resolvePendingSplits(fx *effects) {
	points := g.Points()
	var kept []PendingSplit
	for _, s := range g.PendingSplits {
		ranked := slices.Clone(s.Players)
		slices.SortStableFunc(ranked, func(a, b PlayerID) int { return cmp.Compare(points[a], points[b]) })
		ready := true
		for i := 0; i+1 < len(ranked); i++ {
			if s.Shares[i] != s.Shares[i+1] && points[ranked[i]] == points[ranked[i+1]] {
				ready = false
				break
			}
		}
		if !ready {
			kept = append(kept, s)
			continue
		}
		corrections := make(map[PlayerID]float64, len(ranked))
		for i, p := range ranked {
			if c := s.Shares[i] - s.Provisional; c != 0 {
				corrections[p] = c
				g.Player(p).Points += c
				points[p] += c
			}
		}
		for i := range g.History {
			if g.History[i].Hole != s.Hole {
				continue
			}
			r := &g.History[i]
			for p, c := range corrections {
				r.Deltas[p] += c
			}
			r.Amendments = append(r.Amendments, Amendment{OnHole: g.Hole.Number, Deltas: corrections, Reason: "karl_marx"})
		}
		fx.add("Karl Marx split from hole %d resolved", s.Hole)
	}
	g.PendingSplits = kept
}
