// Package rotation derives who captains each hole from the toss order fixed
// on the first tee, and when the Hoepfinger phase begins.
//
// Everything here is position arithmetic over the stored toss order. The
// previous hole's hitting order is never consulted, so a Goat's choice on one
// Hoepfinger hole cannot shift later captaincies.
package rotation

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/wolfgoatpig/internal/randutil"
)

const (
	// Holes in a round.
	Holes = 18
	// MinPlayers and MaxPlayers bound the supported game sizes.
	MinPlayers = 2
	MaxPlayers = 6
	// FirstAardvarkPosition is the 1-based hitting position of the first Aardvark.
	FirstAardvarkPosition = 5
)

// ErrPosition is returned when a Goat asks for a position outside the order.
var ErrPosition = errors.New("rotation: hitting position out of range")

// hoepfingerStart maps player count to the first Hoepfinger hole.
var hoepfingerStart = map[int]int{
	4: 17,
	5: 16,
	6: 13,
}

// HoepfingerStart returns the first hole of the terminal phase for a player
// count. Games without a Hoepfinger return Holes+1.
func HoepfingerStart(players int) int {
	if start, ok := hoepfingerStart[players]; ok {
		return start
	}
	return Holes + 1
}

// IsHoepfinger reports whether hole is in the terminal phase.
func IsHoepfinger(players, hole int) bool {
	return hole >= HoepfingerStart(players)
}

// VinnieWindow reports whether hole falls in Vinnie's Variation: holes 13 up
// to the Hoepfinger, four-player games only.
func VinnieWindow(players, hole int) bool {
	return players == 4 && hole >= 13 && hole < HoepfingerStart(players)
}

// Toss returns a uniformly random starting order. It is called once, on hole 1.
func Toss[T any](rng *rand.Rand, players []T) []T {
	return randutil.Permutation(rng, players)
}

// CaptainFor returns toss[(hole-1) mod n].
func CaptainFor[T any](toss []T, hole int) T {
	n := len(toss)
	return toss[((hole-1)%n+n)%n]
}

// NaturalOrder returns the hitting order for a hole: the toss order rotated
// so the hole's captain hits first.
func NaturalOrder[T any](toss []T, hole int) []T {
	n := len(toss)
	out := make([]T, n)
	start := ((hole-1)%n + n) % n
	for i := range out {
		out[i] = toss[(start+i)%n]
	}
	return out
}

// WithGoatPosition moves goat to the 1-based position in order. Everyone else
// keeps their relative order around the Goat.
func WithGoatPosition[T comparable](order []T, goat T, position int) ([]T, error) {
	if position < 1 || position > len(order) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPosition, position, len(order))
	}
	rest := make([]T, 0, len(order))
	found := false
	for _, p := range order {
		if p == goat {
			found = true
			continue
		}
		rest = append(rest, p)
	}
	if !found {
		return nil, fmt.Errorf("rotation: goat %v not in hitting order", goat)
	}
	out := make([]T, 0, len(order))
	out = append(out, rest[:position-1]...)
	out = append(out, goat)
	out = append(out, rest[position-1:]...)
	return out, nil
}

// Aardvarks returns the players hitting fifth and sixth.
func Aardvarks[T any](order []T) []T {
	if len(order) < FirstAardvarkPosition {
		return nil
	}
	out := make([]T, len(order)-(FirstAardvarkPosition-1))
	copy(out, order[FirstAardvarkPosition-1:])
	return out
}

// LastCaptaincyBeforeHoepfinger reports whether hole is position's final
// captaincy before the terminal phase, where position is the captain's index
// in the toss order.
func LastCaptaincyBeforeHoepfinger(players, hole int) bool {
	start := HoepfingerStart(players)
	return hole < start && hole+players >= start
}
