// Package handicap converts handicaps into per-hole stroke allowances and net
// scores. It is the only implementation of stroke allocation; scoring,
// display and export all call StrokesFor.
package handicap

import (
	"fmt"
	"math"
)

const (
	// MaxHandicap is the largest accepted handicap.
	MaxHandicap = 54.0
	// Holes is the number of stroke indexes on a course.
	Holes = 18
	// easyHoleStart is the first of the six easiest stroke indexes, which only
	// receive half a stroke.
	easyHoleStart = 13
)

// Mode selects how raw handicaps are turned into playing handicaps.
type Mode string

const (
	// Relative plays everyone off the lowest handicap in the group.
	Relative Mode = "relative"
	// Official plays the raw handicaps.
	Official Mode = "official"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == Relative || m == Official
}

// ValidateHandicap checks the accepted range.
func ValidateHandicap(h float64) error {
	if math.IsNaN(h) || h < 0 || h > MaxHandicap {
		return fmt.Errorf("handicap %v out of range 0-%v", h, MaxHandicap)
	}
	return nil
}

// ValidateStrokeIndex checks a hole's stroke index.
func ValidateStrokeIndex(si int) error {
	if si < 1 || si > Holes {
		return fmt.Errorf("stroke index %d out of range 1-%d", si, Holes)
	}
	return nil
}

// NetHandicaps returns the playing handicap for each input handicap. In
// Relative mode the lowest handicap plays off zero.
func NetHandicaps(handicaps []float64, mode Mode) []float64 {
	out := make([]float64, len(handicaps))
	copy(out, handicaps)
	if mode != Relative || len(out) == 0 {
		return out
	}
	low := out[0]
	for _, h := range out[1:] {
		low = math.Min(low, h)
	}
	for i := range out {
		out[i] -= low
	}
	return out
}

// StrokesFor returns the strokes (0, 0.5 or 1) a playing handicap receives on
// a hole with the given stroke index.
//
// Whole handicap points give a stroke on stroke indexes 1..W. The six easiest
// holes (13-18) only give half a stroke; every whole point above 18 raises two
// of them, hardest first, to a full stroke. A leftover half point gives half a
// stroke on the next hole.
func StrokesFor(netHandicap float64, strokeIndex int) float64 {
	if netHandicap <= 0 || strokeIndex < 1 || strokeIndex > Holes {
		return 0
	}
	whole := int(math.Floor(netHandicap))
	half := netHandicap-float64(whole) >= 0.5

	if strokeIndex <= whole {
		if strokeIndex < easyHoleStart {
			return 1
		}
		raised := 2 * (whole - Holes)
		if strokeIndex-easyHoleStart < raised {
			return 1
		}
		return 0.5
	}
	if half && strokeIndex == whole+1 {
		return 0.5
	}
	return 0
}

// NetScore subtracts the strokes received from a gross score. Fractional
// results are kept; a half-stroke difference is a real difference.
func NetScore(gross int, netHandicap float64, strokeIndex int) float64 {
	return float64(gross) - StrokesFor(netHandicap, strokeIndex)
}

// Allocation returns the strokes received on stroke indexes 1..18, index 0
// holding stroke index 1.
func Allocation(netHandicap float64) [Holes]float64 {
	var out [Holes]float64
	for si := 1; si <= Holes; si++ {
		out[si-1] = StrokesFor(netHandicap, si)
	}
	return out
}

// Total sums an allocation.
func Total(alloc [Holes]float64) float64 {
	var sum float64
	for _, s := range alloc {
		sum += s
	}
	return sum
}
