package handicap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full stroke-index matrix (SI 1..18) per representative playing handicap.
func TestAllocationMatrix(t *testing.T) {
	tests := []struct {
		handicap float64
		want     [Holes]float64
		total    float64
	}{
		{0, [Holes]float64{}, 0},
		{5, [Holes]float64{1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, 5},
		{10.5, [Holes]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0.5, 0, 0, 0, 0, 0, 0, 0}, 10.5},
		{12, [Holes]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0}, 12},
		{14, [Holes]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0.5, 0.5, 0, 0, 0, 0}, 13},
		{18, [Holes]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 15},
		{19, [Holes]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0.5, 0.5, 0.5, 0.5}, 16},
		{20, [Holes]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0.5, 0.5}, 17},
		{21, [Holes]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 18},
		{54, [Holes]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 18},
	}

	for _, tt := range tests {
		alloc := Allocation(tt.handicap)
		assert.Equal(t, tt.want, alloc, "handicap %v", tt.handicap)
		assert.InDelta(t, tt.total, Total(alloc), 1e-9, "handicap %v", tt.handicap)
	}
}

func TestStrokesForOnlyReturnsAllowedValues(t *testing.T) {
	for h := 0.0; h <= MaxHandicap; h += 0.5 {
		for si := 1; si <= Holes; si++ {
			s := StrokesFor(h, si)
			require.Contains(t, []float64{0, 0.5, 1}, s, "handicap %v si %d", h, si)
		}
	}
}

func TestStrokesForOutOfRangeIndex(t *testing.T) {
	assert.Zero(t, StrokesFor(10, 0))
	assert.Zero(t, StrokesFor(10, 19))
}

func TestNetHandicaps(t *testing.T) {
	raw := []float64{12, 4, 20.5}

	assert.Equal(t, []float64{8, 0, 16.5}, NetHandicaps(raw, Relative))
	assert.Equal(t, raw, NetHandicaps(raw, Official))
	assert.Equal(t, []float64{12, 4, 20.5}, raw, "input must not be modified")
}

func TestNetScoreKeepsHalfStrokes(t *testing.T) {
	// SI 14 on a 14 handicap is an easy hole: half a stroke.
	assert.Equal(t, 4.5, NetScore(5, 14, 14))
	assert.Equal(t, 4.0, NetScore(5, 14, 1))
	assert.Equal(t, 5.0, NetScore(5, 0, 1))
}

func TestValidation(t *testing.T) {
	assert.NoError(t, ValidateHandicap(0))
	assert.NoError(t, ValidateHandicap(54))
	assert.Error(t, ValidateHandicap(-1))
	assert.Error(t, ValidateHandicap(54.5))

	assert.NoError(t, ValidateStrokeIndex(1))
	assert.NoError(t, ValidateStrokeIndex(18))
	assert.Error(t, ValidateStrokeIndex(0))
	assert.Error(t, ValidateStrokeIndex(19))
}

func TestModeValid(t *testing.T) {
	assert.True(t, Relative.Valid())
	assert.True(t, Official.Valid())
	assert.False(t, Mode("gross").Valid())
}
