package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wolfgoatpig/internal/randutil"
)

func TestCaptainForFixedPositions(t *testing.T) {
	toss := []string{"P1", "P2", "P3", "P4"}

	assert.Equal(t, "P1", CaptainFor(toss, 1))
	assert.Equal(t, "P2", CaptainFor(toss, 2))
	assert.Equal(t, "P1", CaptainFor(toss, 5))
	assert.Equal(t, "P1", CaptainFor(toss, 9))
	assert.Equal(t, "P1", CaptainFor(toss, 13))
	assert.Equal(t, "P4", CaptainFor(toss, 16))
}

func TestCaptainForEveryPositionCaptainsEvenly(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		toss := make([]int, n)
		for i := range toss {
			toss[i] = i
		}
		counts := make(map[int]int)
		for hole := 1; hole < HoepfingerStart(n) && hole <= Holes; hole++ {
			counts[CaptainFor(toss, hole)]++
		}
		for pos, c := range counts {
			for other, oc := range counts {
				assert.LessOrEqual(t, c-oc, 1, "n=%d positions %d and %d", n, pos, other)
			}
		}
	}
}

func TestHoepfingerStart(t *testing.T) {
	assert.Equal(t, 17, HoepfingerStart(4))
	assert.Equal(t, 16, HoepfingerStart(5))
	assert.Equal(t, 13, HoepfingerStart(6))
	assert.Equal(t, 19, HoepfingerStart(3))
	assert.Equal(t, 19, HoepfingerStart(2))

	assert.False(t, IsHoepfinger(4, 16))
	assert.True(t, IsHoepfinger(4, 17))
	assert.True(t, IsHoepfinger(6, 13))
}

func TestVinnieWindow(t *testing.T) {
	assert.False(t, VinnieWindow(4, 12))
	assert.True(t, VinnieWindow(4, 13))
	assert.True(t, VinnieWindow(4, 16))
	assert.False(t, VinnieWindow(4, 17))
	assert.False(t, VinnieWindow(5, 13))
}

func TestNaturalOrder(t *testing.T) {
	toss := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, []string{"c", "d", "e", "a", "b"}, NaturalOrder(toss, 3))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, NaturalOrder(toss, 6))
}

func TestWithGoatPosition(t *testing.T) {
	order := []string{"a", "b", "c", "d"}

	got, err := WithGoatPosition(order, "c", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b", "d"}, got)

	got, err = WithGoatPosition(order, "a", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d", "a"}, got)

	_, err = WithGoatPosition(order, "a", 5)
	assert.ErrorIs(t, err, ErrPosition)

	_, err = WithGoatPosition(order, "z", 1)
	assert.Error(t, err)
}

func TestAardvarks(t *testing.T) {
	assert.Nil(t, Aardvarks([]string{"a", "b", "c", "d"}))
	assert.Equal(t, []string{"e"}, Aardvarks([]string{"a", "b", "c", "d", "e"}))
	assert.Equal(t, []string{"e", "f"}, Aardvarks([]string{"a", "b", "c", "d", "e", "f"}))
}

func TestTossIsPermutation(t *testing.T) {
	players := []string{"a", "b", "c", "d", "e", "f"}
	toss := Toss(randutil.New(3), players)
	assert.ElementsMatch(t, players, toss)
}

func TestLastCaptaincyBeforeHoepfinger(t *testing.T) {
	// Four players: holes 13-16 are each position's last captaincy.
	assert.False(t, LastCaptaincyBeforeHoepfinger(4, 12))
	assert.True(t, LastCaptaincyBeforeHoepfinger(4, 13))
	assert.True(t, LastCaptaincyBeforeHoepfinger(4, 16))
	assert.False(t, LastCaptaincyBeforeHoepfinger(4, 17))
}
