package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCommandHasAnEventKind(t *testing.T) {
	for _, kind := range ActionKinds() {
		ev, ok := eventKinds[kind]
		require.True(t, ok, "no event kind for %s", kind)
		assert.NotEmpty(t, ev.String())
		_, ok = handlers[kind]
		assert.True(t, ok, "no handler for %s", kind)
	}
	assert.Len(t, handlers, len(ActionKinds()))
}

func TestEffectsAfterRestore(t *testing.T) {
	ev := TimelineEvent{Detail: map[string]any{"effects": []any{"a", "b"}}}
	assert.Equal(t, []string{"a", "b"}, ev.Effects())

	ev = TimelineEvent{Detail: map[string]any{"effects": []string{"c"}}}
	assert.Equal(t, []string{"c"}, ev.Effects())

	assert.Nil(t, TimelineEvent{}.Effects())
}

func TestTimelineSequence(t *testing.T) {
	e, g := newTestGame(t, 4)
	g = partners(t, e, g, "p1", "p2")
	g = mustApply(t, e, g, shot("p1", 250))

	require.Len(t, g.Timeline, 4)
	kinds := make([]EventKind, 0, len(g.Timeline))
	for i, ev := range g.Timeline {
		assert.Equal(t, i+1, ev.Seq)
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventGameStarted, EventPartnerRequested, EventPartnershipAnswered, EventShotPlayed}, kinds)

	answered := g.Timeline[2]
	assert.Equal(t, PlayerID("p2"), answered.Actor)
	assert.Equal(t, "p2 accepts p1's invitation", answered.Description)
	assert.Contains(t, answered.Effects(), "teams set: p1+p2 vs p3+p4")
}
