// Package game implements the Wolf Goat Pig betting rules for a round of
// golf.
//
// The main type is Game, which holds the players, the toss order, the hole
// in progress (HoleState) and the archive of completed holes. A hole moves
// from team formation through wagering to scoring, and every completed hole
// must move points that sum to zero.
//
// # Basic Usage
//
// Create a game and feed it commands:
//
//	e := game.NewEngine(game.WithLogger(logger))
//	g, err := e.NewGame(id, roster, course, game.DefaultRules(), randutil.New(42))
//	res, err := e.Apply(g, game.Command{
//	    Kind:    game.ActionRequestPartner,
//	    Actor:   g.Hole.Captain,
//	    Payload: game.Payload{Partner: "bob"},
//	})
//	g = res.Game
//
// Apply never changes the game it is given. An accepted command returns the
// new state, a narration, the next legal actions and one timeline event; a
// rejected command returns a *game.Error and nothing changes.
//
// # Deterministic Testing
//
// The toss order comes from an injected *rand.Rand and timeline timestamps
// from an injected quartz.Clock, so a fixed seed and a mock clock replay a
// game exactly.
//
// # Architecture
//
//   - Formation: tagged team variants (Pending, Partners, Solo,
//     AardvarkPending, ThreeWay) produced by the negotiation in teams.go
//   - BettingState: base wager, multiplier and the log of applied modifiers
//   - settleHole: pairwise best-ball scoring with the Karl Marx split
//   - Snapshot and Restore: the full persistence contract
//
// Engines hold no game state. Callers serialize commands for one game and
// may run different games in parallel.
package game
