package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/wolfgoatpig/cmd/wolfgoatpig/shared"
	"github.com/lox/wolfgoatpig/internal/config"
	"github.com/lox/wolfgoatpig/internal/course"
	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/randutil"
	"github.com/lox/wolfgoatpig/internal/sim"
)

// SimulateCmd plays random legal rounds and checks the books balance.
type SimulateCmd struct {
	Players int    `short:"p" default:"4" help:"Players per game (2-6)"`
	Games   int    `short:"n" default:"100" help:"Number of games to play"`
	Seed    int64  `help:"Base seed (time based when zero)"`
	Workers int    `short:"w" help:"Concurrent games (defaults to NumCPU)"`
	Course  string `type:"existingfile" help:"Course TOML (built-in course when empty)"`
	Max     int    `default:"5000" help:"Command limit per game"`
	Debug   bool   `help:"Enable debug logging"`
	NoColor bool   `help:"Disable colour output"`

	out io.Writer
}

func (c *SimulateCmd) Run(g *globals) error {
	cfg, err := config.LoadConfig(*g.configPath)
	if err != nil {
		return err
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	setColor(!c.NoColor)
	logger := zerolog.Nop()
	if c.Debug {
		logger = shared.SetupLogger(true)
	}
	ctx := shared.SetupSignalHandler(logger)
	return c.simulate(ctx, cfg, logger)
}

func (c *SimulateCmd) simulate(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if c.Players < 2 || c.Players > 6 {
		return fmt.Errorf("players must be between 2 and 6, got %d", c.Players)
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	crs := course.Standard()
	if c.Course != "" {
		var err error
		if crs, err = course.LoadCourse(c.Course); err != nil {
			return err
		}
	}
	seed := c.Seed
	if seed == 0 {
		_, seed = randutil.NewTimeSeeded()
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	engine := game.NewEngine(game.WithLogger(logger))
	start := time.Now()
	outcomes, err := sim.RunMany(ctx, engine, sim.Config{
		Players:     c.Players,
		Seed:        seed,
		Rules:       cfg.GameRules(),
		Course:      crs.Holes,
		MaxCommands: c.Max,
		Logger:      logger,
	}, c.Games, workers)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	c.printSummary(outcomes, seed, elapsed)
	return nil
}

type simTotals struct {
	name  string
	total float64
	best  float64
	worst float64
	wins  int
}

func (c *SimulateCmd) printSummary(outcomes []*sim.Outcome, seed int64, elapsed time.Duration) {
	commands := 0
	totals := make(map[game.PlayerID]*simTotals)
	var order []game.PlayerID
	for _, o := range outcomes {
		commands += o.Commands
		var leader game.PlayerID
		for _, p := range o.Game.Players {
			t, ok := totals[p.ID]
			if !ok {
				t = &simTotals{name: p.Name, best: p.Points, worst: p.Points}
				totals[p.ID] = t
				order = append(order, p.ID)
			}
			t.total += p.Points
			t.best = max(t.best, p.Points)
			t.worst = min(t.worst, p.Points)
			if leader == "" || p.Points > o.Points[leader] {
				leader = p.ID
			}
		}
		totals[leader].wins++
	}
	slices.Sort(order)

	fmt.Fprintln(c.out, headerStyle.Render(fmt.Sprintf("%d games, %d players, seed %d", len(outcomes), c.Players, seed)))
	fmt.Fprintln(c.out, effectStyle.Render(fmt.Sprintf("%d commands in %s, every hole balanced", commands, elapsed.Round(time.Millisecond))))

	fmt.Fprintln(c.out, nameCellStyle.Render("player")+cellStyle.Render("avg")+cellStyle.Render("best")+cellStyle.Render("worst")+cellStyle.Render("wins"))
	for _, id := range order {
		t := totals[id]
		avg := t.total / float64(len(outcomes))
		fmt.Fprintln(c.out, nameCellStyle.Render(t.name)+
			pointsStyle(avg).Inherit(cellStyle).Render(fmt.Sprintf("%+.2f", avg))+
			cellStyle.Render(fmt.Sprintf("%+g", t.best))+
			cellStyle.Render(fmt.Sprintf("%+g", t.worst))+
			cellStyle.Render(fmt.Sprint(t.wins)))
	}
}
