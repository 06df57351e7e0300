package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/wolfgoatpig/cmd/wolfgoatpig/shared"
	"github.com/lox/wolfgoatpig/internal/config"
	"github.com/lox/wolfgoatpig/internal/course"
	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/history"
	"github.com/lox/wolfgoatpig/internal/randutil"
	"github.com/lox/wolfgoatpig/internal/store"
)

// PlayCmd replays a TOML script of commands.
type PlayCmd struct {
	Script    string `arg:"" type:"existingfile" help:"Script TOML with [[step]] entries"`
	Roster    string `required:"" type:"existingfile" help:"Roster TOML"`
	Course    string `type:"existingfile" help:"Course TOML (built-in course when empty)"`
	ID        string `default:"round" help:"Game id used for the store and export"`
	StoreDir  string `help:"Save the game to this directory after every command"`
	Resume    bool   `help:"Continue the game saved under --id in --store-dir instead of starting a new one"`
	Export    string `help:"Write the TOML scorecard into this directory"`
	KeepGoing bool   `help:"Report rejected commands and carry on"`
	NoColor   bool   `help:"Disable colour output"`
	Debug     bool   `help:"Enable debug logging"`

	out io.Writer
}

func (c *PlayCmd) Run(g *globals) error {
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
	return c.play(context.Background(), cfg, logger)
}

func (c *PlayCmd) play(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	script, err := course.LoadScript(c.Script)
	if err != nil {
		return err
	}
	roster, err := course.LoadRoster(c.Roster)
	if err != nil {
		return err
	}
	crs := course.Standard()
	if c.Course != "" {
		if crs, err = course.LoadCourse(c.Course); err != nil {
			return err
		}
	}

	var st store.Store
	if c.StoreDir != "" {
		if st, err = store.NewFileStore(c.StoreDir, quartz.NewReal(), logger); err != nil {
			return err
		}
	}

	engine := game.NewEngine(game.WithLogger(logger))
	var g *game.Game
	if c.Resume {
		if st == nil {
			return errors.New("--resume needs --store-dir")
		}
		if g, err = st.Load(ctx, c.ID); err != nil {
			return fmt.Errorf("resume %s: %w", c.ID, err)
		}
	} else {
		if g, err = engine.NewGame(c.ID, roster.Players, crs.Holes, cfg.GameRules(), randutil.New(script.Seed)); err != nil {
			return err
		}
		fmt.Fprintln(c.out, headerStyle.Render(fmt.Sprintf("%s at %s", g.ID, crs.Name)))
		fmt.Fprintln(c.out, effectStyle.Render(g.Timeline[0].Description))
	}

	for i, cmd := range script.Commands() {
		res, err := engine.Apply(g, cmd)
		if err != nil {
			fmt.Fprintln(c.out, errorStyle.Render(fmt.Sprintf("step %d: %s by %s rejected: %v", i+1, cmd.Kind, cmd.Actor, err)))
			if c.KeepGoing && !game.IsInvariantViolation(err) {
				continue
			}
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		g = res.Game
		c.printEvent(res)
		if st != nil {
			if err := st.Save(ctx, g); err != nil {
				return err
			}
		}
		if g.Phase == game.PhaseComplete {
			break
		}
	}

	c.printStandings(g)

	if c.Export != "" {
		path, err := history.Export(c.Export, g, crs.Name)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, effectStyle.Render("scorecard written to "+path))
	}
	return nil
}

func (c *PlayCmd) printEvent(res *game.Result) {
	ev := res.Event
	fmt.Fprintf(c.out, "%s %s\n", holeStyle.Render(fmt.Sprintf("[%2d]", ev.Hole)), narrationStyle.Render(ev.Description))
	for _, note := range ev.Effects() {
		fmt.Fprintf(c.out, "     %s\n", effectStyle.Render(note))
	}
	if r := res.Completed; r != nil && !r.Push {
		var parts []string
		for _, p := range res.Game.Players {
			if d := r.Deltas[p.ID]; d != 0 {
				parts = append(parts, pointsStyle(d).Render(fmt.Sprintf("%s %+g", p.Name, d)))
			}
		}
		fmt.Fprintf(c.out, "     %s\n", strings.Join(parts, "  "))
	}
}

func (c *PlayCmd) printStandings(g *game.Game) {
	var b strings.Builder
	b.WriteString(nameCellStyle.Render("player"))
	b.WriteString(cellStyle.Render("points"))
	b.WriteString(cellStyle.Render("solos"))
	fmt.Fprintln(c.out, headerStyle.Render(b.String()))

	for _, p := range g.Players {
		fmt.Fprintf(c.out, "%s%s%s\n",
			nameCellStyle.Render(p.Name),
			pointsStyle(p.Points).Inherit(cellStyle).Render(fmt.Sprintf("%+g", p.Points)),
			cellStyle.Render(fmt.Sprint(p.SoloCount)))
	}
	if len(g.PendingSplits) > 0 {
		fmt.Fprintln(c.out, effectStyle.Render(fmt.Sprintf("%d Karl Marx split(s) still hanging", len(g.PendingSplits))))
	}
}
