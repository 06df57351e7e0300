package main

import (
	"github.com/coder/quartz"

	"github.com/lox/wolfgoatpig/cmd/wolfgoatpig/shared"
	"github.com/lox/wolfgoatpig/internal/config"
	"github.com/lox/wolfgoatpig/internal/course"
	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/server"
	"github.com/lox/wolfgoatpig/internal/store"
)

// ServeCmd runs the HTTP API.
type ServeCmd struct {
	Addr    string `help:"Listen address, overrides the config file"`
	Course  string `type:"existingfile" help:"Default course TOML for new games (built-in course when empty)"`
	Memory  bool   `help:"Keep games in memory instead of the store directory"`
	Pretty  bool   `help:"Human-readable console logs instead of JSON"`
	Verbose bool   `short:"d" help:"Enable debug logging"`
}

func (c *ServeCmd) Run(g *globals) error {
	cfg, err := config.LoadConfig(*g.configPath)
	if err != nil {
		return err
	}

	level := cfg.Server.LogLevel
	if c.Verbose {
		level = "debug"
	}
	logger, err := shared.SetupStructuredLogger(level)
	if err != nil {
		return err
	}
	if c.Pretty {
		logger = shared.SetupLogger(level == "debug")
	}

	crs := course.Standard()
	if c.Course != "" {
		if crs, err = course.LoadCourse(c.Course); err != nil {
			return err
		}
	}

	clock := quartz.NewReal()
	var st store.Store
	if c.Memory {
		st = store.NewMemoryStore(clock)
	} else {
		fs, err := store.NewFileStore(cfg.Server.StoreDir, clock, logger)
		if err != nil {
			return err
		}
		st = fs
	}

	engine := game.NewEngine(game.WithClock(clock), game.WithLogger(logger))
	games := server.NewGameManager(engine, st, server.ManagerConfig{
		Rules:      cfg.GameRules(),
		Course:     crs.Holes,
		CourseName: crs.Name,
		ExportDir:  cfg.Server.ExportDir,
	}, logger)

	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}
	srv, err := server.NewServer(addr, games, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("address", addr).
		Str("course", crs.Name).
		Str("store_dir", cfg.Server.StoreDir).
		Bool("memory", c.Memory).
		Int("base_quarters", cfg.GameRules().BaseQuarters).
		Bool("high_stakes", cfg.GameRules().HighStakes).
		Msg("Starting Wolf Goat Pig server")

	ctx := shared.SetupSignalHandler(logger)
	return srv.Serve(ctx)
}
