package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Config   string           `short:"c" default:"wolfgoatpig.hcl" type:"path" help:"HCL configuration file (defaults apply when missing)"`
	Serve    ServeCmd         `cmd:"" help:"Run the HTTP game server"`
	Play     PlayCmd          `cmd:"" help:"Replay a scripted round and print the narration"`
	Simulate SimulateCmd      `cmd:"" help:"Play random legal rounds and check every hole is zero-sum"`
	Course   CourseCmd        `cmd:"" help:"Work with course files"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("wolfgoatpig"),
		kong.Description("Wolf Goat Pig betting engine for golf foursomes"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&globals{configPath: &cli.Config}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// globals are bound into every subcommand's Run.
type globals struct {
	configPath *string
}
