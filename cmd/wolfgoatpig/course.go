package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/wolfgoatpig/internal/config"
	"github.com/lox/wolfgoatpig/internal/course"
	"github.com/lox/wolfgoatpig/internal/handicap"
)

// CourseCmd groups course utilities.
type CourseCmd struct {
	Check CourseCheckCmd `cmd:"" help:"Validate a course file and show its stroke allocation"`
}

// CourseCheckCmd validates a course and optionally a roster against it.
type CourseCheckCmd struct {
	File    string `arg:"" optional:"" type:"existingfile" help:"Course TOML (built-in course when empty)"`
	Roster  string `type:"existingfile" help:"Roster TOML; prints strokes received per hole"`
	Mode    string `help:"Handicap mode, relative or official (defaults to the configured rules)"`
	NoColor bool   `help:"Disable colour output"`

	out io.Writer
}

func (c *CourseCheckCmd) Run(g *globals) error {
	cfg, err := config.LoadConfig(*g.configPath)
	if err != nil {
		return err
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	setColor(!c.NoColor)
	mode := cfg.GameRules().HandicapMode
	if c.Mode != "" {
		mode = handicap.Mode(c.Mode)
		if !mode.Valid() {
			return fmt.Errorf("unknown handicap mode %q", c.Mode)
		}
	}
	return c.check(mode)
}

func (c *CourseCheckCmd) check(mode handicap.Mode) error {
	crs := course.Standard()
	if c.File != "" {
		var err error
		if crs, err = course.LoadCourse(c.File); err != nil {
			return err
		}
	}

	par, yards := 0, 0
	for _, h := range crs.Holes {
		par += h.Par
		yards += h.Yardage
	}
	fmt.Fprintln(c.out, headerStyle.Render(fmt.Sprintf("%s: par %d, %d yards", crs.Name, par, yards)))

	var players []string
	var table map[string][]float64
	if c.Roster != "" {
		roster, err := course.LoadRoster(c.Roster)
		if err != nil {
			return err
		}
		strokes := course.StrokeTable(crs, roster.Players, mode)
		table = make(map[string][]float64, len(strokes))
		for _, p := range roster.Players {
			players = append(players, p.Name)
			table[p.Name] = strokes[p.ID]
		}
	}

	var b strings.Builder
	b.WriteString(cellStyle.Render("hole"))
	b.WriteString(cellStyle.Render("par"))
	b.WriteString(cellStyle.Render("si"))
	b.WriteString(cellStyle.Render("yards"))
	for _, name := range players {
		b.WriteString(cellStyle.Render(truncate(name, 7)))
	}
	fmt.Fprintln(c.out, holeStyle.Render(b.String()))

	for i, h := range crs.Holes {
		b.Reset()
		b.WriteString(cellStyle.Render(fmt.Sprint(i + 1)))
		b.WriteString(cellStyle.Render(fmt.Sprint(h.Par)))
		b.WriteString(cellStyle.Render(fmt.Sprint(h.StrokeIndex)))
		b.WriteString(cellStyle.Render(fmt.Sprint(h.Yardage)))
		for _, name := range players {
			s := table[name][i]
			cell := ""
			if s != 0 {
				cell = fmt.Sprintf("%g", s)
			}
			b.WriteString(cellStyle.Render(cell))
		}
		fmt.Fprintln(c.out, narrationStyle.Render(b.String()))
	}

	if len(players) > 0 {
		b.Reset()
		b.WriteString(cellStyle.Render("total"))
		b.WriteString(cellStyle.Render(""))
		b.WriteString(cellStyle.Render(""))
		b.WriteString(cellStyle.Render(""))
		for _, name := range players {
			var sum float64
			for _, s := range table[name] {
				sum += s
			}
			b.WriteString(cellStyle.Render(fmt.Sprintf("%g", sum)))
		}
		fmt.Fprintln(c.out, holeStyle.Render(b.String()))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
