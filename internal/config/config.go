// Package config loads the HCL configuration shared by the server and the
// command line tools.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/wolfgoatpig/internal/game"
	"github.com/lox/wolfgoatpig/internal/handicap"
)

// Config represents the complete configuration file
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Rules  *RulesBlock    `hcl:"rules,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	Port      int    `hcl:"port,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	StoreDir  string `hcl:"store_dir,optional"`
	ExportDir string `hcl:"export_dir,optional"`
}

// RulesBlock holds the house rules. Unset attributes keep the defaults.
type RulesBlock struct {
	BaseQuarters      *int      `hcl:"base_quarters,optional"`
	HighStakes        *bool     `hcl:"high_stakes,optional"`
	HandicapMode      *string   `hcl:"handicap_mode,optional"`
	RequireSolo       *bool     `hcl:"require_solo,optional"`
	Precedence        *[]string `hcl:"precedence,optional"`
	Stacking          *string   `hcl:"stacking,optional"`
	DoublePointsHoles []int     `hcl:"double_points_holes,optional"`
}

// Default returns the default configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var c Config
	diags = gohcl.DecodeBody(file.Body, nil, &c)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.StoreDir == "" {
		c.Server.StoreDir = "games"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Server.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	rules := c.GameRules()
	if err := rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

// GameRules returns the engine rules the configuration describes.
func (c *Config) GameRules() game.Rules {
	r := game.DefaultRules()
	b := c.Rules
	if b == nil {
		return r
	}
	if b.BaseQuarters != nil {
		r.BaseQuarters = *b.BaseQuarters
	}
	if b.HighStakes != nil {
		r.HighStakes = *b.HighStakes
	}
	if b.HandicapMode != nil {
		r.HandicapMode = handicap.Mode(*b.HandicapMode)
	}
	if b.RequireSolo != nil {
		r.RequireSolo = *b.RequireSolo
	}
	if b.Precedence != nil {
		r.Precedence = make([]game.BaseRule, len(*b.Precedence))
		for i, name := range *b.Precedence {
			r.Precedence[i] = game.BaseRule(name)
		}
	}
	if b.Stacking != nil {
		r.Stacking = game.Stacking(*b.Stacking)
	}
	if b.DoublePointsHoles != nil {
		r.DoublePointsHoles = b.DoublePointsHoles
	}
	return r
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
