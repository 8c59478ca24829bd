package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/minesweeper/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	ConfigFile string `name:"config" short:"c" default:"minesweeper.hcl" help:"Path to HCL or YAML configuration file"`
	LogLevel   string `short:"l" help:"Log level (overrides config)"`
	NoColor    bool   `help:"Disable colour output"`
}

// loadConfig reads and validates the configuration, applying flag
// overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", g.ConfigFile, err)
	}
	return cfg, nil
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Play    PlayCmd          `cmd:"" default:"withargs" help:"Play in the terminal"`
	Serve   ServeCmd         `cmd:"" help:"Serve games over WebSocket"`
	Presets PresetsCmd       `cmd:"" help:"List board presets"`
	Config  ConfigCmd        `cmd:"" help:"Manage the configuration file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("minesweeper"),
		kong.Description("Minesweeper for the terminal and the browser"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
