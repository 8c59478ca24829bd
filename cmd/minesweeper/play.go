package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/lox/minesweeper/internal/config"
	"github.com/lox/minesweeper/internal/game"
	"github.com/lox/minesweeper/internal/randutil"
	"github.com/lox/minesweeper/internal/tui"
)

// PlayCmd runs a game in the terminal.
type PlayCmd struct {
	Preset  string `short:"p" help:"Board preset (overrides config difficulty)"`
	Rows    *int   `help:"Board rows (requires --columns and --mines)"`
	Columns *int   `help:"Board columns (requires --rows and --mines)"`
	Mines   *int   `help:"Number of mines (requires --rows and --columns)"`
	Seed    *int64 `help:"Deterministic RNG seed (optional)"`
}

// params resolves the board from flags, falling back to the configured
// difficulty. Explicit sizes take precedence over a preset.
func (c *PlayCmd) params(cfg *config.Config) (game.Params, error) {
	q := url.Values{}
	for key, v := range map[string]*int{"rows": c.Rows, "columns": c.Columns, "mines": c.Mines} {
		if v != nil {
			q.Set(key, strconv.Itoa(*v))
		}
	}
	if len(q) == 0 {
		if c.Preset == "" {
			return cfg.DefaultParams()
		}
		q.Set("preset", c.Preset)
	}
	return game.ParseQuery(q, cfg.CustomPresets()...)
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	params, err := c.params(cfg)
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := newLogger(logFile, cfg.LogLevel, "minesweeper")
	seed := randutil.Seed(c.Seed)
	logger.Info("Starting game", "params", params, "seed", seed, "placement", cfg.Placement, "new_game", cfg.NewGame)

	opts = append(opts, game.WithRand(randutil.New(seed)), game.WithLogger(logger))
	engine, err := game.New(params, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()
	return tui.Run(ctx, engine, logger)
}
