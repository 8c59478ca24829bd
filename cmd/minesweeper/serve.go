package main

import (
	"os"

	"github.com/lox/minesweeper/internal/randutil"
	"github.com/lox/minesweeper/internal/server"
)

// ServeCmd hosts games over WebSocket.
type ServeCmd struct {
	Addr    string   `short:"a" help:"Server address to bind to (overrides config)"`
	Origins []string `help:"Allowed WebSocket origins (overrides config)"`
	Seed    *int64   `help:"Deterministic RNG seed for the server (optional)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel, "")

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	origins := cfg.Server.AllowedOrigins
	if len(c.Origins) > 0 {
		origins = c.Origins
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	seed := randutil.Seed(c.Seed)
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Info("Using random seed", "seed", seed)
	}

	srv := server.NewServer(logger, randutil.New(seed),
		server.WithPresets(cfg.CustomPresets()...),
		server.WithEngineOptions(opts...),
		server.WithAllowedOrigins(origins...),
		server.WithMaxCells(cfg.Server.MaxCells),
	)

	logger.Info("Starting minesweeper server",
		"addr", addr,
		"origins", origins,
		"placement", cfg.Placement,
		"new_game", cfg.NewGame,
		"max_cells", cfg.Server.MaxCells,
		"presets", len(cfg.AllPresets()))

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()
	return srv.Serve(ctx, addr)
}
