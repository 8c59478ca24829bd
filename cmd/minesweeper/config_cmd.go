package main

import (
	"fmt"

	"github.com/lox/minesweeper/internal/config"
)

// ConfigCmd groups configuration file commands.
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a default configuration file"`
}

type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" help:"Where to write the file (defaults to --config)"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}

func (c *ConfigInitCmd) Run(g *Globals) error {
	path := c.Path
	if path == "" {
		path = g.ConfigFile
	}
	if err := config.WriteDefault(path, c.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
