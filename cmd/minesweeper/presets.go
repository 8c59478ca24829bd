package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/minesweeper/internal/game"
)

var nameStyle = lipgloss.NewStyle().Bold(true).Width(14)

// PresetsCmd lists the built-in and configured presets.
type PresetsCmd struct{}

func (c *PresetsCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	listPresets(os.Stdout, cfg.AllPresets())
	return nil
}

func listPresets(w io.Writer, presets []game.Preset) {
	for _, p := range presets {
		_, _ = fmt.Fprintf(w, "%s %3d x %-3d %3d mines\n",
			nameStyle.Render(p.Name), p.Params.Rows, p.Params.Columns, p.Params.Mines)
	}
}
