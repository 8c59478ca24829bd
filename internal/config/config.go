// Package config loads minesweeper settings from HCL or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"gopkg.in/yaml.v3"

	"github.com/lox/minesweeper/internal/fileutil"
	"github.com/lox/minesweeper/internal/game"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "minesweeper.hcl"

// Config represents the complete configuration
type Config struct {
	LogLevel   string          `hcl:"log_level,optional" yaml:"log_level,omitempty"`
	LogFile    string          `hcl:"log_file,optional" yaml:"log_file,omitempty"`
	Difficulty string          `hcl:"difficulty,optional" yaml:"difficulty,omitempty"`
	Placement  string          `hcl:"placement,optional" yaml:"placement,omitempty"`
	NewGame    string          `hcl:"new_game,optional" yaml:"new_game,omitempty"`
	Server     *ServerSettings `hcl:"server,block" yaml:"server,omitempty"`
	Presets    []PresetConfig  `hcl:"preset,block" yaml:"presets,omitempty"`
}

// ServerSettings configures the WebSocket server
type ServerSettings struct {
	Address        string   `hcl:"address,optional" yaml:"address,omitempty"`
	Port           int      `hcl:"port,optional" yaml:"port,omitempty"`
	AllowedOrigins []string `hcl:"allowed_origins,optional" yaml:"allowed_origins,omitempty"`
	MaxCells       int      `hcl:"max_cells,optional" yaml:"max_cells,omitempty"`
}

// PresetConfig defines a named board size
type PresetConfig struct {
	Name    string `hcl:"name,label" yaml:"name"`
	Rows    int    `hcl:"rows" yaml:"rows"`
	Columns int    `hcl:"columns" yaml:"columns"`
	Mines   int    `hcl:"mines" yaml:"mines"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		LogFile:    "minesweeper.log",
		Difficulty: game.Beginner.Name,
		Placement:  game.PlaceUniform.String(),
		NewGame:    game.NewGameAlways.String(),
		Server: &ServerSettings{
			Address:        "localhost",
			Port:           8080,
			AllowedOrigins: []string{"*"},
			MaxCells:       10000,
		},
	}
}

// Load reads configuration from an HCL file, or a YAML file when the
// extension is .yaml or .yml. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if isYAML(filename) {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	} else {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(data, filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}
		diags = gohcl.DecodeBody(file.Body, nil, &cfg)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
	if c.Difficulty == "" {
		c.Difficulty = def.Difficulty
	}
	if c.Placement == "" {
		c.Placement = def.Placement
	}
	if c.NewGame == "" {
		c.NewGame = def.NewGame
	}
	if c.Server == nil {
		c.Server = def.Server
		return
	}
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	if c.Server.MaxCells == 0 {
		c.Server.MaxCells = def.Server.MaxCells
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := game.ParsePlacement(c.Placement); err != nil {
		return fmt.Errorf("placement: %w", err)
	}
	if _, err := game.ParseNewGamePolicy(c.NewGame); err != nil {
		return fmt.Errorf("new_game: %w", err)
	}
	if c.Server != nil && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("server: invalid port: %d", c.Server.Port)
	}
	if c.Server != nil && c.Server.MaxCells < 1 {
		return fmt.Errorf("server: max_cells must be positive, got %d", c.Server.MaxCells)
	}

	seen := make(map[string]bool)
	for _, p := range c.Presets {
		name := strings.ToLower(p.Name)
		if name == "" {
			return fmt.Errorf("preset: name is required")
		}
		if seen[name] {
			return fmt.Errorf("preset %s: defined more than once", p.Name)
		}
		seen[name] = true
		if err := p.params().Validate(); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}

	if _, err := c.DefaultParams(); err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}
	return nil
}

func (p PresetConfig) params() game.Params {
	return game.Params{Rows: p.Rows, Columns: p.Columns, Mines: p.Mines}
}

// CustomPresets returns the presets defined in the file.
func (c *Config) CustomPresets() []game.Preset {
	presets := make([]game.Preset, 0, len(c.Presets))
	for _, p := range c.Presets {
		presets = append(presets, game.Preset{Name: p.Name, Params: p.params()})
	}
	return presets
}

// AllPresets returns the built-in presets followed by custom ones, with
// custom presets replacing built-ins of the same name.
func (c *Config) AllPresets() []game.Preset {
	custom := c.CustomPresets()
	var all []game.Preset
	for _, b := range game.Presets() {
		if p, ok := game.LookupPreset(b.Name, custom...); ok {
			all = append(all, p)
		}
	}
	for _, p := range custom {
		if _, builtin := game.LookupPreset(p.Name); !builtin {
			all = append(all, p)
		}
	}
	return all
}

// DefaultParams resolves the configured difficulty.
func (c *Config) DefaultParams() (game.Params, error) {
	p, ok := game.LookupPreset(c.Difficulty, c.CustomPresets()...)
	if !ok {
		return game.Params{}, fmt.Errorf("%w: unknown preset %q", game.ErrInvalidParameters, c.Difficulty)
	}
	return p.Params, nil
}

// EngineOptions returns the engine options implied by the policies.
func (c *Config) EngineOptions() ([]game.Option, error) {
	placement, err := game.ParsePlacement(c.Placement)
	if err != nil {
		return nil, err
	}
	newGame, err := game.ParseNewGamePolicy(c.NewGame)
	if err != nil {
		return nil, err
	}
	return []game.Option{game.WithPlacement(placement), game.WithNewGamePolicy(newGame)}, nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// HCL renders the configuration as an HCL document.
func (c *Config) HCL() []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())
	return f.Bytes()
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes the default configuration to filename, as YAML when
// the extension asks for it and HCL otherwise. An existing file is only
// replaced when overwrite is set.
func WriteDefault(filename string, overwrite bool) error {
	if _, err := os.Stat(filename); err == nil && !overwrite {
		return fmt.Errorf("%s already exists", filename)
	}

	data := Default().HCL()
	if isYAML(filename) {
		var err error
		if data, err = Default().YAML(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
	}
	return fileutil.WriteFileAtomic(filename, data, 0o644)
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
