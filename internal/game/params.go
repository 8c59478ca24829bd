package game

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidParameters is returned when board dimensions or the mine count
// cannot describe a playable board. No engine is created in that case.
var ErrInvalidParameters = errors.New("invalid parameters")

// Params are the construction parameters of a board.
type Params struct {
	Rows    int `json:"rows" yaml:"rows" hcl:"rows"`
	Columns int `json:"columns" yaml:"columns" hcl:"columns"`
	Mines   int `json:"mines" yaml:"mines" hcl:"mines"`
}

// Cells returns the number of cells on the board.
func (p Params) Cells() int {
	return p.Rows * p.Columns
}

// Validate checks that rows and columns are positive, that their product
// fits in an int and that 0 <= mines < rows*columns.
func (p Params) Validate() error {
	if p.Rows <= 0 {
		return fmt.Errorf("%w: rows must be positive, got %d", ErrInvalidParameters, p.Rows)
	}
	if p.Columns <= 0 {
		return fmt.Errorf("%w: columns must be positive, got %d", ErrInvalidParameters, p.Columns)
	}
	if p.Rows > math.MaxInt/p.Columns {
		return fmt.Errorf("%w: %dx%d board is too large", ErrInvalidParameters, p.Rows, p.Columns)
	}
	if p.Mines < 0 || p.Mines >= p.Cells() {
		return fmt.Errorf("%w: mines must be in [0, %d), got %d", ErrInvalidParameters, p.Cells(), p.Mines)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("%dx%d/%d", p.Rows, p.Columns, p.Mines)
}

// Preset is a named difficulty that resolves to Params.
type Preset struct {
	Name   string
	Params Params
}

// Built-in difficulty presets.
var (
	Beginner     = Preset{Name: "beginner", Params: Params{Rows: 9, Columns: 9, Mines: 10}}
	Intermediate = Preset{Name: "intermediate", Params: Params{Rows: 16, Columns: 16, Mines: 40}}
	Expert       = Preset{Name: "expert", Params: Params{Rows: 16, Columns: 30, Mines: 99}}
)

// Presets returns the built-in presets in ascending difficulty.
func Presets() []Preset {
	return []Preset{Beginner, Intermediate, Expert}
}

// LookupPreset finds a preset by case-insensitive name. Presets in extra
// shadow built-ins with the same name.
func LookupPreset(name string, extra ...Preset) (Preset, bool) {
	for _, p := range extra {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// ParseQuery resolves Params from a query context. Either a "preset" key
// naming a known preset, or all of "rows", "columns" and "mines" must be
// present. Missing or malformed values are rejected, never defaulted.
func ParseQuery(q url.Values, extra ...Preset) (Params, error) {
	if name := q.Get("preset"); name != "" {
		preset, ok := LookupPreset(name, extra...)
		if !ok {
			return Params{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidParameters, name)
		}
		return preset.Params, nil
	}

	var p Params
	fields := []struct {
		key string
		dst *int
	}{
		{"rows", &p.Rows},
		{"columns", &p.Columns},
		{"mines", &p.Mines},
	}
	for _, f := range fields {
		raw, ok := q[f.key]
		if !ok || len(raw) == 0 {
			return Params{}, fmt.Errorf("%w: missing %s", ErrInvalidParameters, f.key)
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw[0]))
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s: %v", ErrInvalidParameters, f.key, err)
		}
		*f.dst = v
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
