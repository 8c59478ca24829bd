package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Placement decides how the mine layout relates to the first reveal.
type Placement uint8

const (
	// PlaceUniform deals mines uniformly at construction with no regard for
	// the first move.
	PlaceUniform Placement = iota
	// PlaceSafeFirst re-deals the layout on the first reveal so that the
	// revealed cell and, where the mine count allows, its neighbourhood are
	// free of mines.
	PlaceSafeFirst
)

func (p Placement) String() string {
	switch p {
	case PlaceUniform:
		return "uniform"
	case PlaceSafeFirst:
		return "safe-first"
	default:
		return fmt.Sprintf("placement(%d)", uint8(p))
	}
}

// ParsePlacement parses the names produced by Placement.String.
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(s) {
	case "", "uniform":
		return PlaceUniform, nil
	case "safe-first", "safe_first":
		return PlaceSafeFirst, nil
	}
	return 0, fmt.Errorf("unknown placement %q", s)
}

// NewGamePolicy decides when Reset is allowed.
type NewGamePolicy uint8

const (
	// NewGameAlways permits Reset at any time.
	NewGameAlways NewGamePolicy = iota
	// NewGameWhenStarted disables Reset on a fresh board nobody has played.
	NewGameWhenStarted
)

func (p NewGamePolicy) String() string {
	switch p {
	case NewGameAlways:
		return "always"
	case NewGameWhenStarted:
		return "when-started"
	default:
		return fmt.Sprintf("new_game_policy(%d)", uint8(p))
	}
}

// ParseNewGamePolicy parses the names produced by NewGamePolicy.String.
func ParseNewGamePolicy(s string) (NewGamePolicy, error) {
	switch strings.ToLower(s) {
	case "", "always":
		return NewGameAlways, nil
	case "when-started", "when_started":
		return NewGameWhenStarted, nil
	}
	return 0, fmt.Errorf("unknown new game policy %q", s)
}

type options struct {
	rng       *rand.Rand
	clock     quartz.Clock
	logger    *log.Logger
	placement Placement
	newGame   NewGamePolicy
}

// Option configures an Engine.
type Option func(*options)

// WithRand sets the source used to deal mine layouts.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithClock sets the clock read by the stopwatch.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogger sets the engine's logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPlacement sets the mine placement policy.
func WithPlacement(p Placement) Option {
	return func(o *options) { o.placement = p }
}

// WithNewGamePolicy sets when Reset is permitted.
func WithNewGamePolicy(p NewGamePolicy) Option {
	return func(o *options) { o.newGame = p }
}
