package game

import (
	"fmt"
	"time"

	"github.com/coder/quartz"
)

// Status is the lifecycle state of a game.
type Status uint8

const (
	NotStarted Status = iota
	Playing
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Over reports whether the game has reached a terminal state.
func (s Status) Over() bool {
	return s == Won || s == Lost
}

// Stopwatch measures elapsed play time in whole seconds.
type Stopwatch struct {
	clock   quartz.Clock
	started time.Time
	frozen  time.Duration
	running bool
}

// NewStopwatch returns a stopped stopwatch reading zero.
func NewStopwatch(clock quartz.Clock) *Stopwatch {
	return &Stopwatch{clock: clock}
}

// Start begins measuring from zero.
func (s *Stopwatch) Start() {
	s.started = s.clock.Now()
	s.frozen = 0
	s.running = true
}

// Stop freezes the current reading.
func (s *Stopwatch) Stop() {
	if !s.running {
		return
	}
	s.frozen = s.read()
	s.running = false
}

// Reset stops the stopwatch and clears it to zero.
func (s *Stopwatch) Reset() {
	s.running = false
	s.frozen = 0
}

// Running reports whether the stopwatch is measuring.
func (s *Stopwatch) Running() bool {
	return s.running
}

// Elapsed returns the reading truncated to whole seconds.
func (s *Stopwatch) Elapsed() time.Duration {
	if !s.running {
		return s.frozen
	}
	return s.read()
}

func (s *Stopwatch) read() time.Duration {
	d := s.clock.Now().Sub(s.started)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// Info is the board-level aggregate delivered to the info observer.
type Info struct {
	Elapsed        time.Duration
	Status         Status
	MinesRemaining int
	NewGameAllowed bool
}

func (i Info) String() string {
	return fmt.Sprintf("%03d  %s  mines: %d", int(i.Elapsed/time.Second), i.Status, i.MinesRemaining)
}
