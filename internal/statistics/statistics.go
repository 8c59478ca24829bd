// Package statistics summarises finished games: win rate and the spread of
// winning times.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lox/minesweeper/internal/game"
)

// Result is the outcome of one finished game.
type Result struct {
	Params  game.Params
	Won     bool
	Elapsed time.Duration
	Cleared int // Safe cells uncovered when the game ended
}

// ResultFromEngine captures the outcome of a finished engine. ok is false
// while the game is still undecided.
func ResultFromEngine(e *game.Engine) (r Result, ok bool) {
	status := e.Status()
	if !status.Over() {
		return Result{}, false
	}
	// A loss uncovers every mine.
	cleared := e.ClearedCount()
	if status == game.Lost {
		cleared -= e.Params().Mines
	}
	return Result{
		Params:  e.Params(),
		Won:     status == game.Won,
		Elapsed: e.Info().Elapsed,
		Cleared: cleared,
	}, true
}

// BoardStats tracks results for one board size
type BoardStats struct {
	Games int
	Wins  int
	Best  time.Duration // Fastest win, meaningful once Wins > 0
}

// Statistics accumulates game results. Timing figures cover wins only,
// since a loss says nothing about how fast the board can be cleared.
type Statistics struct {
	Games  int
	Wins   int
	Losses int

	SumSec  float64
	SumSec2 float64   // Sum of squares for variance calculation
	Values  []float64 // Winning times in seconds, for median and percentiles

	ClearedOnLoss int // Safe cells uncovered across lost games

	ByParams map[game.Params]*BoardStats
}

// Add incorporates a finished game into the statistics
func (s *Statistics) Add(result Result) {
	s.Games++
	if s.ByParams == nil {
		s.ByParams = make(map[game.Params]*BoardStats)
	}
	board := s.ByParams[result.Params]
	if board == nil {
		board = &BoardStats{}
		s.ByParams[result.Params] = board
	}
	board.Games++

	if !result.Won {
		s.Losses++
		s.ClearedOnLoss += result.Cleared
		return
	}

	s.Wins++
	board.Wins++
	if board.Wins == 1 || result.Elapsed < board.Best {
		board.Best = result.Elapsed
	}

	sec := result.Elapsed.Seconds()
	s.SumSec += sec
	s.SumSec2 += sec * sec
	s.Values = append(s.Values, sec)
}

// WinRate returns the fraction of games won
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// Mean returns the mean winning time in seconds
func (s *Statistics) Mean() float64 {
	if s.Wins == 0 {
		return 0
	}
	return s.SumSec / float64(s.Wins)
}

// Variance returns the sample variance of winning times
func (s *Statistics) Variance() float64 {
	if s.Wins < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSec2 - float64(s.Wins)*mean*mean) / float64(s.Wins-1)
}

// StdDev returns the sample standard deviation of winning times
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Median returns the median winning time in seconds
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the winning time at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Best returns the fastest win on boards of the given size.
func (s *Statistics) Best(p game.Params) (time.Duration, bool) {
	board, ok := s.ByParams[p]
	if !ok || board.Wins == 0 {
		return 0, false
	}
	return board.Best, true
}

// Validate checks that the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Wins+s.Losses != s.Games {
		return fmt.Errorf("wins (%d) and losses (%d) do not add up to games (%d)", s.Wins, s.Losses, s.Games)
	}
	if len(s.Values) != s.Wins {
		return fmt.Errorf("values array length (%d) does not match wins (%d)", len(s.Values), s.Wins)
	}

	games, wins := 0, 0
	for p, board := range s.ByParams {
		if board.Wins > board.Games {
			return fmt.Errorf("board %s: wins (%d) exceed games (%d)", p, board.Wins, board.Games)
		}
		games += board.Games
		wins += board.Wins
	}
	if games != s.Games || wins != s.Wins {
		return fmt.Errorf("board totals (%d games, %d wins) do not match overall (%d games, %d wins)",
			games, wins, s.Games, s.Wins)
	}
	return nil
}

// String summarises the record in one line.
func (s *Statistics) String() string {
	if s.Games == 0 {
		return "no games played"
	}
	out := fmt.Sprintf("won %d of %d (%.0f%%)", s.Wins, s.Games, 100*s.WinRate())
	if s.Wins > 0 {
		out += fmt.Sprintf(", median %.0fs", s.Median())
	}
	return out
}
