package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

// quietLogger returns a logger that discards everything below error.
func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newLayoutEngine builds an engine with mines at the given points and fails
// the test if the layout is rejected.
func newLayoutEngine(t *testing.T, rows, cols int, mines []Point, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	e, err := NewWithLayout(rows, cols, mines, opts...)
	if err != nil {
		t.Fatalf("NewWithLayout(%d, %d, %v): %v", rows, cols, mines, err)
	}
	return e
}

// cellRecorder counts notifications per cell and keeps the latest snapshot.
type cellRecorder struct {
	calls map[Point]int
	last  map[Point]CellState
}

func newCellRecorder() *cellRecorder {
	return &cellRecorder{calls: map[Point]int{}, last: map[Point]CellState{}}
}

// attach registers the recorder on every cell of e.
func (r *cellRecorder) attach(e *Engine) {
	rows, cols := e.Dimensions()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p := Point{Row: row, Col: col}
			e.Register(row, col, func(s CellState) {
				r.calls[p]++
				r.last[p] = s
			})
		}
	}
}

func (r *cellRecorder) reset() {
	r.calls = map[Point]int{}
}

// interactionCounts tallies every cell of e by interaction.
func interactionCounts(e *Engine) map[Interaction]int {
	counts := map[Interaction]int{}
	rows, cols := e.Dimensions()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			counts[e.Cell(row, col).Interaction]++
		}
	}
	return counts
}
