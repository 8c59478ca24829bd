package game

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/minesweeper/internal/gameid"
	"github.com/lox/minesweeper/internal/randutil"
)

// Engine owns all puzzle state. It is mutated only through Reveal,
// ToggleFlag, Reset and Tick, and pushes every visible change to the
// registered observers before those calls return.
type Engine struct {
	params    Params
	opts      options
	id        string
	board     *Board
	status    Status
	watch     *Stopwatch
	observers *registry
	logger    *log.Logger
}

// New validates params and deals a random mine layout. It returns an error
// wrapping ErrInvalidParameters if params are not playable.
func New(params Params, opts ...Option) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	e := newEngine(params, opts)
	e.deal(nil)
	return e, nil
}

// NewWithLayout builds an engine with mines at exactly the given points.
// Reset still deals fresh random layouts with the same mine count.
func NewWithLayout(rows, columns int, mines []Point, opts ...Option) (*Engine, error) {
	params := Params{Rows: rows, Columns: columns, Mines: len(mines)}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	e := newEngine(params, opts)

	seen := make(map[Point]bool, len(mines))
	indices := make([]int, 0, len(mines))
	for _, p := range mines {
		if !e.board.contains(p) {
			return nil, fmt.Errorf("%w: mine %s outside %dx%d board", ErrInvalidParameters, p, rows, columns)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: duplicate mine %s", ErrInvalidParameters, p)
		}
		seen[p] = true
		indices = append(indices, e.board.index(p))
	}
	e.board.layMines(indices)
	e.logger.Debug("Board laid out", "params", params)
	return e, nil
}

func newEngine(params Params, opts []Option) *Engine {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = randutil.New(time.Now().UnixNano())
	}
	if o.clock == nil {
		o.clock = quartz.NewReal()
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	id := gameid.New(o.rng)
	return &Engine{
		params:    params,
		opts:      o,
		id:        id,
		board:     newBoard(params, nil),
		watch:     NewStopwatch(o.clock),
		observers: newRegistry(params.Cells()),
		logger:    o.logger.WithPrefix("engine").With("board", id),
	}
}

// deal lays a fresh random layout avoiding the excluded cells.
func (e *Engine) deal(exclude func(int) bool) {
	mines := dealMines(e.params.Cells(), e.params.Mines, e.opts.rng, exclude)
	e.board.layMines(mines)
	e.logger.Debug("Board dealt", "params", e.params, "placement", e.opts.placement)
}

// ID identifies the engine in logs and on the wire.
func (e *Engine) ID() string { return e.id }

// Params returns the construction parameters.
func (e *Engine) Params() Params { return e.params }

// Dimensions returns the number of rows and columns.
func (e *Engine) Dimensions() (rows, columns int) {
	return e.params.Rows, e.params.Columns
}

// Status returns the current game status.
func (e *Engine) Status() Status { return e.status }

// ClearedCount returns the number of cleared cells, mines included.
func (e *Engine) ClearedCount() int { return e.board.cleared }

// FlaggedCount returns the number of flagged cells.
func (e *Engine) FlaggedCount() int { return e.board.flagged }

// Cell returns the current state of a cell. It panics if the coordinate is
// off the board.
func (e *Engine) Cell(row, col int) CellState {
	return e.board.state(e.point(row, col))
}

// Info returns the current board-level aggregate.
func (e *Engine) Info() Info {
	return Info{
		Elapsed:        e.watch.Elapsed(),
		Status:         e.status,
		MinesRemaining: e.params.Mines - e.board.flagged,
		NewGameAllowed: e.NewGameAllowed(),
	}
}

// NewGameAllowed reports whether Reset would run under the configured
// policy.
func (e *Engine) NewGameAllowed() bool {
	switch e.opts.newGame {
	case NewGameWhenStarted:
		return e.status != NotStarted
	default:
		return true
	}
}

// Ticking reports whether timer ticks have any effect. Drivers stop
// scheduling Tick as soon as this turns false.
func (e *Engine) Ticking() bool {
	return e.status == Playing
}

// Register stores fn as the observer for a cell, replacing any previous
// one, and immediately calls it with the cell's current state.
func (e *Engine) Register(row, col int, fn CellObserver) {
	p := e.point(row, col)
	i := e.board.index(p)
	e.observers.cells[i] = fn
	e.observers.notifyCell(i, e.board.state(p))
}

// OnInfo stores fn as the info observer and immediately calls it with the
// current aggregate.
func (e *Engine) OnInfo(fn InfoObserver) {
	e.observers.info = fn
	e.observers.notifyInfo(e.Info(), true)
}

// Reveal uncovers a cell. Revealing a flagged or cleared cell, or any cell
// once the game is over, does nothing.
func (e *Engine) Reveal(row, col int) {
	p := e.point(row, col)
	if e.status.Over() || e.board.interaction(p) != Untouched {
		return
	}

	if e.status == NotStarted {
		if e.opts.placement == PlaceSafeFirst {
			e.clearAround(p)
		}
		e.status = Playing
		e.watch.Start()
		e.logger.Debug("Game started", "first", p)
	}

	if e.board.kind(p).IsMine() {
		e.explode(p)
		return
	}

	revealed := e.flood(p)
	e.logger.Debug("Revealed", "cell", p, "cells", revealed, "cleared", e.board.cleared)

	if e.board.cleared == e.board.safeCells() {
		e.win()
	}
	e.publishInfo(false)
}

// flood clears p and, while it finds cells with no neighbouring mines,
// every untouched cell connected to them. Flagged cells are skipped. It
// returns the number of cells cleared.
func (e *Engine) flood(start Point) int {
	b := e.board
	visited := make([]bool, b.size())
	visited[b.index(start)] = true
	stack := []Point{start}
	revealed := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e.setCell(p, Cleared)
		revealed++

		if b.kind(p) != 0 {
			continue
		}
		b.eachNeighbour(p, func(n Point) {
			i := b.index(n)
			if visited[i] || b.states[i] != Untouched {
				return
			}
			visited[i] = true
			stack = append(stack, n)
		})
	}
	return revealed
}

func (e *Engine) explode(p Point) {
	e.setCell(p, Cleared)
	e.status = Lost
	e.watch.Stop()

	for i, k := range e.board.kinds {
		if k.IsMine() && e.board.states[i] == Untouched {
			e.setCell(e.board.point(i), Cleared)
		}
	}
	e.logger.Info("Game lost", "cell", p, "elapsed", e.watch.Elapsed())
	e.publishInfo(false)
}

func (e *Engine) win() {
	e.status = Won
	e.watch.Stop()

	for i, k := range e.board.kinds {
		if k.IsMine() && e.board.states[i] == Untouched {
			e.setCell(e.board.point(i), Flagged)
		}
	}
	e.logger.Info("Game won", "elapsed", e.watch.Elapsed())
}

// clearAround re-deals the layout so that p and its neighbourhood hold no
// mines. When the board is too dense for that, only p is kept clear.
func (e *Engine) clearAround(p Point) {
	b := e.board
	zone := map[int]bool{b.index(p): true}
	b.eachNeighbour(p, func(n Point) { zone[b.index(n)] = true })
	if b.size()-len(zone) < e.params.Mines {
		zone = map[int]bool{b.index(p): true}
	}
	if !anyMine(b, zone) {
		return
	}

	before := make([]Kind, len(b.kinds))
	copy(before, b.kinds)
	e.deal(func(i int) bool { return zone[i] })

	for i := range b.kinds {
		if b.kinds[i] != before[i] {
			e.observers.notifyCell(i, b.state(b.point(i)))
		}
	}
}

func anyMine(b *Board, cells map[int]bool) bool {
	for i := range cells {
		if b.kinds[i].IsMine() {
			return true
		}
	}
	return false
}

// ToggleFlag flips a cell between Untouched and Flagged. It does nothing on
// cleared cells or once the game is over.
func (e *Engine) ToggleFlag(row, col int) {
	p := e.point(row, col)
	if e.status.Over() {
		return
	}
	switch e.board.interaction(p) {
	case Untouched:
		e.setCell(p, Flagged)
	case Flagged:
		e.setCell(p, Untouched)
	default:
		return
	}
	e.publishInfo(false)
}

// Reset deals a fresh layout with the same parameters, zeroes the timer and
// pushes the new baseline to every registered observer. It returns false,
// doing nothing, when the new game policy forbids it.
func (e *Engine) Reset() bool {
	if !e.NewGameAllowed() {
		return false
	}

	for i := range e.board.states {
		e.board.states[i] = Untouched
	}
	e.board.cleared = 0
	e.board.flagged = 0
	e.deal(nil)
	e.status = NotStarted
	e.watch.Reset()

	e.observers.each(func(i int) {
		e.observers.notifyCell(i, e.board.state(e.board.point(i)))
	})
	e.publishInfo(true)
	e.logger.Info("Board reset")
	return true
}

// Tick publishes the elapsed time when it has moved on by a whole second.
// It does nothing unless the game is being played.
func (e *Engine) Tick() {
	if !e.Ticking() {
		return
	}
	e.publishInfo(false)
}

func (e *Engine) setCell(p Point, to Interaction) {
	e.board.set(p, to)
	e.observers.notifyCell(e.board.index(p), e.board.state(p))
}

func (e *Engine) publishInfo(force bool) {
	e.observers.notifyInfo(e.Info(), force)
}

// point converts a coordinate, panicking if it is off the board.
func (e *Engine) point(row, col int) Point {
	p := Point{Row: row, Col: col}
	if !e.board.contains(p) {
		panic(fmt.Sprintf("game: cell %s outside %dx%d board", p, e.params.Rows, e.params.Columns))
	}
	return p
}

func (e *Engine) String() string {
	return e.board.String()
}
