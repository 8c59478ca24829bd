// Package game implements the minesweeper engine.
//
// The main type is Engine, which owns a Board of cells, the game Status, a
// Stopwatch and the observer registry used by renderers. All mutation goes
// through Reveal, ToggleFlag, Reset and Tick.
//
// # Basic Usage
//
//	e, err := game.New(game.Params{Rows: 9, Columns: 9, Mines: 10})
//	if errors.Is(err, game.ErrInvalidParameters) {
//	    // render an error view instead of a board
//	}
//	e.OnInfo(func(info game.Info) { fmt.Println(info) })
//	e.Register(0, 0, func(s game.CellState) { fmt.Println(s) })
//	e.Reveal(0, 0)
//
// # Deterministic Testing
//
// Mine layouts are dealt from a *rand.Rand, which can be injected:
//
//	e, err := game.New(params, game.WithRand(randutil.New(42)))
//
// A fixed layout can be supplied directly:
//
//	e, err := game.NewWithLayout(3, 3, []game.Point{{0, 0}, {2, 2}})
//
// The stopwatch reads time from a quartz.Clock, so tests can drive it with
// quartz.NewMock.
//
// # Threading
//
// The engine is not safe for concurrent use. Callers drive it from a single
// goroutine (the Bubble Tea update loop, or one session goroutine per
// WebSocket connection) and every observer is invoked synchronously before
// the triggering call returns.
package game
