package tui

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/minesweeper/internal/game"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestModel(t *testing.T, rows, cols int, mines []game.Point, opts ...game.Option) (*Model, *game.Engine) {
	t.Helper()
	engine, err := game.NewWithLayout(rows, cols, mines, append(opts, game.WithLogger(quietLogger()))...)
	require.NoError(t, err)
	return NewModelWithOptions(engine, quietLogger(), true), engine
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, p game.Point, button tea.MouseButton) (tea.Model, tea.Cmd) {
	return m.Update(tea.MouseMsg{
		X:      p.Col*cellWidth + 1,
		Y:      boardTop + p.Row,
		Action: tea.MouseActionPress,
		Button: button,
	})
}

func TestModelMirrorsEngine(t *testing.T) {
	m, engine := newTestModel(t, 3, 3, []game.Point{{Row: 0, Col: 0}})

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			assert.Equal(t, engine.Cell(r, c), m.Cell(r, c))
		}
	}
	assert.Equal(t, engine.Info(), m.Info())
	assert.Equal(t, game.Point{Row: 1, Col: 1}, m.Cursor())
	assert.True(t, m.IsTestMode())
}

func TestCursorMovementIsClamped(t *testing.T) {
	m, _ := newTestModel(t, 3, 3, nil)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(runes("h"))
	m.Update(runes("h"))
	assert.Equal(t, game.Point{Row: 0, Col: 0}, m.Cursor())

	for i := 0; i < 5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(runes("l"))
	}
	assert.Equal(t, game.Point{Row: 2, Col: 2}, m.Cursor())
}

func TestRevealStartsTimer(t *testing.T) {
	m, engine := newTestModel(t, 3, 3, []game.Point{{Row: 0, Col: 0}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	assert.Equal(t, game.CellState{Interaction: game.Cleared, Kind: game.Clear(1)}, m.Cell(1, 1))
	assert.Equal(t, game.Playing, m.Info().Status)
	assert.True(t, engine.Ticking())
	assert.NotNil(t, cmd, "first reveal schedules a tick")

	_, cmd = m.Update(runes("f"))
	assert.Nil(t, cmd, "timer already running")
}

func TestMouseActions(t *testing.T) {
	m, _ := newTestModel(t, 3, 3, []game.Point{{Row: 0, Col: 0}})

	press(m, game.Point{Row: 0, Col: 0}, tea.MouseButtonRight)
	assert.Equal(t, game.Flagged, m.Cell(0, 0).Interaction)
	assert.Equal(t, 0, m.Info().MinesRemaining)

	press(m, game.Point{Row: 2, Col: 2}, tea.MouseButtonLeft)
	assert.Equal(t, game.Won, m.Info().Status)
	assert.Equal(t, game.Point{Row: 2, Col: 2}, m.Cursor())
	assert.Contains(t, m.GetCapturedLog()[0], "Cleared the board")

	// Clicks off the board are ignored.
	_, cmd := m.Update(tea.MouseMsg{X: 40, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Nil(t, cmd)
}

func TestLosingRevealsMines(t *testing.T) {
	m, _ := newTestModel(t, 3, 3, []game.Point{{Row: 0, Col: 0}, {Row: 2, Col: 2}})

	press(m, game.Point{Row: 0, Col: 0}, tea.MouseButtonLeft)

	assert.Equal(t, game.Lost, m.Info().Status)
	assert.Equal(t, game.CellState{Interaction: game.Cleared, Kind: game.Mine}, m.Cell(2, 2))
	assert.Contains(t, m.View(), "boom")
}

func TestTicks(t *testing.T) {
	m, engine := newTestModel(t, 3, 3, []game.Point{{Row: 0, Col: 0}})
	m.Update(runes("d"))
	require.True(t, engine.Ticking())

	_, cmd := m.Update(tickMsg{gen: m.tickGen})
	assert.NotNil(t, cmd, "ticks reschedule while playing")

	_, cmd = m.Update(tickMsg{gen: m.tickGen - 1})
	assert.Nil(t, cmd, "stale ticks are dropped")

	press(m, game.Point{Row: 0, Col: 0}, tea.MouseButtonLeft)
	require.Equal(t, game.Lost, engine.Status())
	_, cmd = m.Update(tickMsg{gen: m.tickGen})
	assert.Nil(t, cmd, "ticks stop once the game is over")
}

func TestNewGame(t *testing.T) {
	m, engine := newTestModel(t, 3, 3, []game.Point{{Row: 0, Col: 0}})
	m.Update(runes("d"))
	gen := m.tickGen

	m.Update(runes("n"))

	assert.Equal(t, game.NotStarted, engine.Status())
	assert.Equal(t, game.NotStarted, m.Info().Status)
	assert.False(t, m.ticking)
	assert.Greater(t, m.tickGen, gen)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			assert.Equal(t, game.Untouched, m.Cell(r, c).Interaction)
		}
	}
	assert.Equal(t, []string{"New game"}, m.GetCapturedLog())
}

func TestNewGameDisabledOnFreshBoard(t *testing.T) {
	m, engine := newTestModel(t, 3, 3, []game.Point{{Row: 0, Col: 0}},
		game.WithNewGamePolicy(game.NewGameWhenStarted))

	assert.False(t, m.keys.NewGame.Enabled())
	m.Update(runes("n"))
	assert.Empty(t, m.GetCapturedLog())

	m.Update(runes("d"))
	assert.True(t, m.keys.NewGame.Enabled())
	m.Update(runes("n"))
	assert.Equal(t, game.NotStarted, engine.Status())
	assert.False(t, m.keys.NewGame.Enabled())
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, 2, 2, nil)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, 2, 3, []game.Point{{Row: 0, Col: 0}})
	view := m.View()
	assert.Contains(t, view, "minesweeper 2x3/1")
	assert.Contains(t, view, "ready")
	assert.Contains(t, view, "mines   1")
}

func TestProductionModeDoesNotCapture(t *testing.T) {
	engine, err := game.New(game.Params{Rows: 2, Columns: 2, Mines: 1}, game.WithLogger(quietLogger()))
	require.NoError(t, err)
	m := NewModel(engine, quietLogger())

	m.AddLogEntry("hello")
	assert.False(t, m.IsTestMode())
	assert.Nil(t, m.GetCapturedLog())
}

func TestRecordAcrossGames(t *testing.T) {
	m, _ := newTestModel(t, 1, 3, []game.Point{{Row: 0, Col: 1}})

	press(m, game.Point{Row: 0, Col: 1}, tea.MouseButtonLeft)
	require.Equal(t, game.Lost, m.Info().Status)
	assert.Equal(t, "won 0 of 1 (0%)", m.GetCapturedLog()[1])

	m.Update(runes("n"))
	require.Equal(t, game.NotStarted, m.Info().Status)

	stats := m.Stats()
	assert.Equal(t, 1, stats.Games)
	assert.Equal(t, 1, stats.Losses)
	assert.NoError(t, stats.Validate())
}
