// Package tui renders a minesweeper engine in the terminal with Bubble Tea.
// The model holds no authoritative state: it mirrors what the engine pushes
// through its cell and info observers and turns keys and mouse clicks into
// engine actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/minesweeper/internal/game"
	"github.com/lox/minesweeper/internal/statistics"
)

const (
	// boardTop is the screen row of the first board row: header, info
	// line, blank separator.
	boardTop = 3
	// cellWidth is the number of screen columns per cell.
	cellWidth = 3
	// maxLogEntries bounds the game log shown under the board.
	maxLogEntries = 4
)

// tickMsg drives the engine timer. gen ties a tick to the scheduling that
// produced it, so ticks from before a reset are dropped.
type tickMsg struct {
	gen int
}

// Model is the Bubble Tea model for a game
type Model struct {
	engine *game.Engine
	logger *log.Logger

	keys keyMap
	help help.Model

	// Mirror of engine state, written only by observers.
	rows  int
	cols  int
	cells []game.CellState
	info  game.Info

	cursor   game.Point
	ticking  bool
	tickGen  int
	quitting bool
	width    int
	height   int

	gameLog []string
	stats   statistics.Statistics

	// Test mode
	testMode    bool
	capturedLog []string
}

// NewModel creates a model bound to engine and registers it as the
// engine's observer for every cell and for board info.
func NewModel(engine *game.Engine, logger *log.Logger) *Model {
	return NewModelWithOptions(engine, logger, false)
}

// NewModelWithOptions creates a model with test mode option
func NewModelWithOptions(engine *game.Engine, logger *log.Logger, testMode bool) *Model {
	rows, cols := engine.Dimensions()
	m := &Model{
		engine:   engine,
		logger:   logger.WithPrefix("tui"),
		keys:     defaultKeyMap(),
		help:     help.New(),
		rows:     rows,
		cols:     cols,
		cells:    make([]game.CellState, rows*cols),
		cursor:   game.Point{Row: rows / 2, Col: cols / 2},
		testMode: testMode,
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			engine.Register(r, c, func(s game.CellState) {
				m.cells[i] = s
			})
		}
	}
	engine.OnInfo(m.onInfo)
	return m
}

func (m *Model) onInfo(info game.Info) {
	prev := m.info.Status
	m.info = info
	m.keys.NewGame.SetEnabled(info.NewGameAllowed)

	if prev == info.Status {
		return
	}
	switch info.Status {
	case game.Won:
		m.AddLogEntry(fmt.Sprintf("Cleared the board in %s", info.Elapsed))
	case game.Lost:
		m.AddLogEntry(fmt.Sprintf("Hit a mine after %s", info.Elapsed))
	default:
		return
	}

	if r, ok := statistics.ResultFromEngine(m.engine); ok {
		m.stats.Add(r)
		m.AddLogEntry(m.stats.String())
		m.logger.Info("Game over", "won", r.Won, "elapsed", r.Elapsed, "record", m.stats.String())
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle("minesweeper")
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		if msg.gen != m.tickGen || !m.ticking {
			return m, nil
		}
		m.engine.Tick()
		if !m.engine.Ticking() {
			m.ticking = false
			return m, nil
		}
		return m, m.scheduleTick()

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		p, ok := m.cellAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.cursor = p
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.reveal()
		case tea.MouseButtonRight:
			m.flag()
		}
		return m, m.syncTimer()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1, 0)
		case key.Matches(msg, m.keys.Down):
			m.move(1, 0)
		case key.Matches(msg, m.keys.Left):
			m.move(0, -1)
		case key.Matches(msg, m.keys.Right):
			m.move(0, 1)
		case key.Matches(msg, m.keys.Reveal):
			m.reveal()
		case key.Matches(msg, m.keys.Flag):
			m.flag()
		case key.Matches(msg, m.keys.NewGame):
			m.newGame()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, m.syncTimer()
	}

	return m, nil
}

func (m *Model) move(dr, dc int) {
	m.cursor.Row = clamp(m.cursor.Row+dr, 0, m.rows-1)
	m.cursor.Col = clamp(m.cursor.Col+dc, 0, m.cols-1)
}

func (m *Model) reveal() {
	m.logger.Debug("Reveal", "cell", m.cursor)
	m.engine.Reveal(m.cursor.Row, m.cursor.Col)
}

func (m *Model) flag() {
	m.logger.Debug("Toggle flag", "cell", m.cursor)
	m.engine.ToggleFlag(m.cursor.Row, m.cursor.Col)
}

func (m *Model) newGame() {
	if !m.engine.Reset() {
		m.logger.Debug("New game not allowed")
		return
	}
	// Any tick in flight belongs to the previous board.
	m.ticking = false
	m.tickGen++
	m.AddLogEntry("New game")
}

// syncTimer starts the tick loop when play begins. The loop stops itself
// once the engine reports it is no longer ticking.
func (m *Model) syncTimer() tea.Cmd {
	if !m.engine.Ticking() {
		m.ticking = false
		return nil
	}
	if m.ticking {
		return nil
	}
	m.ticking = true
	m.tickGen++
	return m.scheduleTick()
}

func (m *Model) scheduleTick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// cellAt maps a screen position to a board cell.
func (m *Model) cellAt(x, y int) (game.Point, bool) {
	row := y - boardTop
	if x < 0 || row < 0 || row >= m.rows {
		return game.Point{}, false
	}
	col := x / cellWidth
	if col >= m.cols {
		return game.Point{}, false
	}
	return game.Point{Row: row, Col: col}, true
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("minesweeper %s", m.engine.Params())))
	b.WriteString("\n")
	b.WriteString(m.renderInfo())
	b.WriteString("\n\n")

	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			b.WriteString(m.renderCell(game.Point{Row: r, Col: c}))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, entry := range m.gameLog {
		b.WriteString(GameLogStyle.Render(entry))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderInfo() string {
	secs := int(m.info.Elapsed / time.Second)
	text := fmt.Sprintf("time %03d   mines %3d   ", secs, m.info.MinesRemaining)

	var status string
	switch m.info.Status {
	case game.Won:
		status = WonStyle.Render("you win!")
	case game.Lost:
		status = LostStyle.Render("boom")
	case game.Playing:
		status = InfoStyle.Render("playing")
	default:
		status = InfoStyle.Render("ready")
	}

	newGame := "[n] new game"
	if !m.info.NewGameAllowed {
		newGame = DisabledStyle.Render(newGame)
	}
	return InfoStyle.Render(text) + status + "   " + newGame
}

func (m *Model) renderCell(p game.Point) string {
	s := m.cells[p.Row*m.cols+p.Col]
	text := " " + s.Symbol() + " "

	var style lipgloss.Style
	switch {
	case s.Interaction == game.Flagged:
		style = flagCellStyle
	case s.Interaction == game.Untouched:
		style = hiddenCellStyle
	case s.Kind.IsMine():
		style = mineCellStyle
	default:
		style = clearedCellStyle.Foreground(numberColors[s.Kind.Count()])
	}
	if p == m.cursor {
		style = style.Reverse(true)
	}
	return style.Render(text)
}

// AddLogEntry appends a line to the game log under the board.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	if len(m.gameLog) > maxLogEntries {
		m.gameLog = m.gameLog[len(m.gameLog)-maxLogEntries:]
	}
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
	}
}

// IsTestMode returns true if the model is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}

// GetCapturedLog returns every log entry added in test mode
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	return m.capturedLog
}

// Cell returns the mirrored state of a cell.
func (m *Model) Cell(row, col int) game.CellState {
	return m.cells[row*m.cols+col]
}

// Info returns the mirrored board info.
func (m *Model) Info() game.Info {
	return m.info
}

// Stats returns the record of games finished in this run.
func (m *Model) Stats() *statistics.Statistics {
	return &m.stats
}

// Cursor returns the selected cell.
func (m *Model) Cursor() game.Point {
	return m.cursor
}

// Run starts the program and blocks until the player quits or ctx is
// cancelled.
func Run(ctx context.Context, engine *game.Engine, logger *log.Logger) error {
	m := NewModel(engine, logger)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
