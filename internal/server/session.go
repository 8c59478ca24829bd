package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/minesweeper/internal/game"
	"github.com/lox/minesweeper/internal/statistics"
)

// session drives one engine on behalf of one connection. All engine calls
// happen on the session goroutine, so the engine needs no locking.
type session struct {
	conn    *Connection
	config  Config
	rng     *rand.Rand
	logger  *log.Logger
	engine  *game.Engine
	ticker  *quartz.Ticker
	tickerC <-chan time.Time

	// onResult is told about each finished game once.
	onResult func(statistics.Result)
	recorded bool
}

func newSession(conn *Connection, cfg Config, rng *rand.Rand, logger *log.Logger) *session {
	return &session{
		conn:   conn,
		config: cfg,
		rng:    rng,
		logger: logger,
	}
}

// run processes client messages and timer ticks until the connection or
// ctx is done.
func (s *session) run(ctx context.Context) {
	defer s.stopTicker()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.conn.Done():
			return
		case msg, ok := <-s.conn.Inbox():
			if !ok {
				return
			}
			s.handle(msg)
		case <-s.tickerC:
			s.engine.Tick()
		}
		s.syncTicker()
	}
}

// syncTicker keeps a one second ticker alive exactly while the engine's
// clock is running.
func (s *session) syncTicker() {
	if s.engine != nil && s.engine.Ticking() {
		if s.ticker == nil {
			s.ticker = s.config.Clock.NewTicker(time.Second, "session", "tick")
			s.tickerC = s.ticker.C
		}
		return
	}
	s.stopTicker()
}

func (s *session) stopTicker() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
	s.tickerC = nil
}

func (s *session) handle(msg *Message) {
	switch msg.Type {
	case MessageTypeNewGame:
		var data NewGameData
		if err := decode(msg, &data); err != nil {
			s.sendError(ErrCodeInvalidMessage, err.Error())
			return
		}
		params, err := s.resolve(data)
		if err != nil {
			s.sendError(ErrCodeInvalidParameters, err.Error())
			return
		}
		if err := s.start(params); err != nil {
			s.sendError(ErrCodeInvalidParameters, err.Error())
		}

	case MessageTypeReveal, MessageTypeFlag:
		var data CellActionData
		if err := decode(msg, &data); err != nil {
			s.sendError(ErrCodeInvalidMessage, err.Error())
			return
		}
		if s.engine == nil {
			s.sendError(ErrCodeNoGame, "no game in progress")
			return
		}
		rows, cols := s.engine.Dimensions()
		if data.Row < 0 || data.Row >= rows || data.Column < 0 || data.Column >= cols {
			s.sendError(ErrCodeOutOfRange, fmt.Sprintf("cell (%d,%d) is outside a %dx%d board", data.Row, data.Column, rows, cols))
			return
		}
		if msg.Type == MessageTypeReveal {
			s.engine.Reveal(data.Row, data.Column)
		} else {
			s.engine.ToggleFlag(data.Row, data.Column)
		}

	case MessageTypeReset:
		if s.engine == nil {
			s.sendError(ErrCodeNoGame, "no game in progress")
			return
		}
		if !s.engine.Reset() {
			s.sendError(ErrCodeNewGameDisabled, "a new game is only allowed once play has started")
		}

	default:
		s.sendError(ErrCodeUnknownMessage, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// resolve turns a new_game request into board parameters.
func (s *session) resolve(data NewGameData) (game.Params, error) {
	if data.Preset != "" {
		preset, ok := game.LookupPreset(data.Preset, s.config.Presets...)
		if !ok {
			return game.Params{}, fmt.Errorf("%w: unknown preset %q", game.ErrInvalidParameters, data.Preset)
		}
		return preset.Params, nil
	}
	return game.Params{Rows: data.Rows, Columns: data.Columns, Mines: data.Mines}, nil
}

// start replaces the session's engine and pushes the full board to the
// client: a game message, one cell message per cell and the info.
func (s *session) start(params game.Params) error {
	if err := s.config.checkParams(params); err != nil {
		return err
	}
	opts := append([]game.Option{
		game.WithRand(s.rng),
		game.WithClock(s.config.Clock),
		game.WithLogger(s.logger),
	}, s.config.EngineOptions...)

	engine, err := s.config.newEngine(params, opts...)
	if err != nil {
		return err
	}

	s.stopTicker()
	s.engine = engine
	s.logger.Info("New game", "board", engine.ID(), "params", params)

	s.send(MessageTypeGame, GameData{
		ID:      engine.ID(),
		Rows:    params.Rows,
		Columns: params.Columns,
		Mines:   params.Mines,
	})

	for r := range params.Rows {
		for c := range params.Columns {
			p := game.Point{Row: r, Col: c}
			engine.Register(r, c, func(state game.CellState) {
				s.send(MessageTypeCell, CellDataFromGame(p, state))
			})
		}
	}
	s.recorded = false
	engine.OnInfo(func(info game.Info) {
		s.send(MessageTypeInfo, InfoDataFromGame(info))
		s.observe(engine, info)
	})
	return nil
}

// observe reports a game's result the first time it is seen to be over.
// A reset puts the engine back to not started and re-arms it.
func (s *session) observe(engine *game.Engine, info game.Info) {
	if !info.Status.Over() {
		s.recorded = false
		return
	}
	if s.recorded || s.onResult == nil {
		return
	}
	if result, ok := statistics.ResultFromEngine(engine); ok {
		s.recorded = true
		s.onResult(result)
	}
}

func (s *session) send(t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		s.logger.Error("Failed to encode message", "type", t, "error", err)
		return
	}
	if err := s.conn.SendMessage(msg); err != nil && !errors.Is(err, ErrConnectionClosed) {
		s.logger.Debug("Failed to send message", "type", t, "error", err)
	}
}

func (s *session) sendError(code, message string) {
	s.logger.Debug("Rejected request", "code", code, "message", message)
	s.send(MessageTypeError, ErrorData{Code: code, Message: message})
}

func decode(msg *Message, v any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", msg.Type, err)
	}
	return nil
}
