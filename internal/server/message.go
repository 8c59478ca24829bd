package server

import (
	"cmp"
	"encoding/json"
	"slices"
	"time"

	"github.com/lox/minesweeper/internal/game"
	"github.com/lox/minesweeper/internal/statistics"
)

// MessageType identifies the payload carried by a Message
type MessageType string

// Client → Server
const (
	MessageTypeNewGame MessageType = "new_game"
	MessageTypeReveal  MessageType = "reveal"
	MessageTypeFlag    MessageType = "flag"
	MessageTypeReset   MessageType = "reset"
)

// Server → Client
const (
	MessageTypeGame  MessageType = "game"
	MessageTypeCell  MessageType = "cell"
	MessageTypeInfo  MessageType = "info"
	MessageTypeError MessageType = "error"
)

// Error codes sent in ErrorData
const (
	ErrCodeInvalidMessage    = "invalid_message"
	ErrCodeInvalidParameters = "invalid_parameters"
	ErrCodeNoGame            = "no_game"
	ErrCodeOutOfRange        = "out_of_range"
	ErrCodeNewGameDisabled   = "new_game_disabled"
	ErrCodeUnknownMessage    = "unknown_message"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// NewGameData asks for a new board, either by preset name or explicit size.
type NewGameData struct {
	Preset  string `json:"preset,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Columns int    `json:"columns,omitempty"`
	Mines   int    `json:"mines,omitempty"`
}

// CellActionData addresses a cell for reveal and flag.
type CellActionData struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// GameData announces a new board.
type GameData struct {
	ID      string `json:"id"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Mines   int    `json:"mines"`
}

// CellData is one cell snapshot. The kind of a covered cell is sent as
// "hidden" so clients cannot read the layout off the wire.
type CellData struct {
	Row         int              `json:"row"`
	Column      int              `json:"column"`
	Interaction game.Interaction `json:"interaction"`
	Kind        string           `json:"kind"`
	Count       int              `json:"count,omitempty"`
}

// InfoData is the board-level aggregate.
type InfoData struct {
	ElapsedSeconds int         `json:"elapsedSeconds"`
	Status         game.Status `json:"status"`
	MinesRemaining int         `json:"minesRemaining"`
	NewGameAllowed bool        `json:"newGameAllowed"`
}

// ErrorData reports a rejected request.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PresetInfo is one entry of the /presets listing.
type PresetInfo struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Mines   int    `json:"mines"`
}

// StatsData is the /stats response.
type StatsData struct {
	Games            int          `json:"games"`
	Wins             int          `json:"wins"`
	Losses           int          `json:"losses"`
	WinRate          float64      `json:"winRate"`
	MeanWinSeconds   float64      `json:"meanWinSeconds"`
	MedianWinSeconds float64      `json:"medianWinSeconds"`
	StdDevWinSeconds float64      `json:"stdDevWinSeconds"`
	ClearedOnLoss    int          `json:"clearedOnLoss"`
	Boards           []BoardStats `json:"boards"`
}

// BoardStats is the record for one board size.
type BoardStats struct {
	Rows        int `json:"rows"`
	Columns     int `json:"columns"`
	Mines       int `json:"mines"`
	Games       int `json:"games"`
	Wins        int `json:"wins"`
	BestSeconds int `json:"bestSeconds,omitempty"`
}

// CellDataFromGame converts an engine snapshot for the wire.
func CellDataFromGame(p game.Point, s game.CellState) CellData {
	d := CellData{Row: p.Row, Column: p.Col, Interaction: s.Interaction, Kind: "hidden"}
	if s.Interaction == game.Cleared {
		if s.Kind.IsMine() {
			d.Kind = "mine"
		} else {
			d.Kind = "clear"
			d.Count = s.Kind.Count()
		}
	}
	return d
}

// InfoDataFromGame converts engine info for the wire.
func InfoDataFromGame(info game.Info) InfoData {
	return InfoData{
		ElapsedSeconds: int(info.Elapsed / time.Second),
		Status:         info.Status,
		MinesRemaining: info.MinesRemaining,
		NewGameAllowed: info.NewGameAllowed,
	}
}

// StatsDataFromStatistics converts recorded results for the wire. Boards
// are listed smallest first.
func StatsDataFromStatistics(s *statistics.Statistics) StatsData {
	out := StatsData{
		Games:            s.Games,
		Wins:             s.Wins,
		Losses:           s.Losses,
		WinRate:          s.WinRate(),
		MeanWinSeconds:   s.Mean(),
		MedianWinSeconds: s.Median(),
		StdDevWinSeconds: s.StdDev(),
		ClearedOnLoss:    s.ClearedOnLoss,
		Boards:           make([]BoardStats, 0, len(s.ByParams)),
	}
	for p, b := range s.ByParams {
		out.Boards = append(out.Boards, BoardStats{
			Rows:        p.Rows,
			Columns:     p.Columns,
			Mines:       p.Mines,
			Games:       b.Games,
			Wins:        b.Wins,
			BestSeconds: int(b.Best / time.Second),
		})
	}
	slices.SortFunc(out.Boards, func(a, b BoardStats) int {
		return cmp.Or(
			cmp.Compare(a.Rows*a.Columns, b.Rows*b.Columns),
			cmp.Compare(a.Rows, b.Rows),
			cmp.Compare(a.Mines, b.Mines),
		)
	})
	return out
}
