package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/minesweeper/internal/game"
	"github.com/lox/minesweeper/internal/randutil"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// withLayout makes every session play the fixed mine layout.
func withLayout(mines ...game.Point) Option {
	return func(c *Config) {
		c.newEngine = func(p game.Params, opts ...game.Option) (*game.Engine, error) {
			return game.NewWithLayout(p.Rows, p.Columns, mines, opts...)
		}
	}
}

func startTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(testLogger(), randutil.New(42), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Stop)
	return srv, ts
}

func wsURL(ts *httptest.Server, query string) string {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if query != "" {
		u += "?" + query
	}
	return u
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, query), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type wireCell struct {
	Row         int    `json:"row"`
	Column      int    `json:"column"`
	Interaction string `json:"interaction"`
	Kind        string `json:"kind"`
	Count       int    `json:"count"`
}

type wireInfo struct {
	ElapsedSeconds int    `json:"elapsedSeconds"`
	Status         string `json:"status"`
	MinesRemaining int    `json:"minesRemaining"`
	NewGameAllowed bool   `json:"newGameAllowed"`
}

func send(t *testing.T, conn *websocket.Conn, msgType MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil reads messages until one of type want arrives, returning it and
// every cell update seen on the way.
func readUntil(t *testing.T, conn *websocket.Conn, want MessageType) (Message, []wireCell) {
	t.Helper()
	var cells []wireCell
	for {
		msg := readMessage(t, conn)
		if msg.Type == want {
			return msg, cells
		}
		if msg.Type == MessageTypeCell {
			var c wireCell
			require.NoError(t, json.Unmarshal(msg.Data, &c))
			cells = append(cells, c)
		}
	}
}

func readInfo(t *testing.T, conn *websocket.Conn) (wireInfo, []wireCell) {
	t.Helper()
	msg, cells := readUntil(t, conn, MessageTypeInfo)
	var info wireInfo
	require.NoError(t, json.Unmarshal(msg.Data, &info))
	return info, cells
}

func readError(t *testing.T, conn *websocket.Conn) ErrorData {
	t.Helper()
	msg, _ := readUntil(t, conn, MessageTypeError)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func readGame(t *testing.T, conn *websocket.Conn) GameData {
	t.Helper()
	msg, _ := readUntil(t, conn, MessageTypeGame)
	var data GameData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}
