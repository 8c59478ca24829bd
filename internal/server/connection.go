package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10 // must stay under pongWait

	// Client messages are small cell actions.
	maxMessageSize = 4096

	// Room for a full expert board snapshot without blocking the session.
	sendBufferSize = 1024
	inboxSize      = 64
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection owns a WebSocket and its two pumps. Decoded client messages
// arrive on Inbox, which closes when the peer goes away; outbound messages
// are queued with SendMessage.
type Connection struct {
	ws     *websocket.Conn
	logger *log.Logger

	outbox chan *Message
	inbox  chan *Message

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewConnection(ws *websocket.Conn, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		ws:     ws,
		logger: logger.WithPrefix("conn"),
		outbox: make(chan *Message, sendBufferSize),
		inbox:  make(chan *Message, inboxSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Connection) Inbox() <-chan *Message { return c.inbox }

// Done is closed once the connection shuts down.
func (c *Connection) Done() <-chan struct{} { return c.ctx.Done() }

// Close stops both pumps and closes the socket. It is safe to call more
// than once.
func (c *Connection) Close() error {
	err := ErrConnectionClosed
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.ws.Close()
	})
	return err
}

// SendMessage queues msg for the write pump. When the queue is full it
// waits up to writeWait for the peer to catch up, then drops the
// connection.
func (c *Connection) SendMessage(msg *Message) error {
	if c.ctx.Err() != nil {
		return ErrConnectionClosed
	}

	select {
	case c.outbox <- msg:
		return nil
	default:
	}

	timer := time.NewTimer(writeWait)
	defer timer.Stop()
	select {
	case c.outbox <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	case <-timer.C:
		c.logger.Warn("Client is not reading, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() {
		close(c.inbox)
		_ = c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	extend := func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	}
	_ = extend("")
	c.ws.SetPongHandler(extend)

	for {
		msg := new(Message)
		if err := c.ws.ReadJSON(msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("Read failed", "error", err)
			}
			return
		}

		select {
		case c.inbox <- msg:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) writePump() {
	pings := time.NewTicker(pingPeriod)
	defer func() {
		pings.Stop()
		_ = c.Close()
	}()

	deadline := func() { _ = c.ws.SetWriteDeadline(time.Now().Add(writeWait)) }

	for {
		select {
		case msg := <-c.outbox:
			deadline()
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.Debug("Write failed", "type", msg.Type, "error", err)
				return
			}

		case <-pings.C:
			deadline()
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
