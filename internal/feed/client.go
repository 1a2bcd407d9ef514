package feed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/l1jgo/gridwalk/internal/grid"
)

// Viewport limits a client's snapshots to the objects near a cell.
type Viewport struct {
	Center grid.Cell
	Radius int
}

// Client is one websocket connection. Reads and writes run in dedicated
// goroutines; the game loop only calls Send.
type Client struct {
	ID   uint64
	conn *websocket.Conn
	hub  *Hub

	out  chan []byte // writer goroutine reads from here
	view atomic.Pointer[Viewport]

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func newClient(h *Hub, conn *websocket.Conn, id uint64) *Client {
	return &Client{
		ID:      id,
		conn:    conn,
		hub:     h,
		out:     make(chan []byte, h.cfg.OutQueueSize),
		closeCh: make(chan struct{}),
		log:     h.log.With(zap.Uint64("client", id)),
	}
}

func (c *Client) start() {
	go c.readLoop()
	go c.writeLoop()
}

// View returns the client's viewport, or nil for the whole grid.
func (c *Client) View() *Viewport {
	return c.view.Load()
}

// Send queues one message. Non-blocking: if the queue is full the client
// is disconnected (backpressure).
func (c *Client) Send(data []byte) {
	if c.closed.Load() {
		return
	}
	select {
	case c.out <- data:
	default:
		c.log.Warn("feed: outbound queue full, dropping slow client")
		c.Close()
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
		c.conn.Close()
		c.hub.remove(c.ID)
	})
}

// readLoop decodes inbound JSON messages and hands commands to the hub.
func (c *Client) readLoop() {
	defer c.Close()

	// A peer that misses two pings in a row is dropped.
	pongWait := 2 * c.hub.cfg.PingInterval
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg Inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if !c.closed.Load() {
				c.log.Debug("feed: read error", zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if msg.Op == opView {
			c.setView(msg)
			continue
		}
		cmd, err := msg.Command()
		if err != nil {
			c.log.Debug("feed: bad message", zap.String("op", msg.Op), zap.Error(err))
			continue
		}
		c.hub.push(cmd)
	}
}

func (c *Client) setView(msg Inbound) {
	if msg.Radius <= 0 {
		c.view.Store(nil)
		return
	}
	c.view.Store(&Viewport{Center: grid.Cell{X: msg.X, Y: msg.Y}, Radius: msg.Radius})
}

func (c *Client) writeLoop() {
	defer c.Close()

	ping := time.NewTicker(c.hub.cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case data := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if !c.closed.Load() {
					c.log.Debug("feed: write error", zap.Error(err))
				}
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeCh:
			return
		}
	}
}
