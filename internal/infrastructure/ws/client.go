package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kinosync/kinosync/internal/domain"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 32768 // 32KB per frame

	sendBuffer = 64
)

// Client is one live connection. Identity is fixed at handshake time and
// nil for anonymous connections. The rooms set is owned by the Hub and
// guarded by its mutex; nothing else may touch it.
type Client struct {
	ID       string
	Identity *domain.Identity

	conn   *connWrapper
	send   chan *WSMessage
	rooms  map[string]struct{}
	logger *zap.SugaredLogger

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(conn *websocket.Conn, id string, identity *domain.Identity, logger *zap.SugaredLogger) *Client {
	return &Client{
		ID:       id,
		Identity: identity,
		conn:     newConnWrapper(conn),
		send:     make(chan *WSMessage, sendBuffer),
		rooms:    make(map[string]struct{}),
		logger:   logger,
		closed:   make(chan struct{}),
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// ReadPump processes inbound frames sequentially, which is what gives a
// single connection FIFO ordering of its own events. A malformed frame is
// logged and skipped; it never tears down the connection or the hub.
func (c *Client) ReadPump(ctx context.Context, hub *Hub) {
	defer func() {
		hub.Drop(c)
		c.Close()
	}()

	c.conn.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warnw("ws read error", "clientId", c.ID, "error", err)
			}
			return
		}

		if len(raw) == 0 {
			continue
		}

		ev, err := DecodeEvent(raw)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				c.logger.Debugw("unknown event ignored", "clientId", c.ID, "error", err)
			} else {
				c.logger.Debugw("malformed event ignored", "clientId", c.ID, "error", err)
			}
			continue
		}

		hub.HandleEvent(ctx, c, ev)
	}
}

// WritePump drains the send buffer to the connection and keeps it alive
// with pings.
func (c *Client) WritePump() {
	defer c.Close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warnw("ws write error", "clientId", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				c.logger.Debugw("ping failed", "clientId", c.ID, "error", err)
				return
			}

		case <-c.closed:
			_ = c.conn.WriteClose()
			return
		}
	}
}
