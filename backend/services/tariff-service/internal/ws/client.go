package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer = 16
	readLimit  = 4096
	pongWait   = 60 * time.Second
)

// Client is one feed subscriber. Only writePump writes to the socket.
type Client struct {
	id           string
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	logger       *zap.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
	onClose      func(*Client)
}

// NewClient wraps an upgraded connection.
func NewClient(id string, ws *websocket.Conn, pingInterval, writeTimeout time.Duration, logger *zap.Logger, onClose func(*Client)) *Client {
	return &Client{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		logger:       logger,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

// ID returns the subscriber identifier.
func (c *Client) ID() string {
	return c.id
}

// Start launches the pumps and blocks until the connection ends.
func (c *Client) Start() {
	go c.writePump()
	c.readPump()
}

// readPump drains control frames so pongs and close frames are processed.
func (c *Client) readPump() {
	defer c.Close()
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("feed subscriber read closed", zap.String("client_id", c.id), zap.Error(err))
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Send enqueues a message, dropping it when the subscriber is slow.
func (c *Client) Send(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping feed message, buffer full", zap.String("client_id", c.id))
	}
}

// Close ends the subscription. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.onClose != nil {
			c.onClose(c)
		}
		// Give writePump a moment to send the close frame.
		time.AfterFunc(time.Second, func() { _ = c.ws.Close() })
	})
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}
