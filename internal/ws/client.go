package ws

import (
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one websocket subscriber. The stream is server to client only;
// inbound frames are read just to observe pongs and closes.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	sources map[string]struct{}
}

// NewClient subscribes to events from sources, or to everything when sources
// is empty.
func NewClient(hub *Hub, conn *websocket.Conn, sources map[string]struct{}) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, 64), sources: sources}
}

func (c *Client) wants(source string) bool {
	if len(c.sources) == 0 || source == "" {
		return true
	}
	_, ok := c.sources[strings.ToLower(source)]
	return ok
}

func (c *Client) filterString() string {
	if len(c.sources) == 0 {
		return "*"
	}
	out := make([]string, 0, len(c.sources))
	for s := range c.sources {
		out = append(out, s)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
