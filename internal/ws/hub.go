package ws

import (
	"context"
	"log"
	"sync"
)

type message struct {
	source  string
	payload []byte
}

// Hub fans scrape events out to subscribed clients. Run must be started
// before clients register.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	events     chan message
	register   chan *Client
	unregister chan *Client
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		events:     make(chan message, 256),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.logger.Printf("WS hub stopped")
			return

		case c := <-h.register:
			if c == nil {
				continue
			}
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Printf("WS connected | total_clients=%d sources=%s", total, c.filterString())

		case c := <-h.unregister:
			h.drop(c)

		case m := <-h.events:
			h.deliver(m)
		}
	}
}

func (h *Hub) drop(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Printf("WS disconnected | total_clients=%d", total)
	}
}

// deliver runs on the Run goroutine; slow clients are dropped in place.
func (h *Hub) deliver(m message) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.wants(m.source) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- m.payload:
		default:
			h.drop(c)
		}
	}
}

func (h *Hub) Register(c *Client) {
	if h == nil {
		return
	}
	h.register <- c
}

// Unregister never blocks: once Run has stopped the client is dropped inline.
func (h *Hub) Unregister(c *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- c:
	default:
		h.drop(c)
	}
}

// Publish queues payload for clients subscribed to source. An empty source
// reaches everyone. The event is dropped when the queue is full.
func (h *Hub) Publish(source string, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.events <- message{source: source, payload: payload}:
	default:
		h.logger.Printf("WS publish dropped | source=%s reason=queue_full", source)
	}
}

func (h *Hub) Broadcast(payload []byte) {
	h.Publish("", payload)
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
