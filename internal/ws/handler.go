package ws

import (
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler serves /ws/jobs. allowedOrigins entries ending in "*" match by
// prefix; an empty list accepts any origin.
func NewHandler(hub *Hub, logger *log.Logger, allowedOrigins []string) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return OriginAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
	}
}

func OriginAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 || origin == "" {
		return true
	}
	for _, a := range allowed {
		if p, ok := strings.CutSuffix(a, "*"); ok {
			if strings.HasPrefix(origin, p) {
				return true
			}
			continue
		}
		if strings.EqualFold(origin, a) {
			return true
		}
	}
	return false
}

// parseSources reads ?source=lever,greenhouse into a lowercase set.
func parseSources(raw string) map[string]struct{} {
	var out map[string]struct{}
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if out == nil {
			out = make(map[string]struct{})
		}
		out[s] = struct{}{}
	}
	return out
}

func (h *Handler) HandleJobsWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	sources := parseSources(c.Query("source"))

	return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Printf("WS upgrade error | origin=%s error=%v", r.Header.Get("Origin"), err)
			return
		}
		client := NewClient(h.hub, conn, sources)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})(c)
}
