package handler

import (
	"context"
	"time"

	"job-scout/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type clientCounter interface {
	ClientCount() int
}

type HealthStatus struct {
	DatabaseHealthy bool   `json:"databaseHealthy"`
	RedisHealthy    bool   `json:"redisHealthy"`
	WSClients       int    `json:"wsClients"`
	ServerTime      string `json:"serverTime"`
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
	ws    clientCounter
	now   func() time.Time
}

// NewHealthHandler accepts nil dependencies; they are reported unhealthy.
func NewHealthHandler(db, redis Pinger, ws clientCounter) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, ws: ws, now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.GetHealth)
}

func (h *HealthHandler) GetHealth(c fiber.Ctx) error {
	out := HealthStatus{
		DatabaseHealthy: ping(c.Context(), h.db),
		RedisHealthy:    ping(c.Context(), h.redis),
		ServerTime:      h.now().UTC().Format(time.RFC3339),
	}
	if h.ws != nil {
		out.WSClients = h.ws.ClientCount()
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(pingCtx) == nil
}
