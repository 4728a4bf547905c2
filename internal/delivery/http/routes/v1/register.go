package v1

import (
	"job-scout/internal/delivery/http/handler"
	"job-scout/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Sites  *handler.SitesHandler
	Scrape *handler.ScrapeHandler
	Score  *handler.ScoreHandler
	Agent  *handler.AgentHandler
}

// Register mounts the public scrape routes and the bearer-protected routes
// that call the webapp backend on the caller's behalf.
func Register(r fiber.Router, h Handlers, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}
	if auth == nil {
		auth = middleware.NewAuthMiddleware(nil)
	}

	if h.Sites != nil {
		h.Sites.RegisterRoutes(r)
	}
	if h.Scrape != nil {
		h.Scrape.RegisterRoutes(r)
	}

	protected := r.Group("", auth.Middleware())
	if h.Score != nil {
		h.Score.RegisterRoutes(protected)
	}
	if h.Agent != nil {
		h.Agent.RegisterRoutes(protected)
	}
}
