package routes

import (
	"job-scout/internal/delivery/http/handler"
	"job-scout/internal/delivery/http/middleware"
	v1 "job-scout/internal/delivery/http/routes/v1"
	"job-scout/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	api    v1.Handlers
	auth   *middleware.AuthMiddleware
	ws     *ws.Handler
}

func NewRegistry(health *handler.HealthHandler, api v1.Handlers, auth *middleware.AuthMiddleware, wsHandler *ws.Handler) *Registry {
	if health == nil {
		health = handler.NewHealthHandler(nil, nil, nil)
	}
	return &Registry{health: health, api: api, auth: auth, ws: wsHandler}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
	r.registerWS(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.api, r.auth)
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.ws == nil {
		return
	}
	app.Get("/ws/jobs", r.ws.HandleJobsWS)
}
