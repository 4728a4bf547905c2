package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"job-scout/internal/config"
	"job-scout/internal/delivery/http/handler"
	"job-scout/internal/delivery/http/middleware"
	"job-scout/internal/delivery/http/routes"
	v1 "job-scout/internal/delivery/http/routes/v1"
	"job-scout/internal/pkg/jwt"
	"job-scout/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f}
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := log.Default()
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	runCtx, stop := context.WithCancel(context.Background())
	go c.Hub.Run(runCtx)
	if c.Refresher != nil {
		if err := c.Refresher.Start(runCtx); err != nil {
			stop()
			_ = c.Close()
			return nil, nil, err
		}
	}

	app := New(c)
	return app, func() error {
		stop()
		if c.Refresher != nil {
			c.Refresher.Stop()
		}
		return c.Close()
	}, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(errMw.Middleware())
	app.Use(middleware.NewAccessLogMiddleware(logger, "/health").Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	health := handler.NewHealthHandler(c.DB, c.Redis, c.Hub)

	// a nil *HMACService must not reach the jwt.Service interface
	auth := middleware.NewAuthMiddleware(nil)
	if svc := jwt.NewHMACService(c.Config.JWT.AccessSecret); svc != nil {
		auth = middleware.NewAuthMiddleware(svc)
	}

	routes.NewRegistry(health, v1.Handlers{
		Sites:  handler.NewSitesHandler(c.Sites),
		Scrape: handler.NewScrapeHandler(c.Scrape),
		Score:  handler.NewScoreHandler(c.Scorer),
		Agent:  handler.NewAgentHandler(c.Submissions),
	}, auth, ws.NewHandler(c.Hub, c.Logger, c.Config.WS.AllowedOrigins)).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

// StartupSummary is the one-line description of what this instance serves.
func StartupSummary(cfg config.Config, addr string) string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("app=%s env=%s addr=%s headless=%s persistence=%s backend=%s refresh=%s",
		cfg.App.AppName, cfg.App.Environment, addr,
		onOff(cfg.Scrape.Headless),
		onOff(cfg.Database.Enabled()),
		onOff(cfg.Backend.WebappURL != ""),
		onOff(cfg.Scrape.RefreshSpec != "" && cfg.Database.Enabled()),
	)
}
