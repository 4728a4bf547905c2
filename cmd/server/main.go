package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"job-scout/internal/app"
	"job-scout/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("job-scout: %v", err)
	}
}

// run returns instead of exiting so the closer always runs.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		return err
	}

	server, closeAll, err := app.Bootstrap(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeAll(); err != nil {
			log.Printf("job-scout: close: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() { listenErr <- server.Fiber.Listen(addr) }()
	log.Printf("job-scout: listening | %s", app.StartupSummary(cfg, addr))

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	log.Printf("job-scout: shutting down, draining scrapes for up to 15s")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Fiber.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
