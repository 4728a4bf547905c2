// Package scheduler periodically re-scrapes persisted jobs so stored records
// follow edits made on the job boards.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"job-scout/internal/repository"
	"job-scout/internal/usecase"

	"github.com/robfig/cron/v3"
)

// Rescraper is the part of usecase.ScrapeUsecase the refresher drives.
type Rescraper interface {
	Recent(ctx context.Context, limit int) ([]repository.ScrapedJob, error)
	Scrape(ctx context.Context, req usecase.ScrapeRequest) (usecase.ScrapeResult, error)
}

type Refresher struct {
	cron    *cron.Cron
	spec    string
	scrapes Rescraper
	limit   int
	logger  *log.Logger
}

// NewRefresher validates spec ("@every 6h", "0 */4 * * *") up front so a bad
// value fails at startup rather than on Start.
func NewRefresher(spec string, scrapes Rescraper, limit int, logger *log.Logger) (*Refresher, error) {
	spec = strings.TrimSpace(spec)
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	if limit <= 0 {
		limit = 20
	}
	cl := cron.PrintfLogger(logger)
	return &Refresher{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		spec:    spec,
		scrapes: scrapes,
		limit:   limit,
		logger:  logger,
	}, nil
}

func (r *Refresher) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.cron.Start()
	r.logger.Printf("[Scheduler] refresh started | spec=%s limit=%d", r.spec, r.limit)
	return nil
}

func (r *Refresher) Stop() {
	r.cron.Stop()
	r.logger.Printf("[Scheduler] refresh stopped")
}

// RunOnce re-scrapes the most recent jobs one at a time, bypassing the
// result cache. It returns how many scrapes succeeded and failed.
func (r *Refresher) RunOnce(ctx context.Context) (ok, failed int) {
	recent, err := r.scrapes.Recent(ctx, r.limit)
	if err != nil {
		r.logger.Printf("[Scheduler] refresh status=error step=list error=%v", err)
		return 0, 0
	}
	for _, j := range recent {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.scrapes.Scrape(ctx, usecase.ScrapeRequest{URL: j.Record.JobLink, Refresh: true}); err != nil {
			failed++
			r.logger.Printf("[Scheduler] refresh status=error url=%s error=%v", j.Record.JobLink, err)
			continue
		}
		ok++
	}
	r.logger.Printf("[Scheduler] refresh status=done ok=%d failed=%d", ok, failed)
	return ok, failed
}
