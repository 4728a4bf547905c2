package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"job-scout/internal/config"
	"job-scout/internal/domain/profile"
	"job-scout/internal/infrastructure/backend"
	"job-scout/internal/scraper"
	"job-scout/internal/sites"
	"job-scout/internal/usecase"
)

// scraper loads one or more job pages, prints the aggregated records as JSON
// and, with -resume or -token, scores them.
func main() {
	urls := flag.String("url", "", "comma separated job page URLs")
	headless := flag.Bool("headless", false, "render pages in headless Chrome")
	resumePath := flag.String("resume", "", "path to a resume JSON file to score against")
	token := flag.String("token", "", "webapp bearer token for scoring")
	flag.Parse()

	cfg, err := config.LoadTool()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)

	targets := splitURLs(*urls)
	if len(targets) == 0 {
		log.Fatalf("provide -url")
	}

	registry, err := sites.Load(cfg.Scrape.SitesFile)
	if err != nil {
		log.Fatalf("load site registry: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := scraper.NewPoller(scraper.PollerOptions{
		InitialDelay:      cfg.Scrape.PollInitialDelay,
		Interval:          cfg.Scrape.PollInterval,
		MaxAttempts:       cfg.Scrape.PollAttempts,
		MinLength:         scraper.DefaultPollerOptions().MinLength,
		NoiseSelector:     scraper.DefaultPollerOptions().NoiseSelector,
		FallbackSelectors: scraper.DefaultPollerOptions().FallbackSelectors,
	}, logger)
	deps := usecase.ScrapeDeps{
		Registry:   registry,
		Static:     scraper.NewFetcher(cfg.Scrape.PageTimeout),
		Aggregator: scraper.NewAggregator(poller, logger),
		Workers:    cfg.Scrape.Workers,
		Logger:     logger,
	}
	if *headless {
		browser := scraper.NewBrowser(ctx, cfg.Scrape.PageTimeout)
		defer browser.Close()
		deps.Live = browser
	}
	uc := usecase.NewScrapeUsecase(deps)

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(len(targets))*2*time.Minute)
	defer cancel()
	items := uc.ScrapeBatch(runCtx, targets, *headless)

	var scorer *usecase.Scorer
	var resume *profile.Resume
	if *resumePath != "" || *token != "" {
		client := backend.NewClient(cfg.Backend.WebappURL, cfg.Backend.HTTPTimeout, logger)
		if client == nil {
			log.Fatalf("WEBAPP_URL is not configured")
		}
		scorer = usecase.NewScorer(client, client, nil, 0, logger)
		if *resumePath != "" {
			r, err := readResume(*resumePath)
			if err != nil {
				log.Fatalf("read resume: %v", err)
			}
			resume = &r
		}
	}

	type output struct {
		usecase.BatchItem
		Score any `json:"score,omitempty"`
	}
	out := make([]output, 0, len(items))
	for _, it := range items {
		o := output{BatchItem: it}
		if scorer != nil && it.Result != nil && it.Result.Record.JobDescription != "" {
			o.Score = scorer.CalculateScore(runCtx, it.Result.Record.JobDescription, *token, resume)
		}
		out = append(out, o)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode output: %v", err)
	}
}

func splitURLs(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readResume(path string) (profile.Resume, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return profile.Resume{}, err
	}
	var r profile.Resume
	if err := json.Unmarshal(b, &r); err != nil {
		return profile.Resume{}, err
	}
	return r, nil
}
