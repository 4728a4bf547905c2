package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"job-scout/internal/config"
	"job-scout/internal/database"
	"job-scout/internal/database/migration"
	dbpostgres "job-scout/internal/database/postgres"
	"job-scout/internal/infrastructure/backend"
	"job-scout/internal/infrastructure/cache"
	"job-scout/internal/repository"
	"job-scout/internal/scheduler"
	"job-scout/internal/scraper"
	"job-scout/internal/sites"
	"job-scout/internal/usecase"
	"job-scout/internal/ws"
	"job-scout/migrations"
)

// Container wires every long-lived dependency. Database, redis, backend and
// the headless browser are optional; the scrape core works without them.
type Container struct {
	Config  config.Config
	Logger  *log.Logger
	DB      database.DB
	Redis   *cache.Redis
	Backend *backend.Client
	Sites   *sites.Registry
	Browser *scraper.Browser
	Hub     *ws.Hub

	// Refresher is nil unless SCRAPE_REFRESH_SCHEDULE is set and a database
	// is configured.
	Refresher *scheduler.Refresher

	Scrape      *usecase.Scrape
	Scorer      *usecase.Scorer
	Submissions *usecase.Submissions
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	registry, err := sites.Load(cfg.Scrape.SitesFile)
	if err != nil {
		return nil, fmt.Errorf("load site registry: %w", err)
	}
	c.Sites = registry

	var (
		scrapedJobs repository.ScrapedJobRepository
		submissions repository.SubmissionRepository
	)
	if cfg.Database.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := dbpostgres.Connect(ctx, cfg.Database)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		c.DB = db

		migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = migration.Runner{FS: migrations.FS}.Run(migCtx, db.SQLDB())
		migCancel()
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		scrapedJobs = repository.NewPostgresScrapedJobRepository(db)
		submissions = repository.NewPostgresSubmissionRepository(db)
	} else {
		logger.Printf("[Database] DB_HOST/DB_NAME not set, persistence disabled")
	}

	c.Redis = cache.NewRedis(cfg.Redis, logger)
	c.Backend = backend.NewClient(cfg.Backend.WebappURL, cfg.Backend.HTTPTimeout, logger)
	if c.Backend == nil {
		logger.Printf("[Backend] WEBAPP_URL not set, scoring and submission disabled")
	}

	c.Hub = ws.NewHub(logger)

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
		Cache:      c.Redis,
		Jobs:       scrapedJobs,
		Notify:     c.Hub.NotifyJobScraped,
		Workers:    cfg.Scrape.Workers,
		CacheTTL:   cfg.Redis.TTL,
		Logger:     logger,
	}
	if cfg.Scrape.Headless {
		c.Browser = scraper.NewBrowser(context.Background(), cfg.Scrape.PageTimeout)
		deps.Live = c.Browser
	}
	c.Scrape = usecase.NewScrapeUsecase(deps)

	if cfg.Scrape.RefreshSpec != "" {
		if scrapedJobs == nil {
			logger.Printf("[Scheduler] SCRAPE_REFRESH_SCHEDULE ignored, persistence disabled")
		} else {
			c.Refresher, err = scheduler.NewRefresher(cfg.Scrape.RefreshSpec, c.Scrape, cfg.Scrape.RefreshLimit, logger)
			if err != nil {
				_ = c.Close()
				return nil, err
			}
		}
	}

	var (
		nlp      usecase.SkillExtractor
		profiles usecase.ProfileSource
		agent    usecase.AgentBackend
	)
	if c.Backend != nil {
		nlp, profiles, agent = c.Backend, c.Backend, c.Backend
	}
	c.Scorer = usecase.NewScorer(nlp, profiles, c.Redis, cfg.Redis.TTL, logger)

	c.Submissions = usecase.NewSubmissionUsecase(agent, submissions, c.Redis, logger)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
