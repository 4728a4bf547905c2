package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"job-scout/internal/domain/job"
	"job-scout/internal/infrastructure/cache"
	"job-scout/internal/repository"
	"job-scout/internal/scraper"
	"job-scout/internal/sites"
)

// PageOpener loads a job page. scraper.Fetcher and scraper.Browser both
// satisfy it.
type PageOpener interface {
	Open(ctx context.Context, pageURL string) (scraper.Page, error)
}

type SelectorResolver interface {
	Resolve(pageURL string) job.SiteSelectorSet
}

type metadataAggregator interface {
	GetMetaData(ctx context.Context, page scraper.Page, selectors job.SiteSelectorSet) (job.RawJobRecord, error)
}

// ScrapeNotifier is told about every completed scrape.
type ScrapeNotifier func(rec job.RawJobRecord, sourceType string)

type ScrapeRequest struct {
	URL      string
	Headless bool
	Refresh  bool
}

type ScrapeResult struct {
	Record     job.RawJobRecord `json:"record"`
	SourceType string           `json:"sourceType"`
	Ready      bool             `json:"ready"`
	Cached     bool             `json:"cached"`
}

type BatchItem struct {
	URL    string        `json:"url"`
	Result *ScrapeResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type ScrapeUsecase interface {
	Scrape(ctx context.Context, req ScrapeRequest) (ScrapeResult, error)
	ScrapeBatch(ctx context.Context, urls []string, headless bool) []BatchItem
	Recent(ctx context.Context, limit int) ([]repository.ScrapedJob, error)
}

type ScrapeDeps struct {
	Registry   SelectorResolver
	Static     PageOpener
	Live       PageOpener
	Aggregator metadataAggregator
	Cache      ResultCache
	Jobs       repository.ScrapedJobRepository
	Notify     ScrapeNotifier
	Workers    int
	CacheTTL   time.Duration
	Logger     *log.Logger
}

type Scrape struct {
	registry   SelectorResolver
	static     PageOpener
	live       PageOpener
	aggregator metadataAggregator
	cache      ResultCache
	jobs       repository.ScrapedJobRepository
	notify     ScrapeNotifier
	workers    int
	ttl        time.Duration
	logger     *log.Logger
}

func NewScrapeUsecase(d ScrapeDeps) *Scrape {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	agg := d.Aggregator
	if agg == nil {
		agg = scraper.NewAggregator(nil, logger)
	}
	registry := d.Registry
	if registry == nil {
		registry = sites.Default()
	}
	static := d.Static
	if static == nil {
		static = scraper.NewFetcher(0)
	}
	workers := d.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Scrape{
		registry:   registry,
		static:     static,
		live:       d.Live,
		aggregator: agg,
		cache:      d.Cache,
		jobs:       d.Jobs,
		notify:     d.Notify,
		workers:    workers,
		ttl:        d.CacheTTL,
		logger:     logger,
	}
}

// ValidateJobURL accepts absolute http(s) URLs only.
func ValidateJobURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	return u.String(), nil
}

func (u *Scrape) Scrape(ctx context.Context, req ScrapeRequest) (ScrapeResult, error) {
	pageURL, err := ValidateJobURL(req.URL)
	if err != nil {
		return ScrapeResult{}, err
	}

	selectors := u.registry.Resolve(pageURL)
	opener, headless := u.opener(req.Headless)

	key := cache.ScrapeKey(pageURL, headless)
	if u.cache != nil {
		if req.Refresh {
			_ = u.cache.Delete(ctx, key)
		} else {
			var cached ScrapeResult
			if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
				u.logger.Printf("scrape status=cache_hit url=%s", pageURL)
				cached.Cached = true
				return cached, nil
			}
		}
	}

	start := time.Now()
	page, err := opener.Open(ctx, pageURL)
	if err != nil {
		u.logger.Printf("scrape status=error step=open url=%s error=%v", pageURL, err)
		return ScrapeResult{}, fmt.Errorf("%w: %v", ErrPageUnavailable, err)
	}
	if c, ok := page.(interface{ Close() }); ok {
		defer c.Close()
	}

	rec, err := u.aggregator.GetMetaData(ctx, page, selectors)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ScrapeResult{}, ctxErr
		}
		u.logger.Printf("scrape status=error step=aggregate url=%s error=%v", pageURL, err)
		return ScrapeResult{Record: rec, SourceType: selectors.SourceType}, fmt.Errorf("%w: %v", ErrPageUnavailable, err)
	}

	res := ScrapeResult{Record: rec, SourceType: selectors.SourceType, Ready: rec.Ready()}
	u.logger.Printf("scrape status=ok url=%s source=%s headless=%t ready=%t duration_ms=%d",
		pageURL, res.SourceType, headless, res.Ready, time.Since(start).Milliseconds())

	u.persist(ctx, res)

	// incomplete scrapes are retried on the next request
	if res.Ready && u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, res, u.ttl); err != nil {
			u.logger.Printf("scrape status=cache_set_failed url=%s error=%v", pageURL, err)
		}
	}
	if u.notify != nil {
		u.notify(res.Record, res.SourceType)
	}
	return res, nil
}

// ScrapeBatch scrapes urls concurrently. Items come back in input order, each
// with either a result or an error message.
func (u *Scrape) ScrapeBatch(ctx context.Context, urls []string, headless bool) []BatchItem {
	tasks := make([]scraper.Task[ScrapeResult], len(urls))
	for i, raw := range urls {
		raw := raw
		tasks[i] = func(ctx context.Context) (ScrapeResult, error) {
			return u.Scrape(ctx, ScrapeRequest{URL: raw, Headless: headless})
		}
	}

	results := scraper.RunAll(ctx, u.workers, tasks)
	out := make([]BatchItem, len(urls))
	for i, r := range results {
		out[i] = BatchItem{URL: urls[i]}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			continue
		}
		v := r.Value
		out[i].Result = &v
	}
	return out
}

func (u *Scrape) Recent(ctx context.Context, limit int) ([]repository.ScrapedJob, error) {
	if u.jobs == nil {
		return nil, ErrPersistenceDisabled
	}
	if limit < 0 {
		return nil, ErrInvalidInput
	}
	return u.jobs.ListRecent(ctx, limit)
}

func (u *Scrape) opener(headless bool) (PageOpener, bool) {
	if headless && u.live != nil {
		return u.live, true
	}
	if headless {
		u.logger.Printf("scrape status=headless_unavailable fallback=static")
	}
	return u.static, false
}

func (u *Scrape) persist(ctx context.Context, res ScrapeResult) {
	if u.jobs == nil || !res.Ready {
		return
	}
	if _, err := u.jobs.Upsert(ctx, res.Record, res.SourceType); err != nil && !errors.Is(err, context.Canceled) {
		u.logger.Printf("scrape status=persist_failed url=%s error=%v", res.Record.JobLink, err)
	}
}
