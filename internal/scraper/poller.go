package scraper

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

type PollerOptions struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
	// MinLength is exclusive: text must be longer to be accepted.
	MinLength         int
	NoiseSelector     string
	FallbackSelectors []string
}

func DefaultPollerOptions() PollerOptions {
	return PollerOptions{
		InitialDelay:  500 * time.Millisecond,
		Interval:      700 * time.Millisecond,
		MaxAttempts:   30,
		MinLength:     50,
		NoiseSelector: "button, svg, li-icon, script, style",
		FallbackSelectors: []string{
			"article",
			`div[class*="_app-description_"]`,
			".job-details-jobs-unified-top-card__job-description",
			`[data-ui="job-description"]`,
			".job-description",
			".description",
			"main",
		},
	}
}

// Poller waits for an asynchronously rendered job description to appear.
type Poller struct {
	opts  PollerOptions
	log   *log.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPoller(opts PollerOptions, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxAttempts < 0 {
		opts.MaxAttempts = 0
	}
	return &Poller{opts: opts, log: logger, sleep: sleepContext}
}

// ExtractJobDetailsText polls page for selector until its visible text, minus
// interactive and icon noise, is long enough. When polling is exhausted each
// fallback selector is tried once against the latest snapshot. The result is
// lowercased. ok is false when nothing qualified or ctx was cancelled.
func (p *Poller) ExtractJobDetailsText(ctx context.Context, page Page, selector string) (string, bool) {
	if err := p.sleep(ctx, p.opts.InitialDelay); err != nil {
		return "", false
	}

	if strings.TrimSpace(selector) != "" {
		for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
			doc, err := page.Snapshot(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return "", false
				}
				p.log.Printf("scraper=poller status=error attempt=%d err=%v", attempt, err)
			} else if text, ok := p.readCleaned(doc, selector); ok {
				return strings.ToLower(text), true
			}
			if err := p.sleep(ctx, p.opts.Interval); err != nil {
				return "", false
			}
		}
		p.log.Printf("scraper=poller status=exhausted selector=%q attempts=%d", selector, p.opts.MaxAttempts)
	}

	doc, err := page.Snapshot(ctx)
	if err != nil {
		p.log.Printf("scraper=poller step=fallback status=error err=%v", err)
		return "", false
	}
	for _, fb := range p.opts.FallbackSelectors {
		el, ok := firstMatch(doc, fb)
		if !ok {
			continue
		}
		text := strings.TrimSpace(renderedText(el))
		if p.longEnough(text) {
			return strings.ToLower(text), true
		}
	}
	return "", false
}

// readCleaned works on a detached clone so the page itself is never modified.
func (p *Poller) readCleaned(doc *goquery.Document, selector string) (string, bool) {
	el, ok := firstMatch(doc, selector)
	if !ok {
		return "", false
	}
	clone := el.Clone()
	if p.opts.NoiseSelector != "" {
		clone.Find(p.opts.NoiseSelector).Remove()
	}
	text := strings.TrimSpace(renderedText(clone))
	return text, p.longEnough(text)
}

func (p *Poller) longEnough(text string) bool {
	return utf8.RuneCountInString(text) > p.opts.MinLength
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
