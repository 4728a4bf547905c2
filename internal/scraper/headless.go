package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// Browser owns one headless Chrome process. Each Open call gets its own tab.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
}

func NewBrowser(parent context.Context, timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(httpHeaders()["User-Agent"]),
		)...,
	)
	return &Browser{allocCtx: allocCtx, allocCancel: allocCancel, timeout: timeout}
}

func (b *Browser) Close() {
	if b == nil || b.allocCancel == nil {
		return
	}
	b.allocCancel()
}

// Open navigates a new tab to pageURL and waits for the body. The returned
// page stays live: each Snapshot re-reads the current DOM. Callers must
// Close it.
func (b *Browser) Open(ctx context.Context, pageURL string) (Page, error) {
	if b == nil {
		return nil, fmt.Errorf("nil browser")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(b.allocCtx)
	navCtx, navCancel := context.WithTimeout(tabCtx, b.timeout)
	defer navCancel()

	var location string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		tabCancel()
		return nil, err
	}
	if location == "" {
		location = pageURL
	}
	return &LivePage{ctx: tabCtx, cancel: tabCancel, url: location, timeout: b.timeout}, nil
}

type LivePage struct {
	ctx     context.Context
	cancel  context.CancelFunc
	url     string
	timeout time.Duration
	once    sync.Once
}

func (p *LivePage) URL() string { return p.url }

func (p *LivePage) Snapshot(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return documentFromString(html)
}

func (p *LivePage) Close() {
	p.once.Do(p.cancel)
}
