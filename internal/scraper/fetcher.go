package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const maxPageBytes = 8 << 20

// Fetcher downloads a posting once over plain HTTP and freezes it into a
// StaticPage. Client-side rendered descriptions will not be present.
type Fetcher struct {
	timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{timeout: timeout}
}

func (f *Fetcher) Open(ctx context.Context, pageURL string) (Page, error) {
	if f == nil {
		return nil, fmt.Errorf("nil fetcher")
	}

	c := colly.NewCollector(
		colly.MaxBodySize(maxPageBytes),
	)
	c.SetRequestTimeout(f.timeout)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 300 * time.Millisecond})

	var (
		body     []byte
		finalURL = pageURL
		reqErr   error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		if r.Request != nil && r.Request.URL != nil {
			finalURL = r.Request.URL.String()
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// colly has no context hook; a cancelled ctx abandons the in-flight
	// request, which then ends at the collector's request timeout.
	done := make(chan error, 1)
	go func() {
		err := c.Visit(pageURL)
		c.Wait()
		done <- err
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reqErr != nil {
		return nil, reqErr
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("empty response from %s", pageURL)
	}

	return NewStaticPageFromHTML(finalURL, body)
}
