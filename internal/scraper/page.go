package scraper

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoDocument = errors.New("page has no document")

// Page is a rendered job posting. Snapshot returns the document as it looks
// right now; live pages may return different content on later calls.
type Page interface {
	URL() string
	Snapshot(ctx context.Context) (*goquery.Document, error)
}

// StaticPage is a page whose DOM never changes after it was fetched.
type StaticPage struct {
	url string
	doc *goquery.Document
}

func NewStaticPage(pageURL string, doc *goquery.Document) *StaticPage {
	return &StaticPage{url: pageURL, doc: doc}
}

func NewStaticPageFromHTML(pageURL string, html []byte) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}
	return NewStaticPage(pageURL, doc), nil
}

func (p *StaticPage) URL() string {
	if p == nil {
		return ""
	}
	return p.url
}

func (p *StaticPage) Snapshot(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil || p.doc == nil {
		return nil, ErrNoDocument
	}
	return p.doc, nil
}

func documentFromString(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
