package scraper

import (
	"context"
	"fmt"
	"log"

	"job-scout/internal/domain/job"
)

// Aggregator combines structured data, DOM extractors and the description
// poller into one RawJobRecord.
type Aggregator struct {
	poller *Poller
	log    *log.Logger
}

func NewAggregator(poller *Poller, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	if poller == nil {
		poller = NewPoller(DefaultPollerOptions(), logger)
	}
	return &Aggregator{poller: poller, log: logger}
}

// GetMetaData scrapes page using selectors. JSON-LD wins for every field it
// provides; the DOM fills the rest. The description poller only runs when
// JSON-LD has no description. The returned record always carries JobLink.
func (a *Aggregator) GetMetaData(ctx context.Context, page Page, selectors job.SiteSelectorSet) (job.RawJobRecord, error) {
	rec := job.RawJobRecord{JobLink: page.URL()}

	doc, err := page.Snapshot(ctx)
	if err != nil {
		return rec, fmt.Errorf("snapshot %s: %w", page.URL(), err)
	}

	ld := ExtractStructuredJobData(doc, a.log)

	title := ld.JobTitle
	if title == "" {
		title, _ = JobTitle(doc, selectors.JobTitleSelector)
	}

	desc := ld.JobDescription
	if desc == "" {
		desc, _ = a.poller.ExtractJobDetailsText(ctx, page, selectors.JobDescriptionSelector)
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		// the DOM may have finished rendering while we waited
		if fresh, err := page.Snapshot(ctx); err == nil {
			doc = fresh
		}
	}

	company := CompanyNameAndLogo(doc, selectors.ImageURLSelector, selectors.CompanyNameSelector, page.URL())

	location := ld.Location
	if location == "" {
		location, _ = JobLocation(doc, selectors.LocationSelector)
	}

	rec.JobTitle = title
	rec.JobDescription = desc
	rec.CompanyName = job.StringPtr(orElse(ld.CompanyName, company.Name))
	rec.CompanyLogo = job.StringPtr(orElse(absoluteURL(page.URL(), ld.CompanyLogo), company.Logo))
	rec.CompanyURL = job.StringPtr(ld.CompanyURL)
	rec.Location = job.StringPtr(location)

	a.log.Printf("scraper=metadata status=ok url=%s source=%s ready=%t", rec.JobLink, selectors.SourceType, rec.Ready())
	return rec, nil
}
