package scraper

import (
	"encoding/json"
	"log"
	"strings"

	"job-scout/internal/domain/job"

	"github.com/PuerkitoBio/goquery"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// ExtractStructuredJobData scans every JSON-LD block of doc and returns the
// fields of the first schema.org JobPosting found. Blocks that fail to parse
// are logged and skipped. A page without a JobPosting yields a zero record.
func ExtractStructuredJobData(doc *goquery.Document, logger *log.Logger) job.PartialRecord {
	if doc == nil {
		return job.PartialRecord{}
	}
	if logger == nil {
		logger = log.Default()
	}

	var out job.PartialRecord
	doc.Find(jsonLDSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			logger.Printf("scraper=jsonld status=error block=%d err=%v", i, err)
			return true
		}
		posting, ok := findJobPosting(v)
		if !ok {
			return true
		}
		out = jobPostingFields(posting)
		return false
	})
	return out
}

func findJobPosting(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if isJobPostingType(t["@type"]) {
			return t, true
		}
		if g, ok := t["@graph"]; ok {
			return findJobPosting(g)
		}
	case []any:
		for _, item := range t {
			if m, ok := findJobPosting(item); ok {
				return m, true
			}
		}
	}
	return nil, false
}

func isJobPostingType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "JobPosting"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func jobPostingFields(m map[string]any) job.PartialRecord {
	out := job.PartialRecord{
		JobTitle:       stringField(m, "title"),
		JobDescription: stringField(m, "description"),
		Location:       postingLocation(m["jobLocation"]),
	}

	switch org := m["hiringOrganization"].(type) {
	case map[string]any:
		out.CompanyName = stringField(org, "name")
		switch logo := org["logo"].(type) {
		case string:
			out.CompanyLogo = logo
		case map[string]any:
			out.CompanyLogo = stringField(logo, "url")
		}
		out.CompanyURL = orElse(firstString(org["sameAs"]), stringField(org, "url"))
	case string:
		out.CompanyName = org
	}
	return out
}

func postingLocation(v any) string {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return ""
		}
		return postingLocation(t[0])
	case map[string]any:
		if addr, ok := t["address"].(map[string]any); ok {
			if s := orElse(stringField(addr, "addressLocality"), stringField(addr, "name")); s != "" {
				return s
			}
		}
		return stringField(t, "name")
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
