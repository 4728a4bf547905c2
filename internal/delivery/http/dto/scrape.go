package dto

import (
	"time"

	"job-scout/internal/domain/job"

	"github.com/google/uuid"
)

type ScrapeRequest struct {
	URL      string `json:"url"`
	Headless bool   `json:"headless"`
	Refresh  bool   `json:"refresh"`
}

type ScrapeBatchRequest struct {
	URLs     []string `json:"urls"`
	Headless bool     `json:"headless"`
}

type ScrapeResponse struct {
	job.RawJobRecord
	SourceType string `json:"sourceType"`
	Ready      bool   `json:"ready"`
	Cached     bool   `json:"cached"`
}

type ScrapeBatchItemResponse struct {
	URL    string          `json:"url"`
	Result *ScrapeResponse `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type ScrapedJobResponse struct {
	job.RawJobRecord
	ID         uuid.UUID `json:"id"`
	SourceType string    `json:"sourceType"`
	ScrapedAt  string    `json:"scrapedAt"`
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
