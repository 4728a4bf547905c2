package ws

import (
	"encoding/json"
	"time"

	"job-scout/internal/domain/job"
)

type JobScrapedEvent struct {
	Type       string `json:"type"`
	JobLink    string `json:"jobLink"`
	JobTitle   string `json:"jobTitle"`
	Company    string `json:"companyName,omitempty"`
	SourceType string `json:"sourceType"`
	Ready      bool   `json:"ready"`
	Timestamp  string `json:"timestamp"`
}

func NewJobScrapedEvent(rec job.RawJobRecord, sourceType string, now time.Time) JobScrapedEvent {
	return JobScrapedEvent{
		Type:       "job_scraped",
		JobLink:    rec.JobLink,
		JobTitle:   rec.JobTitle,
		Company:    job.StringOrEmpty(rec.CompanyName),
		SourceType: sourceType,
		Ready:      rec.Ready(),
		Timestamp:  now.UTC().Format(time.RFC3339),
	}
}

// NotifyJobScraped publishes a job_scraped event under sourceType.
func (h *Hub) NotifyJobScraped(rec job.RawJobRecord, sourceType string) {
	if h == nil || rec.JobLink == "" {
		return
	}
	b, err := json.Marshal(NewJobScrapedEvent(rec, sourceType, time.Now()))
	if err != nil {
		return
	}
	h.Publish(sourceType, b)
}
