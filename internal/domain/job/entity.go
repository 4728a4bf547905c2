package job

import (
	"errors"
	"strings"
)

var ErrMissingRequiredFields = errors.New("missing required fields")

const SourceTypeUnknown = "unknown"

// SiteSelectorSet describes where a site keeps each job field in its DOM.
type SiteSelectorSet struct {
	JobTitleSelector       string `json:"jobTitleSelector" yaml:"job_title"`
	JobDescriptionSelector string `json:"jobDescriptionSelector" yaml:"job_description"`
	ImageURLSelector       string `json:"imageUrlSelector" yaml:"image_url"`
	CompanyNameSelector    string `json:"companyNameSelector,omitempty" yaml:"company_name"`
	LocationSelector       string `json:"locationSelector" yaml:"location"`
	SourceType             string `json:"sourceType,omitempty" yaml:"source_type"`
}

// RawJobRecord is the aggregated result of one scrape. JobTitle and
// JobDescription are "" when not found; optional fields are nil.
type RawJobRecord struct {
	JobTitle       string  `json:"jobTitle"`
	JobDescription string  `json:"jobDescription"`
	JobLink        string  `json:"jobLink"`
	CompanyName    *string `json:"companyName,omitempty"`
	CompanyLogo    *string `json:"companyLogo,omitempty"`
	CompanyURL     *string `json:"companyUrl,omitempty"`
	Location       *string `json:"location,omitempty"`
}

// Ready reports whether the record carries everything job creation requires.
func (r RawJobRecord) Ready() bool {
	return MissingRequired(r.JobTitle, r.JobDescription, r.JobLink) == nil
}

// PartialRecord holds whatever a single extractor found. Empty string means absent.
type PartialRecord struct {
	JobTitle       string
	JobDescription string
	CompanyName    string
	CompanyLogo    string
	CompanyURL     string
	Location       string
}

func (p PartialRecord) IsZero() bool {
	return p == PartialRecord{}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts any casing and defaults to medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

type Status string

const (
	StatusSaved        Status = "Saved"
	StatusAssigned     Status = "Assigned"
	StatusInProgress   Status = "In Progress"
	StatusApplied      Status = "Applied"
	StatusScreen       Status = "Screen"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusWithdrawn    Status = "Withdrawn"
	StatusRejected     Status = "Rejected"
	StatusAccepted     Status = "Accepted"
)

var validStatuses = map[Status]struct{}{
	StatusSaved: {}, StatusAssigned: {}, StatusInProgress: {}, StatusApplied: {}, StatusScreen: {},
	StatusInterviewing: {}, StatusOffer: {}, StatusWithdrawn: {}, StatusRejected: {}, StatusAccepted: {},
}

func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// Submission is the agent job-creation payload.
type Submission struct {
	JobID          string  `json:"jobId"`
	JobTitle       string  `json:"jobTitle"`
	JobDescription string  `json:"jobDescription"`
	JobLink        string  `json:"jobLink"`
	ImageURL       *string `json:"imageUrl"`
	Priority       string  `json:"priority,omitempty"`
	CompanyName    string  `json:"companyName,omitempty"`
	CompanyURL     string  `json:"companyUrl,omitempty"`
	CompanyLogo    string  `json:"companyLogo,omitempty"`
	Location       string  `json:"location,omitempty"`
	Status         string  `json:"status,omitempty"`
}

// MissingRequired returns ErrMissingRequiredFields when title, description or link is blank.
func MissingRequired(title, description, link string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || strings.TrimSpace(link) == "" {
		return ErrMissingRequiredFields
	}
	return nil
}

func StringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
