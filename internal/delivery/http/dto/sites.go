package dto

type SiteSupportResponse struct {
	URL                 string `json:"url"`
	SourceType          string `json:"sourceType"`
	Autofill            bool   `json:"autofill"`
	Autoapply           bool   `json:"autoapply"`
	AlwaysVisible       bool   `json:"alwaysVisible"`
	CoverLetterSelector string `json:"coverLetterSelector,omitempty"`
	CurrentJobID        string `json:"currentJobId,omitempty"`
}
