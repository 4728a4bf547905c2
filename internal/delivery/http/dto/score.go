package dto

import "job-scout/internal/domain/profile"

type ScoreRequest struct {
	JobDescription string          `json:"jobDescription"`
	Resume         *profile.Resume `json:"resume,omitempty"`
}
