package usecase

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidURL          = errors.New("Invalid job URL")
	ErrPageUnavailable     = errors.New("Job page could not be loaded")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInternal            = errors.New("internal error")
	ErrBackendUnavailable  = errors.New("Backend is not configured")
	ErrSubmissionInFlight  = errors.New("Job submission already in progress")
	ErrPersistenceDisabled = errors.New("Job storage is not configured")
)
