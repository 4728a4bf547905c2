package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"job-scout/internal/domain/job"
)

var (
	ErrDuplicateJob  = errors.New("This job has already been added for this user.")
	ErrNoCredits     = errors.New("The user has no credits left.")
	ErrMissingFields = errors.New("Missing required fields.")
)

type AssignedUser struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func (c *Client) AssignedUsers(ctx context.Context, token string) ([]AssignedUser, error) {
	var out envelope[[]AssignedUser]
	if err := c.do(ctx, http.MethodGet, "/api/v1/agent/assigned-users-list", token, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []AssignedUser{}, nil
	}
	return out.Data, nil
}

// CreateJobForUser posts a job on behalf of an assigned user and returns the
// backend response body untouched.
func (c *Client) CreateJobForUser(ctx context.Context, token, userID string, body job.Submission) (json.RawMessage, error) {
	var out json.RawMessage
	path := "/api/v1/agent/users/" + url.PathEscape(userID) + "/jobs"
	err := c.do(ctx, http.MethodPost, path, token, body, &out)
	if err == nil {
		return out, nil
	}

	var se *StatusError
	if !errors.As(err, &se) {
		return nil, err
	}
	switch se.Status {
	case http.StatusConflict:
		return nil, ErrDuplicateJob
	case http.StatusForbidden:
		return nil, ErrNoCredits
	case http.StatusBadRequest:
		return nil, ErrMissingFields
	}
	if se.Message != "" {
		return nil, fmt.Errorf("%s: %w", se.Message, err)
	}
	return nil, fmt.Errorf("Failed to create job (status: %d): %w", se.Status, err)
}
