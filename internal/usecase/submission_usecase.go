package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"job-scout/internal/domain/job"
	"job-scout/internal/infrastructure/backend"
	"job-scout/internal/infrastructure/cache"
	"job-scout/internal/repository"

	"github.com/google/uuid"
)

type AgentBackend interface {
	AssignedUsers(ctx context.Context, token string) ([]backend.AssignedUser, error)
	CreateJobForUser(ctx context.Context, token, userID string, body job.Submission) (json.RawMessage, error)
}

// SubmissionInput is a reviewed scrape plus the choices made in the UI.
type SubmissionInput struct {
	UserID         string
	JobTitle       string
	JobDescription string
	JobLink        string
	CompanyName    string
	CompanyURL     string
	CompanyLogo    string
	Location       string
	Priority       string
	Status         string
}

type SubmissionResult struct {
	Submission job.Submission  `json:"submission"`
	Response   json.RawMessage `json:"response,omitempty"`
}

type SubmissionUsecase interface {
	AssignedUsers(ctx context.Context, token string) ([]backend.AssignedUser, error)
	Submit(ctx context.Context, token string, in SubmissionInput) (SubmissionResult, error)
}

type Submissions struct {
	agent  AgentBackend
	audit  repository.SubmissionRepository
	locks  ResultCache
	logger *log.Logger
	newID  func() string
}

func NewSubmissionUsecase(agent AgentBackend, audit repository.SubmissionRepository, locks ResultCache, logger *log.Logger) *Submissions {
	if logger == nil {
		logger = log.Default()
	}
	return &Submissions{
		agent:  agent,
		audit:  audit,
		locks:  locks,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

func (u *Submissions) AssignedUsers(ctx context.Context, token string) ([]backend.AssignedUser, error) {
	if u.agent == nil {
		return nil, ErrBackendUnavailable
	}
	return u.agent.AssignedUsers(ctx, token)
}

// BuildSubmission turns a reviewed record into the job-creation payload.
func BuildSubmission(in SubmissionInput, jobID string) (job.Submission, error) {
	if err := job.MissingRequired(in.JobTitle, in.JobDescription, in.JobLink); err != nil {
		return job.Submission{}, err
	}
	status := job.Status(strings.TrimSpace(in.Status))
	if status == "" {
		status = job.StatusAssigned
	}
	if !status.Valid() {
		return job.Submission{}, ErrInvalidInput
	}
	logo := strings.TrimSpace(in.CompanyLogo)
	return job.Submission{
		JobID:          jobID,
		JobTitle:       strings.TrimSpace(in.JobTitle),
		JobDescription: in.JobDescription,
		JobLink:        strings.TrimSpace(in.JobLink),
		ImageURL:       job.StringPtr(logo),
		Priority:       string(job.ParsePriority(in.Priority)),
		CompanyName:    strings.TrimSpace(in.CompanyName),
		CompanyURL:     strings.TrimSpace(in.CompanyURL),
		CompanyLogo:    logo,
		Location:       strings.TrimSpace(in.Location),
		Status:         string(status),
	}, nil
}

// Submit creates the job on behalf of in.UserID. Validation happens before any
// network call; a short-lived lock rejects double clicks on the same link.
func (u *Submissions) Submit(ctx context.Context, token string, in SubmissionInput) (SubmissionResult, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return SubmissionResult{}, ErrInvalidInput
	}
	sub, err := BuildSubmission(in, u.newID())
	if err != nil {
		return SubmissionResult{}, err
	}
	if u.agent == nil {
		return SubmissionResult{}, ErrBackendUnavailable
	}

	if u.locks != nil {
		lockKey := cache.SubmissionLockKey(userID, sub.JobLink)
		acquired, err := u.locks.SetIfNotExists(ctx, lockKey, sub.JobID, 10*time.Second)
		switch {
		case err != nil:
			// another caller may hold the key; never delete what we did not set
			u.logger.Printf("submission status=lock_unavailable user=%s error=%v", userID, err)
		case !acquired:
			return SubmissionResult{}, ErrSubmissionInFlight
		default:
			defer func() { _ = u.locks.Delete(context.WithoutCancel(ctx), lockKey) }()
		}
	}

	resp, err := u.agent.CreateJobForUser(ctx, token, userID, sub)
	if err != nil {
		u.logger.Printf("submission status=error user=%s link=%s error=%v", userID, sub.JobLink, err)
		return SubmissionResult{}, err
	}
	u.logger.Printf("submission status=ok user=%s job_id=%s priority=%s", userID, sub.JobID, sub.Priority)

	if u.audit != nil {
		if err := u.audit.Record(ctx, userID, sub); err != nil {
			u.logger.Printf("submission status=audit_failed job_id=%s error=%v", sub.JobID, err)
		}
	}
	return SubmissionResult{Submission: sub, Response: resp}, nil
}
