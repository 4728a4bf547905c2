package handler

import (
	"errors"
	"strconv"

	"job-scout/internal/delivery/http/dto"
	"job-scout/internal/delivery/http/middleware"
	"job-scout/internal/domain/job"
	"job-scout/internal/infrastructure/backend"
	"job-scout/internal/pkg/response"
	"job-scout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AgentHandler struct {
	uc usecase.SubmissionUsecase
}

func NewAgentHandler(uc usecase.SubmissionUsecase) *AgentHandler {
	return &AgentHandler{uc: uc}
}

func (h *AgentHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/agent")
	grp.Get("/assigned-users", h.ListAssignedUsers)
	grp.Post("/users/:user_id/jobs", h.CreateJob)
}

func (h *AgentHandler) ListAssignedUsers(c fiber.Ctx) error {
	users, err := h.uc.AssignedUsers(c.Context(), middleware.TokenFrom(c))
	if err != nil {
		return mapSubmissionUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, users)
}

func (h *AgentHandler) CreateJob(c fiber.Ctx) error {
	var req dto.SubmissionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.uc.Submit(c.Context(), middleware.TokenFrom(c), usecase.SubmissionInput{
		UserID:         c.Params("user_id"),
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		JobLink:        req.JobLink,
		CompanyName:    req.CompanyName,
		CompanyURL:     req.CompanyURL,
		CompanyLogo:    req.CompanyLogo,
		Location:       req.Location,
		Priority:       req.Priority,
		Status:         req.Status,
	})
	if err != nil {
		return mapSubmissionUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Job created successfully", res)
}

func mapSubmissionUsecaseError(err error) error {
	switch {
	case errors.Is(err, job.ErrMissingRequiredFields), errors.Is(err, backend.ErrMissingFields):
		return middleware.NewAppError(fiber.StatusBadRequest, backend.ErrMissingFields.Error(), nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, backend.ErrDuplicateJob):
		return middleware.NewAppError(fiber.StatusConflict, backend.ErrDuplicateJob.Error(), nil, err)
	case errors.Is(err, usecase.ErrSubmissionInFlight):
		return middleware.NewAppError(fiber.StatusConflict, usecase.ErrSubmissionInFlight.Error(), nil, err)
	case errors.Is(err, backend.ErrNoCredits):
		return middleware.NewAppError(fiber.StatusForbidden, backend.ErrNoCredits.Error(), nil, err)
	case errors.Is(err, usecase.ErrBackendUnavailable), errors.Is(err, backend.ErrNilClient):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, usecase.ErrBackendUnavailable.Error(), nil, err)
	}

	var se *backend.StatusError
	if !errors.As(err, &se) {
		return middleware.NewAppError(fiber.StatusBadGateway, "Backend request failed", nil, err)
	}
	if se.Status == fiber.StatusUnauthorized {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	}
	msg := se.Message
	if msg == "" {
		msg = "Failed to create job (status: " + strconv.Itoa(se.Status) + ")"
	}
	return middleware.NewAppError(fiber.StatusBadGateway, msg, nil, err)
}
