package handler

import (
	"strings"

	"job-scout/internal/delivery/http/dto"
	"job-scout/internal/delivery/http/middleware"
	"job-scout/internal/pkg/response"
	"job-scout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ScoreHandler struct {
	uc usecase.ScoreUsecase
}

func NewScoreHandler(uc usecase.ScoreUsecase) *ScoreHandler {
	return &ScoreHandler{uc: uc}
}

func (h *ScoreHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/score", h.Score)
}

// Score always answers 200; scoring failures come back as the zeroed result.
func (h *ScoreHandler) Score(c fiber.Ctx) error {
	var req dto.ScoreRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "jobDescription is required", nil, nil)
	}

	res := h.uc.CalculateScore(c.Context(), req.JobDescription, middleware.TokenFrom(c), req.Resume)
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
