package handler

import (
	"errors"
	"strconv"

	"job-scout/internal/delivery/http/dto"
	"job-scout/internal/delivery/http/middleware"
	"job-scout/internal/pkg/response"
	"job-scout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const maxBatchURLs = 25

type ScrapeHandler struct {
	uc usecase.ScrapeUsecase
}

func NewScrapeHandler(uc usecase.ScrapeUsecase) *ScrapeHandler {
	return &ScrapeHandler{uc: uc}
}

func (h *ScrapeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/scrape", h.Scrape)
	r.Post("/scrape/batch", h.ScrapeBatch)
	r.Get("/jobs/recent", h.ListRecent)
}

func (h *ScrapeHandler) Scrape(c fiber.Ctx) error {
	var req dto.ScrapeRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.uc.Scrape(c.Context(), usecase.ScrapeRequest{URL: req.URL, Headless: req.Headless, Refresh: req.Refresh})
	if err != nil {
		return mapScrapeUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toScrapeResponse(res))
}

func (h *ScrapeHandler) ScrapeBatch(c fiber.Ctx) error {
	var req dto.ScrapeBatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if len(req.URLs) == 0 || len(req.URLs) > maxBatchURLs {
		return middleware.NewAppError(fiber.StatusBadRequest, "Provide between 1 and "+strconv.Itoa(maxBatchURLs)+" urls", nil, nil)
	}

	items := h.uc.ScrapeBatch(c.Context(), req.URLs, req.Headless)
	out := make([]dto.ScrapeBatchItemResponse, 0, len(items))
	for _, it := range items {
		item := dto.ScrapeBatchItemResponse{URL: it.URL, Error: it.Error}
		if it.Result != nil {
			r := toScrapeResponse(*it.Result)
			item.Result = &r
		}
		out = append(out, item)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ScrapeHandler) ListRecent(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 20)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	jobs, err := h.uc.Recent(c.Context(), limit)
	if err != nil {
		return mapScrapeUsecaseError(err)
	}

	out := make([]dto.ScrapedJobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, dto.ScrapedJobResponse{
			RawJobRecord: j.Record,
			ID:           j.ID,
			SourceType:   j.SourceType,
			ScrapedAt:    dto.FormatTime(j.ScrapedAt),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func toScrapeResponse(r usecase.ScrapeResult) dto.ScrapeResponse {
	return dto.ScrapeResponse{
		RawJobRecord: r.Record,
		SourceType:   r.SourceType,
		Ready:        r.Ready,
		Cached:       r.Cached,
	}
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}

func mapScrapeUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidURL):
		return middleware.NewAppError(fiber.StatusBadRequest, usecase.ErrInvalidURL.Error(), nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrPageUnavailable):
		return middleware.NewAppError(fiber.StatusBadGateway, usecase.ErrPageUnavailable.Error(), nil, err)
	case errors.Is(err, usecase.ErrPersistenceDisabled):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, usecase.ErrPersistenceDisabled.Error(), nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
