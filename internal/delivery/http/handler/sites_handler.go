package handler

import (
	"job-scout/internal/delivery/http/dto"
	"job-scout/internal/delivery/http/middleware"
	"job-scout/internal/pkg/response"
	"job-scout/internal/sites"
	"job-scout/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SitesHandler struct {
	registry *sites.Registry
}

func NewSitesHandler(registry *sites.Registry) *SitesHandler {
	if registry == nil {
		registry = sites.Default()
	}
	return &SitesHandler{registry: registry}
}

func (h *SitesHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/sites")
	grp.Get("/selectors", h.GetSelectors)
	grp.Get("/support", h.GetSupport)
}

func (h *SitesHandler) GetSelectors(c fiber.Ctx) error {
	u, err := usecase.ValidateJobURL(c.Query("url"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.registry.Resolve(u))
}

func (h *SitesHandler) GetSupport(c fiber.Ctx) error {
	u, err := usecase.ValidateJobURL(c.Query("url"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	}

	out := dto.SiteSupportResponse{
		URL:           u,
		SourceType:    h.registry.Resolve(u).SourceType,
		Autofill:      h.registry.IsSupportedAutofillSite(u),
		Autoapply:     h.registry.IsSupportedAutoapplySite(u),
		AlwaysVisible: h.registry.IsSiteAlwaysVisible(u),
	}
	out.CoverLetterSelector, _ = h.registry.CoverLetterSelector(u)
	out.CurrentJobID, _ = sites.CurrentJobIDFromURL(u)

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
