package handler

import (
	"github.com/gofiber/fiber/v3"

	"volunteer-match/internal/delivery/http/dto"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/pkg/response"
	"volunteer-match/internal/usecase"
)

type SearchHandler struct {
	search      usecase.SearchUsecase
	suggestions usecase.SuggestionUsecase
}

func NewSearchHandler(search usecase.SearchUsecase, suggestions usecase.SuggestionUsecase) *SearchHandler {
	return &SearchHandler{search: search, suggestions: suggestions}
}

func (h *SearchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/search/volunteers")
	grp.Post("/by-skills", missionManagers, h.BySkills)
	grp.Get("/by-category/:categoryId", missionManagers, h.ByCategory)

	r.Get("/me/skill-suggestions", volunteersOnly, h.MySuggestions)
}

func (h *SearchHandler) BySkills(c fiber.Ctx) error {
	var req dto.SkillSearchRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	q, err := req.Query()
	if err != nil {
		return middleware.FromDomain(err)
	}

	items, err := h.search.SearchBySkills(c.Context(), q)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *SearchHandler) ByCategory(c fiber.Ctx) error {
	categoryID, err := uuidParam(c, "categoryId")
	if err != nil {
		return err
	}
	var q usecase.CategorySearchQuery
	if q.VerifiedOnly, err = queryFlagOr(c, "verified_only", true); err != nil {
		return err
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return err
	}
	if raw := c.Query("min_proficiency"); raw != "" {
		if q.MinProficiency, err = proficiency.Parse(raw); err != nil {
			return middleware.FromDomain(domainerr.InvalidEnum("min_proficiency", raw))
		}
	}

	items, err := h.search.SearchByCategory(c.Context(), categoryID, q)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *SearchHandler) MySuggestions(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	items, err := h.suggestions.ForVolunteer(c.Context(), volunteerID, limit)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillUsagesFrom(items))
}
