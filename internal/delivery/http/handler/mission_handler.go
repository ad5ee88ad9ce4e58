package handler

import (
	"github.com/gofiber/fiber/v3"

	"volunteer-match/internal/delivery/http/dto"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/pkg/response"
	"volunteer-match/internal/usecase"
)

// MissionHandler serves the skill side of missions: requirements, eligibility
// checks and candidate search. Missions themselves live elsewhere.
type MissionHandler struct {
	requirements usecase.RequirementUsecase
	eligibility  usecase.EligibilityUsecase
	search       usecase.SearchUsecase
	suggestions  usecase.SuggestionUsecase
}

func NewMissionHandler(
	requirements usecase.RequirementUsecase,
	eligibility usecase.EligibilityUsecase,
	search usecase.SearchUsecase,
	suggestions usecase.SuggestionUsecase,
) *MissionHandler {
	return &MissionHandler{
		requirements: requirements,
		eligibility:  eligibility,
		search:       search,
		suggestions:  suggestions,
	}
}

func (h *MissionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/missions/:missionId")
	grp.Get("/requirements", h.ListRequirements)
	grp.Post("/requirements", missionManagers, h.AddRequirement)
	grp.Post("/requirements/bulk", missionManagers, h.BulkAddRequirements)
	grp.Get("/requirements/gating", h.GatingRequirements)
	grp.Get("/requirements/statistics", h.RequirementStatistics)
	grp.Patch("/requirements/:id", missionManagers, h.UpdateRequirement)
	grp.Delete("/requirements/:id", missionManagers, h.RemoveRequirement)

	grp.Get("/eligibility", volunteersOnly, h.MyEligibility)
	grp.Get("/eligibility/:volunteerId", missionManagers, h.Eligibility)
	grp.Get("/candidates", missionManagers, h.Candidates)
	grp.Get("/skill-suggestions", missionManagers, h.Suggestions)
}

func (h *MissionHandler) ListRequirements(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	var f usecase.RequirementListFilter
	if raw := c.Query("level"); raw != "" {
		lvl, perr := skill.ParseRequirementLevel(raw)
		if perr != nil {
			return middleware.FromDomain(perr)
		}
		f.Level = &lvl
	}
	if f.VerificationRequired, err = queryBool(c, "verification_required"); err != nil {
		return err
	}

	items, err := h.requirements.ListRequirements(c.Context(), missionID, f)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RequirementsFrom(items))
}

func (h *MissionHandler) AddRequirement(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	var req dto.RequirementRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	spec, err := req.Spec()
	if err != nil {
		return middleware.FromDomain(err)
	}
	created, err := h.requirements.AddRequirement(c.Context(), missionID, spec)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, "Requirement added successfully", dto.RequirementFrom(created))
}

func (h *MissionHandler) BulkAddRequirements(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	var req dto.BulkRequirementsRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	specs, err := req.Specs()
	if err != nil {
		return middleware.FromDomain(err)
	}
	created, err := h.requirements.BulkAddRequirements(c.Context(), missionID, specs)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, "Requirements added successfully", dto.RequirementsFrom(created))
}

func (h *MissionHandler) UpdateRequirement(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateRequirementRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	patch, err := req.Patch()
	if err != nil {
		return middleware.FromDomain(err)
	}
	updated, err := h.requirements.UpdateRequirement(c.Context(), missionID, id, patch)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Requirement updated successfully", dto.RequirementFrom(updated))
}

func (h *MissionHandler) RemoveRequirement(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.requirements.RemoveRequirement(c.Context(), missionID, id); err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Requirement removed successfully", nil)
}

func (h *MissionHandler) GatingRequirements(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	items, err := h.requirements.GatingRequirements(c.Context(), missionID)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RequirementsFrom(items))
}

func (h *MissionHandler) RequirementStatistics(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	st, err := h.requirements.RequirementStatistics(c.Context(), missionID)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}

func (h *MissionHandler) MyEligibility(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	res, err := h.eligibility.Evaluate(c.Context(), missionID, volunteerID)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *MissionHandler) Eligibility(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	volunteerID, err := uuidParam(c, "volunteerId")
	if err != nil {
		return err
	}
	res, err := h.eligibility.Evaluate(c.Context(), missionID, volunteerID)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *MissionHandler) Candidates(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	var q usecase.MissionSearchQuery
	if q.RequireAllRequired, err = queryFlagOr(c, "require_all_required", true); err != nil {
		return err
	}
	if q.VerifiedOnly, err = queryFlagOr(c, "verified_only", true); err != nil {
		return err
	}
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return err
	}

	items, err := h.search.SearchByMission(c.Context(), missionID, q)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *MissionHandler) Suggestions(c fiber.Ctx) error {
	missionID, err := uuidParam(c, "missionId")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	items, err := h.suggestions.ForMission(c.Context(), missionID, limit)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillUsagesFrom(items))
}
