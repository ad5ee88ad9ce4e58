package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"volunteer-match/internal/delivery/http/dto"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/pkg/response"
	"volunteer-match/internal/usecase"
)

type VolunteerSkillHandler struct {
	uc usecase.VolunteerSkillUsecase
}

func NewVolunteerSkillHandler(uc usecase.VolunteerSkillUsecase) *VolunteerSkillHandler {
	return &VolunteerSkillHandler{uc: uc}
}

func (h *VolunteerSkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	me := r.Group("/me/skills")
	me.Get("/", volunteersOnly, h.ListMine)
	me.Post("/", volunteersOnly, h.Add)
	me.Post("/bulk", volunteersOnly, h.BulkImport)
	me.Get("/statistics", volunteersOnly, h.MyStatistics)
	me.Get("/:id", volunteersOnly, h.Get)
	me.Patch("/:id", volunteersOnly, h.Update)
	me.Delete("/:id", volunteersOnly, h.Remove)

	vol := r.Group("/volunteers/:volunteerId/skills")
	vol.Get("/", missionManagers, h.ListForVolunteer)
	vol.Get("/statistics", missionManagers, h.StatisticsForVolunteer)
}

func listFilter(c fiber.Ctx) (usecase.VolunteerSkillListFilter, error) {
	var f usecase.VolunteerSkillListFilter
	var err error
	if raw := c.Query("status"); raw != "" {
		st, perr := skill.ParseVerificationStatus(raw)
		if perr != nil {
			return f, middleware.FromDomain(perr)
		}
		f.Status = &st
	}
	if f.Primary, err = queryBool(c, "primary"); err != nil {
		return f, err
	}
	if f.CategoryID, err = queryUUID(c, "category_id"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *VolunteerSkillHandler) list(c fiber.Ctx, volunteerID uuid.UUID) error {
	f, err := listFilter(c)
	if err != nil {
		return err
	}
	items, err := h.uc.ListSkills(c.Context(), volunteerID, f)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.VolunteerSkillsFrom(items))
}

func (h *VolunteerSkillHandler) ListMine(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	return h.list(c, volunteerID)
}

func (h *VolunteerSkillHandler) ListForVolunteer(c fiber.Ctx) error {
	volunteerID, err := uuidParam(c, "volunteerId")
	if err != nil {
		return err
	}
	return h.list(c, volunteerID)
}

func (h *VolunteerSkillHandler) Add(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.AddVolunteerSkillRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	in, err := req.Input()
	if err != nil {
		return middleware.FromDomain(err)
	}

	created, err := h.uc.AddSkill(c.Context(), volunteerID, in)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, "Skill added successfully", dto.VolunteerSkillFrom(created))
}

// BulkImport adds every listed skill or, on the first failure, none.
func (h *VolunteerSkillHandler) BulkImport(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.BulkImportRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	inputs, err := req.Inputs()
	if err != nil {
		return middleware.FromDomain(err)
	}

	created, err := h.uc.BulkImport(c.Context(), volunteerID, inputs)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, "Skills imported successfully", dto.VolunteerSkillsFrom(created))
}

func (h *VolunteerSkillHandler) Get(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	vs, err := h.uc.GetSkill(c.Context(), volunteerID, id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.VolunteerSkillFrom(vs))
}

func (h *VolunteerSkillHandler) Update(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateVolunteerSkillRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	patch, err := req.Patch()
	if err != nil {
		return middleware.FromDomain(err)
	}

	updated, err := h.uc.UpdateSkill(c.Context(), volunteerID, id, patch)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Skill updated successfully", dto.VolunteerSkillFrom(updated))
}

func (h *VolunteerSkillHandler) Remove(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.RemoveSkill(c.Context(), volunteerID, id); err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Skill removed successfully", nil)
}

func (h *VolunteerSkillHandler) statistics(c fiber.Ctx, volunteerID uuid.UUID) error {
	if volunteerID == uuid.Nil {
		return middleware.FromDomain(domainerr.Invalid("volunteer_id", "volunteer_id is required"))
	}
	st, err := h.uc.Statistics(c.Context(), volunteerID)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}

func (h *VolunteerSkillHandler) MyStatistics(c fiber.Ctx) error {
	volunteerID, err := caller(c)
	if err != nil {
		return err
	}
	return h.statistics(c, volunteerID)
}

func (h *VolunteerSkillHandler) StatisticsForVolunteer(c fiber.Ctx) error {
	volunteerID, err := uuidParam(c, "volunteerId")
	if err != nil {
		return err
	}
	return h.statistics(c, volunteerID)
}
