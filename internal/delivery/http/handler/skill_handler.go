package handler

import (
	"github.com/gofiber/fiber/v3"

	"volunteer-match/internal/delivery/http/dto"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/pkg/response"
	"volunteer-match/internal/usecase"
)

type SkillHandler struct {
	uc usecase.SkillUsecase
}

func NewSkillHandler(uc usecase.SkillUsecase) *SkillHandler {
	return &SkillHandler{uc: uc}
}

func (h *SkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/skills")
	grp.Get("/", h.List)
	grp.Post("/", adminOnly, h.Create)
	grp.Get("/popular", h.Popular)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", adminOnly, h.Update)
	grp.Delete("/:id", adminOnly, h.Delete)
	grp.Post("/:id/activate", adminOnly, h.Activate)
	grp.Post("/:id/deactivate", adminOnly, h.Deactivate)
}

func (h *SkillHandler) List(c fiber.Ctx) error {
	var f usecase.SkillListFilter
	var err error
	if f.CategoryID, err = queryUUID(c, "category_id"); err != nil {
		return err
	}
	if f.Active, err = queryBool(c, "active"); err != nil {
		return err
	}
	if f.VerificationRequired, err = queryBool(c, "verification_required"); err != nil {
		return err
	}
	if f.Limit, err = queryInt(c, "limit"); err != nil {
		return err
	}
	if f.Offset, err = queryInt(c, "offset"); err != nil {
		return err
	}
	f.Query = c.Query("q")

	items, err := h.uc.ListSkills(c.Context(), f)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillsFrom(items))
}

func (h *SkillHandler) Create(c fiber.Ctx) error {
	var req dto.CreateSkillRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	created, err := h.uc.CreateSkill(c.Context(), req.Input())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, "Skill created successfully", dto.SkillFrom(created))
}

func (h *SkillHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	s, err := h.uc.GetSkill(c.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillFrom(s))
}

func (h *SkillHandler) Update(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateSkillRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.UpdateSkill(c.Context(), id, req.Patch())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Skill updated successfully", dto.SkillFrom(updated))
}

func (h *SkillHandler) Activate(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	s, err := h.uc.ActivateSkill(c.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillFrom(s))
}

func (h *SkillHandler) Deactivate(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	s, err := h.uc.DeactivateSkill(c.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillFrom(s))
}

// Delete refuses skills in use unless ?force=true, which also removes the
// volunteer skills and mission requirements referencing it.
func (h *SkillHandler) Delete(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	force, err := queryFlag(c, "force")
	if err != nil {
		return err
	}

	res, err := h.uc.DeleteSkill(c.Context(), id, force)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Skill deleted successfully", res)
}

func (h *SkillHandler) Popular(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	items, err := h.uc.PopularSkills(c.Context(), limit)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SkillUsagesFrom(items))
}
