package handler

import (
	"github.com/gofiber/fiber/v3"

	"volunteer-match/internal/delivery/http/dto"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/pkg/response"
	"volunteer-match/internal/usecase"
)

type CategoryHandler struct {
	uc usecase.CategoryUsecase
}

func NewCategoryHandler(uc usecase.CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/categories")
	grp.Get("/", h.List)
	grp.Post("/", adminOnly, h.Create)
	grp.Get("/tree", h.Tree)
	grp.Get("/search", h.Search)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", adminOnly, h.Update)
	grp.Put("/:id/parent", adminOnly, h.Reparent)
	grp.Delete("/:id", adminOnly, h.Delete)
	grp.Get("/:id/path", h.Path)
	grp.Get("/:id/statistics", h.Statistics)
}

func (h *CategoryHandler) List(c fiber.Ctx) error {
	items, err := h.uc.ListCategories(c.Context())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CategoriesFrom(items))
}

func (h *CategoryHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	created, err := h.uc.CreateCategory(c.Context(), req.Input())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusCreated, "Category created successfully", dto.CategoryFrom(created))
}

func (h *CategoryHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.uc.GetCategory(c.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CategoryFrom(cat))
}

func (h *CategoryHandler) Update(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCategoryRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.UpdateCategory(c.Context(), id, req.Patch())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Category updated successfully", dto.CategoryFrom(updated))
}

func (h *CategoryHandler) Reparent(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReparentCategoryRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	moved, err := h.uc.ReparentCategory(c.Context(), id, req.ParentID)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Category moved successfully", dto.CategoryFrom(moved))
}

func (h *CategoryHandler) Delete(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	reassign, err := queryFlag(c, "reassign")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteCategory(c.Context(), id, reassign); err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, "Category deleted successfully", nil)
}

func (h *CategoryHandler) Search(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	items, err := h.uc.SearchCategories(c.Context(), c.Query("q"), limit)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CategoriesFrom(items))
}

func (h *CategoryHandler) Path(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	path, err := h.uc.CategoryPath(c.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CategoriesFrom(path))
}

func (h *CategoryHandler) Tree(c fiber.Ctx) error {
	tree, err := h.uc.CategoryTree(c.Context())
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CategoryTreeFrom(tree))
}

func (h *CategoryHandler) Statistics(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	st, err := h.uc.CategoryStatistics(c.Context(), id)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}
