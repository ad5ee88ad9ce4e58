package dto

import (
	"time"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/usecase"
)

type CreateCategoryRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=1000"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

func (r CreateCategoryRequest) Input() usecase.CreateCategoryInput {
	return usecase.CreateCategoryInput{Name: r.Name, Description: r.Description, ParentID: r.ParentID}
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitnil,max=100"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

func (r UpdateCategoryRequest) Patch() usecase.CategoryPatch {
	return usecase.CategoryPatch{Name: r.Name, Description: r.Description}
}

// ReparentCategoryRequest moves a category; a null parent_id makes it a root.
type ReparentCategoryRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func CategoryFrom(c skill.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func CategoriesFrom(items []skill.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, CategoryFrom(c))
	}
	return out
}

type CategoryNodeResponse struct {
	ID         uuid.UUID              `json:"id"`
	Name       string                 `json:"name"`
	SkillCount int                    `json:"skill_count"`
	Depth      int                    `json:"depth"`
	Children   []CategoryNodeResponse `json:"children"`
}

func CategoryTreeFrom(t skill.CategoryTree) []CategoryNodeResponse {
	out := []CategoryNodeResponse{}
	for root := range t.Roots() {
		out = append(out, categoryNodeFrom(root))
	}
	return out
}

func categoryNodeFrom(n skill.CategoryNode) CategoryNodeResponse {
	res := CategoryNodeResponse{
		ID:         n.Category.ID,
		Name:       n.Category.Name,
		SkillCount: n.SkillCount,
		Depth:      n.Depth,
		Children:   []CategoryNodeResponse{},
	}
	for child := range n.Children() {
		res.Children = append(res.Children, categoryNodeFrom(child))
	}
	return res
}
