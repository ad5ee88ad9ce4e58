package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/events"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

const categoryEntity = "skill_category"

type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    *uuid.UUID
}

// CategoryPatch lists the fields UpdateCategory may change. Moving a
// category goes through ReparentCategory.
type CategoryPatch struct {
	Name        *string
	Description *string
}

type CategoryStatistics struct {
	CategoryID         uuid.UUID `json:"category_id"`
	CategoryName       string    `json:"category_name"`
	TotalSkills        int       `json:"total_skills"`
	TotalSubcategories int       `json:"total_subcategories"`
	TotalVolunteers    int       `json:"total_volunteers"`
	DepthLevel         int       `json:"depth_level"`
}

type CategoryUsecase interface {
	CreateCategory(ctx context.Context, in CreateCategoryInput) (skill.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, p CategoryPatch) (skill.Category, error)
	ReparentCategory(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (skill.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, reassignToParent bool) error
	GetCategory(ctx context.Context, id uuid.UUID) (skill.Category, error)
	ListCategories(ctx context.Context) ([]skill.Category, error)
	SearchCategories(ctx context.Context, query string, limit int) ([]skill.Category, error)
	CategoryPath(ctx context.Context, id uuid.UUID) ([]skill.Category, error)
	CategoryTree(ctx context.Context) (skill.CategoryTree, error)
	CategoryStatistics(ctx context.Context, id uuid.UUID) (CategoryStatistics, error)
}

type Category struct {
	uow unitOfWork
}

func NewCategoryUsecase(store repository.Store, pub Publisher) *Category {
	return &Category{uow: newUnitOfWork(store, pub)}
}

func (u *Category) CreateCategory(ctx context.Context, in CreateCategoryInput) (skill.Category, error) {
	name := skill.NormalizeName(in.Name)
	if name == "" {
		return skill.Category{}, domainerr.Invalid("name", "name is required")
	}

	now := u.uow.clock()
	c := skill.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ParentID:    in.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		if err := ensureCategoryNameFree(ctx, r, name, uuid.Nil); err != nil {
			return err
		}
		if c.ParentID != nil {
			if _, err := r.Categories.FindByID(ctx, *c.ParentID); err != nil {
				return found(err, categoryEntity, *c.ParentID)
			}
		}
		if err := r.Categories.Create(ctx, c); err != nil {
			return categoryWriteError(err, c)
		}
		rec.Record(events.New(events.CategoryCreated, c.ID, now, events.WithData("name", c.Name)))
		return nil
	})
	if err != nil {
		return skill.Category{}, err
	}
	return c, nil
}

func (u *Category) UpdateCategory(ctx context.Context, id uuid.UUID, p CategoryPatch) (skill.Category, error) {
	if p.Name == nil && p.Description == nil {
		return skill.Category{}, domainerr.Invalid("body", "no fields to update")
	}
	var name string
	if p.Name != nil {
		name = skill.NormalizeName(*p.Name)
		if name == "" {
			return skill.Category{}, domainerr.Invalid("name", "name cannot be empty")
		}
	}

	var out skill.Category
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		c, err := r.Categories.FindByID(ctx, id)
		if err != nil {
			return found(err, categoryEntity, id)
		}
		if p.Name != nil && skill.NameKey(c.Name) != skill.NameKey(name) {
			if err := ensureCategoryNameFree(ctx, r, name, c.ID); err != nil {
				return err
			}
		}
		if p.Name != nil {
			c.Name = name
		}
		if p.Description != nil {
			c.Description = strings.TrimSpace(*p.Description)
		}
		c.UpdatedAt = u.uow.clock()
		if err := r.Categories.Update(ctx, c); err != nil {
			return categoryWriteError(err, c)
		}
		rec.Record(events.New(events.CategoryUpdated, c.ID, c.UpdatedAt))
		out = c
		return nil
	})
	return out, err
}

func (u *Category) ReparentCategory(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (skill.Category, error) {
	var out skill.Category
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		all, err := r.Categories.List(ctx)
		if err != nil {
			return wrap("list categories", err)
		}
		index := skill.NewCategoryIndex(all)

		c, ok := index.Get(id)
		if !ok {
			return domainerr.NotFound(categoryEntity, id)
		}
		if newParentID != nil {
			if _, ok := index.Get(*newParentID); !ok {
				return domainerr.NotFound(categoryEntity, *newParentID)
			}
			if index.WouldCreateCycle(id, *newParentID) {
				return domainerr.CircularReference(categoryEntity, id, *newParentID)
			}
		}

		var previous any
		if c.ParentID != nil {
			previous = c.ParentID.String()
		}
		c.ParentID = newParentID
		c.UpdatedAt = u.uow.clock()
		if err := r.Categories.Update(ctx, c); err != nil {
			return categoryWriteError(err, c)
		}

		var next any
		if newParentID != nil {
			next = newParentID.String()
		}
		rec.Record(events.New(events.CategoryReparented, c.ID, c.UpdatedAt,
			events.WithData("previous_parent_id", previous),
			events.WithData("parent_id", next),
		))
		out = c
		return nil
	})
	return out, err
}

// DeleteCategory removes a category. Without reassignment it must have no
// children and no skills. With reassignment, children and skills move to the
// category's parent; a root category can hand its children up to the top
// level but has nowhere to move its skills.
func (u *Category) DeleteCategory(ctx context.Context, id uuid.UUID, reassignToParent bool) error {
	return u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		all, err := r.Categories.List(ctx)
		if err != nil {
			return wrap("list categories", err)
		}
		index := skill.NewCategoryIndex(all)
		c, ok := index.Get(id)
		if !ok {
			return domainerr.NotFound(categoryEntity, id)
		}

		children := len(index.Children(id))
		counts, err := r.Skills.CountByCategory(ctx)
		if err != nil {
			return wrap("count skills", err)
		}
		skills := counts[id]

		if children > 0 || skills > 0 {
			if !reassignToParent {
				return domainerr.InUse(categoryEntity, id,
					fmt.Sprintf("category has %d subcategories and %d skills", children, skills))
			}
			if skills > 0 && c.ParentID == nil {
				return domainerr.InUse(categoryEntity, id,
					fmt.Sprintf("root category has %d skills and no parent to reassign them to", skills))
			}
		}

		if children > 0 {
			if _, err := r.Categories.ReparentChildren(ctx, id, c.ParentID); err != nil {
				return wrap("reparent children", err)
			}
		}
		if skills > 0 {
			if _, err := r.Skills.MoveCategory(ctx, id, *c.ParentID); err != nil {
				return wrap("move skills", err)
			}
		}
		if err := r.Categories.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return domainerr.InUse(categoryEntity, id, "category still has dependents")
			}
			return found(err, categoryEntity, id)
		}

		rec.Record(events.New(events.CategoryDeleted, id, u.uow.clock(),
			events.WithData("reassigned_children", children),
			events.WithData("reassigned_skills", skills),
		))
		return nil
	})
}

func (u *Category) GetCategory(ctx context.Context, id uuid.UUID) (skill.Category, error) {
	c, err := u.uow.repos().Categories.FindByID(ctx, id)
	if err != nil {
		return skill.Category{}, found(err, categoryEntity, id)
	}
	return c, nil
}

func (u *Category) ListCategories(ctx context.Context) ([]skill.Category, error) {
	out, err := u.uow.repos().Categories.List(ctx)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	return out, nil
}

func (u *Category) SearchCategories(ctx context.Context, query string, limit int) ([]skill.Category, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []skill.Category{}, nil
	}
	out, err := u.uow.repos().Categories.Search(ctx, query, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, wrap("search categories", err)
	}
	return out, nil
}

func (u *Category) index(ctx context.Context) (*skill.CategoryIndex, error) {
	all, err := u.uow.repos().Categories.List(ctx)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	return skill.NewCategoryIndex(all), nil
}

func (u *Category) CategoryPath(ctx context.Context, id uuid.UUID) ([]skill.Category, error) {
	index, err := u.index(ctx)
	if err != nil {
		return nil, err
	}
	return index.Path(id)
}

func (u *Category) CategoryTree(ctx context.Context) (skill.CategoryTree, error) {
	index, err := u.index(ctx)
	if err != nil {
		return skill.CategoryTree{}, err
	}
	counts, err := u.uow.repos().Skills.CountByCategory(ctx)
	if err != nil {
		return skill.CategoryTree{}, wrap("count skills", err)
	}
	return index.Tree(counts), nil
}

func (u *Category) CategoryStatistics(ctx context.Context, id uuid.UUID) (CategoryStatistics, error) {
	index, err := u.index(ctx)
	if err != nil {
		return CategoryStatistics{}, err
	}
	path, err := index.Path(id)
	if err != nil {
		return CategoryStatistics{}, err
	}
	c := path[len(path)-1]

	repos := u.uow.repos()
	skills, err := repos.Skills.List(ctx, repository.SkillFilter{CategoryID: &id})
	if err != nil {
		return CategoryStatistics{}, wrap("list skills", err)
	}
	ids := make([]uuid.UUID, 0, len(skills))
	for _, s := range skills {
		ids = append(ids, s.ID)
	}
	volunteers, err := repos.VolunteerSkills.CountVolunteersBySkills(ctx, ids)
	if err != nil {
		return CategoryStatistics{}, wrap("count volunteers", err)
	}

	return CategoryStatistics{
		CategoryID:         c.ID,
		CategoryName:       c.Name,
		TotalSkills:        len(skills),
		TotalSubcategories: len(index.Children(id)),
		TotalVolunteers:    volunteers,
		DepthLevel:         len(path),
	}, nil
}

func ensureCategoryNameFree(ctx context.Context, r repository.Repositories, name string, self uuid.UUID) error {
	existing, err := r.Categories.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return domainerr.Duplicate(categoryEntity, "name", name)
	case err == nil, errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return wrap("find category by name", err)
	}
}

func categoryWriteError(err error, c skill.Category) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return domainerr.Duplicate(categoryEntity, "name", c.Name)
	case errors.Is(err, repository.ErrReferenced) && c.ParentID != nil:
		return domainerr.NotFound(categoryEntity, *c.ParentID)
	default:
		return found(err, categoryEntity, c.ID)
	}
}
