package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/events"
	"volunteer-match/internal/domain/matching"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

const skillEntity = "skill"

type CreateSkillInput struct {
	Name                    string
	Description             string
	CategoryID              uuid.UUID
	VerificationRequirement skill.VerificationRequirement
}

type SkillPatch struct {
	Name                    *string
	Description             *string
	CategoryID              *uuid.UUID
	VerificationRequirement *skill.VerificationRequirement
}

type SkillListFilter struct {
	CategoryID           *uuid.UUID
	Active               *bool
	VerificationRequired *bool
	Query                string
	Limit                int
	Offset               int
}

type DeleteSkillResult struct {
	SkillID            uuid.UUID `json:"skill_id"`
	SkillName          string    `json:"skill_name"`
	AffectedVolunteers int       `json:"affected_volunteers"`
	AffectedMissions   int       `json:"affected_missions"`
}

type SkillUsecase interface {
	CreateSkill(ctx context.Context, in CreateSkillInput) (skill.Skill, error)
	UpdateSkill(ctx context.Context, id uuid.UUID, p SkillPatch) (skill.Skill, error)
	ActivateSkill(ctx context.Context, id uuid.UUID) (skill.Skill, error)
	DeactivateSkill(ctx context.Context, id uuid.UUID) (skill.Skill, error)
	DeleteSkill(ctx context.Context, id uuid.UUID, force bool) (DeleteSkillResult, error)
	GetSkill(ctx context.Context, id uuid.UUID) (skill.Skill, error)
	ListSkills(ctx context.Context, f SkillListFilter) ([]skill.Skill, error)
	PopularSkills(ctx context.Context, limit int) ([]matching.SkillUsage, error)
}

type Skill struct {
	uow unitOfWork
}

func NewSkillUsecase(store repository.Store, pub Publisher) *Skill {
	return &Skill{uow: newUnitOfWork(store, pub)}
}

func (u *Skill) CreateSkill(ctx context.Context, in CreateSkillInput) (skill.Skill, error) {
	name := skill.NormalizeName(in.Name)
	if name == "" {
		return skill.Skill{}, domainerr.Invalid("name", "name is required")
	}
	if in.CategoryID == uuid.Nil {
		return skill.Skill{}, domainerr.Invalid("category_id", "category_id is required")
	}
	if in.VerificationRequirement == "" {
		in.VerificationRequirement = skill.VerificationNone
	}
	if !in.VerificationRequirement.Valid() {
		return skill.Skill{}, domainerr.InvalidEnum("verification_requirement", string(in.VerificationRequirement))
	}

	now := u.uow.clock()
	s := skill.Skill{
		ID:                      uuid.New(),
		Name:                    name,
		Description:             strings.TrimSpace(in.Description),
		CategoryID:              in.CategoryID,
		VerificationRequirement: in.VerificationRequirement,
		IsActive:                true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		if err := ensureSkillNameFree(ctx, r, name, uuid.Nil); err != nil {
			return err
		}
		if _, err := r.Categories.FindByID(ctx, s.CategoryID); err != nil {
			return found(err, categoryEntity, s.CategoryID)
		}
		if err := r.Skills.Create(ctx, s); err != nil {
			return skillWriteError(err, s)
		}
		rec.Record(events.New(events.SkillCreated, s.ID, now, events.WithSkill(s.ID), events.WithData("name", s.Name)))
		return nil
	})
	if err != nil {
		return skill.Skill{}, err
	}
	return s, nil
}

func (u *Skill) UpdateSkill(ctx context.Context, id uuid.UUID, p SkillPatch) (skill.Skill, error) {
	if p.Name == nil && p.Description == nil && p.CategoryID == nil && p.VerificationRequirement == nil {
		return skill.Skill{}, domainerr.Invalid("body", "no fields to update")
	}
	var name string
	if p.Name != nil {
		name = skill.NormalizeName(*p.Name)
		if name == "" {
			return skill.Skill{}, domainerr.Invalid("name", "name cannot be empty")
		}
	}
	if p.VerificationRequirement != nil && !p.VerificationRequirement.Valid() {
		return skill.Skill{}, domainerr.InvalidEnum("verification_requirement", string(*p.VerificationRequirement))
	}

	var out skill.Skill
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		s, err := r.Skills.FindByID(ctx, id)
		if err != nil {
			return found(err, skillEntity, id)
		}
		if p.Name != nil {
			if skill.NameKey(s.Name) != skill.NameKey(name) {
				if err := ensureSkillNameFree(ctx, r, name, s.ID); err != nil {
					return err
				}
			}
			s.Name = name
		}
		if p.Description != nil {
			s.Description = strings.TrimSpace(*p.Description)
		}
		if p.CategoryID != nil && *p.CategoryID != s.CategoryID {
			if _, err := r.Categories.FindByID(ctx, *p.CategoryID); err != nil {
				return found(err, categoryEntity, *p.CategoryID)
			}
			s.CategoryID = *p.CategoryID
		}
		if p.VerificationRequirement != nil {
			s.VerificationRequirement = *p.VerificationRequirement
		}
		s.UpdatedAt = u.uow.clock()
		if err := r.Skills.Update(ctx, s); err != nil {
			return skillWriteError(err, s)
		}
		rec.Record(events.New(events.SkillUpdated, s.ID, s.UpdatedAt, events.WithSkill(s.ID)))
		out = s
		return nil
	})
	return out, err
}

func (u *Skill) ActivateSkill(ctx context.Context, id uuid.UUID) (skill.Skill, error) {
	return u.setActive(ctx, id, true)
}

// DeactivateSkill hides a skill from new attachments. Existing volunteer
// skills and mission requirements keep referencing it.
func (u *Skill) DeactivateSkill(ctx context.Context, id uuid.UUID) (skill.Skill, error) {
	return u.setActive(ctx, id, false)
}

func (u *Skill) setActive(ctx context.Context, id uuid.UUID, active bool) (skill.Skill, error) {
	var out skill.Skill
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		s, err := r.Skills.FindByID(ctx, id)
		if err != nil {
			return found(err, skillEntity, id)
		}
		out = s
		if s.IsActive == active {
			return nil
		}
		s.IsActive = active
		s.UpdatedAt = u.uow.clock()
		if err := r.Skills.Update(ctx, s); err != nil {
			return skillWriteError(err, s)
		}
		name := events.SkillDeactivated
		if active {
			name = events.SkillActivated
		}
		rec.Record(events.New(name, s.ID, s.UpdatedAt, events.WithSkill(s.ID)))
		out = s
		return nil
	})
	return out, err
}

// DeleteSkill removes a skill. A skill held by volunteers or required by
// missions is only removed with force, which deletes those records too.
func (u *Skill) DeleteSkill(ctx context.Context, id uuid.UUID, force bool) (DeleteSkillResult, error) {
	var out DeleteSkillResult
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		s, err := r.Skills.FindByID(ctx, id)
		if err != nil {
			return found(err, skillEntity, id)
		}
		holders, err := r.VolunteerSkills.CountBySkill(ctx, []uuid.UUID{id})
		if err != nil {
			return wrap("count holders", err)
		}
		missions, err := r.Requirements.CountBySkill(ctx, []uuid.UUID{id})
		if err != nil {
			return wrap("count missions", err)
		}
		out = DeleteSkillResult{
			SkillID:            s.ID,
			SkillName:          s.Name,
			AffectedVolunteers: holders[id],
			AffectedMissions:   missions[id],
		}

		if out.AffectedVolunteers > 0 || out.AffectedMissions > 0 {
			if !force {
				return domainerr.InUse(skillEntity, id, fmt.Sprintf(
					"skill is used by %d volunteers and %d missions", out.AffectedVolunteers, out.AffectedMissions))
			}
			if _, err := r.Verifications.DeleteBySkill(ctx, id); err != nil {
				return wrap("delete verification requests", err)
			}
			if _, err := r.VolunteerSkills.DeleteBySkill(ctx, id); err != nil {
				return wrap("delete volunteer skills", err)
			}
			if _, err := r.Requirements.DeleteBySkill(ctx, id); err != nil {
				return wrap("delete requirements", err)
			}
		}

		if err := r.Skills.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return domainerr.InUse(skillEntity, id, "skill is still referenced")
			}
			return found(err, skillEntity, id)
		}
		rec.Record(events.New(events.SkillDeleted, id, u.uow.clock(),
			events.WithSkill(id),
			events.WithData("affected_volunteers", out.AffectedVolunteers),
			events.WithData("affected_missions", out.AffectedMissions),
		))
		return nil
	})
	if err != nil {
		return DeleteSkillResult{}, err
	}
	return out, nil
}

func (u *Skill) GetSkill(ctx context.Context, id uuid.UUID) (skill.Skill, error) {
	s, err := u.uow.repos().Skills.FindByID(ctx, id)
	if err != nil {
		return skill.Skill{}, found(err, skillEntity, id)
	}
	return s, nil
}

func (u *Skill) ListSkills(ctx context.Context, f SkillListFilter) ([]skill.Skill, error) {
	if f.Offset < 0 {
		return nil, domainerr.Invalid("offset", "offset must be >= 0")
	}
	items, err := u.uow.repos().Skills.List(ctx, repository.SkillFilter{
		CategoryID:           f.CategoryID,
		Active:               f.Active,
		VerificationRequired: f.VerificationRequired,
		Query:                f.Query,
		Limit:                clampLimit(f.Limit, 100, 500),
		Offset:               f.Offset,
	})
	if err != nil {
		return nil, wrap("list skills", err)
	}
	return items, nil
}

// PopularSkills ranks active skills by how many volunteers hold them.
func (u *Skill) PopularSkills(ctx context.Context, limit int) ([]matching.SkillUsage, error) {
	repos := u.uow.repos()
	counts, err := repos.VolunteerSkills.CountBySkill(ctx, nil)
	if err != nil {
		return nil, wrap("count holders", err)
	}
	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	skills, err := repos.Skills.FindByIDs(ctx, ids)
	if err != nil {
		return nil, wrap("find skills", err)
	}
	candidates := make([]matching.SkillUsage, 0, len(skills))
	for _, s := range skills {
		candidates = append(candidates, matching.SkillUsage{Skill: s, References: counts[s.ID]})
	}
	return matching.RankSuggestions(candidates, nil, clampLimit(limit, 10, 100)), nil
}

func ensureSkillNameFree(ctx context.Context, r repository.Repositories, name string, self uuid.UUID) error {
	existing, err := r.Skills.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return domainerr.Duplicate(skillEntity, "name", name)
	case err == nil, errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return wrap("find skill by name", err)
	}
}

func skillWriteError(err error, s skill.Skill) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return domainerr.Duplicate(skillEntity, "name", s.Name)
	case errors.Is(err, repository.ErrReferenced):
		return domainerr.NotFound(categoryEntity, s.CategoryID)
	default:
		return found(err, skillEntity, s.ID)
	}
}
