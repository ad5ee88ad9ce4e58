package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/events"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/requirement"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

const requirementEntity = "mission_skill_requirement"

type RequirementListFilter struct {
	Level                *skill.RequirementLevel
	VerificationRequired *bool
}

type RequirementStatistics struct {
	MissionID uuid.UUID `json:"mission_id"`
	requirement.Statistics
	CategoryBreakdown map[string]int `json:"category_breakdown"`
	GatingSkills      []string       `json:"gating_skills"`
}

type RequirementUsecase interface {
	AddRequirement(ctx context.Context, missionID uuid.UUID, spec requirement.Spec) (skill.MissionSkillRequirement, error)
	UpdateRequirement(ctx context.Context, missionID, id uuid.UUID, p requirement.Patch) (skill.MissionSkillRequirement, error)
	RemoveRequirement(ctx context.Context, missionID, id uuid.UUID) error
	ListRequirements(ctx context.Context, missionID uuid.UUID, f RequirementListFilter) ([]skill.MissionSkillRequirement, error)
	GatingRequirements(ctx context.Context, missionID uuid.UUID) ([]skill.MissionSkillRequirement, error)
	BulkAddRequirements(ctx context.Context, missionID uuid.UUID, specs []requirement.Spec) ([]skill.MissionSkillRequirement, error)
	RequirementStatistics(ctx context.Context, missionID uuid.UUID) (RequirementStatistics, error)
}

type Requirement struct {
	uow unitOfWork
}

func NewRequirementUsecase(store repository.Store, pub Publisher) *Requirement {
	return &Requirement{uow: newUnitOfWork(store, pub)}
}

func (u *Requirement) AddRequirement(ctx context.Context, missionID uuid.UUID, spec requirement.Spec) (skill.MissionSkillRequirement, error) {
	if missionID == uuid.Nil {
		return skill.MissionSkillRequirement{}, domainerr.Invalid("mission_id", "mission_id is required")
	}
	spec = withRequirementDefaults(spec)
	if err := spec.Validate(); err != nil {
		return skill.MissionSkillRequirement{}, err
	}

	var out skill.MissionSkillRequirement
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		req, err := u.add(ctx, r, rec, missionID, spec)
		out = req
		return err
	})
	return out, err
}

func withRequirementDefaults(s requirement.Spec) requirement.Spec {
	if s.RequirementLevel == "" {
		s.RequirementLevel = skill.LevelPreferred
	}
	if s.MinProficiency == "" {
		s.MinProficiency = proficiency.Beginner
	}
	return s
}

func (u *Requirement) add(ctx context.Context, r repository.Repositories, rec *events.Recorder, missionID uuid.UUID, spec requirement.Spec) (skill.MissionSkillRequirement, error) {
	s, err := r.Skills.FindByID(ctx, spec.SkillID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return skill.MissionSkillRequirement{}, domainerr.UnknownSkill(spec.SkillID, "does not exist")
		}
		return skill.MissionSkillRequirement{}, wrap("find skill", err)
	}
	if !s.IsActive {
		return skill.MissionSkillRequirement{}, domainerr.UnknownSkill(spec.SkillID, "is inactive")
	}

	_, err = r.Requirements.FindByMissionAndSkill(ctx, missionID, spec.SkillID)
	if err == nil {
		return skill.MissionSkillRequirement{}, domainerr.Duplicate(requirementEntity, "skill_id", spec.SkillID.String())
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return skill.MissionSkillRequirement{}, wrap("find requirement", err)
	}

	now := u.uow.clock()
	req := skill.MissionSkillRequirement{
		ID:                   uuid.New(),
		MissionID:            missionID,
		SkillID:              s.ID,
		RequirementLevel:     spec.RequirementLevel,
		MinProficiency:       spec.MinProficiency,
		VerificationRequired: spec.VerificationRequired,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := r.Requirements.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return skill.MissionSkillRequirement{}, domainerr.Duplicate(requirementEntity, "skill_id", spec.SkillID.String())
		}
		return skill.MissionSkillRequirement{}, wrap("create requirement", err)
	}
	req.SkillName = s.Name
	req.CategoryID = s.CategoryID

	rec.Record(events.New(events.RequirementAdded, req.ID, now,
		events.WithMission(missionID),
		events.WithSkill(s.ID),
		events.WithData("requirement_level", string(req.RequirementLevel)),
	))
	return req, nil
}

func (u *Requirement) UpdateRequirement(ctx context.Context, missionID, id uuid.UUID, p requirement.Patch) (skill.MissionSkillRequirement, error) {
	if p.Empty() {
		return skill.MissionSkillRequirement{}, domainerr.Invalid("body", "no fields to update")
	}
	if err := p.Validate(); err != nil {
		return skill.MissionSkillRequirement{}, err
	}

	var out skill.MissionSkillRequirement
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		req, err := missionRequirement(ctx, r, missionID, id)
		if err != nil {
			return err
		}
		req = p.Apply(req)
		req.UpdatedAt = u.uow.clock()
		if err := r.Requirements.Update(ctx, req); err != nil {
			return found(err, requirementEntity, id)
		}
		rec.Record(events.New(events.RequirementUpdated, req.ID, req.UpdatedAt,
			events.WithMission(missionID),
			events.WithSkill(req.SkillID),
		))
		out = req
		return nil
	})
	return out, err
}

func (u *Requirement) RemoveRequirement(ctx context.Context, missionID, id uuid.UUID) error {
	return u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		req, err := missionRequirement(ctx, r, missionID, id)
		if err != nil {
			return err
		}
		if err := r.Requirements.Delete(ctx, id); err != nil {
			return found(err, requirementEntity, id)
		}
		rec.Record(events.New(events.RequirementRemoved, id, u.uow.clock(),
			events.WithMission(missionID),
			events.WithSkill(req.SkillID),
		))
		return nil
	})
}

func (u *Requirement) ListRequirements(ctx context.Context, missionID uuid.UUID, f RequirementListFilter) ([]skill.MissionSkillRequirement, error) {
	if f.Level != nil && !f.Level.Valid() {
		return nil, domainerr.InvalidEnum("requirement_level", string(*f.Level))
	}
	items, err := u.uow.repos().Requirements.ListByMission(ctx, missionID, repository.RequirementFilter{
		Level:                f.Level,
		VerificationRequired: f.VerificationRequired,
	})
	if err != nil {
		return nil, wrap("list requirements", err)
	}
	return items, nil
}

// GatingRequirements returns only the required and critical requirements.
func (u *Requirement) GatingRequirements(ctx context.Context, missionID uuid.UUID) ([]skill.MissionSkillRequirement, error) {
	items, err := u.ListRequirements(ctx, missionID, RequirementListFilter{})
	if err != nil {
		return nil, err
	}
	return requirement.Gating(items), nil
}

// BulkAddRequirements adds every spec or none of them.
func (u *Requirement) BulkAddRequirements(ctx context.Context, missionID uuid.UUID, specs []requirement.Spec) ([]skill.MissionSkillRequirement, error) {
	if missionID == uuid.Nil {
		return nil, domainerr.Invalid("mission_id", "mission_id is required")
	}
	if len(specs) == 0 {
		return nil, domainerr.Invalid("skills", "at least one requirement is required")
	}
	for i := range specs {
		specs[i] = withRequirementDefaults(specs[i])
	}
	if err := requirement.CheckBatch(specs); err != nil {
		return nil, err
	}

	out := make([]skill.MissionSkillRequirement, 0, len(specs))
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		out = out[:0]
		for _, spec := range specs {
			req, err := u.add(ctx, r, rec, missionID, spec)
			if err != nil {
				return err
			}
			out = append(out, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Requirement) RequirementStatistics(ctx context.Context, missionID uuid.UUID) (RequirementStatistics, error) {
	items, err := u.ListRequirements(ctx, missionID, RequirementListFilter{})
	if err != nil {
		return RequirementStatistics{}, err
	}
	categories, err := u.uow.repos().Categories.List(ctx)
	if err != nil {
		return RequirementStatistics{}, wrap("list categories", err)
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	st := RequirementStatistics{
		MissionID:         missionID,
		Statistics:        requirement.Summarize(items),
		CategoryBreakdown: map[string]int{},
		GatingSkills:      []string{},
	}
	for _, req := range items {
		st.CategoryBreakdown[names[req.CategoryID]]++
		if requirement.IsGating(req) {
			st.GatingSkills = append(st.GatingSkills, req.SkillName)
		}
	}
	return st, nil
}

// missionRequirement loads a requirement and checks it belongs to missionID.
func missionRequirement(ctx context.Context, r repository.Repositories, missionID, id uuid.UUID) (skill.MissionSkillRequirement, error) {
	req, err := r.Requirements.FindByID(ctx, id)
	if err != nil {
		return skill.MissionSkillRequirement{}, found(err, requirementEntity, id)
	}
	if req.MissionID != missionID {
		return skill.MissionSkillRequirement{}, domainerr.NotFound(requirementEntity, id)
	}
	return req, nil
}
