package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/events"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/domain/verification"
	"volunteer-match/internal/repository"
)

const volunteerSkillEntity = "volunteer_skill"

type AddVolunteerSkillInput struct {
	SkillID            uuid.UUID
	ProficiencyLevel   proficiency.Level
	IsPrimary          bool
	SupportingDocument string
	SupportingURL      string
	LastUsedDate       *time.Time
}

// VolunteerSkillPatch lists what a volunteer may change on their own skill.
// Verification fields are not here; they move only through the workflow.
type VolunteerSkillPatch struct {
	ProficiencyLevel   *proficiency.Level
	IsPrimary          *bool
	SupportingDocument *string
	SupportingURL      *string
	LastUsedDate       *time.Time
}

func (p VolunteerSkillPatch) Empty() bool {
	return p.ProficiencyLevel == nil && p.IsPrimary == nil && p.SupportingDocument == nil &&
		p.SupportingURL == nil && p.LastUsedDate == nil
}

type VolunteerSkillListFilter struct {
	Status     *skill.VerificationStatus
	Primary    *bool
	CategoryID *uuid.UUID
}

type VolunteerSkillStatistics struct {
	VolunteerID                 uuid.UUID      `json:"volunteer_id"`
	TotalSkills                 int            `json:"total_skills"`
	VerifiedSkills              int            `json:"verified_skills"`
	PendingVerification         int            `json:"pending_verification"`
	PendingVerificationRequests int            `json:"pending_verification_requests"`
	ProficiencyDistribution     map[string]int `json:"proficiency_distribution"`
	CategoryDistribution        map[string]int `json:"category_distribution"`
	PrimarySkill                *string        `json:"primary_skill"`
}

type VolunteerSkillUsecase interface {
	AddSkill(ctx context.Context, volunteerID uuid.UUID, in AddVolunteerSkillInput) (skill.VolunteerSkill, error)
	UpdateSkill(ctx context.Context, volunteerID, id uuid.UUID, p VolunteerSkillPatch) (skill.VolunteerSkill, error)
	RemoveSkill(ctx context.Context, volunteerID, id uuid.UUID) error
	GetSkill(ctx context.Context, volunteerID, id uuid.UUID) (skill.VolunteerSkill, error)
	ListSkills(ctx context.Context, volunteerID uuid.UUID, f VolunteerSkillListFilter) ([]skill.VolunteerSkill, error)
	BulkImport(ctx context.Context, volunteerID uuid.UUID, items []AddVolunteerSkillInput) ([]skill.VolunteerSkill, error)
	Statistics(ctx context.Context, volunteerID uuid.UUID) (VolunteerSkillStatistics, error)
}

type VolunteerSkill struct {
	uow unitOfWork
}

func NewVolunteerSkillUsecase(store repository.Store, pub Publisher) *VolunteerSkill {
	return &VolunteerSkill{uow: newUnitOfWork(store, pub)}
}

func validateAddInput(in AddVolunteerSkillInput) error {
	if in.SkillID == uuid.Nil {
		return domainerr.Invalid("skill_id", "skill_id is required")
	}
	if !in.ProficiencyLevel.Valid() {
		return domainerr.InvalidEnum("proficiency_level", string(in.ProficiencyLevel))
	}
	return nil
}

func (u *VolunteerSkill) AddSkill(ctx context.Context, volunteerID uuid.UUID, in AddVolunteerSkillInput) (skill.VolunteerSkill, error) {
	if in.ProficiencyLevel == "" {
		in.ProficiencyLevel = proficiency.Beginner
	}
	if err := validateAddInput(in); err != nil {
		return skill.VolunteerSkill{}, err
	}

	var out skill.VolunteerSkill
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		vs, err := u.attach(ctx, r, rec, volunteerID, in)
		out = vs
		return err
	})
	return out, err
}

// attach seeds verification status from the skill and inserts the record.
// It runs inside the caller's transaction.
func (u *VolunteerSkill) attach(ctx context.Context, r repository.Repositories, rec *events.Recorder, volunteerID uuid.UUID, in AddVolunteerSkillInput) (skill.VolunteerSkill, error) {
	s, err := r.Skills.FindByID(ctx, in.SkillID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return skill.VolunteerSkill{}, domainerr.UnknownSkill(in.SkillID, "does not exist")
		}
		return skill.VolunteerSkill{}, wrap("find skill", err)
	}
	if !s.IsActive {
		return skill.VolunteerSkill{}, domainerr.UnknownSkill(in.SkillID, "is inactive")
	}

	_, err = r.VolunteerSkills.FindByVolunteerAndSkill(ctx, volunteerID, in.SkillID)
	if err == nil {
		return skill.VolunteerSkill{}, domainerr.Duplicate(volunteerSkillEntity, "skill_id", in.SkillID.String())
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return skill.VolunteerSkill{}, wrap("find volunteer skill", err)
	}

	now := u.uow.clock()
	vs := skill.VolunteerSkill{
		ID:                 uuid.New(),
		VolunteerID:        volunteerID,
		SkillID:            s.ID,
		ProficiencyLevel:   in.ProficiencyLevel,
		VerificationStatus: verification.InitialStatus(s.VerificationRequirement),
		IsPrimary:          in.IsPrimary,
		SupportingDocument: strings.TrimSpace(in.SupportingDocument),
		SupportingURL:      strings.TrimSpace(in.SupportingURL),
		LastUsedDate:       in.LastUsedDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if vs.IsPrimary {
		if err := r.VolunteerSkills.ClearPrimary(ctx, volunteerID, vs.ID); err != nil {
			return skill.VolunteerSkill{}, wrap("clear primary", err)
		}
	}
	if err := r.VolunteerSkills.Create(ctx, vs); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return skill.VolunteerSkill{}, domainerr.Duplicate(volunteerSkillEntity, "skill_id", in.SkillID.String())
		}
		return skill.VolunteerSkill{}, wrap("create volunteer skill", err)
	}
	vs.SkillName = s.Name
	vs.CategoryID = s.CategoryID

	rec.Record(events.New(events.VolunteerSkillAdded, vs.ID, now,
		events.WithVolunteer(volunteerID),
		events.WithSkill(s.ID),
		events.WithData("verification_status", string(vs.VerificationStatus)),
	))
	return vs, nil
}

func (u *VolunteerSkill) UpdateSkill(ctx context.Context, volunteerID, id uuid.UUID, p VolunteerSkillPatch) (skill.VolunteerSkill, error) {
	if p.Empty() {
		return skill.VolunteerSkill{}, domainerr.Invalid("body", "no fields to update")
	}
	if p.ProficiencyLevel != nil && !p.ProficiencyLevel.Valid() {
		return skill.VolunteerSkill{}, domainerr.InvalidEnum("proficiency_level", string(*p.ProficiencyLevel))
	}

	var out skill.VolunteerSkill
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		vs, err := ownedVolunteerSkill(ctx, r, volunteerID, id, true)
		if err != nil {
			return err
		}
		if p.ProficiencyLevel != nil {
			vs.ProficiencyLevel = *p.ProficiencyLevel
		}
		if p.SupportingDocument != nil {
			vs.SupportingDocument = strings.TrimSpace(*p.SupportingDocument)
		}
		if p.SupportingURL != nil {
			vs.SupportingURL = strings.TrimSpace(*p.SupportingURL)
		}
		if p.LastUsedDate != nil {
			d := *p.LastUsedDate
			vs.LastUsedDate = &d
		}
		if p.IsPrimary != nil {
			if *p.IsPrimary && !vs.IsPrimary {
				if err := r.VolunteerSkills.ClearPrimary(ctx, volunteerID, vs.ID); err != nil {
					return wrap("clear primary", err)
				}
			}
			vs.IsPrimary = *p.IsPrimary
		}
		vs.UpdatedAt = u.uow.clock()
		if err := r.VolunteerSkills.Update(ctx, vs); err != nil {
			return found(err, volunteerSkillEntity, id)
		}
		rec.Record(events.New(events.VolunteerSkillUpdated, vs.ID, vs.UpdatedAt,
			events.WithVolunteer(volunteerID),
			events.WithSkill(vs.SkillID),
		))
		out = vs
		return nil
	})
	return out, err
}

// RemoveSkill deletes a volunteer skill together with its verification
// requests.
func (u *VolunteerSkill) RemoveSkill(ctx context.Context, volunteerID, id uuid.UUID) error {
	return u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		vs, err := ownedVolunteerSkill(ctx, r, volunteerID, id, true)
		if err != nil {
			return err
		}
		if _, err := r.Verifications.DeleteByVolunteerSkill(ctx, id); err != nil {
			return wrap("delete verification requests", err)
		}
		if err := r.VolunteerSkills.Delete(ctx, id); err != nil {
			return found(err, volunteerSkillEntity, id)
		}
		rec.Record(events.New(events.VolunteerSkillRemoved, id, u.uow.clock(),
			events.WithVolunteer(volunteerID),
			events.WithSkill(vs.SkillID),
			events.WithData("skill_name", vs.SkillName),
		))
		return nil
	})
}

func (u *VolunteerSkill) GetSkill(ctx context.Context, volunteerID, id uuid.UUID) (skill.VolunteerSkill, error) {
	return ownedVolunteerSkill(ctx, u.uow.repos(), volunteerID, id, false)
}

func (u *VolunteerSkill) ListSkills(ctx context.Context, volunteerID uuid.UUID, f VolunteerSkillListFilter) ([]skill.VolunteerSkill, error) {
	items, err := u.uow.repos().VolunteerSkills.ListByVolunteer(ctx, volunteerID, repository.VolunteerSkillFilter{
		Status:     f.Status,
		Primary:    f.Primary,
		CategoryID: f.CategoryID,
	})
	if err != nil {
		return nil, wrap("list volunteer skills", err)
	}
	return items, nil
}

// BulkImport attaches every item or none of them.
func (u *VolunteerSkill) BulkImport(ctx context.Context, volunteerID uuid.UUID, items []AddVolunteerSkillInput) ([]skill.VolunteerSkill, error) {
	if len(items) == 0 {
		return nil, domainerr.Invalid("skills", "at least one skill is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	primaries := 0
	for i := range items {
		if items[i].ProficiencyLevel == "" {
			items[i].ProficiencyLevel = proficiency.Beginner
		}
		if err := validateAddInput(items[i]); err != nil {
			return nil, err
		}
		if _, dup := seen[items[i].SkillID]; dup {
			return nil, domainerr.Duplicate(volunteerSkillEntity, "skill_id", items[i].SkillID.String())
		}
		seen[items[i].SkillID] = struct{}{}
		if items[i].IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return nil, domainerr.Invalid("is_primary", "only one skill can be primary")
	}

	out := make([]skill.VolunteerSkill, 0, len(items))
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		out = out[:0]
		for _, in := range items {
			vs, err := u.attach(ctx, r, rec, volunteerID, in)
			if err != nil {
				return err
			}
			out = append(out, vs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *VolunteerSkill) Statistics(ctx context.Context, volunteerID uuid.UUID) (VolunteerSkillStatistics, error) {
	repos := u.uow.repos()
	items, err := repos.VolunteerSkills.ListByVolunteer(ctx, volunteerID, repository.VolunteerSkillFilter{})
	if err != nil {
		return VolunteerSkillStatistics{}, wrap("list volunteer skills", err)
	}
	categories, err := repos.Categories.List(ctx)
	if err != nil {
		return VolunteerSkillStatistics{}, wrap("list categories", err)
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	st := VolunteerSkillStatistics{
		VolunteerID:             volunteerID,
		ProficiencyDistribution: map[string]int{},
		CategoryDistribution:    map[string]int{},
	}
	for _, vs := range items {
		st.TotalSkills++
		switch vs.VerificationStatus {
		case skill.StatusVerified:
			st.VerifiedSkills++
		case skill.StatusPending:
			st.PendingVerification++
		}
		if vs.VerificationRequested {
			st.PendingVerificationRequests++
		}
		st.ProficiencyDistribution[vs.ProficiencyLevel.Display()]++
		st.CategoryDistribution[names[vs.CategoryID]]++
		if vs.IsPrimary {
			name := vs.SkillName
			st.PrimarySkill = &name
		}
	}
	return st, nil
}

// ownedVolunteerSkill loads a volunteer skill and checks it belongs to
// volunteerID. lock takes a row lock when inside a transaction.
func ownedVolunteerSkill(ctx context.Context, r repository.Repositories, volunteerID, id uuid.UUID, lock bool) (skill.VolunteerSkill, error) {
	find := r.VolunteerSkills.FindByID
	if lock {
		find = r.VolunteerSkills.FindByIDForUpdate
	}
	vs, err := find(ctx, id)
	if err != nil {
		return skill.VolunteerSkill{}, found(err, volunteerSkillEntity, id)
	}
	if vs.VolunteerID != volunteerID {
		return skill.VolunteerSkill{}, domainerr.Forbidden(volunteerSkillEntity, id)
	}
	return vs, nil
}
