package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is a unique constraint violation.
	ErrConflict = errors.New("record already exists")
	// ErrReferenced is a foreign key violation on delete or insert.
	ErrReferenced = errors.New("record is referenced")
)

type CategoryRepository interface {
	Create(ctx context.Context, c skill.Category) error
	Update(ctx context.Context, c skill.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (skill.Category, error)
	FindByName(ctx context.Context, name string) (skill.Category, error)
	List(ctx context.Context) ([]skill.Category, error)
	Search(ctx context.Context, query string, limit int) ([]skill.Category, error)
	// ReparentChildren moves every direct child of from under to.
	ReparentChildren(ctx context.Context, from uuid.UUID, to *uuid.UUID) (int64, error)
}

type SkillFilter struct {
	CategoryID           *uuid.UUID
	Active               *bool
	VerificationRequired *bool
	Query                string
	Limit                int
	Offset               int
}

type SkillRepository interface {
	Create(ctx context.Context, s skill.Skill) error
	Update(ctx context.Context, s skill.Skill) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (skill.Skill, error)
	FindByName(ctx context.Context, name string) (skill.Skill, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]skill.Skill, error)
	List(ctx context.Context, f SkillFilter) ([]skill.Skill, error)
	CountByCategory(ctx context.Context) (map[uuid.UUID]int, error)
	MoveCategory(ctx context.Context, from, to uuid.UUID) (int64, error)
}

type VolunteerSkillFilter struct {
	Status     *skill.VerificationStatus
	Primary    *bool
	CategoryID *uuid.UUID
}

// HolderFilter narrows ListBySkills to what a search can use.
type HolderFilter struct {
	VerifiedOnly   bool
	MinProficiency proficiency.Level
}

type VolunteerSkillRepository interface {
	Create(ctx context.Context, vs skill.VolunteerSkill) error
	Update(ctx context.Context, vs skill.VolunteerSkill) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (skill.VolunteerSkill, error)
	// FindByIDForUpdate locks the row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.VolunteerSkill, error)
	FindByVolunteerAndSkill(ctx context.Context, volunteerID, skillID uuid.UUID) (skill.VolunteerSkill, error)
	ListByVolunteer(ctx context.Context, volunteerID uuid.UUID, f VolunteerSkillFilter) ([]skill.VolunteerSkill, error)
	ListBySkills(ctx context.Context, skillIDs []uuid.UUID, f HolderFilter) ([]skill.VolunteerSkill, error)
	ClearPrimary(ctx context.Context, volunteerID uuid.UUID, except uuid.UUID) error
	// CountBySkill counts holders per skill. A nil slice counts every skill.
	CountBySkill(ctx context.Context, skillIDs []uuid.UUID) (map[uuid.UUID]int, error)
	CountVolunteersBySkills(ctx context.Context, skillIDs []uuid.UUID) (int, error)
	DeleteBySkill(ctx context.Context, skillID uuid.UUID) (int64, error)
}

type VerificationRequestRepository interface {
	Create(ctx context.Context, r skill.VerificationRequest) error
	Update(ctx context.Context, r skill.VerificationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (skill.VerificationRequest, error)
	// FindByIDForUpdate locks the row so two reviews cannot both succeed.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.VerificationRequest, error)
	FindOpenByVolunteerSkill(ctx context.Context, volunteerSkillID uuid.UUID) (skill.VerificationRequest, error)
	ListByVolunteerSkill(ctx context.Context, volunteerSkillID uuid.UUID) ([]skill.VerificationRequest, error)
	ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]skill.VerificationRequest, error)
	ListByStatus(ctx context.Context, statuses []skill.ReviewStatus, limit, offset int) ([]skill.VerificationRequest, error)
	CountByStatus(ctx context.Context) (map[skill.ReviewStatus]int, error)
	DeleteByVolunteerSkill(ctx context.Context, volunteerSkillID uuid.UUID) (int64, error)
	DeleteBySkill(ctx context.Context, skillID uuid.UUID) (int64, error)
}

type RequirementFilter struct {
	Level                *skill.RequirementLevel
	VerificationRequired *bool
}

type RequirementRepository interface {
	Create(ctx context.Context, r skill.MissionSkillRequirement) error
	Update(ctx context.Context, r skill.MissionSkillRequirement) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (skill.MissionSkillRequirement, error)
	FindByMissionAndSkill(ctx context.Context, missionID, skillID uuid.UUID) (skill.MissionSkillRequirement, error)
	ListByMission(ctx context.Context, missionID uuid.UUID, f RequirementFilter) ([]skill.MissionSkillRequirement, error)
	// CountBySkill counts missions per skill. A nil slice counts every skill.
	CountBySkill(ctx context.Context, skillIDs []uuid.UUID) (map[uuid.UUID]int, error)
	DeleteBySkill(ctx context.Context, skillID uuid.UUID) (int64, error)
}

type Repositories struct {
	Categories      CategoryRepository
	Skills          SkillRepository
	VolunteerSkills VolunteerSkillRepository
	Verifications   VerificationRequestRepository
	Requirements    RequirementRepository
}

// Store hands out repositories. Repos reads outside a transaction;
// WithinTx runs fn against transaction-bound repositories and commits only
// if fn returns nil.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Ping(ctx context.Context) error
}
