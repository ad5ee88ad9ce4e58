package dto

import (
	"time"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/matching"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/usecase"
)

type CreateSkillRequest struct {
	Name                    string    `json:"name" validate:"required,max=100"`
	Description             string    `json:"description" validate:"max=2000"`
	CategoryID              uuid.UUID `json:"category_id"`
	VerificationRequirement string    `json:"verification_requirement"`
}

func (r CreateSkillRequest) Input() usecase.CreateSkillInput {
	return usecase.CreateSkillInput{
		Name:                    r.Name,
		Description:             r.Description,
		CategoryID:              r.CategoryID,
		VerificationRequirement: skill.VerificationRequirement(r.VerificationRequirement),
	}
}

type UpdateSkillRequest struct {
	Name                    *string    `json:"name" validate:"omitnil,max=100"`
	Description             *string    `json:"description" validate:"omitnil,max=2000"`
	CategoryID              *uuid.UUID `json:"category_id"`
	VerificationRequirement *string    `json:"verification_requirement"`
}

func (r UpdateSkillRequest) Patch() usecase.SkillPatch {
	p := usecase.SkillPatch{Name: r.Name, Description: r.Description, CategoryID: r.CategoryID}
	if r.VerificationRequirement != nil {
		v := skill.VerificationRequirement(*r.VerificationRequirement)
		p.VerificationRequirement = &v
	}
	return p
}

type SkillResponse struct {
	ID                      uuid.UUID `json:"id"`
	Name                    string    `json:"name"`
	Description             string    `json:"description"`
	CategoryID              uuid.UUID `json:"category_id"`
	VerificationRequirement string    `json:"verification_requirement"`
	RequiresVerification    bool      `json:"requires_verification"`
	IsActive                bool      `json:"is_active"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func SkillFrom(s skill.Skill) SkillResponse {
	return SkillResponse{
		ID:                      s.ID,
		Name:                    s.Name,
		Description:             s.Description,
		CategoryID:              s.CategoryID,
		VerificationRequirement: string(s.VerificationRequirement),
		RequiresVerification:    s.VerificationRequirement.Required(),
		IsActive:                s.IsActive,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
}

func SkillsFrom(items []skill.Skill) []SkillResponse {
	out := make([]SkillResponse, 0, len(items))
	for _, s := range items {
		out = append(out, SkillFrom(s))
	}
	return out
}

type SkillUsageResponse struct {
	Skill      SkillResponse `json:"skill"`
	References int           `json:"references"`
}

func SkillUsagesFrom(items []matching.SkillUsage) []SkillUsageResponse {
	out := make([]SkillUsageResponse, 0, len(items))
	for _, it := range items {
		out = append(out, SkillUsageResponse{Skill: SkillFrom(it.Skill), References: it.References})
	}
	return out
}
