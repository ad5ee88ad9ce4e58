package dto

import (
	"time"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/requirement"
	"volunteer-match/internal/domain/skill"
)

type RequirementRequest struct {
	SkillID              uuid.UUID `json:"skill_id"`
	RequirementLevel     string    `json:"requirement_level"`
	MinProficiencyLevel  string    `json:"min_proficiency_level"`
	VerificationRequired bool      `json:"verification_required"`
}

func (r RequirementRequest) Spec() (requirement.Spec, error) {
	minLevel, err := parseLevel("min_proficiency_level", r.MinProficiencyLevel)
	if err != nil {
		return requirement.Spec{}, err
	}
	return requirement.Spec{
		SkillID:              r.SkillID,
		RequirementLevel:     skill.RequirementLevel(r.RequirementLevel),
		MinProficiency:       minLevel,
		VerificationRequired: r.VerificationRequired,
	}, nil
}

type BulkRequirementsRequest struct {
	Skills []RequirementRequest `json:"skills" validate:"required,min=1,max=100"`
}

func (r BulkRequirementsRequest) Specs() ([]requirement.Spec, error) {
	out := make([]requirement.Spec, 0, len(r.Skills))
	for _, s := range r.Skills {
		spec, err := s.Spec()
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

type UpdateRequirementRequest struct {
	RequirementLevel     *string `json:"requirement_level"`
	MinProficiencyLevel  *string `json:"min_proficiency_level"`
	VerificationRequired *bool   `json:"verification_required"`
}

func (r UpdateRequirementRequest) Patch() (requirement.Patch, error) {
	minLevel, err := levelPtr("min_proficiency_level", r.MinProficiencyLevel)
	if err != nil {
		return requirement.Patch{}, err
	}
	p := requirement.Patch{
		MinProficiency:       minLevel,
		VerificationRequired: r.VerificationRequired,
	}
	if r.RequirementLevel != nil {
		l := skill.RequirementLevel(*r.RequirementLevel)
		p.RequirementLevel = &l
	}
	return p, nil
}

type RequirementResponse struct {
	ID                   uuid.UUID `json:"id"`
	MissionID            uuid.UUID `json:"mission_id"`
	SkillID              uuid.UUID `json:"skill_id"`
	SkillName            string    `json:"skill_name"`
	CategoryID           uuid.UUID `json:"category_id"`
	RequirementLevel     string    `json:"requirement_level"`
	IsGating             bool      `json:"is_gating"`
	MinProficiencyLevel  string    `json:"min_proficiency_level"`
	VerificationRequired bool      `json:"verification_required"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func RequirementFrom(r skill.MissionSkillRequirement) RequirementResponse {
	return RequirementResponse{
		ID:                   r.ID,
		MissionID:            r.MissionID,
		SkillID:              r.SkillID,
		SkillName:            r.SkillName,
		CategoryID:           r.CategoryID,
		RequirementLevel:     string(r.RequirementLevel),
		IsGating:             requirement.IsGating(r),
		MinProficiencyLevel:  string(r.MinProficiency),
		VerificationRequired: r.VerificationRequired,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func RequirementsFrom(items []skill.MissionSkillRequirement) []RequirementResponse {
	out := make([]RequirementResponse, 0, len(items))
	for _, r := range items {
		out = append(out, RequirementFrom(r))
	}
	return out
}
