package dto

import (
	"time"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/usecase"
)

type AddVolunteerSkillRequest struct {
	SkillID            uuid.UUID `json:"skill_id"`
	ProficiencyLevel   string    `json:"proficiency_level"`
	IsPrimary          bool      `json:"is_primary"`
	SupportingDocument string    `json:"supporting_document" validate:"max=500"`
	SupportingURL      string    `json:"supporting_url" validate:"omitempty,url,max=500"`
	LastUsedDate       *string   `json:"last_used_date" validate:"omitnil,datetime=2006-01-02"`
}

func (r AddVolunteerSkillRequest) Input() (usecase.AddVolunteerSkillInput, error) {
	lastUsed, err := parseDate("last_used_date", r.LastUsedDate)
	if err != nil {
		return usecase.AddVolunteerSkillInput{}, err
	}
	level, err := parseLevel("proficiency_level", r.ProficiencyLevel)
	if err != nil {
		return usecase.AddVolunteerSkillInput{}, err
	}
	return usecase.AddVolunteerSkillInput{
		SkillID:            r.SkillID,
		ProficiencyLevel:   level,
		IsPrimary:          r.IsPrimary,
		SupportingDocument: r.SupportingDocument,
		SupportingURL:      r.SupportingURL,
		LastUsedDate:       lastUsed,
	}, nil
}

type BulkImportRequest struct {
	Skills []AddVolunteerSkillRequest `json:"skills" validate:"required,min=1,max=100,dive"`
}

func (r BulkImportRequest) Inputs() ([]usecase.AddVolunteerSkillInput, error) {
	out := make([]usecase.AddVolunteerSkillInput, 0, len(r.Skills))
	for _, s := range r.Skills {
		in, err := s.Input()
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

type UpdateVolunteerSkillRequest struct {
	ProficiencyLevel   *string `json:"proficiency_level"`
	IsPrimary          *bool   `json:"is_primary"`
	SupportingDocument *string `json:"supporting_document" validate:"omitnil,max=500"`
	SupportingURL      *string `json:"supporting_url" validate:"omitnil,max=500"`
	LastUsedDate       *string `json:"last_used_date" validate:"omitnil,datetime=2006-01-02"`
}

func (r UpdateVolunteerSkillRequest) Patch() (usecase.VolunteerSkillPatch, error) {
	lastUsed, err := parseDate("last_used_date", r.LastUsedDate)
	if err != nil {
		return usecase.VolunteerSkillPatch{}, err
	}
	level, err := levelPtr("proficiency_level", r.ProficiencyLevel)
	if err != nil {
		return usecase.VolunteerSkillPatch{}, err
	}
	return usecase.VolunteerSkillPatch{
		ProficiencyLevel:   level,
		IsPrimary:          r.IsPrimary,
		SupportingDocument: r.SupportingDocument,
		SupportingURL:      r.SupportingURL,
		LastUsedDate:       lastUsed,
	}, nil
}

type VolunteerSkillResponse struct {
	ID                      uuid.UUID  `json:"id"`
	VolunteerID             uuid.UUID  `json:"volunteer_id"`
	SkillID                 uuid.UUID  `json:"skill_id"`
	SkillName               string     `json:"skill_name"`
	CategoryID              uuid.UUID  `json:"category_id"`
	ProficiencyLevel        string     `json:"proficiency_level"`
	ProficiencyDisplay      string     `json:"proficiency_display"`
	VerificationStatus      string     `json:"verification_status"`
	VerificationRequested   bool       `json:"verification_requested"`
	VerificationRequestedAt *time.Time `json:"verification_requested_at"`
	VerifiedBy              *uuid.UUID `json:"verified_by"`
	VerifiedAt              *time.Time `json:"verified_at"`
	VerificationNotes       string     `json:"verification_notes"`
	IsPrimary               bool       `json:"is_primary"`
	SupportingDocument      string     `json:"supporting_document"`
	SupportingURL           string     `json:"supporting_url"`
	LastUsedDate            *string    `json:"last_used_date"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func VolunteerSkillFrom(vs skill.VolunteerSkill) VolunteerSkillResponse {
	return VolunteerSkillResponse{
		ID:                      vs.ID,
		VolunteerID:             vs.VolunteerID,
		SkillID:                 vs.SkillID,
		SkillName:               vs.SkillName,
		CategoryID:              vs.CategoryID,
		ProficiencyLevel:        string(vs.ProficiencyLevel),
		ProficiencyDisplay:      vs.ProficiencyLevel.Display(),
		VerificationStatus:      string(vs.VerificationStatus),
		VerificationRequested:   vs.VerificationRequested,
		VerificationRequestedAt: vs.VerificationRequestedAt,
		VerifiedBy:              vs.VerifiedBy,
		VerifiedAt:              vs.VerifiedAt,
		VerificationNotes:       vs.VerificationNotes,
		IsPrimary:               vs.IsPrimary,
		SupportingDocument:      vs.SupportingDocument,
		SupportingURL:           vs.SupportingURL,
		LastUsedDate:            formatDate(vs.LastUsedDate),
		CreatedAt:               vs.CreatedAt,
		UpdatedAt:               vs.UpdatedAt,
	}
}

func VolunteerSkillsFrom(items []skill.VolunteerSkill) []VolunteerSkillResponse {
	out := make([]VolunteerSkillResponse, 0, len(items))
	for _, vs := range items {
		out = append(out, VolunteerSkillFrom(vs))
	}
	return out
}
