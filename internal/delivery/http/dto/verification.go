package dto

import (
	"time"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/usecase"
)

type EvidenceRequest struct {
	DocumentRef string   `json:"document_ref" validate:"max=500"`
	Links       []string `json:"links" validate:"max=10,dive,url"`
	Notes       string   `json:"notes" validate:"max=2000"`
}

func (r EvidenceRequest) Evidence() skill.Evidence {
	return skill.Evidence{DocumentRef: r.DocumentRef, Links: r.Links, Notes: r.Notes}
}

type ReviewRequest struct {
	Decision    string `json:"decision" validate:"required"`
	ReviewNotes string `json:"review_notes" validate:"max=2000"`
	AdminNotes  string `json:"admin_notes" validate:"max=2000"`
}

func (r ReviewRequest) Input(reviewerID uuid.UUID) usecase.ReviewRequestInput {
	return usecase.ReviewRequestInput{
		ReviewerID:  reviewerID,
		Decision:    r.Decision,
		ReviewNotes: r.ReviewNotes,
		AdminNotes:  r.AdminNotes,
	}
}

type DirectDecisionRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type EvidenceResponse struct {
	DocumentRef string   `json:"document_ref"`
	Links       []string `json:"links"`
	Notes       string   `json:"notes"`
}

type VerificationRequestResponse struct {
	ID               uuid.UUID        `json:"id"`
	VolunteerSkillID uuid.UUID        `json:"volunteer_skill_id"`
	Evidence         EvidenceResponse `json:"evidence"`
	ReviewStatus     string           `json:"review_status"`
	ReviewerID       *uuid.UUID       `json:"reviewer_id"`
	ReviewNotes      string           `json:"review_notes"`
	AdminNotes       string           `json:"admin_notes,omitempty"`
	RequestedAt      time.Time        `json:"requested_at"`
	ReviewedAt       *time.Time       `json:"reviewed_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func VerificationRequestFrom(r skill.VerificationRequest) VerificationRequestResponse {
	links := r.Evidence.Links
	if links == nil {
		links = []string{}
	}
	return VerificationRequestResponse{
		ID:               r.ID,
		VolunteerSkillID: r.VolunteerSkillID,
		Evidence: EvidenceResponse{
			DocumentRef: r.Evidence.DocumentRef,
			Links:       links,
			Notes:       r.Evidence.Notes,
		},
		ReviewStatus: string(r.ReviewStatus),
		ReviewerID:   r.ReviewerID,
		ReviewNotes:  r.ReviewNotes,
		AdminNotes:   r.AdminNotes,
		RequestedAt:  r.RequestedAt,
		ReviewedAt:   r.ReviewedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// VolunteerVerificationRequestFrom hides the admin-only notes.
func VolunteerVerificationRequestFrom(r skill.VerificationRequest) VerificationRequestResponse {
	res := VerificationRequestFrom(r)
	res.AdminNotes = ""
	return res
}

func VerificationRequestsFrom(items []skill.VerificationRequest, view func(skill.VerificationRequest) VerificationRequestResponse) []VerificationRequestResponse {
	out := make([]VerificationRequestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, view(r))
	}
	return out
}

type ReviewOutcomeResponse struct {
	Request        VerificationRequestResponse `json:"request"`
	VolunteerSkill VolunteerSkillResponse      `json:"volunteer_skill"`
}

func ReviewOutcomeFrom(o usecase.ReviewOutcome) ReviewOutcomeResponse {
	return ReviewOutcomeResponse{
		Request:        VerificationRequestFrom(o.Request),
		VolunteerSkill: VolunteerSkillFrom(o.VolunteerSkill),
	}
}
