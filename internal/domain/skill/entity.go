package skill

import (
	"time"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/proficiency"
)

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	ParentID    *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Skill struct {
	ID                      uuid.UUID
	Name                    string
	Description             string
	CategoryID              uuid.UUID
	VerificationRequirement VerificationRequirement
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// VolunteerSkill is unique per (VolunteerID, SkillID).
// SkillName and CategoryID are read-side joins and are never written.
type VolunteerSkill struct {
	ID                      uuid.UUID
	VolunteerID             uuid.UUID
	SkillID                 uuid.UUID
	SkillName               string
	CategoryID              uuid.UUID
	ProficiencyLevel        proficiency.Level
	VerificationStatus      VerificationStatus
	VerificationRequested   bool
	VerificationRequestedAt *time.Time
	VerifiedBy              *uuid.UUID
	VerifiedAt              *time.Time
	VerificationNotes       string
	IsPrimary               bool
	SupportingDocument      string
	SupportingURL           string
	LastUsedDate            *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type Evidence struct {
	DocumentRef string
	Links       []string
	Notes       string
}

type VerificationRequest struct {
	ID               uuid.UUID
	VolunteerSkillID uuid.UUID
	Evidence         Evidence
	ReviewStatus     ReviewStatus
	ReviewerID       *uuid.UUID
	ReviewNotes      string
	AdminNotes       string
	RequestedAt      time.Time
	ReviewedAt       *time.Time
	UpdatedAt        time.Time
}

// MissionSkillRequirement is unique per (MissionID, SkillID).
type MissionSkillRequirement struct {
	ID                   uuid.UUID
	MissionID            uuid.UUID
	SkillID              uuid.UUID
	SkillName            string
	CategoryID           uuid.UUID
	RequirementLevel     RequirementLevel
	MinProficiency       proficiency.Level
	VerificationRequired bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (e Evidence) Clone() Evidence {
	out := e
	if e.Links != nil {
		out.Links = append([]string(nil), e.Links...)
	}
	return out
}
