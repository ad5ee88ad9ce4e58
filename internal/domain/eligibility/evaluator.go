// Package eligibility decides whether a volunteer may apply to a mission
// from the mission's gating requirements and the volunteer's skills.
package eligibility

import (
	"fmt"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/requirement"
	"volunteer-match/internal/domain/skill"
)

type Gap string

const (
	GapMissing      Gap = "missing"
	GapVerification Gap = "verification"
	GapProficiency  Gap = "proficiency"
)

// Finding is the structured form of one missing reason.
type Finding struct {
	Gap       Gap               `json:"gap"`
	SkillID   uuid.UUID         `json:"skill_id"`
	SkillName string            `json:"skill_name"`
	Required  proficiency.Level `json:"required_level,omitempty"`
	Has       proficiency.Level `json:"has_level,omitempty"`
}

func (f Finding) Reason() string {
	switch f.Gap {
	case GapMissing:
		return "missing required skill: " + f.SkillName
	case GapVerification:
		return "verification required for: " + f.SkillName
	default:
		return fmt.Sprintf("insufficient proficiency in %s: requires ≥%s, has %s", f.SkillName, f.Required, f.Has)
	}
}

type Result struct {
	CanApply       bool      `json:"can_apply"`
	MissingReasons []string  `json:"missing_reasons"`
	Findings       []Finding `json:"findings"`
}

// Err returns an Ineligible error carrying the reasons, or nil.
func (r Result) Err() error {
	if r.CanApply {
		return nil
	}
	return domainerr.Ineligible(r.MissingReasons)
}

// Evaluate checks every gating requirement against the volunteer's skills.
// Advisory requirements are ignored. One requirement yields at most one
// reason, in the order missing, verification, proficiency.
func Evaluate(reqs []skill.MissionSkillRequirement, held []skill.VolunteerSkill) Result {
	bySkill := make(map[uuid.UUID]skill.VolunteerSkill, len(held))
	for _, vs := range held {
		bySkill[vs.SkillID] = vs
	}

	findings := make([]Finding, 0)
	for _, r := range requirement.Gating(reqs) {
		name := r.SkillName
		if name == "" {
			name = r.SkillID.String()
		}

		vs, ok := bySkill[r.SkillID]
		switch {
		case !ok:
			findings = append(findings, Finding{Gap: GapMissing, SkillID: r.SkillID, SkillName: name})
		case r.VerificationRequired && vs.VerificationStatus != skill.StatusVerified:
			findings = append(findings, Finding{Gap: GapVerification, SkillID: r.SkillID, SkillName: name})
		case !proficiency.MeetsOrExceeds(vs.ProficiencyLevel, r.MinProficiency):
			findings = append(findings, Finding{
				Gap:       GapProficiency,
				SkillID:   r.SkillID,
				SkillName: name,
				Required:  r.MinProficiency,
				Has:       vs.ProficiencyLevel,
			})
		}
	}

	reasons := make([]string, 0, len(findings))
	for _, f := range findings {
		reasons = append(reasons, f.Reason())
	}
	return Result{
		CanApply:       len(reasons) == 0,
		MissingReasons: reasons,
		Findings:       findings,
	}
}
