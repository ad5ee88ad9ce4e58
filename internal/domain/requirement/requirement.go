// Package requirement holds the rules for mission skill requirements.
package requirement

import (
	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
)

type Spec struct {
	SkillID              uuid.UUID
	RequirementLevel     skill.RequirementLevel
	MinProficiency       proficiency.Level
	VerificationRequired bool
}

// Patch lists the fields an update may change. Nil means unchanged.
type Patch struct {
	RequirementLevel     *skill.RequirementLevel
	MinProficiency       *proficiency.Level
	VerificationRequired *bool
}

func (p Patch) Empty() bool {
	return p.RequirementLevel == nil && p.MinProficiency == nil && p.VerificationRequired == nil
}

// Validate checks enum domains before anything is written.
func (s Spec) Validate() error {
	if s.SkillID == uuid.Nil {
		return domainerr.Invalid("skill_id", "skill_id is required")
	}
	if !s.RequirementLevel.Valid() {
		return domainerr.InvalidEnum("requirement_level", string(s.RequirementLevel))
	}
	if !s.MinProficiency.Valid() {
		return domainerr.InvalidEnum("min_proficiency_level", string(s.MinProficiency))
	}
	return nil
}

func (p Patch) Validate() error {
	if p.RequirementLevel != nil && !p.RequirementLevel.Valid() {
		return domainerr.InvalidEnum("requirement_level", string(*p.RequirementLevel))
	}
	if p.MinProficiency != nil && !p.MinProficiency.Valid() {
		return domainerr.InvalidEnum("min_proficiency_level", string(*p.MinProficiency))
	}
	return nil
}

func (p Patch) Apply(r skill.MissionSkillRequirement) skill.MissionSkillRequirement {
	if p.RequirementLevel != nil {
		r.RequirementLevel = *p.RequirementLevel
	}
	if p.MinProficiency != nil {
		r.MinProficiency = *p.MinProficiency
	}
	if p.VerificationRequired != nil {
		r.VerificationRequired = *p.VerificationRequired
	}
	return r
}

func IsGating(r skill.MissionSkillRequirement) bool {
	return r.RequirementLevel.Gating()
}

// Partition splits requirements into gating and advisory sets, keeping input order.
func Partition(reqs []skill.MissionSkillRequirement) (gating, advisory []skill.MissionSkillRequirement) {
	gating = make([]skill.MissionSkillRequirement, 0, len(reqs))
	advisory = make([]skill.MissionSkillRequirement, 0)
	for _, r := range reqs {
		if r.SkillID == uuid.Nil {
			continue
		}
		if IsGating(r) {
			gating = append(gating, r)
		} else {
			advisory = append(advisory, r)
		}
	}
	return gating, advisory
}

func Gating(reqs []skill.MissionSkillRequirement) []skill.MissionSkillRequirement {
	g, _ := Partition(reqs)
	return g
}

// CheckBatch rejects a bulk add that names the same skill twice.
func CheckBatch(specs []Spec) error {
	seen := make(map[uuid.UUID]struct{}, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.SkillID]; dup {
			return domainerr.Duplicate("mission_skill_requirement", "skill_id", s.SkillID.String())
		}
		seen[s.SkillID] = struct{}{}
	}
	return nil
}

type Statistics struct {
	Total                int            `json:"total"`
	Gating               int            `json:"gating"`
	Advisory             int            `json:"advisory"`
	VerificationRequired int            `json:"verification_required"`
	ByLevel              map[string]int `json:"by_level"`
	ByMinProficiency     map[string]int `json:"by_min_proficiency"`
}

func Summarize(reqs []skill.MissionSkillRequirement) Statistics {
	st := Statistics{
		ByLevel:          make(map[string]int, 4),
		ByMinProficiency: make(map[string]int, 4),
	}
	for _, l := range skill.RequirementLevels() {
		st.ByLevel[string(l)] = 0
	}
	for _, l := range proficiency.All() {
		st.ByMinProficiency[string(l)] = 0
	}
	for _, r := range reqs {
		st.Total++
		if IsGating(r) {
			st.Gating++
		} else {
			st.Advisory++
		}
		if r.VerificationRequired {
			st.VerificationRequired++
		}
		st.ByLevel[string(r.RequirementLevel)]++
		st.ByMinProficiency[string(r.MinProficiency)]++
	}
	return st
}
