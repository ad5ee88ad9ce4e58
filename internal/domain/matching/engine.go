package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/requirement"
	"volunteer-match/internal/domain/skill"
)

const (
	requiredWeight  = 0.7
	preferredWeight = 0.3
)

type MatchType string

const (
	MatchAll MatchType = "all"
	MatchAny MatchType = "any"
)

// ParseMatchType reads a match type; empty input means MatchAll.
func ParseMatchType(raw string) (MatchType, error) {
	switch MatchType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MatchAll:
		return MatchAll, nil
	case MatchAny:
		return MatchAny, nil
	default:
		return "", domainerr.InvalidEnum("match_type", raw)
	}
}

type SkillCriteria struct {
	SkillIDs     []uuid.UUID
	VerifiedOnly bool
	// MinProficiency is ignored when empty.
	MinProficiency proficiency.Level
	MatchType      MatchType
}

type MissionCriteria struct {
	RequireAllRequired bool
	VerifiedOnly       bool
}

type MatchedSkill struct {
	SkillID          uuid.UUID         `json:"skill_id"`
	SkillName        string            `json:"skill_name"`
	ProficiencyLevel proficiency.Level `json:"proficiency_level"`
	Verified         bool              `json:"verified"`
}

type MissingSkill struct {
	SkillID     uuid.UUID `json:"skill_id"`
	SkillName   string    `json:"skill_name"`
	IsMandatory bool      `json:"is_mandatory"`
}

type SkillMatch struct {
	VolunteerID     uuid.UUID      `json:"volunteer_id"`
	MatchedCount    int            `json:"matched_count"`
	MatchPercentage float64        `json:"match_percentage"`
	MatchedSkills   []MatchedSkill `json:"matched_skills"`
}

type MissionMatch struct {
	VolunteerID      uuid.UUID      `json:"volunteer_id"`
	RequiredScore    float64        `json:"required_score"`
	PreferredScore   float64        `json:"preferred_score"`
	OverallScore     float64        `json:"overall_score"`
	MatchedRequired  int            `json:"matched_required"`
	TotalRequired    int            `json:"total_required"`
	MatchedPreferred int            `json:"matched_preferred"`
	TotalPreferred   int            `json:"total_preferred"`
	IsFullyQualified bool           `json:"is_fully_qualified"`
	MatchedSkills    []MatchedSkill `json:"matched_skills"`
	MissingSkills    []MissingSkill `json:"missing_skills"`
}

// UniqueSkillIDs drops nil and repeated ids, keeping first-seen order.
func UniqueSkillIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// RankBySkills scores every volunteer in held against the requested skill
// set. Volunteers with no qualifying skill are not candidates.
func RankBySkills(held []skill.VolunteerSkill, c SkillCriteria, limit int) []SkillMatch {
	ids := UniqueSkillIDs(c.SkillIDs)
	if len(ids) == 0 {
		return []SkillMatch{}
	}
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	byVolunteer := make(map[uuid.UUID]*SkillMatch)
	counted := make(map[[2]uuid.UUID]struct{})
	for _, vs := range held {
		if _, ok := wanted[vs.SkillID]; !ok {
			continue
		}
		if c.VerifiedOnly && vs.VerificationStatus != skill.StatusVerified {
			continue
		}
		if c.MinProficiency != "" && !proficiency.MeetsOrExceeds(vs.ProficiencyLevel, c.MinProficiency) {
			continue
		}
		key := [2]uuid.UUID{vs.VolunteerID, vs.SkillID}
		if _, dup := counted[key]; dup {
			continue
		}
		counted[key] = struct{}{}

		m, ok := byVolunteer[vs.VolunteerID]
		if !ok {
			m = &SkillMatch{VolunteerID: vs.VolunteerID, MatchedSkills: make([]MatchedSkill, 0, len(ids))}
			byVolunteer[vs.VolunteerID] = m
		}
		m.MatchedCount++
		m.MatchedSkills = append(m.MatchedSkills, matchedFrom(vs))
	}

	out := make([]SkillMatch, 0, len(byVolunteer))
	for _, m := range byVolunteer {
		if c.MatchType == MatchAll && m.MatchedCount < len(ids) {
			continue
		}
		m.MatchPercentage = round2(float64(m.MatchedCount) / float64(len(ids)) * 100)
		out = append(out, *m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchedCount != out[j].MatchedCount {
			return out[i].MatchedCount > out[j].MatchedCount
		}
		return out[i].VolunteerID.String() < out[j].VolunteerID.String()
	})
	return truncate(out, limit)
}

// ScoreMission scores one volunteer's skills against a mission's
// requirements. A requirement counts as matched when the volunteer holds the
// skill at or above its minimum proficiency, verified if the criteria ask.
func ScoreMission(volunteerID uuid.UUID, reqs []skill.MissionSkillRequirement, held []skill.VolunteerSkill, c MissionCriteria) MissionMatch {
	bySkill := make(map[uuid.UUID]skill.VolunteerSkill, len(held))
	for _, vs := range held {
		bySkill[vs.SkillID] = vs
	}
	gating, advisory := requirement.Partition(reqs)

	m := MissionMatch{
		VolunteerID:    volunteerID,
		TotalRequired:  len(gating),
		TotalPreferred: len(advisory),
		MatchedSkills:  make([]MatchedSkill, 0, len(reqs)),
		MissingSkills:  make([]MissingSkill, 0),
	}

	satisfies := func(r skill.MissionSkillRequirement) (skill.VolunteerSkill, bool) {
		vs, ok := bySkill[r.SkillID]
		if !ok {
			return vs, false
		}
		if c.VerifiedOnly && vs.VerificationStatus != skill.StatusVerified {
			return vs, false
		}
		return vs, proficiency.MeetsOrExceeds(vs.ProficiencyLevel, r.MinProficiency)
	}

	for _, r := range gating {
		vs, ok := satisfies(r)
		if !ok {
			m.MissingSkills = append(m.MissingSkills, MissingSkill{SkillID: r.SkillID, SkillName: r.SkillName, IsMandatory: true})
			continue
		}
		m.MatchedRequired++
		m.MatchedSkills = append(m.MatchedSkills, matchedFrom(vs))
	}
	for _, r := range advisory {
		vs, ok := satisfies(r)
		if !ok {
			m.MissingSkills = append(m.MissingSkills, MissingSkill{SkillID: r.SkillID, SkillName: r.SkillName, IsMandatory: false})
			continue
		}
		m.MatchedPreferred++
		m.MatchedSkills = append(m.MatchedSkills, matchedFrom(vs))
	}

	m.RequiredScore = 100
	if m.TotalRequired > 0 {
		m.RequiredScore = round2(float64(m.MatchedRequired) / float64(m.TotalRequired) * 100)
	}
	if m.TotalPreferred > 0 {
		m.PreferredScore = round2(float64(m.MatchedPreferred) / float64(m.TotalPreferred) * 100)
	}
	m.OverallScore = round2(requiredWeight*m.RequiredScore + preferredWeight*m.PreferredScore)
	m.IsFullyQualified = m.MatchedRequired == m.TotalRequired
	return m
}

// RankForMission scores every candidate in held. Candidates are volunteers
// holding at least one of the mission's skills, verified if the criteria ask.
func RankForMission(reqs []skill.MissionSkillRequirement, held []skill.VolunteerSkill, c MissionCriteria, limit int) []MissionMatch {
	if len(reqs) == 0 {
		return []MissionMatch{}
	}
	missionSkills := make(map[uuid.UUID]struct{}, len(reqs))
	for _, r := range reqs {
		missionSkills[r.SkillID] = struct{}{}
	}

	grouped := make(map[uuid.UUID][]skill.VolunteerSkill)
	candidates := make(map[uuid.UUID]struct{})
	for _, vs := range held {
		if _, ok := missionSkills[vs.SkillID]; !ok {
			continue
		}
		grouped[vs.VolunteerID] = append(grouped[vs.VolunteerID], vs)
		if !c.VerifiedOnly || vs.VerificationStatus == skill.StatusVerified {
			candidates[vs.VolunteerID] = struct{}{}
		}
	}

	out := make([]MissionMatch, 0, len(candidates))
	for vid := range candidates {
		m := ScoreMission(vid, reqs, grouped[vid], c)
		if c.RequireAllRequired && !m.IsFullyQualified {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OverallScore != out[j].OverallScore {
			return out[i].OverallScore > out[j].OverallScore
		}
		if out[i].MatchedRequired != out[j].MatchedRequired {
			return out[i].MatchedRequired > out[j].MatchedRequired
		}
		return out[i].VolunteerID.String() < out[j].VolunteerID.String()
	})
	return truncate(out, limit)
}

func matchedFrom(vs skill.VolunteerSkill) MatchedSkill {
	return MatchedSkill{
		SkillID:          vs.SkillID,
		SkillName:        vs.SkillName,
		ProficiencyLevel: vs.ProficiencyLevel,
		Verified:         vs.VerificationStatus == skill.StatusVerified,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncate[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
