package eligibility

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
)

var (
	python = uuid.New()
	js     = uuid.New()
)

func mreq(id uuid.UUID, name string, level skill.RequirementLevel, floor proficiency.Level, verify bool) skill.MissionSkillRequirement {
	return skill.MissionSkillRequirement{
		ID:                   uuid.New(),
		SkillID:              id,
		SkillName:            name,
		RequirementLevel:     level,
		MinProficiency:       floor,
		VerificationRequired: verify,
	}
}

func held(id uuid.UUID, lvl proficiency.Level, status skill.VerificationStatus) skill.VolunteerSkill {
	return skill.VolunteerSkill{ID: uuid.New(), SkillID: id, ProficiencyLevel: lvl, VerificationStatus: status}
}

func TestEvaluate_VerificationReportedBeforeProficiency(t *testing.T) {
	reqs := []skill.MissionSkillRequirement{
		mreq(python, "Python", skill.LevelRequired, proficiency.Intermediate, true),
	}
	res := Evaluate(reqs, []skill.VolunteerSkill{held(python, proficiency.Advanced, skill.StatusPending)})

	assert.False(t, res.CanApply)
	assert.Equal(t, []string{"verification required for: Python"}, res.MissingReasons)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, GapVerification, res.Findings[0].Gap)
}

func TestEvaluate_Reasons(t *testing.T) {
	reqs := []skill.MissionSkillRequirement{
		mreq(python, "Python", skill.LevelCritical, proficiency.Advanced, false),
		mreq(js, "JavaScript", skill.LevelRequired, proficiency.Beginner, false),
	}
	res := Evaluate(reqs, []skill.VolunteerSkill{held(python, proficiency.Beginner, skill.StatusNotRequired)})

	assert.False(t, res.CanApply)
	assert.Equal(t, []string{
		"insufficient proficiency in Python: requires ≥advanced, has beginner",
		"missing required skill: JavaScript",
	}, res.MissingReasons)

	err := res.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrIneligible))
	de, ok := domainerr.As(err)
	require.True(t, ok)
	assert.Len(t, de.Reasons, 2)
}

func TestEvaluate_AdvisoryNeverBlocks(t *testing.T) {
	reqs := []skill.MissionSkillRequirement{
		mreq(python, "Python", skill.LevelPreferred, proficiency.Expert, true),
		mreq(js, "JavaScript", skill.LevelNiceToHave, proficiency.Expert, true),
	}
	res := Evaluate(reqs, nil)
	assert.True(t, res.CanApply)
	assert.Empty(t, res.MissingReasons)
	assert.NoError(t, res.Err())
}

func TestEvaluate_Satisfied(t *testing.T) {
	reqs := []skill.MissionSkillRequirement{
		mreq(python, "Python", skill.LevelRequired, proficiency.Intermediate, true),
	}
	res := Evaluate(reqs, []skill.VolunteerSkill{held(python, proficiency.Intermediate, skill.StatusVerified)})
	assert.True(t, res.CanApply)
}

func TestEvaluate_CanApplyIffNoReasons(t *testing.T) {
	levels := skill.RequirementLevels()
	statuses := []skill.VerificationStatus{skill.StatusNotRequired, skill.StatusPending, skill.StatusVerified, skill.StatusRejected}

	for _, lvl := range levels {
		for _, minLvl := range proficiency.All() {
			for _, has := range proficiency.All() {
				for _, st := range statuses {
					for _, verify := range []bool{true, false} {
						for _, present := range []bool{true, false} {
							reqs := []skill.MissionSkillRequirement{mreq(python, "Python", lvl, minLvl, verify)}
							var vs []skill.VolunteerSkill
							if present {
								vs = append(vs, held(python, has, st))
							}
							res := Evaluate(reqs, vs)
							name := fmt.Sprintf("%s/%s/%s/%s/%v/%v", lvl, minLvl, has, st, verify, present)
							assert.Equal(t, len(res.MissingReasons) == 0, res.CanApply, name)
							if !lvl.Gating() {
								assert.True(t, res.CanApply, name)
							}
						}
					}
				}
			}
		}
	}
}
