package usecase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/requirement"
	"volunteer-match/internal/domain/skill"
)

func skillSpec(id uuid.UUID, level skill.RequirementLevel) requirement.Spec {
	return requirement.Spec{SkillID: id, RequirementLevel: level, MinProficiency: proficiency.Beginner}
}

func TestRequirement_AddDefaultsAndDuplicates(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationNone)
	mission := uuid.New()

	req, err := f.requirements.AddRequirement(f.ctx, mission, requirement.Spec{SkillID: py.ID})
	require.NoError(t, err)
	assert.Equal(t, skill.LevelPreferred, req.RequirementLevel)
	assert.Equal(t, proficiency.Beginner, req.MinProficiency)

	_, err = f.requirements.AddRequirement(f.ctx, mission, skillSpec(py.ID, skill.LevelCritical))
	require.ErrorIs(t, err, domainerr.ErrDuplicate)

	_, err = f.requirements.AddRequirement(f.ctx, mission, requirement.Spec{SkillID: py.ID, RequirementLevel: "mandatory"})
	require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)

	_, err = f.requirements.AddRequirement(f.ctx, uuid.New(), skillSpec(uuid.New(), skill.LevelRequired))
	require.ErrorIs(t, err, domainerr.ErrUnknownSkill)
}

func TestRequirement_BulkAddIsAtomic(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationNone)
	js := f.skill(t, "JavaScript", cat.ID, skill.VerificationNone)
	mission := uuid.New()

	_, err := f.requirements.BulkAddRequirements(f.ctx, mission, []requirement.Spec{
		skillSpec(py.ID, skill.LevelRequired),
		skillSpec(uuid.New(), skill.LevelPreferred),
	})
	require.ErrorIs(t, err, domainerr.ErrUnknownSkill)

	reqs, err := f.requirements.ListRequirements(f.ctx, mission, RequirementListFilter{})
	require.NoError(t, err)
	assert.Empty(t, reqs)

	_, err = f.requirements.BulkAddRequirements(f.ctx, mission, []requirement.Spec{
		skillSpec(py.ID, skill.LevelRequired),
		skillSpec(py.ID, skill.LevelPreferred),
	})
	require.ErrorIs(t, err, domainerr.ErrDuplicate)

	out, err := f.requirements.BulkAddRequirements(f.ctx, mission, []requirement.Spec{
		skillSpec(js.ID, skill.LevelNiceToHave),
		skillSpec(py.ID, skill.LevelCritical),
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	reqs, err = f.requirements.ListRequirements(f.ctx, mission, RequirementListFilter{})
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "Python", reqs[0].SkillName)
}

func TestRequirement_GatingAndStatistics(t *testing.T) {
	f := newFixture(t)
	tech := f.category(t, "Technology", nil)
	lang := f.category(t, "Languages", nil)
	py := f.skill(t, "Python", tech.ID, skill.VerificationNone)
	sql := f.skill(t, "SQL", tech.ID, skill.VerificationNone)
	es := f.skill(t, "Spanish", lang.ID, skill.VerificationNone)
	mission := uuid.New()

	_, err := f.requirements.BulkAddRequirements(f.ctx, mission, []requirement.Spec{
		{SkillID: py.ID, RequirementLevel: skill.LevelRequired, MinProficiency: proficiency.Intermediate, VerificationRequired: true},
		skillSpec(sql.ID, skill.LevelCritical),
		skillSpec(es.ID, skill.LevelNiceToHave),
	})
	require.NoError(t, err)

	gating, err := f.requirements.GatingRequirements(f.ctx, mission)
	require.NoError(t, err)
	assert.Len(t, gating, 2)

	st, err := f.requirements.RequirementStatistics(f.ctx, mission)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CategoryBreakdown["Technology"])
	assert.Equal(t, 1, st.CategoryBreakdown["Languages"])
	assert.ElementsMatch(t, []string{"Python", "SQL"}, st.GatingSkills)
}

func TestRequirement_UpdateAndRemoveAreMissionScoped(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationNone)
	mission := uuid.New()
	req, err := f.requirements.AddRequirement(f.ctx, mission, skillSpec(py.ID, skill.LevelPreferred))
	require.NoError(t, err)

	critical := skill.LevelCritical
	_, err = f.requirements.UpdateRequirement(f.ctx, uuid.New(), req.ID, requirement.Patch{RequirementLevel: &critical})
	require.ErrorIs(t, err, domainerr.ErrNotFound)

	_, err = f.requirements.UpdateRequirement(f.ctx, mission, req.ID, requirement.Patch{})
	require.ErrorIs(t, err, domainerr.ErrInvalidInput)

	updated, err := f.requirements.UpdateRequirement(f.ctx, mission, req.ID, requirement.Patch{RequirementLevel: &critical})
	require.NoError(t, err)
	assert.Equal(t, skill.LevelCritical, updated.RequirementLevel)

	require.ErrorIs(t, f.requirements.RemoveRequirement(f.ctx, uuid.New(), req.ID), domainerr.ErrNotFound)
	require.NoError(t, f.requirements.RemoveRequirement(f.ctx, mission, req.ID))
}
