package requirement

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
)

func req(level skill.RequirementLevel) skill.MissionSkillRequirement {
	return skill.MissionSkillRequirement{
		ID:               uuid.New(),
		SkillID:          uuid.New(),
		RequirementLevel: level,
		MinProficiency:   proficiency.Beginner,
	}
}

func TestPartition(t *testing.T) {
	reqs := []skill.MissionSkillRequirement{
		req(skill.LevelNiceToHave),
		req(skill.LevelCritical),
		req(skill.LevelPreferred),
		req(skill.LevelRequired),
	}

	gating, advisory := Partition(reqs)
	require.Len(t, gating, 2)
	require.Len(t, advisory, 2)
	assert.Equal(t, reqs[1].ID, gating[0].ID)
	assert.Equal(t, reqs[3].ID, gating[1].ID)
	assert.Equal(t, reqs[0].ID, advisory[0].ID)

	assert.Len(t, Gating(reqs), 2)
	assert.Empty(t, Gating(nil))
}

func TestSpecValidate(t *testing.T) {
	ok := Spec{SkillID: uuid.New(), RequirementLevel: skill.LevelRequired, MinProficiency: proficiency.Intermediate}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.RequirementLevel = "mandatory"
	assert.True(t, errors.Is(bad.Validate(), domainerr.ErrInvalidEnumValue))

	bad = ok
	bad.MinProficiency = "guru"
	assert.True(t, errors.Is(bad.Validate(), domainerr.ErrInvalidEnumValue))

	bad = ok
	bad.SkillID = uuid.Nil
	assert.True(t, errors.Is(bad.Validate(), domainerr.ErrInvalidInput))
}

func TestCheckBatch_DuplicateSkill(t *testing.T) {
	id := uuid.New()
	specs := []Spec{
		{SkillID: id, RequirementLevel: skill.LevelRequired, MinProficiency: proficiency.Beginner},
		{SkillID: id, RequirementLevel: skill.LevelPreferred, MinProficiency: proficiency.Expert},
	}
	assert.True(t, errors.Is(CheckBatch(specs), domainerr.ErrDuplicate))
	assert.NoError(t, CheckBatch(specs[:1]))
}

func TestPatchApply(t *testing.T) {
	r := req(skill.LevelPreferred)
	level := skill.LevelCritical
	yes := true

	p := Patch{RequirementLevel: &level, VerificationRequired: &yes}
	require.NoError(t, p.Validate())
	out := p.Apply(r)

	assert.Equal(t, skill.LevelCritical, out.RequirementLevel)
	assert.True(t, out.VerificationRequired)
	assert.Equal(t, proficiency.Beginner, out.MinProficiency)
	assert.False(t, p.Empty())
	assert.True(t, Patch{}.Empty())
}

func TestSummarize(t *testing.T) {
	r1 := req(skill.LevelRequired)
	r1.VerificationRequired = true
	st := Summarize([]skill.MissionSkillRequirement{r1, req(skill.LevelPreferred)})

	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Gating)
	assert.Equal(t, 1, st.Advisory)
	assert.Equal(t, 1, st.VerificationRequired)
	assert.Equal(t, 1, st.ByLevel["required"])
	assert.Equal(t, 0, st.ByLevel["critical"])
	assert.Equal(t, 2, st.ByMinProficiency["beginner"])
}
