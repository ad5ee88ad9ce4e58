package usecase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
)

func TestSuggestion_ForVolunteer(t *testing.T) {
	f := newFixture(t)
	uc := NewSuggestionUsecase(f.store)
	lang := f.category(t, "Languages", nil)
	tech := f.category(t, "Technology", nil)
	es := f.skill(t, "Spanish", lang.ID, skill.VerificationNone)
	fr := f.skill(t, "French", lang.ID, skill.VerificationNone)
	de := f.skill(t, "German", lang.ID, skill.VerificationNone)
	f.skill(t, "Python", tech.ID, skill.VerificationNone)

	subject := uuid.New()
	f.attach(t, subject, es.ID, proficiency.Advanced)
	f.attach(t, uuid.New(), de.ID, proficiency.Beginner)
	f.attach(t, uuid.New(), de.ID, proficiency.Beginner)
	f.attach(t, uuid.New(), fr.ID, proficiency.Beginner)

	out, err := uc.ForVolunteer(f.ctx, subject, 5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "German", out[0].Skill.Name)
	assert.Equal(t, 2, out[0].References)
	assert.Equal(t, "French", out[1].Skill.Name)

	none, err := uc.ForVolunteer(f.ctx, uuid.New(), 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSuggestion_ForMission(t *testing.T) {
	f := newFixture(t)
	uc := NewSuggestionUsecase(f.store)
	tech := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", tech.ID, skill.VerificationNone)
	sql := f.skill(t, "SQL", tech.ID, skill.VerificationNone)
	gone := f.skill(t, "Fortran", tech.ID, skill.VerificationNone)

	mission := uuid.New()
	_, err := f.requirements.AddRequirement(f.ctx, mission, skillSpec(py.ID, skill.LevelRequired))
	require.NoError(t, err)
	_, err = f.requirements.AddRequirement(f.ctx, uuid.New(), skillSpec(sql.ID, skill.LevelPreferred))
	require.NoError(t, err)
	_, err = f.skills.DeactivateSkill(f.ctx, gone.ID)
	require.NoError(t, err)

	out, err := uc.ForMission(f.ctx, mission, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "SQL", out[0].Skill.Name)
	assert.Equal(t, 1, out[0].References)
}
