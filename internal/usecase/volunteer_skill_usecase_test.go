package usecase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
)

func TestVolunteerSkill_DuplicateThenReAdd(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Languages", nil)
	s := f.skill(t, "Spanish", cat.ID, skill.VerificationNone)
	volunteer := uuid.New()

	vs := f.attach(t, volunteer, s.ID, proficiency.Intermediate)
	assert.Equal(t, skill.StatusNotRequired, vs.VerificationStatus)
	assert.Equal(t, "Spanish", vs.SkillName)

	_, err := f.volunteers.AddSkill(f.ctx, volunteer, AddVolunteerSkillInput{SkillID: s.ID, ProficiencyLevel: proficiency.Expert})
	require.ErrorIs(t, err, domainerr.ErrDuplicate)

	require.NoError(t, f.volunteers.RemoveSkill(f.ctx, volunteer, vs.ID))
	again := f.attach(t, volunteer, s.ID, proficiency.Expert)
	assert.NotEqual(t, vs.ID, again.ID)
}

func TestVolunteerSkill_StatusSeededFromSkill(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationTest)

	vs, err := f.volunteers.AddSkill(f.ctx, uuid.New(), AddVolunteerSkillInput{SkillID: py.ID})
	require.NoError(t, err)
	assert.Equal(t, skill.StatusPending, vs.VerificationStatus)
	assert.Equal(t, proficiency.Beginner, vs.ProficiencyLevel)
}

func TestVolunteerSkill_SinglePrimary(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Languages", nil)
	es := f.skill(t, "Spanish", cat.ID, skill.VerificationNone)
	fr := f.skill(t, "French", cat.ID, skill.VerificationNone)
	volunteer := uuid.New()

	first, err := f.volunteers.AddSkill(f.ctx, volunteer, AddVolunteerSkillInput{SkillID: es.ID, IsPrimary: true})
	require.NoError(t, err)
	second, err := f.volunteers.AddSkill(f.ctx, volunteer, AddVolunteerSkillInput{SkillID: fr.ID, IsPrimary: true})
	require.NoError(t, err)

	primary := true
	items, err := f.volunteers.ListSkills(f.ctx, volunteer, VolunteerSkillListFilter{Primary: &primary})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, second.ID, items[0].ID)

	yes := true
	_, err = f.volunteers.UpdateSkill(f.ctx, volunteer, first.ID, VolunteerSkillPatch{IsPrimary: &yes})
	require.NoError(t, err)

	st, err := f.volunteers.Statistics(f.ctx, volunteer)
	require.NoError(t, err)
	require.NotNil(t, st.PrimarySkill)
	assert.Equal(t, "Spanish", *st.PrimarySkill)
	assert.Equal(t, 2, st.TotalSkills)
	assert.Equal(t, 2, st.CategoryDistribution["Languages"])
}

func TestVolunteerSkill_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Languages", nil)
	s := f.skill(t, "Spanish", cat.ID, skill.VerificationNone)
	owner, stranger := uuid.New(), uuid.New()
	vs := f.attach(t, owner, s.ID, proficiency.Beginner)

	lvl := proficiency.Expert
	_, err := f.volunteers.UpdateSkill(f.ctx, stranger, vs.ID, VolunteerSkillPatch{ProficiencyLevel: &lvl})
	require.ErrorIs(t, err, domainerr.ErrForbidden)
	require.ErrorIs(t, f.volunteers.RemoveSkill(f.ctx, stranger, vs.ID), domainerr.ErrForbidden)

	_, err = f.volunteers.UpdateSkill(f.ctx, owner, vs.ID, VolunteerSkillPatch{})
	require.ErrorIs(t, err, domainerr.ErrInvalidInput)

	bad := proficiency.Level("guru")
	_, err = f.volunteers.UpdateSkill(f.ctx, owner, vs.ID, VolunteerSkillPatch{ProficiencyLevel: &bad})
	require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)

	updated, err := f.volunteers.UpdateSkill(f.ctx, owner, vs.ID, VolunteerSkillPatch{ProficiencyLevel: &lvl})
	require.NoError(t, err)
	assert.Equal(t, proficiency.Expert, updated.ProficiencyLevel)
}

func TestVolunteerSkill_BulkImportRejectsRepeats(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Languages", nil)
	es := f.skill(t, "Spanish", cat.ID, skill.VerificationNone)
	fr := f.skill(t, "French", cat.ID, skill.VerificationNone)
	volunteer := uuid.New()

	_, err := f.volunteers.BulkImport(f.ctx, volunteer, []AddVolunteerSkillInput{{SkillID: es.ID}, {SkillID: es.ID}})
	require.ErrorIs(t, err, domainerr.ErrDuplicate)

	_, err = f.volunteers.BulkImport(f.ctx, volunteer, []AddVolunteerSkillInput{
		{SkillID: es.ID, IsPrimary: true},
		{SkillID: fr.ID, IsPrimary: true},
	})
	require.ErrorIs(t, err, domainerr.ErrInvalidInput)

	out, err := f.volunteers.BulkImport(f.ctx, volunteer, []AddVolunteerSkillInput{
		{SkillID: es.ID, ProficiencyLevel: proficiency.Advanced, IsPrimary: true},
		{SkillID: fr.ID},
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
