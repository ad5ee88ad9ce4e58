package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/matching"
	"volunteer-match/internal/domain/proficiency"
)

func TestSkillSearchRequest_Defaults(t *testing.T) {
	id := uuid.New()
	q, err := SkillSearchRequest{SkillIDs: []uuid.UUID{id}}.Query()
	require.NoError(t, err)
	assert.Equal(t, matching.MatchAll, q.MatchType)
	assert.True(t, q.VerifiedOnly)
	assert.Empty(t, q.MinProficiency)

	off := false
	q, err = SkillSearchRequest{
		SkillIDs:       []uuid.UUID{id},
		VerifiedOnly:   &off,
		MatchType:      "Any",
		MinProficiency: " Advanced ",
	}.Query()
	require.NoError(t, err)
	assert.Equal(t, matching.MatchAny, q.MatchType)
	assert.False(t, q.VerifiedOnly)
	assert.Equal(t, proficiency.Advanced, q.MinProficiency)
}

func TestSkillSearchRequest_RejectsUnknownValues(t *testing.T) {
	id := uuid.New()
	_, err := SkillSearchRequest{SkillIDs: []uuid.UUID{id}, MinProficiency: "guru"}.Query()
	require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)

	_, err = SkillSearchRequest{SkillIDs: []uuid.UUID{id}, MatchType: "most"}.Query()
	require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)
}

func TestProficiencyInputsIgnoreCase(t *testing.T) {
	spec, err := RequirementRequest{SkillID: uuid.New(), MinProficiencyLevel: "EXPERT"}.Spec()
	require.NoError(t, err)
	assert.Equal(t, proficiency.Expert, spec.MinProficiency)

	raw := "Intermediate"
	patch, err := UpdateRequirementRequest{MinProficiencyLevel: &raw}.Patch()
	require.NoError(t, err)
	require.NotNil(t, patch.MinProficiency)
	assert.Equal(t, proficiency.Intermediate, *patch.MinProficiency)

	in, err := AddVolunteerSkillRequest{SkillID: uuid.New(), ProficiencyLevel: "Beginner"}.Input()
	require.NoError(t, err)
	assert.Equal(t, proficiency.Beginner, in.ProficiencyLevel)

	bad := "guru"
	_, err = UpdateVolunteerSkillRequest{ProficiencyLevel: &bad}.Patch()
	require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)

	_, err = BulkRequirementsRequest{Skills: []RequirementRequest{{SkillID: uuid.New(), MinProficiencyLevel: "guru"}}}.Specs()
	require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)
}
