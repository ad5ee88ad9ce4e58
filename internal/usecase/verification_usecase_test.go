package usecase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/events"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
)

func verifiableSkill(t *testing.T, f *fixture) (uuid.UUID, skill.VolunteerSkill) {
	t.Helper()
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationDocument)
	volunteer := uuid.New()
	return volunteer, f.attach(t, volunteer, py.ID, proficiency.Advanced)
}

func TestVerification_ApproveScenario(t *testing.T) {
	f := newFixture(t)
	volunteer, vs := verifiableSkill(t, f)
	require.Equal(t, skill.StatusPending, vs.VerificationStatus)

	req, err := f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{
		DocumentRef: "docs/cert.pdf",
		Links:       []string{" https://example.org/cert ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, skill.ReviewPending, req.ReviewStatus)
	assert.Equal(t, []string{"https://example.org/cert"}, req.Evidence.Links)

	got, err := f.volunteers.GetSkill(f.ctx, volunteer, vs.ID)
	require.NoError(t, err)
	assert.True(t, got.VerificationRequested)

	_, err = f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{})
	require.ErrorIs(t, err, domainerr.ErrVerificationNotApplicable)

	reviewer := uuid.New()
	_, err = f.verifications.StartReview(f.ctx, req.ID, reviewer)
	require.NoError(t, err)

	out, err := f.verifications.ReviewRequest(f.ctx, req.ID, ReviewRequestInput{
		ReviewerID:  reviewer,
		Decision:    "approved",
		ReviewNotes: "certificate checked",
	})
	require.NoError(t, err)
	assert.Equal(t, skill.ReviewApproved, out.Request.ReviewStatus)
	assert.Equal(t, skill.StatusVerified, out.VolunteerSkill.VerificationStatus)
	assert.False(t, out.VolunteerSkill.VerificationRequested)
	require.NotNil(t, out.VolunteerSkill.VerifiedBy)
	assert.Equal(t, reviewer, *out.VolunteerSkill.VerifiedBy)

	_, err = f.verifications.ReviewRequest(f.ctx, req.ID, ReviewRequestInput{ReviewerID: reviewer, Decision: "rejected"})
	require.ErrorIs(t, err, domainerr.ErrVerificationNotApplicable)

	_, err = f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{})
	require.ErrorIs(t, err, domainerr.ErrAlreadyVerified)

	assert.Contains(t, f.pub.names(), events.VerificationApproved)
}

func TestVerification_RejectLeavesSkillRequestable(t *testing.T) {
	f := newFixture(t)
	volunteer, vs := verifiableSkill(t, f)
	req, err := f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{Notes: "see profile"})
	require.NoError(t, err)

	out, err := f.verifications.ReviewRequest(f.ctx, req.ID, ReviewRequestInput{
		ReviewerID:  uuid.New(),
		Decision:    "rejected",
		ReviewNotes: "document unreadable",
	})
	require.NoError(t, err)
	assert.Equal(t, skill.StatusPending, out.VolunteerSkill.VerificationStatus)
	assert.False(t, out.VolunteerSkill.VerificationRequested)
	assert.Contains(t, out.VolunteerSkill.VerificationNotes, "document unreadable")

	_, err = f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{Notes: "new scan"})
	require.NoError(t, err)

	history, err := f.verifications.ListRequestsForSkill(f.ctx, vs.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestVerification_NeedsMoreInfoThenResubmit(t *testing.T) {
	f := newFixture(t)
	volunteer, vs := verifiableSkill(t, f)
	req, err := f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{})
	require.NoError(t, err)

	out, err := f.verifications.ReviewRequest(f.ctx, req.ID, ReviewRequestInput{
		ReviewerID: uuid.New(),
		Decision:   "needs_more_info",
	})
	require.NoError(t, err)
	assert.Equal(t, skill.ReviewNeedsMoreInfo, out.Request.ReviewStatus)
	assert.True(t, out.VolunteerSkill.VerificationRequested)

	_, err = f.verifications.Resubmit(f.ctx, uuid.New(), req.ID, skill.Evidence{Notes: "x"})
	require.ErrorIs(t, err, domainerr.ErrForbidden)

	again, err := f.verifications.Resubmit(f.ctx, volunteer, req.ID, skill.Evidence{DocumentRef: "docs/v2.pdf"})
	require.NoError(t, err)
	assert.Equal(t, skill.ReviewPending, again.ReviewStatus)
	assert.Equal(t, "docs/v2.pdf", again.Evidence.DocumentRef)

	open, err := f.verifications.ListOpenRequests(f.ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, req.ID, open[0].ID)
}

func TestVerification_DirectDecisionClosesOpenRequest(t *testing.T) {
	f := newFixture(t)
	volunteer, vs := verifiableSkill(t, f)
	req, err := f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{})
	require.NoError(t, err)

	reviewer := uuid.New()
	verified, err := f.verifications.DirectVerify(f.ctx, vs.ID, DirectDecisionInput{ReviewerID: reviewer, Notes: "known volunteer"})
	require.NoError(t, err)
	assert.Equal(t, skill.StatusVerified, verified.VerificationStatus)

	closed, err := f.verifications.GetRequest(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, skill.ReviewApproved, closed.ReviewStatus)

	_, err = f.verifications.DirectVerify(f.ctx, vs.ID, DirectDecisionInput{ReviewerID: reviewer})
	require.ErrorIs(t, err, domainerr.ErrAlreadyVerified)

	rejected, err := f.verifications.DirectReject(f.ctx, vs.ID, DirectDecisionInput{ReviewerID: reviewer, Notes: "revoked"})
	require.NoError(t, err)
	assert.Equal(t, skill.StatusRejected, rejected.VerificationStatus)

	st, err := f.verifications.RequestStatistics(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 0, st.Open)
	assert.Equal(t, 1, st.ByStatus["approved"])
}

func TestVerification_VolunteerCannotReviewOwnSkill(t *testing.T) {
	f := newFixture(t)
	volunteer, vs := verifiableSkill(t, f)
	req, err := f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{})
	require.NoError(t, err)

	_, err = f.verifications.ReviewRequest(f.ctx, req.ID, ReviewRequestInput{ReviewerID: volunteer, Decision: "approved"})
	require.ErrorIs(t, err, domainerr.ErrForbidden)

	_, err = f.verifications.DirectVerify(f.ctx, vs.ID, DirectDecisionInput{ReviewerID: volunteer})
	require.ErrorIs(t, err, domainerr.ErrForbidden)

	still, err := f.verifications.GetRequest(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, skill.ReviewPending, still.ReviewStatus)
}

func TestVerification_NotApplicableWithoutRequirement(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Languages", nil)
	s := f.skill(t, "Spanish", cat.ID, skill.VerificationNone)
	volunteer := uuid.New()
	vs := f.attach(t, volunteer, s.ID, proficiency.Beginner)

	_, err := f.verifications.RequestVerification(f.ctx, volunteer, vs.ID, skill.Evidence{})
	require.ErrorIs(t, err, domainerr.ErrVerificationNotApplicable)

	_, err = f.verifications.RequestVerification(f.ctx, uuid.New(), vs.ID, skill.Evidence{})
	require.ErrorIs(t, err, domainerr.ErrForbidden)

	_, err = f.verifications.DirectVerify(f.ctx, vs.ID, DirectDecisionInput{ReviewerID: uuid.New()})
	require.ErrorIs(t, err, domainerr.ErrVerificationNotApplicable)

	_, err = f.verifications.ReviewRequest(f.ctx, uuid.New(), ReviewRequestInput{ReviewerID: uuid.New(), Decision: "maybe"})
	require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)
}
