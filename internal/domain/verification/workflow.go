// Package verification is the state machine behind a volunteer skill's
// verification status and its verification requests.
//
//	not_required                      (skill needs no verification)
//	pending --request--> request:pending --start--> under_review
//	request:{pending,under_review,needs_more_info} --approve--> approved  => skill verified
//	                                               --reject---> rejected  => skill stays pending
//	                                               --more-----> needs_more_info --resubmit--> pending
//
// Direct admin decisions bypass the request and close any open one with the
// same outcome. Functions here are pure: they take values and return the
// updated values, leaving persistence to the caller.
package verification

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/skill"
)

const entity = "volunteer_skill"

// InitialStatus is the status seeded when a volunteer attaches a skill.
func InitialStatus(req skill.VerificationRequirement) skill.VerificationStatus {
	if req.Required() {
		return skill.StatusPending
	}
	return skill.StatusNotRequired
}

// CanRequest checks the preconditions for opening a verification request.
func CanRequest(vs skill.VolunteerSkill, requirement skill.VerificationRequirement, hasOpen bool) error {
	if !requirement.Required() {
		return domainerr.NotApplicable(entity, vs.ID, "skill does not require verification")
	}
	if vs.VerificationStatus == skill.StatusVerified {
		return domainerr.AlreadyVerified(entity, vs.ID)
	}
	if vs.VerificationStatus != skill.StatusPending {
		return domainerr.NotApplicable(entity, vs.ID,
			fmt.Sprintf("verification cannot be requested while status is %s", vs.VerificationStatus))
	}
	if hasOpen || vs.VerificationRequested {
		return domainerr.NotApplicable(entity, vs.ID, "an open verification request already exists")
	}
	return nil
}

// Request opens a new request. Call CanRequest first.
func Request(vs skill.VolunteerSkill, evidence skill.Evidence, now time.Time) (skill.VolunteerSkill, skill.VerificationRequest) {
	ts := now
	vs.VerificationRequested = true
	vs.VerificationRequestedAt = &ts
	vs.UpdatedAt = now

	req := skill.VerificationRequest{
		ID:               uuid.New(),
		VolunteerSkillID: vs.ID,
		Evidence:         evidence.Clone(),
		ReviewStatus:     skill.ReviewPending,
		RequestedAt:      now,
		UpdatedAt:        now,
	}
	return vs, req
}

// StartReview moves a pending request to under_review.
func StartReview(req skill.VerificationRequest, reviewerID uuid.UUID, now time.Time) (skill.VerificationRequest, error) {
	if req.ReviewStatus != skill.ReviewPending {
		return req, domainerr.NotApplicable("verification_request", req.ID,
			fmt.Sprintf("review can only start from pending, request is %s", req.ReviewStatus))
	}
	reviewer := reviewerID
	req.ReviewStatus = skill.ReviewUnderReview
	req.ReviewerID = &reviewer
	req.UpdatedAt = now
	return req, nil
}

// ParseDecision accepts the three review outcomes an administrator may record.
func ParseDecision(raw string) (skill.ReviewStatus, error) {
	s, err := skill.ParseReviewStatus(raw)
	if err != nil {
		return "", domainerr.InvalidEnum("decision", raw)
	}
	switch s {
	case skill.ReviewApproved, skill.ReviewRejected, skill.ReviewNeedsMoreInfo:
		return s, nil
	default:
		return "", domainerr.InvalidEnum("decision", raw)
	}
}

type ReviewInput struct {
	ReviewerID  uuid.UUID
	Decision    skill.ReviewStatus
	ReviewNotes string
	AdminNotes  string
}

// Review records an administrator's decision on an open request and applies
// its effect to the owning volunteer skill.
func Review(vs skill.VolunteerSkill, req skill.VerificationRequest, in ReviewInput, now time.Time) (skill.VolunteerSkill, skill.VerificationRequest, error) {
	if req.VolunteerSkillID != vs.ID {
		return vs, req, domainerr.Invalid("volunteer_skill_id", "verification request does not belong to this volunteer skill")
	}
	if !req.ReviewStatus.Open() {
		return vs, req, domainerr.NotApplicable("verification_request", req.ID,
			fmt.Sprintf("request is already %s", req.ReviewStatus))
	}
	if _, err := ParseDecision(string(in.Decision)); err != nil {
		return vs, req, err
	}
	if vs.VerificationStatus == skill.StatusVerified {
		return vs, req, domainerr.AlreadyVerified(entity, vs.ID)
	}

	reviewer := in.ReviewerID
	ts := now
	req.ReviewStatus = in.Decision
	req.ReviewerID = &reviewer
	req.ReviewedAt = &ts
	req.ReviewNotes = strings.TrimSpace(in.ReviewNotes)
	req.AdminNotes = strings.TrimSpace(in.AdminNotes)
	req.UpdatedAt = now

	switch in.Decision {
	case skill.ReviewApproved:
		vs = markVerified(vs, reviewer, "Approved via verification request: "+req.ReviewNotes, now)
	case skill.ReviewRejected:
		vs.VerificationNotes = "Verification request rejected: " + req.ReviewNotes
		vs.VerificationRequested = false
	case skill.ReviewNeedsMoreInfo:
		vs.VerificationNotes = "Needs more information: " + req.ReviewNotes
	}
	vs.UpdatedAt = now
	return vs, req, nil
}

// Resubmit answers a needs_more_info review and puts the request back in the
// reviewer queue. New evidence fields replace the old ones when set.
func Resubmit(req skill.VerificationRequest, evidence skill.Evidence, now time.Time) (skill.VerificationRequest, error) {
	if req.ReviewStatus != skill.ReviewNeedsMoreInfo {
		return req, domainerr.NotApplicable("verification_request", req.ID,
			fmt.Sprintf("only requests needing more information can be resubmitted, request is %s", req.ReviewStatus))
	}
	if evidence.DocumentRef != "" {
		req.Evidence.DocumentRef = evidence.DocumentRef
	}
	if len(evidence.Links) > 0 {
		req.Evidence.Links = append([]string(nil), evidence.Links...)
	}
	if evidence.Notes != "" {
		req.Evidence.Notes = evidence.Notes
	}
	req.ReviewStatus = skill.ReviewPending
	req.UpdatedAt = now
	return req, nil
}

type DirectInput struct {
	ReviewerID uuid.UUID
	Notes      string
}

// DirectVerify verifies a skill without going through a request.
func DirectVerify(vs skill.VolunteerSkill, requirement skill.VerificationRequirement, in DirectInput, now time.Time) (skill.VolunteerSkill, error) {
	if !requirement.Required() {
		return vs, domainerr.NotApplicable(entity, vs.ID, "skill does not require verification")
	}
	if vs.VerificationStatus == skill.StatusVerified {
		return vs, domainerr.AlreadyVerified(entity, vs.ID)
	}
	vs = markVerified(vs, in.ReviewerID, strings.TrimSpace(in.Notes), now)
	vs.UpdatedAt = now
	return vs, nil
}

// DirectReject rejects a skill's claim without going through a request. A
// rejected skill can no longer request verification; only a later direct
// verification lifts it.
func DirectReject(vs skill.VolunteerSkill, requirement skill.VerificationRequirement, in DirectInput, now time.Time) (skill.VolunteerSkill, error) {
	if !requirement.Required() {
		return vs, domainerr.NotApplicable(entity, vs.ID, "skill does not require verification")
	}
	if vs.VerificationStatus == skill.StatusRejected {
		return vs, domainerr.NotApplicable(entity, vs.ID, "skill is already rejected")
	}
	reviewer := in.ReviewerID
	ts := now
	vs.VerificationStatus = skill.StatusRejected
	vs.VerifiedBy = &reviewer
	vs.VerifiedAt = &ts
	vs.VerificationNotes = strings.TrimSpace(in.Notes)
	vs.VerificationRequested = false
	vs.UpdatedAt = now
	return vs, nil
}

// CloseOpen closes a request that a direct decision has superseded.
func CloseOpen(req skill.VerificationRequest, decision skill.ReviewStatus, in DirectInput, now time.Time) skill.VerificationRequest {
	if !req.ReviewStatus.Open() {
		return req
	}
	reviewer := in.ReviewerID
	ts := now
	req.ReviewStatus = decision
	req.ReviewerID = &reviewer
	req.ReviewedAt = &ts
	req.ReviewNotes = strings.TrimSpace(in.Notes)
	req.UpdatedAt = now
	return req
}

func markVerified(vs skill.VolunteerSkill, reviewer uuid.UUID, notes string, now time.Time) skill.VolunteerSkill {
	r := reviewer
	ts := now
	vs.VerificationStatus = skill.StatusVerified
	vs.VerifiedBy = &r
	vs.VerifiedAt = &ts
	vs.VerificationNotes = notes
	vs.VerificationRequested = false
	return vs
}
