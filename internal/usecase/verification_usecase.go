package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/events"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/domain/verification"
	"volunteer-match/internal/repository"
)

const verificationRequestEntity = "verification_request"

type ReviewRequestInput struct {
	ReviewerID  uuid.UUID
	Decision    string
	ReviewNotes string
	AdminNotes  string
}

type DirectDecisionInput struct {
	ReviewerID uuid.UUID
	Notes      string
}

// ReviewOutcome is the request and volunteer skill after a review.
type ReviewOutcome struct {
	Request        skill.VerificationRequest `json:"request"`
	VolunteerSkill skill.VolunteerSkill      `json:"volunteer_skill"`
}

type VerificationStatistics struct {
	Total    int            `json:"total"`
	Open     int            `json:"open"`
	ByStatus map[string]int `json:"by_status"`
}

type VerificationUsecase interface {
	RequestVerification(ctx context.Context, volunteerID, volunteerSkillID uuid.UUID, evidence skill.Evidence) (skill.VerificationRequest, error)
	StartReview(ctx context.Context, requestID, reviewerID uuid.UUID) (skill.VerificationRequest, error)
	ReviewRequest(ctx context.Context, requestID uuid.UUID, in ReviewRequestInput) (ReviewOutcome, error)
	Resubmit(ctx context.Context, volunteerID, requestID uuid.UUID, evidence skill.Evidence) (skill.VerificationRequest, error)
	DirectVerify(ctx context.Context, volunteerSkillID uuid.UUID, in DirectDecisionInput) (skill.VolunteerSkill, error)
	DirectReject(ctx context.Context, volunteerSkillID uuid.UUID, in DirectDecisionInput) (skill.VolunteerSkill, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (skill.VerificationRequest, error)
	ListRequestsForSkill(ctx context.Context, volunteerSkillID uuid.UUID) ([]skill.VerificationRequest, error)
	ListOpenRequests(ctx context.Context, limit, offset int) ([]skill.VerificationRequest, error)
	ListRequestsByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]skill.VerificationRequest, error)
	RequestStatistics(ctx context.Context) (VerificationStatistics, error)
}

type Verification struct {
	uow unitOfWork
}

func NewVerificationUsecase(store repository.Store, pub Publisher) *Verification {
	return &Verification{uow: newUnitOfWork(store, pub)}
}

func cleanEvidence(e skill.Evidence) skill.Evidence {
	out := skill.Evidence{
		DocumentRef: strings.TrimSpace(e.DocumentRef),
		Notes:       strings.TrimSpace(e.Notes),
	}
	for _, l := range e.Links {
		if l = strings.TrimSpace(l); l != "" {
			out.Links = append(out.Links, l)
		}
	}
	return out
}

func (u *Verification) RequestVerification(ctx context.Context, volunteerID, volunteerSkillID uuid.UUID, evidence skill.Evidence) (skill.VerificationRequest, error) {
	evidence = cleanEvidence(evidence)

	var out skill.VerificationRequest
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		vs, err := ownedVolunteerSkill(ctx, r, volunteerID, volunteerSkillID, true)
		if err != nil {
			return err
		}
		s, err := r.Skills.FindByID(ctx, vs.SkillID)
		if err != nil {
			return found(err, skillEntity, vs.SkillID)
		}
		hasOpen, err := hasOpenRequest(ctx, r, vs.ID)
		if err != nil {
			return err
		}
		if err := verification.CanRequest(vs, s.VerificationRequirement, hasOpen); err != nil {
			return err
		}

		now := u.uow.clock()
		vs, req := verification.Request(vs, evidence, now)
		if err := r.Verifications.Create(ctx, req); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return domainerr.NotApplicable(volunteerSkillEntity, vs.ID, "an open verification request already exists")
			}
			return wrap("create verification request", err)
		}
		if err := r.VolunteerSkills.Update(ctx, vs); err != nil {
			return found(err, volunteerSkillEntity, vs.ID)
		}
		rec.Record(events.New(events.VerificationRequested, req.ID, now,
			events.WithVolunteer(vs.VolunteerID),
			events.WithSkill(vs.SkillID),
			events.WithActor(volunteerID),
			events.WithData("volunteer_skill_id", vs.ID.String()),
		))
		out = req
		return nil
	})
	return out, err
}

func (u *Verification) StartReview(ctx context.Context, requestID, reviewerID uuid.UUID) (skill.VerificationRequest, error) {
	if reviewerID == uuid.Nil {
		return skill.VerificationRequest{}, domainerr.Invalid("reviewer_id", "reviewer_id is required")
	}
	var out skill.VerificationRequest
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		req, err := r.Verifications.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			return found(err, verificationRequestEntity, requestID)
		}
		now := u.uow.clock()
		req, err = verification.StartReview(req, reviewerID, now)
		if err != nil {
			return err
		}
		if err := r.Verifications.Update(ctx, req); err != nil {
			return found(err, verificationRequestEntity, requestID)
		}
		vs, err := r.VolunteerSkills.FindByID(ctx, req.VolunteerSkillID)
		if err != nil {
			return found(err, volunteerSkillEntity, req.VolunteerSkillID)
		}
		rec.Record(events.New(events.VerificationReviewStarted, req.ID, now,
			events.WithVolunteer(vs.VolunteerID),
			events.WithSkill(vs.SkillID),
			events.WithActor(reviewerID),
		))
		out = req
		return nil
	})
	return out, err
}

// ReviewRequest applies an administrator's decision. The request row is
// locked first so two concurrent reviews cannot both succeed.
func (u *Verification) ReviewRequest(ctx context.Context, requestID uuid.UUID, in ReviewRequestInput) (ReviewOutcome, error) {
	if in.ReviewerID == uuid.Nil {
		return ReviewOutcome{}, domainerr.Invalid("reviewer_id", "reviewer_id is required")
	}
	decision, err := verification.ParseDecision(in.Decision)
	if err != nil {
		return ReviewOutcome{}, err
	}

	var out ReviewOutcome
	err = u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		req, err := r.Verifications.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			return found(err, verificationRequestEntity, requestID)
		}
		vs, err := r.VolunteerSkills.FindByIDForUpdate(ctx, req.VolunteerSkillID)
		if err != nil {
			return found(err, volunteerSkillEntity, req.VolunteerSkillID)
		}
		if vs.VolunteerID == in.ReviewerID {
			return selfReview(vs)
		}

		now := u.uow.clock()
		vs, req, err = verification.Review(vs, req, verification.ReviewInput{
			ReviewerID:  in.ReviewerID,
			Decision:    decision,
			ReviewNotes: in.ReviewNotes,
			AdminNotes:  in.AdminNotes,
		}, now)
		if err != nil {
			return err
		}
		if err := r.Verifications.Update(ctx, req); err != nil {
			return found(err, verificationRequestEntity, requestID)
		}
		if err := r.VolunteerSkills.Update(ctx, vs); err != nil {
			return found(err, volunteerSkillEntity, vs.ID)
		}

		rec.Record(events.New(reviewEventName(decision), req.ID, now,
			events.WithVolunteer(vs.VolunteerID),
			events.WithSkill(vs.SkillID),
			events.WithActor(in.ReviewerID),
			events.WithData("volunteer_skill_id", vs.ID.String()),
			events.WithData("verification_status", string(vs.VerificationStatus)),
		))
		out = ReviewOutcome{Request: req, VolunteerSkill: vs}
		return nil
	})
	return out, err
}

func (u *Verification) Resubmit(ctx context.Context, volunteerID, requestID uuid.UUID, evidence skill.Evidence) (skill.VerificationRequest, error) {
	evidence = cleanEvidence(evidence)

	var out skill.VerificationRequest
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		req, err := r.Verifications.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			return found(err, verificationRequestEntity, requestID)
		}
		vs, err := ownedVolunteerSkill(ctx, r, volunteerID, req.VolunteerSkillID, false)
		if err != nil {
			if errors.Is(err, domainerr.ErrForbidden) {
				return domainerr.Forbidden(verificationRequestEntity, requestID)
			}
			return err
		}
		now := u.uow.clock()
		req, err = verification.Resubmit(req, evidence, now)
		if err != nil {
			return err
		}
		if err := r.Verifications.Update(ctx, req); err != nil {
			return found(err, verificationRequestEntity, requestID)
		}
		rec.Record(events.New(events.VerificationResubmitted, req.ID, now,
			events.WithVolunteer(vs.VolunteerID),
			events.WithSkill(vs.SkillID),
			events.WithActor(volunteerID),
		))
		out = req
		return nil
	})
	return out, err
}

func (u *Verification) DirectVerify(ctx context.Context, volunteerSkillID uuid.UUID, in DirectDecisionInput) (skill.VolunteerSkill, error) {
	return u.direct(ctx, volunteerSkillID, in, skill.ReviewApproved)
}

func (u *Verification) DirectReject(ctx context.Context, volunteerSkillID uuid.UUID, in DirectDecisionInput) (skill.VolunteerSkill, error) {
	return u.direct(ctx, volunteerSkillID, in, skill.ReviewRejected)
}

// direct applies an administrator decision without a request and closes any
// open request with the same outcome, all in one transaction.
func (u *Verification) direct(ctx context.Context, volunteerSkillID uuid.UUID, in DirectDecisionInput, decision skill.ReviewStatus) (skill.VolunteerSkill, error) {
	if in.ReviewerID == uuid.Nil {
		return skill.VolunteerSkill{}, domainerr.Invalid("reviewer_id", "reviewer_id is required")
	}

	var out skill.VolunteerSkill
	err := u.uow.run(ctx, func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error {
		vs, err := r.VolunteerSkills.FindByIDForUpdate(ctx, volunteerSkillID)
		if err != nil {
			return found(err, volunteerSkillEntity, volunteerSkillID)
		}
		if vs.VolunteerID == in.ReviewerID {
			return selfReview(vs)
		}
		s, err := r.Skills.FindByID(ctx, vs.SkillID)
		if err != nil {
			return found(err, skillEntity, vs.SkillID)
		}

		now := u.uow.clock()
		din := verification.DirectInput{ReviewerID: in.ReviewerID, Notes: in.Notes}
		if decision == skill.ReviewApproved {
			vs, err = verification.DirectVerify(vs, s.VerificationRequirement, din, now)
		} else {
			vs, err = verification.DirectReject(vs, s.VerificationRequirement, din, now)
		}
		if err != nil {
			return err
		}

		open, err := r.Verifications.FindOpenByVolunteerSkill(ctx, vs.ID)
		switch {
		case err == nil:
			open = verification.CloseOpen(open, decision, din, now)
			if err := r.Verifications.Update(ctx, open); err != nil {
				return found(err, verificationRequestEntity, open.ID)
			}
		case !errors.Is(err, repository.ErrNotFound):
			return wrap("find open request", err)
		}

		if err := r.VolunteerSkills.Update(ctx, vs); err != nil {
			return found(err, volunteerSkillEntity, vs.ID)
		}
		rec.Record(events.New(reviewEventName(decision), vs.ID, now,
			events.WithVolunteer(vs.VolunteerID),
			events.WithSkill(vs.SkillID),
			events.WithActor(in.ReviewerID),
			events.WithData("volunteer_skill_id", vs.ID.String()),
			events.WithData("verification_status", string(vs.VerificationStatus)),
			events.WithData("direct", true),
		))
		out = vs
		return nil
	})
	return out, err
}

func (u *Verification) GetRequest(ctx context.Context, requestID uuid.UUID) (skill.VerificationRequest, error) {
	req, err := u.uow.repos().Verifications.FindByID(ctx, requestID)
	if err != nil {
		return skill.VerificationRequest{}, found(err, verificationRequestEntity, requestID)
	}
	return req, nil
}

func (u *Verification) ListRequestsForSkill(ctx context.Context, volunteerSkillID uuid.UUID) ([]skill.VerificationRequest, error) {
	repos := u.uow.repos()
	if _, err := repos.VolunteerSkills.FindByID(ctx, volunteerSkillID); err != nil {
		return nil, found(err, volunteerSkillEntity, volunteerSkillID)
	}
	items, err := repos.Verifications.ListByVolunteerSkill(ctx, volunteerSkillID)
	if err != nil {
		return nil, wrap("list verification requests", err)
	}
	return items, nil
}

// ListOpenRequests is the reviewer queue, oldest first.
func (u *Verification) ListOpenRequests(ctx context.Context, limit, offset int) ([]skill.VerificationRequest, error) {
	if offset < 0 {
		return nil, domainerr.Invalid("offset", "offset must be >= 0")
	}
	open := make([]skill.ReviewStatus, 0, 3)
	for _, s := range skill.ReviewStatuses() {
		if s.Open() {
			open = append(open, s)
		}
	}
	items, err := u.uow.repos().Verifications.ListByStatus(ctx, open, clampLimit(limit, 50, 200), offset)
	if err != nil {
		return nil, wrap("list open requests", err)
	}
	return items, nil
}

func (u *Verification) ListRequestsByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]skill.VerificationRequest, error) {
	items, err := u.uow.repos().Verifications.ListByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, wrap("list verification requests", err)
	}
	return items, nil
}

func (u *Verification) RequestStatistics(ctx context.Context) (VerificationStatistics, error) {
	counts, err := u.uow.repos().Verifications.CountByStatus(ctx)
	if err != nil {
		return VerificationStatistics{}, wrap("count verification requests", err)
	}
	st := VerificationStatistics{ByStatus: map[string]int{}}
	for _, s := range skill.ReviewStatuses() {
		n := counts[s]
		st.ByStatus[string(s)] = n
		st.Total += n
		if s.Open() {
			st.Open += n
		}
	}
	return st, nil
}

func hasOpenRequest(ctx context.Context, r repository.Repositories, volunteerSkillID uuid.UUID) (bool, error) {
	_, err := r.Verifications.FindOpenByVolunteerSkill(ctx, volunteerSkillID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, wrap("find open request", err)
	}
}

func reviewEventName(decision skill.ReviewStatus) events.Name {
	switch decision {
	case skill.ReviewApproved:
		return events.VerificationApproved
	case skill.ReviewRejected:
		return events.VerificationRejected
	default:
		return events.VerificationMoreInfo
	}
}

func selfReview(vs skill.VolunteerSkill) error {
	return &domainerr.Error{
		Kind:    domainerr.ErrForbidden,
		Entity:  volunteerSkillEntity,
		Field:   "reviewer_id",
		Value:   vs.VolunteerID.String(),
		Message: "volunteers cannot review their own skills",
	}
}
