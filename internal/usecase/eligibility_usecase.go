package usecase

import (
	"context"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/eligibility"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

type EligibilityUsecase interface {
	Evaluate(ctx context.Context, missionID, volunteerID uuid.UUID) (eligibility.Result, error)
	// EnsureEligible returns an Ineligible domain error listing the reasons
	// when the volunteer may not apply.
	EnsureEligible(ctx context.Context, missionID, volunteerID uuid.UUID) error
}

type Eligibility struct {
	store repository.Store
}

func NewEligibilityUsecase(store repository.Store) *Eligibility {
	return &Eligibility{store: store}
}

func (u *Eligibility) Evaluate(ctx context.Context, missionID, volunteerID uuid.UUID) (eligibility.Result, error) {
	repos := u.store.Repos()
	reqs, err := repos.Requirements.ListByMission(ctx, missionID, repository.RequirementFilter{})
	if err != nil {
		return eligibility.Result{}, wrap("list requirements", err)
	}
	held, err := repos.VolunteerSkills.ListByVolunteer(ctx, volunteerID, repository.VolunteerSkillFilter{})
	if err != nil {
		return eligibility.Result{}, wrap("list volunteer skills", err)
	}
	return eligibility.Evaluate(reqs, held), nil
}

func (u *Eligibility) EnsureEligible(ctx context.Context, missionID, volunteerID uuid.UUID) error {
	res, err := u.Evaluate(ctx, missionID, volunteerID)
	if err != nil {
		return err
	}
	return res.Err()
}

// holdingsByVolunteer groups skills per volunteer.
func holdingsByVolunteer(held []skill.VolunteerSkill) map[uuid.UUID][]skill.VolunteerSkill {
	out := make(map[uuid.UUID][]skill.VolunteerSkill)
	for _, vs := range held {
		out[vs.VolunteerID] = append(out[vs.VolunteerID], vs)
	}
	return out
}
