package usecase

import (
	"context"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/matching"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

type SuggestionUsecase interface {
	ForVolunteer(ctx context.Context, volunteerID uuid.UUID, limit int) ([]matching.SkillUsage, error)
	ForMission(ctx context.Context, missionID uuid.UUID, limit int) ([]matching.SkillUsage, error)
}

// Suggestion recommends skills from the categories a volunteer or mission
// already uses, most referenced first.
type Suggestion struct {
	store repository.Store
}

func NewSuggestionUsecase(store repository.Store) *Suggestion {
	return &Suggestion{store: store}
}

func (u *Suggestion) ForVolunteer(ctx context.Context, volunteerID uuid.UUID, limit int) ([]matching.SkillUsage, error) {
	repos := u.store.Repos()
	held, err := repos.VolunteerSkills.ListByVolunteer(ctx, volunteerID, repository.VolunteerSkillFilter{})
	if err != nil {
		return nil, wrap("list volunteer skills", err)
	}
	attached := make(map[uuid.UUID]uuid.UUID, len(held))
	for _, vs := range held {
		attached[vs.SkillID] = vs.CategoryID
	}
	return u.suggest(ctx, attached, repos.VolunteerSkills.CountBySkill, limit)
}

func (u *Suggestion) ForMission(ctx context.Context, missionID uuid.UUID, limit int) ([]matching.SkillUsage, error) {
	repos := u.store.Repos()
	reqs, err := repos.Requirements.ListByMission(ctx, missionID, repository.RequirementFilter{})
	if err != nil {
		return nil, wrap("list requirements", err)
	}
	attached := make(map[uuid.UUID]uuid.UUID, len(reqs))
	for _, r := range reqs {
		attached[r.SkillID] = r.CategoryID
	}
	return u.suggest(ctx, attached, repos.Requirements.CountBySkill, limit)
}

// suggest ranks active skills sharing a category with attached, which maps
// skill id to category id, leaving the attached skills out.
func (u *Suggestion) suggest(
	ctx context.Context,
	attached map[uuid.UUID]uuid.UUID,
	count func(context.Context, []uuid.UUID) (map[uuid.UUID]int, error),
	limit int,
) ([]matching.SkillUsage, error) {
	if len(attached) == 0 {
		return []matching.SkillUsage{}, nil
	}

	categories := make(map[uuid.UUID]struct{})
	exclude := make(map[uuid.UUID]struct{}, len(attached))
	for skillID, categoryID := range attached {
		exclude[skillID] = struct{}{}
		if categoryID != uuid.Nil {
			categories[categoryID] = struct{}{}
		}
	}

	active := true
	var candidates []skill.Skill
	for categoryID := range categories {
		skills, err := u.store.Repos().Skills.List(ctx, repository.SkillFilter{CategoryID: &categoryID, Active: &active})
		if err != nil {
			return nil, wrap("list skills", err)
		}
		candidates = append(candidates, skills...)
	}
	if len(candidates) == 0 {
		return []matching.SkillUsage{}, nil
	}

	counts, err := count(ctx, skillIDs(candidates))
	if err != nil {
		return nil, wrap("count references", err)
	}
	usage := make([]matching.SkillUsage, 0, len(candidates))
	for _, s := range candidates {
		usage = append(usage, matching.SkillUsage{Skill: s, References: counts[s.ID]})
	}
	return matching.RankSuggestions(usage, exclude, clampLimit(limit, 10, 100)), nil
}
