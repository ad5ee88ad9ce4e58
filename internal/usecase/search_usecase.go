package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"volunteer-match/internal/config"
	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/eligibility"
	"volunteer-match/internal/domain/matching"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

const searchLockTTL = 30 * time.Second

type SkillSearchQuery struct {
	SkillIDs       []uuid.UUID
	VerifiedOnly   bool
	MinProficiency proficiency.Level
	MatchType      matching.MatchType
	Limit          int
}

type MissionSearchQuery struct {
	RequireAllRequired bool
	VerifiedOnly       bool
	Limit              int
}

type CategorySearchQuery struct {
	VerifiedOnly   bool
	MinProficiency proficiency.Level
	Limit          int
}

// MissionCandidate is a scored volunteer together with the verdict on
// whether they may apply to the mission.
type MissionCandidate struct {
	matching.MissionMatch
	Eligibility eligibility.Result `json:"eligibility"`
}

type SearchUsecase interface {
	SearchBySkills(ctx context.Context, q SkillSearchQuery) ([]matching.SkillMatch, error)
	SearchByMission(ctx context.Context, missionID uuid.UUID, q MissionSearchQuery) ([]MissionCandidate, error)
	SearchByCategory(ctx context.Context, categoryID uuid.UUID, q CategorySearchQuery) ([]matching.SkillMatch, error)
}

type Search struct {
	store  repository.Store
	cache  SearchCache
	limits config.SearchConfig
	ttl    time.Duration
	logger *zap.Logger
}

func NewSearchUsecase(store repository.Store, cache SearchCache, limits config.SearchConfig, ttl time.Duration, logger *zap.Logger) *Search {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = 50
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = 200
	}
	return &Search{store: store, cache: cache, limits: limits, ttl: ttl, logger: logger}
}

func (u *Search) limit(n int) int {
	return clampLimit(n, u.limits.DefaultLimit, u.limits.MaxLimit)
}

func (u *Search) SearchBySkills(ctx context.Context, q SkillSearchQuery) ([]matching.SkillMatch, error) {
	q.SkillIDs = matching.UniqueSkillIDs(q.SkillIDs)
	if len(q.SkillIDs) == 0 {
		return nil, domainerr.Invalid("skill_ids", "at least one skill id is required")
	}
	if q.MatchType == "" {
		q.MatchType = matching.MatchAll
	}
	if q.MatchType != matching.MatchAll && q.MatchType != matching.MatchAny {
		return nil, domainerr.InvalidEnum("match_type", string(q.MatchType))
	}
	if q.MinProficiency != "" && !q.MinProficiency.Valid() {
		return nil, domainerr.InvalidEnum("min_proficiency", string(q.MinProficiency))
	}
	q.Limit = u.limit(q.Limit)

	key := searchCacheKey(searchCacheKeyInput{
		Kind:           "skills",
		SkillIDs:       sortedIDs(q.SkillIDs),
		VerifiedOnly:   q.VerifiedOnly,
		MinProficiency: string(q.MinProficiency),
		MatchType:      string(q.MatchType),
		Limit:          q.Limit,
	})
	return cachedSearch(ctx, u, key, func() ([]matching.SkillMatch, error) {
		return u.rankBySkills(ctx, q)
	})
}

func (u *Search) rankBySkills(ctx context.Context, q SkillSearchQuery) ([]matching.SkillMatch, error) {
	held, err := u.store.Repos().VolunteerSkills.ListBySkills(ctx, q.SkillIDs, repository.HolderFilter{
		VerifiedOnly:   q.VerifiedOnly,
		MinProficiency: q.MinProficiency,
	})
	if err != nil {
		return nil, wrap("list holders", err)
	}
	return matching.RankBySkills(held, matching.SkillCriteria{
		SkillIDs:       q.SkillIDs,
		VerifiedOnly:   q.VerifiedOnly,
		MinProficiency: q.MinProficiency,
		MatchType:      q.MatchType,
	}, q.Limit), nil
}

// SearchByMission scores holders of any of the mission's skills. Every
// candidate carries its eligibility verdict, computed from all of the
// volunteer's holdings regardless of VerifiedOnly.
func (u *Search) SearchByMission(ctx context.Context, missionID uuid.UUID, q MissionSearchQuery) ([]MissionCandidate, error) {
	if missionID == uuid.Nil {
		return nil, domainerr.Invalid("mission_id", "mission_id is required")
	}
	q.Limit = u.limit(q.Limit)

	key := searchCacheKey(searchCacheKeyInput{
		Kind:               "mission",
		Subject:            missionID.String(),
		VerifiedOnly:       q.VerifiedOnly,
		RequireAllRequired: q.RequireAllRequired,
		Limit:              q.Limit,
	})
	return cachedSearch(ctx, u, key, func() ([]MissionCandidate, error) {
		return u.rankForMission(ctx, missionID, q)
	})
}

func (u *Search) rankForMission(ctx context.Context, missionID uuid.UUID, q MissionSearchQuery) ([]MissionCandidate, error) {
	repos := u.store.Repos()
	reqs, err := repos.Requirements.ListByMission(ctx, missionID, repository.RequirementFilter{})
	if err != nil {
		return nil, wrap("list requirements", err)
	}
	if len(reqs) == 0 {
		return []MissionCandidate{}, nil
	}
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.SkillID)
	}
	held, err := repos.VolunteerSkills.ListBySkills(ctx, ids, repository.HolderFilter{})
	if err != nil {
		return nil, wrap("list holders", err)
	}

	matches := matching.RankForMission(reqs, held, matching.MissionCriteria{
		RequireAllRequired: q.RequireAllRequired,
		VerifiedOnly:       q.VerifiedOnly,
	}, q.Limit)

	byVolunteer := holdingsByVolunteer(held)
	out := make([]MissionCandidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, MissionCandidate{
			MissionMatch: m,
			Eligibility:  eligibility.Evaluate(reqs, byVolunteer[m.VolunteerID]),
		})
	}
	return out, nil
}

// SearchByCategory matches volunteers holding any active skill filed
// directly under the category. Subcategories are not included.
func (u *Search) SearchByCategory(ctx context.Context, categoryID uuid.UUID, q CategorySearchQuery) ([]matching.SkillMatch, error) {
	if q.MinProficiency != "" && !q.MinProficiency.Valid() {
		return nil, domainerr.InvalidEnum("min_proficiency", string(q.MinProficiency))
	}
	repos := u.store.Repos()
	if _, err := repos.Categories.FindByID(ctx, categoryID); err != nil {
		return nil, found(err, categoryEntity, categoryID)
	}
	active := true
	skills, err := repos.Skills.List(ctx, repository.SkillFilter{CategoryID: &categoryID, Active: &active})
	if err != nil {
		return nil, wrap("list skills", err)
	}
	if len(skills) == 0 {
		return []matching.SkillMatch{}, nil
	}
	return u.SearchBySkills(ctx, SkillSearchQuery{
		SkillIDs:       skillIDs(skills),
		VerifiedOnly:   q.VerifiedOnly,
		MinProficiency: q.MinProficiency,
		MatchType:      matching.MatchAny,
		Limit:          q.Limit,
	})
}

// cachedSearch returns the cached result for key, or computes it with load
// and stores it. A short lock keeps concurrent misses from all hitting the
// database; when the lock is taken elsewhere the cache is checked once more
// before falling back to load. The result is only stored if no invalidation
// ran while it was loading.
func cachedSearch[T any](ctx context.Context, u *Search, key string, load func() (T, error)) (T, error) {
	if u.cache == nil {
		return load()
	}

	var out T
	hit, err := u.cache.Get(ctx, key, &out)
	if err == nil && hit {
		u.logger.Debug("search cache hit", zap.String("key", key))
		return out, nil
	}
	if err != nil {
		u.logger.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
	}

	unlock, locked, err := u.cache.TryLock(ctx, searchLockKey(key), searchLockTTL)
	defer unlock()
	if err == nil && !locked {
		if hit, err := u.cache.Get(ctx, key, &out); err == nil && hit {
			return out, nil
		}
		u.logger.Debug("search cache rebuild in progress elsewhere, loading directly", zap.String("key", key))
	}

	version, verr := u.cache.Version(ctx, SearchCachePattern)
	out, err = load()
	if err != nil {
		return out, err
	}
	if verr != nil {
		u.logger.Warn("search cache version read failed", zap.String("key", key), zap.Error(verr))
		return out, nil
	}
	stored, err := u.cache.SetIfVersion(ctx, key, out, u.ttl, SearchCachePattern, version)
	switch {
	case err != nil:
		u.logger.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
	case !stored:
		u.logger.Debug("search cache invalidated during load, result not stored", zap.String("key", key))
	}
	return out, nil
}

func skillIDs(skills []skill.Skill) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.ID)
	}
	return out
}
