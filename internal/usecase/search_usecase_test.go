package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/config"
	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/matching"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/requirement"
	"volunteer-match/internal/domain/skill"
)

type mapCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]int64
	sets     int
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, versions: map[string]int64{}}
}

func (c *mapCache) Get(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *mapCache) Version(_ context.Context, pattern string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[pattern], nil
}

func (c *mapCache) SetIfVersion(_ context.Context, key string, value any, _ time.Duration, pattern string, version int64) (bool, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[pattern] != version {
		return false, nil
	}
	c.data[key] = b
	c.sets++
	return true, nil
}

func (c *mapCache) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return func() {}, false, nil
	}
	c.data[key] = []byte("1")
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.data, key)
	}, true, nil
}

func (c *mapCache) Invalidate(_ context.Context, pattern string) (int, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[pattern]++
	n := 0
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
			n++
		}
	}
	return n, nil
}

type searchFixture struct {
	*fixture
	search *Search
	cache  *mapCache
}

func newSearchFixture(t *testing.T) *searchFixture {
	f := newFixture(t)
	cache := newMapCache()
	return &searchFixture{
		fixture: f,
		cache:   cache,
		search:  NewSearchUsecase(f.store, cache, config.SearchConfig{DefaultLimit: 10, MaxLimit: 20}, time.Minute, nil),
	}
}

func TestSearch_ByMissionWeightedScore(t *testing.T) {
	f := newSearchFixture(t)
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationNone)
	js := f.skill(t, "JavaScript", cat.ID, skill.VerificationNone)
	mission := uuid.New()
	_, err := f.requirements.BulkAddRequirements(f.ctx, mission, []requirement.Spec{
		skillSpec(py.ID, skill.LevelRequired),
		skillSpec(js.ID, skill.LevelPreferred),
	})
	require.NoError(t, err)

	volunteer := uuid.New()
	f.attach(t, volunteer, py.ID, proficiency.Intermediate)

	out, err := f.search.SearchByMission(f.ctx, mission, MissionSearchQuery{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	m := out[0]
	assert.Equal(t, volunteer, m.VolunteerID)
	assert.Equal(t, 100.0, m.RequiredScore)
	assert.Equal(t, 0.0, m.PreferredScore)
	assert.Equal(t, 70.0, m.OverallScore)
	assert.True(t, m.IsFullyQualified)
	assert.True(t, m.Eligibility.CanApply)
	require.Len(t, m.MissingSkills, 1)
	assert.Equal(t, "JavaScript", m.MissingSkills[0].SkillName)
}

func TestSearch_ByMissionCarriesEligibility(t *testing.T) {
	f := newSearchFixture(t)
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationDocument)
	mission := uuid.New()
	_, err := f.requirements.AddRequirement(f.ctx, mission, requirement.Spec{
		SkillID:              py.ID,
		RequirementLevel:     skill.LevelRequired,
		MinProficiency:       proficiency.Intermediate,
		VerificationRequired: true,
	})
	require.NoError(t, err)
	f.attach(t, uuid.New(), py.ID, proficiency.Advanced)

	out, err := f.search.SearchByMission(f.ctx, mission, MissionSearchQuery{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsFullyQualified)
	assert.False(t, out[0].Eligibility.CanApply)
	assert.Equal(t, []string{"verification required for: Python"}, out[0].Eligibility.MissingReasons)

	verified, err := f.search.SearchByMission(f.ctx, mission, MissionSearchQuery{VerifiedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, verified)
}

func TestSearch_BySkillsMatchAll(t *testing.T) {
	f := newSearchFixture(t)
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationNone)
	sql := f.skill(t, "SQL", cat.ID, skill.VerificationNone)

	both, one := uuid.New(), uuid.New()
	f.attach(t, both, py.ID, proficiency.Advanced)
	f.attach(t, both, sql.ID, proficiency.Beginner)
	f.attach(t, one, py.ID, proficiency.Expert)

	all, err := f.search.SearchBySkills(f.ctx, SkillSearchQuery{SkillIDs: []uuid.UUID{py.ID, sql.ID}, MatchType: matching.MatchAll})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, both, all[0].VolunteerID)
	assert.Equal(t, 100.0, all[0].MatchPercentage)

	strict, err := f.search.SearchBySkills(f.ctx, SkillSearchQuery{SkillIDs: []uuid.UUID{py.ID, sql.ID}})
	require.NoError(t, err)
	require.Len(t, strict, 1)
	assert.Equal(t, both, strict[0].VolunteerID)

	anyMatch, err := f.search.SearchBySkills(f.ctx, SkillSearchQuery{SkillIDs: []uuid.UUID{py.ID, sql.ID}, MatchType: matching.MatchAny})
	require.NoError(t, err)
	require.Len(t, anyMatch, 2)
	assert.Equal(t, both, anyMatch[0].VolunteerID)
	assert.Equal(t, 50.0, anyMatch[1].MatchPercentage)

	floor, err := f.search.SearchBySkills(f.ctx, SkillSearchQuery{
		SkillIDs:       []uuid.UUID{py.ID, sql.ID},
		MinProficiency: proficiency.Intermediate,
		MatchType:      matching.MatchAny,
	})
	require.NoError(t, err)
	require.Len(t, floor, 2)
	for _, m := range floor {
		assert.Equal(t, 1, m.MatchedCount)
	}

	_, err = f.search.SearchBySkills(f.ctx, SkillSearchQuery{})
	require.ErrorIs(t, err, domainerr.ErrInvalidInput)
	_, err = f.search.SearchBySkills(f.ctx, SkillSearchQuery{SkillIDs: []uuid.UUID{py.ID}, MatchType: "most"})
	require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)
}

func TestSearch_ResultsAreCachedUntilInvalidated(t *testing.T) {
	f := newSearchFixture(t)
	cat := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", cat.ID, skill.VerificationNone)
	f.attach(t, uuid.New(), py.ID, proficiency.Advanced)

	q := SkillSearchQuery{SkillIDs: []uuid.UUID{py.ID}}
	first, err := f.search.SearchBySkills(f.ctx, q)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, f.cache.sets)

	f.attach(t, uuid.New(), py.ID, proficiency.Beginner)
	stale, err := f.search.SearchBySkills(f.ctx, q)
	require.NoError(t, err)
	assert.Len(t, stale, 1)
	assert.Equal(t, 1, f.cache.sets)

	_, err = f.cache.Invalidate(f.ctx, SearchCachePattern)
	require.NoError(t, err)
	fresh, err := f.search.SearchBySkills(f.ctx, q)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestSearch_ByCategoryIsNotRecursive(t *testing.T) {
	f := newSearchFixture(t)
	root := f.category(t, "Technology", nil)
	child := f.category(t, "Databases", &root.ID)
	py := f.skill(t, "Python", root.ID, skill.VerificationNone)
	pg := f.skill(t, "PostgreSQL", child.ID, skill.VerificationNone)
	old := f.skill(t, "Perl", root.ID, skill.VerificationNone)

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	f.attach(t, a, py.ID, proficiency.Advanced)
	f.attach(t, b, pg.ID, proficiency.Advanced)
	f.attach(t, c, old.ID, proficiency.Advanced)
	_, err := f.skills.DeactivateSkill(f.ctx, old.ID)
	require.NoError(t, err)

	out, err := f.search.SearchByCategory(f.ctx, root.ID, CategorySearchQuery{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, a, out[0].VolunteerID)

	_, err = f.search.SearchByCategory(f.ctx, uuid.New(), CategorySearchQuery{})
	require.ErrorIs(t, err, domainerr.ErrNotFound)
}

func TestSearch_ByCategoryValidatesLevelFirst(t *testing.T) {
	f := newSearchFixture(t)
	empty := f.category(t, "Empty", nil)
	full := f.category(t, "Technology", nil)
	py := f.skill(t, "Python", full.ID, skill.VerificationNone)
	f.attach(t, uuid.New(), py.ID, proficiency.Advanced)

	for _, id := range []uuid.UUID{empty.ID, full.ID, uuid.New()} {
		out, err := f.search.SearchByCategory(f.ctx, id, CategorySearchQuery{MinProficiency: "guru"})
		require.ErrorIs(t, err, domainerr.ErrInvalidEnumValue)
		assert.Nil(t, out)
	}

	out, err := f.search.SearchByCategory(f.ctx, empty.ID, CategorySearchQuery{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSearch_InvalidationDuringLoadIsNotCached(t *testing.T) {
	f := newSearchFixture(t)
	key := "skills:search:skills:race"

	out, err := cachedSearch(f.ctx, f.search, key, func() ([]string, error) {
		_, err := f.cache.Invalidate(f.ctx, SearchCachePattern)
		return []string{"stale"}, err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, out)
	assert.Zero(t, f.cache.sets)

	var cached []string
	hit, err := f.cache.Get(f.ctx, key, &cached)
	require.NoError(t, err)
	assert.False(t, hit)

	out, err = cachedSearch(f.ctx, f.search, key, func() ([]string, error) {
		return []string{"fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, out)
	assert.Equal(t, 1, f.cache.sets)
}

func TestSearchCacheKey_Stable(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	k1 := searchCacheKey(searchCacheKeyInput{Kind: "skills", SkillIDs: sortedIDs([]uuid.UUID{a, b}), MatchType: "ANY"})
	k2 := searchCacheKey(searchCacheKeyInput{Kind: "skills", SkillIDs: sortedIDs([]uuid.UUID{b, a}), MatchType: " any "})
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "skills:search:skills:"))
	assert.True(t, strings.HasPrefix(searchLockKey(k1), "skills:lock:skills:"))
}
