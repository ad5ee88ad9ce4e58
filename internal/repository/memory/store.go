// Package memory is an in-process Store with the same constraints as the
// postgres schema. Transactions work on a private copy of every table and
// swap it in on commit, so a failed unit of work leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

type tables struct {
	categories      map[uuid.UUID]skill.Category
	skills          map[uuid.UUID]skill.Skill
	volunteerSkills map[uuid.UUID]skill.VolunteerSkill
	requests        map[uuid.UUID]skill.VerificationRequest
	requirements    map[uuid.UUID]skill.MissionSkillRequirement
}

func newTables() *tables {
	return &tables{
		categories:      map[uuid.UUID]skill.Category{},
		skills:          map[uuid.UUID]skill.Skill{},
		volunteerSkills: map[uuid.UUID]skill.VolunteerSkill{},
		requests:        map[uuid.UUID]skill.VerificationRequest{},
		requirements:    map[uuid.UUID]skill.MissionSkillRequirement{},
	}
}

func (t *tables) clone() *tables {
	out := newTables()
	for k, v := range t.categories {
		out.categories[k] = v
	}
	for k, v := range t.skills {
		out.skills[k] = v
	}
	for k, v := range t.volunteerSkills {
		out.volunteerSkills[k] = v
	}
	for k, v := range t.requests {
		v.Evidence = v.Evidence.Clone()
		out.requests[k] = v
	}
	for k, v := range t.requirements {
		out.requirements[k] = v
	}
	return out
}

// access is how repositories reach the tables: directly inside a
// transaction, under the store locks outside one.
type access interface {
	read(fn func(t *tables))
	write(fn func(t *tables) error) error
}

type Store struct {
	// txMu serializes writers; mu guards the committed pointer.
	txMu      sync.Mutex
	mu        sync.RWMutex
	committed *tables
}

func NewStore() *Store {
	return &Store{committed: newTables()}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Repos() repository.Repositories {
	return repositories(committedAccess{s: s})
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(ctx, repositories(&txAccess{t: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

type committedAccess struct {
	s *Store
}

func (a committedAccess) read(fn func(t *tables)) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	fn(a.s.committed)
}

func (a committedAccess) write(fn func(t *tables) error) error {
	a.s.txMu.Lock()
	defer a.s.txMu.Unlock()

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	work := a.s.committed.clone()
	if err := fn(work); err != nil {
		return err
	}
	a.s.committed = work
	return nil
}

type txAccess struct {
	t *tables
}

func (a *txAccess) read(fn func(t *tables)) { fn(a.t) }

func (a *txAccess) write(fn func(t *tables) error) error { return fn(a.t) }

func repositories(a access) repository.Repositories {
	return repository.Repositories{
		Categories:      &categoryRepo{a: a},
		Skills:          &skillRepo{a: a},
		VolunteerSkills: &volunteerSkillRepo{a: a},
		Verifications:   &verificationRepo{a: a},
		Requirements:    &requirementRepo{a: a},
	}
}

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sortByName[T any](items []T, name func(T) string, id func(T) uuid.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := nameKey(name(items[i])), nameKey(name(items[j]))
		if a != b {
			return a < b
		}
		return id(items[i]).String() < id(items[j]).String()
	})
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
