package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

type categoryRepo struct {
	a access
}

func (r *categoryRepo) checkUnique(t *tables, c skill.Category) error {
	for _, other := range t.categories {
		if other.ID != c.ID && nameKey(other.Name) == nameKey(c.Name) {
			return fmt.Errorf("%w: skill_categories_name_key", repository.ErrConflict)
		}
	}
	if c.ParentID != nil {
		if *c.ParentID == c.ID {
			return fmt.Errorf("%w: skill_categories_not_own_parent", repository.ErrReferenced)
		}
		if _, ok := t.categories[*c.ParentID]; !ok {
			return fmt.Errorf("%w: skill_categories_parent_id_fkey", repository.ErrReferenced)
		}
	}
	return nil
}

func (r *categoryRepo) Create(_ context.Context, c skill.Category) error {
	return r.a.write(func(t *tables) error {
		if _, exists := t.categories[c.ID]; exists {
			return fmt.Errorf("%w: skill_categories_pkey", repository.ErrConflict)
		}
		if err := r.checkUnique(t, c); err != nil {
			return err
		}
		t.categories[c.ID] = c
		return nil
	})
}

func (r *categoryRepo) Update(_ context.Context, c skill.Category) error {
	return r.a.write(func(t *tables) error {
		if _, ok := t.categories[c.ID]; !ok {
			return repository.ErrNotFound
		}
		if err := r.checkUnique(t, c); err != nil {
			return err
		}
		t.categories[c.ID] = c
		return nil
	})
}

func (r *categoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.a.write(func(t *tables) error {
		if _, ok := t.categories[id]; !ok {
			return repository.ErrNotFound
		}
		for _, c := range t.categories {
			if c.ParentID != nil && *c.ParentID == id {
				return fmt.Errorf("%w: skill_categories_parent_id_fkey", repository.ErrReferenced)
			}
		}
		for _, s := range t.skills {
			if s.CategoryID == id {
				return fmt.Errorf("%w: skills_category_id_fkey", repository.ErrReferenced)
			}
		}
		delete(t.categories, id)
		return nil
	})
}

func (r *categoryRepo) FindByID(_ context.Context, id uuid.UUID) (skill.Category, error) {
	var out skill.Category
	var ok bool
	r.a.read(func(t *tables) { out, ok = t.categories[id] })
	if !ok {
		return skill.Category{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *categoryRepo) FindByName(_ context.Context, name string) (skill.Category, error) {
	key := nameKey(name)
	var out skill.Category
	found := false
	r.a.read(func(t *tables) {
		for _, c := range t.categories {
			if nameKey(c.Name) == key {
				out, found = c, true
				return
			}
		}
	})
	if !found {
		return skill.Category{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *categoryRepo) List(_ context.Context) ([]skill.Category, error) {
	out := make([]skill.Category, 0)
	r.a.read(func(t *tables) {
		for _, c := range t.categories {
			out = append(out, c)
		}
	})
	sortByName(out, func(c skill.Category) string { return c.Name }, func(c skill.Category) uuid.UUID { return c.ID })
	return out, nil
}

func (r *categoryRepo) Search(ctx context.Context, query string, limit int) ([]skill.Category, error) {
	if limit <= 0 {
		limit = 50
	}
	all, _ := r.List(ctx)
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]skill.Category, 0)
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
	}
	return page(out, limit, 0), nil
}

func (r *categoryRepo) ReparentChildren(_ context.Context, from uuid.UUID, to *uuid.UUID) (int64, error) {
	var n int64
	err := r.a.write(func(t *tables) error {
		if to != nil {
			if _, ok := t.categories[*to]; !ok {
				return fmt.Errorf("%w: skill_categories_parent_id_fkey", repository.ErrReferenced)
			}
		}
		for id, c := range t.categories {
			if c.ParentID == nil || *c.ParentID != from {
				continue
			}
			if to == nil {
				c.ParentID = nil
			} else {
				p := *to
				c.ParentID = &p
			}
			t.categories[id] = c
			n++
		}
		return nil
	})
	return n, err
}

type skillRepo struct {
	a access
}

func (r *skillRepo) check(t *tables, s skill.Skill) error {
	for _, other := range t.skills {
		if other.ID != s.ID && nameKey(other.Name) == nameKey(s.Name) {
			return fmt.Errorf("%w: skills_name_key", repository.ErrConflict)
		}
	}
	if _, ok := t.categories[s.CategoryID]; !ok {
		return fmt.Errorf("%w: skills_category_id_fkey", repository.ErrReferenced)
	}
	return nil
}

func (r *skillRepo) Create(_ context.Context, s skill.Skill) error {
	return r.a.write(func(t *tables) error {
		if _, exists := t.skills[s.ID]; exists {
			return fmt.Errorf("%w: skills_pkey", repository.ErrConflict)
		}
		if err := r.check(t, s); err != nil {
			return err
		}
		t.skills[s.ID] = s
		return nil
	})
}

func (r *skillRepo) Update(_ context.Context, s skill.Skill) error {
	return r.a.write(func(t *tables) error {
		if _, ok := t.skills[s.ID]; !ok {
			return repository.ErrNotFound
		}
		if err := r.check(t, s); err != nil {
			return err
		}
		t.skills[s.ID] = s
		return nil
	})
}

func (r *skillRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.a.write(func(t *tables) error {
		if _, ok := t.skills[id]; !ok {
			return repository.ErrNotFound
		}
		for _, vs := range t.volunteerSkills {
			if vs.SkillID == id {
				return fmt.Errorf("%w: volunteer_skills_skill_id_fkey", repository.ErrReferenced)
			}
		}
		for _, req := range t.requirements {
			if req.SkillID == id {
				return fmt.Errorf("%w: mission_skill_requirements_skill_id_fkey", repository.ErrReferenced)
			}
		}
		delete(t.skills, id)
		return nil
	})
}

func (r *skillRepo) FindByID(_ context.Context, id uuid.UUID) (skill.Skill, error) {
	var out skill.Skill
	var ok bool
	r.a.read(func(t *tables) { out, ok = t.skills[id] })
	if !ok {
		return skill.Skill{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *skillRepo) FindByName(_ context.Context, name string) (skill.Skill, error) {
	key := nameKey(name)
	var out skill.Skill
	found := false
	r.a.read(func(t *tables) {
		for _, s := range t.skills {
			if nameKey(s.Name) == key {
				out, found = s, true
				return
			}
		}
	})
	if !found {
		return skill.Skill{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *skillRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]skill.Skill, error) {
	want := idSet(ids)
	out := make([]skill.Skill, 0, len(ids))
	r.a.read(func(t *tables) {
		for id := range want {
			if s, ok := t.skills[id]; ok {
				out = append(out, s)
			}
		}
	})
	sortSkills(out)
	return out, nil
}

func (r *skillRepo) List(_ context.Context, f repository.SkillFilter) ([]skill.Skill, error) {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]skill.Skill, 0)
	r.a.read(func(t *tables) {
		for _, s := range t.skills {
			if f.CategoryID != nil && s.CategoryID != *f.CategoryID {
				continue
			}
			if f.Active != nil && s.IsActive != *f.Active {
				continue
			}
			if f.VerificationRequired != nil && s.VerificationRequirement.Required() != *f.VerificationRequired {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(s.Name), q) && !strings.Contains(strings.ToLower(s.Description), q) {
				continue
			}
			out = append(out, s)
		}
	})
	sortSkills(out)
	return page(out, f.Limit, f.Offset), nil
}

func (r *skillRepo) CountByCategory(_ context.Context) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	r.a.read(func(t *tables) {
		for _, s := range t.skills {
			out[s.CategoryID]++
		}
	})
	return out, nil
}

func (r *skillRepo) MoveCategory(_ context.Context, from, to uuid.UUID) (int64, error) {
	var n int64
	err := r.a.write(func(t *tables) error {
		if _, ok := t.categories[to]; !ok {
			return fmt.Errorf("%w: skills_category_id_fkey", repository.ErrReferenced)
		}
		for id, s := range t.skills {
			if s.CategoryID == from {
				s.CategoryID = to
				t.skills[id] = s
				n++
			}
		}
		return nil
	})
	return n, err
}

func sortSkills(items []skill.Skill) {
	sortByName(items, func(s skill.Skill) string { return s.Name }, func(s skill.Skill) uuid.UUID { return s.ID })
}
