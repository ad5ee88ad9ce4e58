package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"
	"volunteer-match/internal/repository"
)

type volunteerSkillRepo struct {
	a access
}

// joinedVolunteerSkill fills the read-side fields the postgres JOIN would supply.
func joinedVolunteerSkill(t *tables, vs skill.VolunteerSkill) skill.VolunteerSkill {
	if s, ok := t.skills[vs.SkillID]; ok {
		vs.SkillName = s.Name
		vs.CategoryID = s.CategoryID
	}
	return vs
}

func (r *volunteerSkillRepo) check(t *tables, vs skill.VolunteerSkill) error {
	if _, ok := t.skills[vs.SkillID]; !ok {
		return fmt.Errorf("%w: volunteer_skills_skill_id_fkey", repository.ErrReferenced)
	}
	for _, other := range t.volunteerSkills {
		if other.ID == vs.ID || other.VolunteerID != vs.VolunteerID {
			continue
		}
		if other.SkillID == vs.SkillID {
			return fmt.Errorf("%w: volunteer_skills_volunteer_skill_key", repository.ErrConflict)
		}
		if vs.IsPrimary && other.IsPrimary {
			return fmt.Errorf("%w: volunteer_skills_one_primary", repository.ErrConflict)
		}
	}
	return nil
}

func stripJoins(vs skill.VolunteerSkill) skill.VolunteerSkill {
	vs.SkillName = ""
	vs.CategoryID = uuid.Nil
	return vs
}

func (r *volunteerSkillRepo) Create(_ context.Context, vs skill.VolunteerSkill) error {
	return r.a.write(func(t *tables) error {
		if _, exists := t.volunteerSkills[vs.ID]; exists {
			return fmt.Errorf("%w: volunteer_skills_pkey", repository.ErrConflict)
		}
		if err := r.check(t, vs); err != nil {
			return err
		}
		t.volunteerSkills[vs.ID] = stripJoins(vs)
		return nil
	})
}

func (r *volunteerSkillRepo) Update(_ context.Context, vs skill.VolunteerSkill) error {
	return r.a.write(func(t *tables) error {
		cur, ok := t.volunteerSkills[vs.ID]
		if !ok {
			return repository.ErrNotFound
		}
		// volunteer and skill are immutable once stored
		vs.VolunteerID = cur.VolunteerID
		vs.SkillID = cur.SkillID
		vs.CreatedAt = cur.CreatedAt
		if err := r.check(t, vs); err != nil {
			return err
		}
		t.volunteerSkills[vs.ID] = stripJoins(vs)
		return nil
	})
}

func (r *volunteerSkillRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.a.write(func(t *tables) error {
		if _, ok := t.volunteerSkills[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.volunteerSkills, id)
		for rid, req := range t.requests {
			if req.VolunteerSkillID == id {
				delete(t.requests, rid)
			}
		}
		return nil
	})
}

func (r *volunteerSkillRepo) FindByID(_ context.Context, id uuid.UUID) (skill.VolunteerSkill, error) {
	var out skill.VolunteerSkill
	var ok bool
	r.a.read(func(t *tables) {
		out, ok = t.volunteerSkills[id]
		if ok {
			out = joinedVolunteerSkill(t, out)
		}
	})
	if !ok {
		return skill.VolunteerSkill{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *volunteerSkillRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.VolunteerSkill, error) {
	return r.FindByID(ctx, id)
}

func (r *volunteerSkillRepo) FindByVolunteerAndSkill(_ context.Context, volunteerID, skillID uuid.UUID) (skill.VolunteerSkill, error) {
	var out skill.VolunteerSkill
	found := false
	r.a.read(func(t *tables) {
		for _, vs := range t.volunteerSkills {
			if vs.VolunteerID == volunteerID && vs.SkillID == skillID {
				out, found = joinedVolunteerSkill(t, vs), true
				return
			}
		}
	})
	if !found {
		return skill.VolunteerSkill{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *volunteerSkillRepo) ListByVolunteer(_ context.Context, volunteerID uuid.UUID, f repository.VolunteerSkillFilter) ([]skill.VolunteerSkill, error) {
	out := make([]skill.VolunteerSkill, 0)
	r.a.read(func(t *tables) {
		for _, vs := range t.volunteerSkills {
			if vs.VolunteerID != volunteerID {
				continue
			}
			if f.Status != nil && vs.VerificationStatus != *f.Status {
				continue
			}
			if f.Primary != nil && vs.IsPrimary != *f.Primary {
				continue
			}
			vs = joinedVolunteerSkill(t, vs)
			if f.CategoryID != nil && vs.CategoryID != *f.CategoryID {
				continue
			}
			out = append(out, vs)
		}
	})
	sortByName(out, func(vs skill.VolunteerSkill) string { return vs.SkillName }, func(vs skill.VolunteerSkill) uuid.UUID { return vs.ID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsPrimary && !out[j].IsPrimary })
	return out, nil
}

func (r *volunteerSkillRepo) ListBySkills(_ context.Context, skillIDs []uuid.UUID, f repository.HolderFilter) ([]skill.VolunteerSkill, error) {
	out := make([]skill.VolunteerSkill, 0)
	if len(skillIDs) == 0 {
		return out, nil
	}
	want := idSet(skillIDs)
	r.a.read(func(t *tables) {
		for _, vs := range t.volunteerSkills {
			if _, ok := want[vs.SkillID]; !ok {
				continue
			}
			if f.VerifiedOnly && vs.VerificationStatus != skill.StatusVerified {
				continue
			}
			if f.MinProficiency != "" && !proficiency.MeetsOrExceeds(vs.ProficiencyLevel, f.MinProficiency) {
				continue
			}
			out = append(out, joinedVolunteerSkill(t, vs))
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].VolunteerID != out[j].VolunteerID {
			return out[i].VolunteerID.String() < out[j].VolunteerID.String()
		}
		return out[i].SkillID.String() < out[j].SkillID.String()
	})
	return out, nil
}

func (r *volunteerSkillRepo) ClearPrimary(_ context.Context, volunteerID uuid.UUID, except uuid.UUID) error {
	return r.a.write(func(t *tables) error {
		for id, vs := range t.volunteerSkills {
			if vs.VolunteerID == volunteerID && id != except && vs.IsPrimary {
				vs.IsPrimary = false
				t.volunteerSkills[id] = vs
			}
		}
		return nil
	})
}

func (r *volunteerSkillRepo) CountBySkill(_ context.Context, skillIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	if skillIDs != nil && len(skillIDs) == 0 {
		return out, nil
	}
	var want map[uuid.UUID]struct{}
	if skillIDs != nil {
		want = idSet(skillIDs)
	}
	r.a.read(func(t *tables) {
		for _, vs := range t.volunteerSkills {
			if want != nil {
				if _, ok := want[vs.SkillID]; !ok {
					continue
				}
			}
			// (volunteer, skill) is unique so one row is one holder
			out[vs.SkillID]++
		}
	})
	return out, nil
}

func (r *volunteerSkillRepo) CountVolunteersBySkills(_ context.Context, skillIDs []uuid.UUID) (int, error) {
	if len(skillIDs) == 0 {
		return 0, nil
	}
	want := idSet(skillIDs)
	volunteers := map[uuid.UUID]struct{}{}
	r.a.read(func(t *tables) {
		for _, vs := range t.volunteerSkills {
			if _, ok := want[vs.SkillID]; ok {
				volunteers[vs.VolunteerID] = struct{}{}
			}
		}
	})
	return len(volunteers), nil
}

func (r *volunteerSkillRepo) DeleteBySkill(_ context.Context, skillID uuid.UUID) (int64, error) {
	var n int64
	err := r.a.write(func(t *tables) error {
		for id, vs := range t.volunteerSkills {
			if vs.SkillID != skillID {
				continue
			}
			delete(t.volunteerSkills, id)
			for rid, req := range t.requests {
				if req.VolunteerSkillID == id {
					delete(t.requests, rid)
				}
			}
			n++
		}
		return nil
	})
	return n, err
}

type verificationRepo struct {
	a access
}

func (r *verificationRepo) check(t *tables, vr skill.VerificationRequest) error {
	if _, ok := t.volunteerSkills[vr.VolunteerSkillID]; !ok {
		return fmt.Errorf("%w: verification_requests_volunteer_skill_id_fkey", repository.ErrReferenced)
	}
	if !vr.ReviewStatus.Open() {
		return nil
	}
	for _, other := range t.requests {
		if other.ID != vr.ID && other.VolunteerSkillID == vr.VolunteerSkillID && other.ReviewStatus.Open() {
			return fmt.Errorf("%w: verification_requests_one_open", repository.ErrConflict)
		}
	}
	return nil
}

func (r *verificationRepo) Create(_ context.Context, vr skill.VerificationRequest) error {
	return r.a.write(func(t *tables) error {
		if _, exists := t.requests[vr.ID]; exists {
			return fmt.Errorf("%w: verification_requests_pkey", repository.ErrConflict)
		}
		if err := r.check(t, vr); err != nil {
			return err
		}
		vr.Evidence = vr.Evidence.Clone()
		t.requests[vr.ID] = vr
		return nil
	})
}

func (r *verificationRepo) Update(_ context.Context, vr skill.VerificationRequest) error {
	return r.a.write(func(t *tables) error {
		cur, ok := t.requests[vr.ID]
		if !ok {
			return repository.ErrNotFound
		}
		vr.VolunteerSkillID = cur.VolunteerSkillID
		vr.RequestedAt = cur.RequestedAt
		if err := r.check(t, vr); err != nil {
			return err
		}
		vr.Evidence = vr.Evidence.Clone()
		t.requests[vr.ID] = vr
		return nil
	})
}

func (r *verificationRepo) FindByID(_ context.Context, id uuid.UUID) (skill.VerificationRequest, error) {
	var out skill.VerificationRequest
	var ok bool
	r.a.read(func(t *tables) {
		out, ok = t.requests[id]
		out.Evidence = out.Evidence.Clone()
	})
	if !ok {
		return skill.VerificationRequest{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *verificationRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.VerificationRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *verificationRepo) FindOpenByVolunteerSkill(ctx context.Context, volunteerSkillID uuid.UUID) (skill.VerificationRequest, error) {
	all, _ := r.ListByVolunteerSkill(ctx, volunteerSkillID)
	for _, vr := range all {
		if vr.ReviewStatus.Open() {
			return vr, nil
		}
	}
	return skill.VerificationRequest{}, repository.ErrNotFound
}

func (r *verificationRepo) filter(keep func(t *tables, vr skill.VerificationRequest) bool) []skill.VerificationRequest {
	out := make([]skill.VerificationRequest, 0)
	r.a.read(func(t *tables) {
		for _, vr := range t.requests {
			if keep(t, vr) {
				vr.Evidence = vr.Evidence.Clone()
				out = append(out, vr)
			}
		}
	})
	return out
}

// newestFirst orders by requested_at DESC, id ASC.
func newestFirst(items []skill.VerificationRequest) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].RequestedAt.Equal(items[j].RequestedAt) {
			return items[i].RequestedAt.After(items[j].RequestedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}

func (r *verificationRepo) ListByVolunteerSkill(_ context.Context, volunteerSkillID uuid.UUID) ([]skill.VerificationRequest, error) {
	out := r.filter(func(_ *tables, vr skill.VerificationRequest) bool {
		return vr.VolunteerSkillID == volunteerSkillID
	})
	newestFirst(out)
	return out, nil
}

func (r *verificationRepo) ListByVolunteer(_ context.Context, volunteerID uuid.UUID) ([]skill.VerificationRequest, error) {
	out := r.filter(func(t *tables, vr skill.VerificationRequest) bool {
		vs, ok := t.volunteerSkills[vr.VolunteerSkillID]
		return ok && vs.VolunteerID == volunteerID
	})
	newestFirst(out)
	return out, nil
}

func (r *verificationRepo) ListByStatus(_ context.Context, statuses []skill.ReviewStatus, limit, offset int) ([]skill.VerificationRequest, error) {
	want := make(map[skill.ReviewStatus]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	out := r.filter(func(_ *tables, vr skill.VerificationRequest) bool {
		_, ok := want[vr.ReviewStatus]
		return ok
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit <= 0 {
		limit = 50
	}
	return page(out, limit, offset), nil
}

func (r *verificationRepo) CountByStatus(_ context.Context) (map[skill.ReviewStatus]int, error) {
	out := map[skill.ReviewStatus]int{}
	r.a.read(func(t *tables) {
		for _, vr := range t.requests {
			out[vr.ReviewStatus]++
		}
	})
	return out, nil
}

func (r *verificationRepo) DeleteByVolunteerSkill(_ context.Context, volunteerSkillID uuid.UUID) (int64, error) {
	var n int64
	err := r.a.write(func(t *tables) error {
		for id, vr := range t.requests {
			if vr.VolunteerSkillID == volunteerSkillID {
				delete(t.requests, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *verificationRepo) DeleteBySkill(_ context.Context, skillID uuid.UUID) (int64, error) {
	var n int64
	err := r.a.write(func(t *tables) error {
		for id, vr := range t.requests {
			vs, ok := t.volunteerSkills[vr.VolunteerSkillID]
			if ok && vs.SkillID == skillID {
				delete(t.requests, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

type requirementRepo struct {
	a access
}

func joinedRequirement(t *tables, req skill.MissionSkillRequirement) skill.MissionSkillRequirement {
	if s, ok := t.skills[req.SkillID]; ok {
		req.SkillName = s.Name
		req.CategoryID = s.CategoryID
	}
	return req
}

func (r *requirementRepo) check(t *tables, req skill.MissionSkillRequirement) error {
	if _, ok := t.skills[req.SkillID]; !ok {
		return fmt.Errorf("%w: mission_skill_requirements_skill_id_fkey", repository.ErrReferenced)
	}
	for _, other := range t.requirements {
		if other.ID != req.ID && other.MissionID == req.MissionID && other.SkillID == req.SkillID {
			return fmt.Errorf("%w: mission_skill_requirements_mission_skill_key", repository.ErrConflict)
		}
	}
	return nil
}

func (r *requirementRepo) Create(_ context.Context, req skill.MissionSkillRequirement) error {
	return r.a.write(func(t *tables) error {
		if _, exists := t.requirements[req.ID]; exists {
			return fmt.Errorf("%w: mission_skill_requirements_pkey", repository.ErrConflict)
		}
		if err := r.check(t, req); err != nil {
			return err
		}
		req.SkillName, req.CategoryID = "", uuid.Nil
		t.requirements[req.ID] = req
		return nil
	})
}

func (r *requirementRepo) Update(_ context.Context, req skill.MissionSkillRequirement) error {
	return r.a.write(func(t *tables) error {
		cur, ok := t.requirements[req.ID]
		if !ok {
			return repository.ErrNotFound
		}
		req.MissionID, req.SkillID, req.CreatedAt = cur.MissionID, cur.SkillID, cur.CreatedAt
		req.SkillName, req.CategoryID = "", uuid.Nil
		t.requirements[req.ID] = req
		return nil
	})
}

func (r *requirementRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.a.write(func(t *tables) error {
		if _, ok := t.requirements[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.requirements, id)
		return nil
	})
}

func (r *requirementRepo) FindByID(_ context.Context, id uuid.UUID) (skill.MissionSkillRequirement, error) {
	var out skill.MissionSkillRequirement
	var ok bool
	r.a.read(func(t *tables) {
		out, ok = t.requirements[id]
		out = joinedRequirement(t, out)
	})
	if !ok {
		return skill.MissionSkillRequirement{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *requirementRepo) FindByMissionAndSkill(_ context.Context, missionID, skillID uuid.UUID) (skill.MissionSkillRequirement, error) {
	var out skill.MissionSkillRequirement
	found := false
	r.a.read(func(t *tables) {
		for _, req := range t.requirements {
			if req.MissionID == missionID && req.SkillID == skillID {
				out, found = joinedRequirement(t, req), true
				return
			}
		}
	})
	if !found {
		return skill.MissionSkillRequirement{}, repository.ErrNotFound
	}
	return out, nil
}

func (r *requirementRepo) ListByMission(_ context.Context, missionID uuid.UUID, f repository.RequirementFilter) ([]skill.MissionSkillRequirement, error) {
	out := make([]skill.MissionSkillRequirement, 0)
	r.a.read(func(t *tables) {
		for _, req := range t.requirements {
			if req.MissionID != missionID {
				continue
			}
			if f.Level != nil && req.RequirementLevel != *f.Level {
				continue
			}
			if f.VerificationRequired != nil && req.VerificationRequired != *f.VerificationRequired {
				continue
			}
			out = append(out, joinedRequirement(t, req))
		}
	})
	sortByName(out, func(req skill.MissionSkillRequirement) string { return req.SkillName }, func(req skill.MissionSkillRequirement) uuid.UUID { return req.ID })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RequirementLevel.Rank() > out[j].RequirementLevel.Rank()
	})
	return out, nil
}

func (r *requirementRepo) CountBySkill(_ context.Context, skillIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	if skillIDs != nil && len(skillIDs) == 0 {
		return out, nil
	}
	var want map[uuid.UUID]struct{}
	if skillIDs != nil {
		want = idSet(skillIDs)
	}
	r.a.read(func(t *tables) {
		for _, req := range t.requirements {
			if want != nil {
				if _, ok := want[req.SkillID]; !ok {
					continue
				}
			}
			out[req.SkillID]++
		}
	})
	return out, nil
}

func (r *requirementRepo) DeleteBySkill(_ context.Context, skillID uuid.UUID) (int64, error) {
	var n int64
	err := r.a.write(func(t *tables) error {
		for id, req := range t.requirements {
			if req.SkillID == skillID {
				delete(t.requirements, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
