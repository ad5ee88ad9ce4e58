package repository

import (
	"context"
	"fmt"
	"strings"

	"volunteer-match/internal/database"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/domain/skill"

	"github.com/google/uuid"
)

type PostgresVolunteerSkillRepository struct {
	db database.Querier
}

func NewPostgresVolunteerSkillRepository(db database.Querier) *PostgresVolunteerSkillRepository {
	return &PostgresVolunteerSkillRepository{db: db}
}

const volunteerSkillSelect = `SELECT vs.id, vs.volunteer_id, vs.skill_id, s.name, s.category_id,
	vs.proficiency_level, vs.verification_status, vs.verification_requested, vs.verification_requested_at,
	vs.verified_by, vs.verified_at, vs.verification_notes, vs.is_primary,
	vs.supporting_document, vs.supporting_url, vs.last_used_date, vs.created_at, vs.updated_at
	FROM volunteer_skills vs
	JOIN skills s ON s.id = vs.skill_id`

func scanVolunteerSkill(row database.Row) (skill.VolunteerSkill, error) {
	var vs skill.VolunteerSkill
	var level, status string
	err := row.Scan(
		&vs.ID, &vs.VolunteerID, &vs.SkillID, &vs.SkillName, &vs.CategoryID,
		&level, &status, &vs.VerificationRequested, &vs.VerificationRequestedAt,
		&vs.VerifiedBy, &vs.VerifiedAt, &vs.VerificationNotes, &vs.IsPrimary,
		&vs.SupportingDocument, &vs.SupportingURL, &vs.LastUsedDate, &vs.CreatedAt, &vs.UpdatedAt,
	)
	if err != nil {
		return skill.VolunteerSkill{}, translate(err)
	}
	if vs.ProficiencyLevel, err = proficiency.Parse(level); err != nil {
		return skill.VolunteerSkill{}, fmt.Errorf("volunteer skill %s: %w", vs.ID, err)
	}
	if vs.VerificationStatus, err = skill.ParseVerificationStatus(status); err != nil {
		return skill.VolunteerSkill{}, fmt.Errorf("volunteer skill %s: %w", vs.ID, err)
	}
	return vs, nil
}

func (r *PostgresVolunteerSkillRepository) Create(ctx context.Context, vs skill.VolunteerSkill) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO volunteer_skills (
			id, volunteer_id, skill_id, proficiency_level, verification_status, verification_requested,
			verification_requested_at, verified_by, verified_at, verification_notes, is_primary,
			supporting_document, supporting_url, last_used_date, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		vs.ID, vs.VolunteerID, vs.SkillID, string(vs.ProficiencyLevel), string(vs.VerificationStatus), vs.VerificationRequested,
		vs.VerificationRequestedAt, vs.VerifiedBy, vs.VerifiedAt, vs.VerificationNotes, vs.IsPrimary,
		vs.SupportingDocument, vs.SupportingURL, vs.LastUsedDate, vs.CreatedAt, vs.UpdatedAt,
	)
	return translate(err)
}

func (r *PostgresVolunteerSkillRepository) Update(ctx context.Context, vs skill.VolunteerSkill) error {
	return rowsAffectedOrNotFound(r.db.Exec(ctx,
		`UPDATE volunteer_skills SET
			proficiency_level = $2, verification_status = $3, verification_requested = $4,
			verification_requested_at = $5, verified_by = $6, verified_at = $7, verification_notes = $8,
			is_primary = $9, supporting_document = $10, supporting_url = $11, last_used_date = $12, updated_at = $13
		 WHERE id = $1`,
		vs.ID, string(vs.ProficiencyLevel), string(vs.VerificationStatus), vs.VerificationRequested,
		vs.VerificationRequestedAt, vs.VerifiedBy, vs.VerifiedAt, vs.VerificationNotes,
		vs.IsPrimary, vs.SupportingDocument, vs.SupportingURL, vs.LastUsedDate, vs.UpdatedAt,
	))
}

func (r *PostgresVolunteerSkillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return rowsAffectedOrNotFound(r.db.Exec(ctx, `DELETE FROM volunteer_skills WHERE id = $1`, id))
}

func (r *PostgresVolunteerSkillRepository) FindByID(ctx context.Context, id uuid.UUID) (skill.VolunteerSkill, error) {
	return scanVolunteerSkill(r.db.QueryRow(ctx, volunteerSkillSelect+` WHERE vs.id = $1`, id))
}

func (r *PostgresVolunteerSkillRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.VolunteerSkill, error) {
	return scanVolunteerSkill(r.db.QueryRow(ctx, volunteerSkillSelect+` WHERE vs.id = $1 FOR UPDATE OF vs`, id))
}

func (r *PostgresVolunteerSkillRepository) FindByVolunteerAndSkill(ctx context.Context, volunteerID, skillID uuid.UUID) (skill.VolunteerSkill, error) {
	return scanVolunteerSkill(r.db.QueryRow(ctx,
		volunteerSkillSelect+` WHERE vs.volunteer_id = $1 AND vs.skill_id = $2`, volunteerID, skillID))
}

func (r *PostgresVolunteerSkillRepository) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID, f VolunteerSkillFilter) ([]skill.VolunteerSkill, error) {
	where := []string{"vs.volunteer_id = $1"}
	args := []any{volunteerID}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("vs.verification_status = $%d", len(args)))
	}
	if f.Primary != nil {
		args = append(args, *f.Primary)
		where = append(where, fmt.Sprintf("vs.is_primary = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("s.category_id = $%d", len(args)))
	}
	return r.query(ctx,
		volunteerSkillSelect+` WHERE `+strings.Join(where, " AND ")+` ORDER BY vs.is_primary DESC, lower(s.name) ASC`,
		args...)
}

func (r *PostgresVolunteerSkillRepository) ListBySkills(ctx context.Context, skillIDs []uuid.UUID, f HolderFilter) ([]skill.VolunteerSkill, error) {
	if len(skillIDs) == 0 {
		return []skill.VolunteerSkill{}, nil
	}
	where := []string{"vs.skill_id = ANY($1)"}
	args := []any{skillIDs}
	if f.VerifiedOnly {
		where = append(where, "vs.verification_status = 'verified'")
	}
	if f.MinProficiency != "" {
		levels := make([]string, 0, 4)
		for _, l := range proficiency.LevelsAtOrAbove(f.MinProficiency) {
			levels = append(levels, string(l))
		}
		args = append(args, levels)
		where = append(where, fmt.Sprintf("vs.proficiency_level = ANY($%d)", len(args)))
	}
	return r.query(ctx,
		volunteerSkillSelect+` WHERE `+strings.Join(where, " AND ")+` ORDER BY vs.volunteer_id ASC, vs.skill_id ASC`,
		args...)
}

func (r *PostgresVolunteerSkillRepository) ClearPrimary(ctx context.Context, volunteerID uuid.UUID, except uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE volunteer_skills SET is_primary = FALSE, updated_at = now()
		 WHERE volunteer_id = $1 AND id <> $2 AND is_primary`,
		volunteerID, except,
	)
	return translate(err)
}

func (r *PostgresVolunteerSkillRepository) CountBySkill(ctx context.Context, skillIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	sql := `SELECT skill_id, COUNT(DISTINCT volunteer_id) FROM volunteer_skills`
	var args []any
	if skillIDs != nil {
		if len(skillIDs) == 0 {
			return map[uuid.UUID]int{}, nil
		}
		sql += ` WHERE skill_id = ANY($1)`
		args = append(args, skillIDs)
	}
	sql += ` GROUP BY skill_id`
	return countByID(ctx, r.db, sql, args...)
}

func (r *PostgresVolunteerSkillRepository) CountVolunteersBySkills(ctx context.Context, skillIDs []uuid.UUID) (int, error) {
	if len(skillIDs) == 0 {
		return 0, nil
	}
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT volunteer_id) FROM volunteer_skills WHERE skill_id = ANY($1)`, skillIDs,
	).Scan(&n)
	return n, translate(err)
}

func (r *PostgresVolunteerSkillRepository) DeleteBySkill(ctx context.Context, skillID uuid.UUID) (int64, error) {
	n, err := r.db.Exec(ctx, `DELETE FROM volunteer_skills WHERE skill_id = $1`, skillID)
	return n, translate(err)
}

func (r *PostgresVolunteerSkillRepository) query(ctx context.Context, sql string, args ...any) ([]skill.VolunteerSkill, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.VolunteerSkill, 0)
	for rows.Next() {
		vs, err := scanVolunteerSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, vs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func countByID(ctx context.Context, db database.Querier, sql string, args ...any) (map[uuid.UUID]int, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uuid.UUID]int{}
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
