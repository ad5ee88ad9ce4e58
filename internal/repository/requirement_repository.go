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

type PostgresRequirementRepository struct {
	db database.Querier
}

func NewPostgresRequirementRepository(db database.Querier) *PostgresRequirementRepository {
	return &PostgresRequirementRepository{db: db}
}

const requirementSelect = `SELECT r.id, r.mission_id, r.skill_id, s.name, s.category_id,
	r.requirement_level, r.min_proficiency_level, r.verification_required, r.created_at, r.updated_at
	FROM mission_skill_requirements r
	JOIN skills s ON s.id = r.skill_id`

func scanRequirement(row database.Row) (skill.MissionSkillRequirement, error) {
	var req skill.MissionSkillRequirement
	var level, floor string
	err := row.Scan(
		&req.ID, &req.MissionID, &req.SkillID, &req.SkillName, &req.CategoryID,
		&level, &floor, &req.VerificationRequired, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return skill.MissionSkillRequirement{}, translate(err)
	}
	if req.RequirementLevel, err = skill.ParseRequirementLevel(level); err != nil {
		return skill.MissionSkillRequirement{}, fmt.Errorf("requirement %s: %w", req.ID, err)
	}
	if req.MinProficiency, err = proficiency.Parse(floor); err != nil {
		return skill.MissionSkillRequirement{}, fmt.Errorf("requirement %s: %w", req.ID, err)
	}
	return req, nil
}

func (r *PostgresRequirementRepository) Create(ctx context.Context, req skill.MissionSkillRequirement) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO mission_skill_requirements (
			id, mission_id, skill_id, requirement_level, min_proficiency_level, verification_required, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		req.ID, req.MissionID, req.SkillID, string(req.RequirementLevel), string(req.MinProficiency),
		req.VerificationRequired, req.CreatedAt, req.UpdatedAt,
	)
	return translate(err)
}

func (r *PostgresRequirementRepository) Update(ctx context.Context, req skill.MissionSkillRequirement) error {
	return rowsAffectedOrNotFound(r.db.Exec(ctx,
		`UPDATE mission_skill_requirements SET
			requirement_level = $2, min_proficiency_level = $3, verification_required = $4, updated_at = $5
		 WHERE id = $1`,
		req.ID, string(req.RequirementLevel), string(req.MinProficiency), req.VerificationRequired, req.UpdatedAt,
	))
}

func (r *PostgresRequirementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return rowsAffectedOrNotFound(r.db.Exec(ctx, `DELETE FROM mission_skill_requirements WHERE id = $1`, id))
}

func (r *PostgresRequirementRepository) FindByID(ctx context.Context, id uuid.UUID) (skill.MissionSkillRequirement, error) {
	return scanRequirement(r.db.QueryRow(ctx, requirementSelect+` WHERE r.id = $1`, id))
}

func (r *PostgresRequirementRepository) FindByMissionAndSkill(ctx context.Context, missionID, skillID uuid.UUID) (skill.MissionSkillRequirement, error) {
	return scanRequirement(r.db.QueryRow(ctx,
		requirementSelect+` WHERE r.mission_id = $1 AND r.skill_id = $2`, missionID, skillID))
}

func (r *PostgresRequirementRepository) ListByMission(ctx context.Context, missionID uuid.UUID, f RequirementFilter) ([]skill.MissionSkillRequirement, error) {
	where := []string{"r.mission_id = $1"}
	args := []any{missionID}
	if f.Level != nil {
		args = append(args, string(*f.Level))
		where = append(where, fmt.Sprintf("r.requirement_level = $%d", len(args)))
	}
	if f.VerificationRequired != nil {
		args = append(args, *f.VerificationRequired)
		where = append(where, fmt.Sprintf("r.verification_required = $%d", len(args)))
	}

	rows, err := r.db.Query(ctx,
		requirementSelect+` WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY CASE r.requirement_level
			WHEN 'critical' THEN 1 WHEN 'required' THEN 2 WHEN 'preferred' THEN 3 ELSE 4 END,
			lower(s.name) ASC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.MissionSkillRequirement, 0)
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRequirementRepository) CountBySkill(ctx context.Context, skillIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	sql := `SELECT skill_id, COUNT(DISTINCT mission_id) FROM mission_skill_requirements`
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

func (r *PostgresRequirementRepository) DeleteBySkill(ctx context.Context, skillID uuid.UUID) (int64, error) {
	n, err := r.db.Exec(ctx, `DELETE FROM mission_skill_requirements WHERE skill_id = $1`, skillID)
	return n, translate(err)
}
