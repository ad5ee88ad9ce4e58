package repository

import (
	"context"
	"fmt"
	"strings"

	"volunteer-match/internal/database"
	"volunteer-match/internal/domain/skill"

	"github.com/google/uuid"
)

type PostgresSkillRepository struct {
	db database.Querier
}

func NewPostgresSkillRepository(db database.Querier) *PostgresSkillRepository {
	return &PostgresSkillRepository{db: db}
}

const skillColumns = `id, name, description, category_id, verification_requirement, is_active, created_at, updated_at`

func scanSkill(row database.Row) (skill.Skill, error) {
	var s skill.Skill
	var vr string
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.CategoryID, &vr, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return skill.Skill{}, translate(err)
	}
	v, err := skill.ParseVerificationRequirement(vr)
	if err != nil {
		return skill.Skill{}, fmt.Errorf("skill %s: %w", s.ID, err)
	}
	s.VerificationRequirement = v
	return s, nil
}

func (r *PostgresSkillRepository) Create(ctx context.Context, s skill.Skill) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO skills (id, name, description, category_id, verification_requirement, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, s.Description, s.CategoryID, string(s.VerificationRequirement), s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	return translate(err)
}

func (r *PostgresSkillRepository) Update(ctx context.Context, s skill.Skill) error {
	return rowsAffectedOrNotFound(r.db.Exec(ctx,
		`UPDATE skills
		 SET name = $2, description = $3, category_id = $4, verification_requirement = $5, is_active = $6, updated_at = $7
		 WHERE id = $1`,
		s.ID, s.Name, s.Description, s.CategoryID, string(s.VerificationRequirement), s.IsActive, s.UpdatedAt,
	))
}

func (r *PostgresSkillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return rowsAffectedOrNotFound(r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id))
}

func (r *PostgresSkillRepository) FindByID(ctx context.Context, id uuid.UUID) (skill.Skill, error) {
	return scanSkill(r.db.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1`, id))
}

func (r *PostgresSkillRepository) FindByName(ctx context.Context, name string) (skill.Skill, error) {
	return scanSkill(r.db.QueryRow(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE lower(name) = lower($1)`, strings.TrimSpace(name)))
}

func (r *PostgresSkillRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]skill.Skill, error) {
	if len(ids) == 0 {
		return []skill.Skill{}, nil
	}
	return r.query(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = ANY($1) ORDER BY lower(name) ASC, id ASC`, ids)
}

func (r *PostgresSkillRepository) List(ctx context.Context, f SkillFilter) ([]skill.Skill, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != nil {
		where = append(where, "category_id = "+arg(*f.CategoryID))
	}
	if f.Active != nil {
		where = append(where, "is_active = "+arg(*f.Active))
	}
	if f.VerificationRequired != nil {
		if *f.VerificationRequired {
			where = append(where, "verification_requirement <> 'none'")
		} else {
			where = append(where, "verification_requirement = 'none'")
		}
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, "(name ILIKE "+p+" OR description ILIKE "+p+")")
	}

	sql := `SELECT ` + skillColumns + ` FROM skills`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY lower(name) ASC, id ASC`
	if f.Limit > 0 {
		sql += ` LIMIT ` + arg(f.Limit)
	}
	if f.Offset > 0 {
		sql += ` OFFSET ` + arg(f.Offset)
	}
	return r.query(ctx, sql, args...)
}

func (r *PostgresSkillRepository) CountByCategory(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.db.Query(ctx, `SELECT category_id, COUNT(*) FROM skills GROUP BY category_id`)
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

func (r *PostgresSkillRepository) MoveCategory(ctx context.Context, from, to uuid.UUID) (int64, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE skills SET category_id = $2, updated_at = now() WHERE category_id = $1`, from, to)
	return n, translate(err)
}

func (r *PostgresSkillRepository) query(ctx context.Context, sql string, args ...any) ([]skill.Skill, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.Skill, 0)
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
