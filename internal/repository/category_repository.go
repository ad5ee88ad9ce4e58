package repository

import (
	"context"
	"strings"

	"volunteer-match/internal/database"
	"volunteer-match/internal/domain/skill"

	"github.com/google/uuid"
)

type PostgresCategoryRepository struct {
	db database.Querier
}

func NewPostgresCategoryRepository(db database.Querier) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

const categoryColumns = `id, name, description, parent_id, created_at, updated_at`

func scanCategory(row database.Row) (skill.Category, error) {
	var c skill.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return skill.Category{}, translate(err)
	}
	return c, nil
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, c skill.Category) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO skill_categories (id, name, description, parent_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.ParentID, c.CreatedAt, c.UpdatedAt,
	)
	return translate(err)
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, c skill.Category) error {
	return rowsAffectedOrNotFound(r.db.Exec(ctx,
		`UPDATE skill_categories
		 SET name = $2, description = $3, parent_id = $4, updated_at = $5
		 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.ParentID, c.UpdatedAt,
	))
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return rowsAffectedOrNotFound(r.db.Exec(ctx, `DELETE FROM skill_categories WHERE id = $1`, id))
}

func (r *PostgresCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (skill.Category, error) {
	return scanCategory(r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM skill_categories WHERE id = $1`, id))
}

func (r *PostgresCategoryRepository) FindByName(ctx context.Context, name string) (skill.Category, error) {
	return scanCategory(r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM skill_categories WHERE lower(name) = lower($1)`,
		strings.TrimSpace(name)))
}

func (r *PostgresCategoryRepository) List(ctx context.Context) ([]skill.Category, error) {
	return r.query(ctx, `SELECT `+categoryColumns+` FROM skill_categories ORDER BY lower(name) ASC, id ASC`)
}

func (r *PostgresCategoryRepository) Search(ctx context.Context, query string, limit int) ([]skill.Category, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	return r.query(ctx,
		`SELECT `+categoryColumns+` FROM skill_categories
		 WHERE name ILIKE $1 OR description ILIKE $1
		 ORDER BY lower(name) ASC, id ASC
		 LIMIT $2`,
		pattern, limit,
	)
}

func (r *PostgresCategoryRepository) ReparentChildren(ctx context.Context, from uuid.UUID, to *uuid.UUID) (int64, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE skill_categories SET parent_id = $2, updated_at = now() WHERE parent_id = $1`,
		from, to,
	)
	return n, translate(err)
}

func (r *PostgresCategoryRepository) query(ctx context.Context, sql string, args ...any) ([]skill.Category, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
