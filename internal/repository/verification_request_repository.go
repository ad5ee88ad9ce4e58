package repository

import (
	"context"
	"fmt"

	"volunteer-match/internal/database"
	"volunteer-match/internal/domain/skill"

	"github.com/google/uuid"
)

type PostgresVerificationRequestRepository struct {
	db database.Querier
}

func NewPostgresVerificationRequestRepository(db database.Querier) *PostgresVerificationRequestRepository {
	return &PostgresVerificationRequestRepository{db: db}
}

const verificationRequestSelect = `SELECT vr.id, vr.volunteer_skill_id, vr.document_ref, vr.links, vr.notes,
	vr.review_status, vr.reviewer_id, vr.review_notes, vr.admin_notes, vr.requested_at, vr.reviewed_at, vr.updated_at
	FROM verification_requests vr`

const openReviewStatuses = `('pending', 'under_review', 'needs_more_info')`

func scanVerificationRequest(row database.Row) (skill.VerificationRequest, error) {
	var vr skill.VerificationRequest
	var status string
	err := row.Scan(
		&vr.ID, &vr.VolunteerSkillID, &vr.Evidence.DocumentRef, &vr.Evidence.Links, &vr.Evidence.Notes,
		&status, &vr.ReviewerID, &vr.ReviewNotes, &vr.AdminNotes, &vr.RequestedAt, &vr.ReviewedAt, &vr.UpdatedAt,
	)
	if err != nil {
		return skill.VerificationRequest{}, translate(err)
	}
	if vr.ReviewStatus, err = skill.ParseReviewStatus(status); err != nil {
		return skill.VerificationRequest{}, fmt.Errorf("verification request %s: %w", vr.ID, err)
	}
	return vr, nil
}

func (r *PostgresVerificationRequestRepository) Create(ctx context.Context, vr skill.VerificationRequest) error {
	links := vr.Evidence.Links
	if links == nil {
		links = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO verification_requests (
			id, volunteer_skill_id, document_ref, links, notes, review_status, reviewer_id,
			review_notes, admin_notes, requested_at, reviewed_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		vr.ID, vr.VolunteerSkillID, vr.Evidence.DocumentRef, links, vr.Evidence.Notes, string(vr.ReviewStatus), vr.ReviewerID,
		vr.ReviewNotes, vr.AdminNotes, vr.RequestedAt, vr.ReviewedAt, vr.UpdatedAt,
	)
	return translate(err)
}

func (r *PostgresVerificationRequestRepository) Update(ctx context.Context, vr skill.VerificationRequest) error {
	links := vr.Evidence.Links
	if links == nil {
		links = []string{}
	}
	return rowsAffectedOrNotFound(r.db.Exec(ctx,
		`UPDATE verification_requests SET
			document_ref = $2, links = $3, notes = $4, review_status = $5, reviewer_id = $6,
			review_notes = $7, admin_notes = $8, reviewed_at = $9, updated_at = $10
		 WHERE id = $1`,
		vr.ID, vr.Evidence.DocumentRef, links, vr.Evidence.Notes, string(vr.ReviewStatus), vr.ReviewerID,
		vr.ReviewNotes, vr.AdminNotes, vr.ReviewedAt, vr.UpdatedAt,
	))
}

func (r *PostgresVerificationRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (skill.VerificationRequest, error) {
	return scanVerificationRequest(r.db.QueryRow(ctx, verificationRequestSelect+` WHERE vr.id = $1`, id))
}

func (r *PostgresVerificationRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (skill.VerificationRequest, error) {
	return scanVerificationRequest(r.db.QueryRow(ctx, verificationRequestSelect+` WHERE vr.id = $1 FOR UPDATE`, id))
}

func (r *PostgresVerificationRequestRepository) FindOpenByVolunteerSkill(ctx context.Context, volunteerSkillID uuid.UUID) (skill.VerificationRequest, error) {
	return scanVerificationRequest(r.db.QueryRow(ctx,
		verificationRequestSelect+` WHERE vr.volunteer_skill_id = $1 AND vr.review_status IN `+openReviewStatuses+`
		 ORDER BY vr.requested_at DESC LIMIT 1`,
		volunteerSkillID))
}

func (r *PostgresVerificationRequestRepository) ListByVolunteerSkill(ctx context.Context, volunteerSkillID uuid.UUID) ([]skill.VerificationRequest, error) {
	return r.query(ctx,
		verificationRequestSelect+` WHERE vr.volunteer_skill_id = $1 ORDER BY vr.requested_at DESC, vr.id ASC`,
		volunteerSkillID)
}

func (r *PostgresVerificationRequestRepository) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]skill.VerificationRequest, error) {
	return r.query(ctx,
		verificationRequestSelect+`
		 JOIN volunteer_skills vs ON vs.id = vr.volunteer_skill_id
		 WHERE vs.volunteer_id = $1
		 ORDER BY vr.requested_at DESC, vr.id ASC`,
		volunteerID)
}

func (r *PostgresVerificationRequestRepository) ListByStatus(ctx context.Context, statuses []skill.ReviewStatus, limit, offset int) ([]skill.VerificationRequest, error) {
	raw := make([]string, 0, len(statuses))
	for _, s := range statuses {
		raw = append(raw, string(s))
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return r.query(ctx,
		verificationRequestSelect+` WHERE vr.review_status = ANY($1)
		 ORDER BY vr.requested_at ASC, vr.id ASC
		 LIMIT $2 OFFSET $3`,
		raw, limit, offset)
}

func (r *PostgresVerificationRequestRepository) CountByStatus(ctx context.Context) (map[skill.ReviewStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT review_status, COUNT(*) FROM verification_requests GROUP BY review_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[skill.ReviewStatus]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[skill.ReviewStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *PostgresVerificationRequestRepository) DeleteByVolunteerSkill(ctx context.Context, volunteerSkillID uuid.UUID) (int64, error) {
	n, err := r.db.Exec(ctx, `DELETE FROM verification_requests WHERE volunteer_skill_id = $1`, volunteerSkillID)
	return n, translate(err)
}

func (r *PostgresVerificationRequestRepository) DeleteBySkill(ctx context.Context, skillID uuid.UUID) (int64, error) {
	n, err := r.db.Exec(ctx,
		`DELETE FROM verification_requests
		 WHERE volunteer_skill_id IN (SELECT id FROM volunteer_skills WHERE skill_id = $1)`,
		skillID)
	return n, translate(err)
}

func (r *PostgresVerificationRequestRepository) query(ctx context.Context, sql string, args ...any) ([]skill.VerificationRequest, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skill.VerificationRequest, 0)
	for rows.Next() {
		vr, err := scanVerificationRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, vr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
