package repository

import (
	"context"
	"fmt"

	"volunteer-match/internal/database"
	dbpostgres "volunteer-match/internal/database/postgres"
)

type PostgresStore struct {
	db database.DB
}

func NewPostgresStore(db database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Repos() Repositories {
	return postgresRepositories(s.db)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.Background())
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.Background())
		}
	}()

	if err = fn(ctx, postgresRepositories(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func postgresRepositories(q database.Querier) Repositories {
	return Repositories{
		Categories:      NewPostgresCategoryRepository(q),
		Skills:          NewPostgresSkillRepository(q),
		VolunteerSkills: NewPostgresVolunteerSkillRepository(q),
		Verifications:   NewPostgresVerificationRequestRepository(q),
		Requirements:    NewPostgresRequirementRepository(q),
	}
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case dbpostgres.IsNoRows(err):
		return ErrNotFound
	case dbpostgres.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrConflict, dbpostgres.ConstraintName(err))
	case dbpostgres.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", ErrReferenced, dbpostgres.ConstraintName(err))
	default:
		return err
	}
}

func rowsAffectedOrNotFound(n int64, err error) error {
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
