package seeder

import (
	"context"

	"volunteer-match/internal/usecase"
)

// Target is what seeders write through. Going through the usecases keeps
// seeded rows subject to the same validation and events as API writes.
type Target struct {
	Categories usecase.CategoryUsecase
	Skills     usecase.SkillUsecase
}

type Seeder interface {
	Name() string
	Run(ctx context.Context, t Target) error
}
