package seeder

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Runner struct {
	Seeders []Seeder
	Log     *zap.Logger
}

func (r Runner) Run(ctx context.Context, t Target) error {
	if t.Categories == nil || t.Skills == nil {
		return fmt.Errorf("incomplete seed target")
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, t); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeder applied", zap.String("seeder", s.Name()))
	}
	return nil
}
