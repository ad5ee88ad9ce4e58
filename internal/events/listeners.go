package events

import (
	"context"

	"go.uber.org/zap"

	domainevents "volunteer-match/internal/domain/events"
)

// LogListener writes one line per event.
func LogListener(logger *zap.Logger) Listener {
	return ListenerFunc(func(_ context.Context, evts []domainevents.Event) error {
		for _, e := range evts {
			fields := []zap.Field{
				zap.String("event", string(e.Name)),
				zap.String("aggregate_id", e.AggregateID.String()),
			}
			if e.VolunteerID != nil {
				fields = append(fields, zap.String("volunteer_id", e.VolunteerID.String()))
			}
			if e.MissionID != nil {
				fields = append(fields, zap.String("mission_id", e.MissionID.String()))
			}
			if e.SkillID != nil {
				fields = append(fields, zap.String("skill_id", e.SkillID.String()))
			}
			if e.ActorID != nil {
				fields = append(fields, zap.String("actor_id", e.ActorID.String()))
			}
			logger.Info("domain event", fields...)
		}
		return nil
	})
}

type EventCounter interface {
	EventPublished(name string)
}

func MetricsListener(counter EventCounter) Listener {
	return ListenerFunc(func(_ context.Context, evts []domainevents.Event) error {
		for _, e := range evts {
			counter.EventPublished(string(e.Name))
		}
		return nil
	})
}

type Invalidator interface {
	Invalidate(ctx context.Context, pattern string) (int, error)
}

// CacheInvalidator drops every key matching pattern once per batch that
// contains an event able to change search results.
func CacheInvalidator(cache Invalidator, pattern string) Listener {
	return ListenerFunc(func(ctx context.Context, evts []domainevents.Event) error {
		for _, e := range evts {
			if e.AffectsSearch() {
				_, err := cache.Invalidate(ctx, pattern)
				return err
			}
		}
		return nil
	})
}
