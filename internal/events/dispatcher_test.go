package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	domainevents "volunteer-match/internal/domain/events"
)

type failureCount map[string]int

func (f failureCount) ListenerFailed(name string) { f[name]++ }

type patternSpy struct{ patterns []string }

func (p *patternSpy) Invalidate(_ context.Context, pattern string) (int, error) {
	p.patterns = append(p.patterns, pattern)
	return 0, nil
}

type counterSpy struct{ names []string }

func (c *counterSpy) EventPublished(name string) { c.names = append(c.names, name) }

func event(name domainevents.Name) domainevents.Event {
	return domainevents.New(name, uuid.New(), time.Now().UTC(), domainevents.WithSkill(uuid.New()))
}

func TestDispatcher_FailuresDoNotStopDelivery(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	failures := failureCount{}
	d := NewDispatcher(zap.New(core), failures)

	var delivered []string
	d.Register("broken", ListenerFunc(func(context.Context, []domainevents.Event) error {
		return errors.New("down")
	}))
	d.Register("panics", ListenerFunc(func(context.Context, []domainevents.Event) error {
		panic("boom")
	}))
	d.Register("ok", ListenerFunc(func(_ context.Context, evts []domainevents.Event) error {
		for _, e := range evts {
			delivered = append(delivered, string(e.Name))
		}
		return nil
	}))

	d.Publish(context.Background(), []domainevents.Event{event(domainevents.SkillCreated)})

	assert.Equal(t, []string{"skill.created"}, delivered)
	assert.Equal(t, 1, failures["broken"])
	assert.Equal(t, 1, failures["panics"])
	assert.Equal(t, 2, logs.FilterMessage("event listener failed").Len())
}

func TestDispatcher_IgnoresCancelledContext(t *testing.T) {
	d := NewDispatcher(nil, nil)
	var ctxErr error
	d.Register("probe", ListenerFunc(func(ctx context.Context, _ []domainevents.Event) error {
		ctxErr = ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Publish(ctx, []domainevents.Event{event(domainevents.SkillUpdated)})
	assert.NoError(t, ctxErr)
}

func TestCacheInvalidator(t *testing.T) {
	spy := &patternSpy{}
	l := CacheInvalidator(spy, "skills:search:*")

	require.NoError(t, l.Handle(context.Background(), []domainevents.Event{event(domainevents.CategoryCreated)}))
	assert.Empty(t, spy.patterns)

	require.NoError(t, l.Handle(context.Background(), []domainevents.Event{
		event(domainevents.VolunteerSkillAdded),
		event(domainevents.RequirementAdded),
	}))
	assert.Equal(t, []string{"skills:search:*"}, spy.patterns)
}

func TestMetricsAndLogListeners(t *testing.T) {
	counter := &counterSpy{}
	require.NoError(t, MetricsListener(counter).Handle(context.Background(), []domainevents.Event{
		event(domainevents.VerificationApproved),
	}))
	assert.Equal(t, []string{"verification.approved"}, counter.names)

	core, logs := observer.New(zap.InfoLevel)
	require.NoError(t, LogListener(zap.New(core)).Handle(context.Background(), []domainevents.Event{
		event(domainevents.SkillDeleted),
	}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "skill.deleted", logs.All()[0].ContextMap()["event"])
}
