package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/events"
	"volunteer-match/internal/repository"
)

var ErrInternal = errors.New("internal error")

// Publisher receives the events of a unit of work once it has committed.
type Publisher interface {
	Publish(ctx context.Context, evts []events.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, []events.Event) {}

// unitOfWork runs mutations in one transaction and publishes what they
// recorded only after commit.
type unitOfWork struct {
	store repository.Store
	pub   Publisher
	now   func() time.Time
}

func newUnitOfWork(store repository.Store, pub Publisher) unitOfWork {
	if pub == nil {
		pub = nopPublisher{}
	}
	return unitOfWork{store: store, pub: pub, now: time.Now}
}

func (u unitOfWork) clock() time.Time {
	return u.now().UTC()
}

func (u unitOfWork) repos() repository.Repositories {
	return u.store.Repos()
}

func (u unitOfWork) run(ctx context.Context, fn func(ctx context.Context, r repository.Repositories, rec *events.Recorder) error) error {
	rec := &events.Recorder{}
	err := u.store.WithinTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		rec.Reset()
		return fn(ctx, r, rec)
	})
	if err != nil {
		rec.Reset()
		return err
	}
	if evts := rec.Drain(); len(evts) > 0 {
		u.pub.Publish(ctx, evts)
	}
	return nil
}

// wrap passes domain errors through untouched and marks anything else as
// internal, keeping the cause in the chain.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domainerr.As(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

// found maps a repository miss onto a NotFound domain error.
func found(err error, entity string, id any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domainerr.NotFound(entity, id)
	}
	return wrap("find "+entity, err)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
