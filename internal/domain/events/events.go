// Package events describes what the skills engine announces after a
// transaction commits. Usecases record events while the transaction runs
// and hand them to a publisher only once it has committed.
package events

import (
	"time"

	"github.com/google/uuid"
)

type Name string

const (
	CategoryCreated    Name = "category.created"
	CategoryUpdated    Name = "category.updated"
	CategoryReparented Name = "category.reparented"
	CategoryDeleted    Name = "category.deleted"

	SkillCreated     Name = "skill.created"
	SkillUpdated     Name = "skill.updated"
	SkillActivated   Name = "skill.activated"
	SkillDeactivated Name = "skill.deactivated"
	SkillDeleted     Name = "skill.deleted"

	VolunteerSkillAdded   Name = "volunteer_skill.added"
	VolunteerSkillUpdated Name = "volunteer_skill.updated"
	VolunteerSkillRemoved Name = "volunteer_skill.removed"

	VerificationRequested     Name = "verification.requested"
	VerificationReviewStarted Name = "verification.review_started"
	VerificationApproved      Name = "verification.approved"
	VerificationRejected      Name = "verification.rejected"
	VerificationMoreInfo      Name = "verification.needs_more_info"
	VerificationResubmitted   Name = "verification.resubmitted"

	RequirementAdded   Name = "requirement.added"
	RequirementUpdated Name = "requirement.updated"
	RequirementRemoved Name = "requirement.removed"
)

type Event struct {
	ID          uuid.UUID      `json:"id"`
	Name        Name           `json:"name"`
	OccurredAt  time.Time      `json:"occurred_at"`
	AggregateID uuid.UUID      `json:"aggregate_id"`
	VolunteerID *uuid.UUID     `json:"volunteer_id,omitempty"`
	MissionID   *uuid.UUID     `json:"mission_id,omitempty"`
	SkillID     *uuid.UUID     `json:"skill_id,omitempty"`
	ActorID     *uuid.UUID     `json:"actor_id,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// AffectsSearch reports whether cached search results may be stale after e.
func (e Event) AffectsSearch() bool {
	switch e.Name {
	case CategoryCreated, CategoryUpdated, CategoryReparented:
		return false
	}
	return true
}

type Option func(*Event)

func WithVolunteer(id uuid.UUID) Option {
	return func(e *Event) { e.VolunteerID = &id }
}

func WithMission(id uuid.UUID) Option {
	return func(e *Event) { e.MissionID = &id }
}

func WithSkill(id uuid.UUID) Option {
	return func(e *Event) { e.SkillID = &id }
}

func WithActor(id uuid.UUID) Option {
	return func(e *Event) {
		if id != uuid.Nil {
			e.ActorID = &id
		}
	}
}

func WithData(key string, value any) Option {
	return func(e *Event) {
		if e.Data == nil {
			e.Data = map[string]any{}
		}
		e.Data[key] = value
	}
}

func New(name Name, aggregateID uuid.UUID, at time.Time, opts ...Option) Event {
	e := Event{
		ID:          uuid.New(),
		Name:        name,
		OccurredAt:  at.UTC(),
		AggregateID: aggregateID,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Recorder collects events inside a unit of work. It is not safe for
// concurrent use; each operation owns its own recorder.
type Recorder struct {
	pending []Event
}

func (r *Recorder) Record(e Event) {
	r.pending = append(r.pending, e)
}

// Drain returns the recorded events and resets the recorder.
func (r *Recorder) Drain() []Event {
	out := r.pending
	r.pending = nil
	return out
}

// Reset discards recorded events, used when a transaction rolls back.
func (r *Recorder) Reset() {
	r.pending = nil
}
