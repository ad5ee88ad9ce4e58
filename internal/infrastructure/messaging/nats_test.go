package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainevents "volunteer-match/internal/domain/events"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	sent    []message
	failOn  string
	flushes int
	drained bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if subject == c.failOn {
		return errors.New("no responders")
	}
	c.sent = append(c.sent, message{subject: subject, data: data})
	return nil
}

func (c *fakeConn) FlushWithContext(context.Context) error {
	c.flushes++
	return nil
}

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

func TestNATSPublisher_Handle(t *testing.T) {
	conn := &fakeConn{}
	p := NewNATSPublisher(conn, "volunteer.skills.", nil)

	skillID := uuid.New()
	evt := domainevents.New(domainevents.VerificationApproved, uuid.New(), time.Now().UTC(), domainevents.WithSkill(skillID))
	require.NoError(t, p.Handle(context.Background(), []domainevents.Event{evt}))

	require.Len(t, conn.sent, 1)
	assert.Equal(t, "volunteer.skills.verification.approved", conn.sent[0].subject)
	assert.Equal(t, 1, conn.flushes)

	var decoded domainevents.Event
	require.NoError(t, json.Unmarshal(conn.sent[0].data, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	require.NotNil(t, decoded.SkillID)
	assert.Equal(t, skillID, *decoded.SkillID)

	require.NoError(t, p.Close())
	assert.True(t, conn.drained)
}

func TestNATSPublisher_ReportsFailures(t *testing.T) {
	conn := &fakeConn{failOn: "skills.skill.deleted"}
	p := NewNATSPublisher(conn, "", nil)

	err := p.Handle(context.Background(), []domainevents.Event{
		domainevents.New(domainevents.SkillDeleted, uuid.New(), time.Now().UTC()),
		domainevents.New(domainevents.SkillCreated, uuid.New(), time.Now().UTC()),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skill.deleted")
	assert.Len(t, conn.sent, 1)
}
