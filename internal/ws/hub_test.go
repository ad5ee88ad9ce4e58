package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainevents "volunteer-match/internal/domain/events"
)

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case b := <-c.send:
		return b
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHub_DeliversToWatchers(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	mine := uuid.New()
	all := NewClient(h, nil, nil)
	watching := NewClient(h, nil, &mine)
	other := uuid.New()
	elsewhere := NewClient(h, nil, &other)
	h.Register(all)
	h.Register(watching)
	h.Register(elsewhere)
	require.Eventually(t, func() bool { return h.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	evt := domainevents.New(domainevents.VerificationApproved, uuid.New(), time.Now().UTC(), domainevents.WithVolunteer(mine))
	require.NoError(t, h.Handle(context.Background(), []domainevents.Event{evt}))

	var n Notification
	require.NoError(t, json.Unmarshal(receive(t, watching), &n))
	assert.Equal(t, "verification.approved", n.Type)
	assert.Equal(t, evt.ID, n.Event.ID)
	receive(t, all)

	select {
	case <-elsewhere.send:
		t.Fatal("event leaked to another volunteer's stream")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	c := NewClient(h, nil, nil)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open)
}
