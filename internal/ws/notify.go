package ws

import (
	"context"
	"encoding/json"
	"fmt"

	domainevents "volunteer-match/internal/domain/events"
)

type Notification struct {
	Type  string             `json:"type"`
	Event domainevents.Event `json:"event"`
}

// Handle broadcasts each event to the clients watching it. It satisfies
// the event dispatcher's listener contract.
func (h *Hub) Handle(_ context.Context, evts []domainevents.Event) error {
	if h == nil {
		return nil
	}
	for _, e := range evts {
		b, err := json.Marshal(Notification{Type: string(e.Name), Event: e})
		if err != nil {
			return fmt.Errorf("marshal %s: %w", e.Name, err)
		}
		h.Broadcast(e.VolunteerID, b)
	}
	return nil
}
