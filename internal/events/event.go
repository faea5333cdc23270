// internal/events/event.go
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names what happened to a registration.
type Type string

const (
	TypeSignedUp     Type = "participant.signed_up"
	TypeUnregistered Type = "participant.unregistered"
)

// Event records one successful registry mutation.
type Event struct {
	ID               string    `json:"id"`
	Type             Type      `json:"type"`
	Activity         string    `json:"activity"`
	Email            string    `json:"email"`
	ParticipantCount int       `json:"participantCount"`
	OccurredAt       time.Time `json:"occurredAt"`
}

func New(t Type, activity, email string, participantCount int) Event {
	return Event{
		ID:               uuid.NewString(),
		Type:             t,
		Activity:         activity,
		Email:            email,
		ParticipantCount: participantCount,
		OccurredAt:       time.Now().UTC(),
	}
}

// JSON encodes the event. Event holds only plain fields so this cannot fail.
func (e Event) JSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

// Variables flattens the event for process engines and stream entries.
func (e Event) Variables() map[string]interface{} {
	return map[string]interface{}{
		"eventId":          e.ID,
		"eventType":        string(e.Type),
		"activity":         e.Activity,
		"email":            e.Email,
		"participantCount": e.ParticipantCount,
		"occurredAt":       e.OccurredAt.Format(time.RFC3339Nano),
	}
}

// Sink delivers events to one downstream system.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event Event) error
}
