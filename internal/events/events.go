package events

import (
	"context"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/model"
)

const (
	TypeBookingCreated     = "booking.created"
	TypeBookingUpdated     = "booking.updated"
	TypeBookingCancelled   = "booking.cancelled"
	TypeBookingDeleted     = "booking.deleted"
	TypeCapacityAdjusted   = "capacity.adjusted"
	TypeCapacityJobDropped = "capacity.job_dropped"

	SchemaVersion = "1"
)

// Event is a domain fact published after the state change it describes has
// been committed. Key selects the partition.
type Event struct {
	Type          string
	Key           string
	CorrelationID string
	Payload       any
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type BookingPayload struct {
	Booking    *model.Booking `json:"booking"`
	ActorID    string         `json:"actorId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

type CapacityPayload struct {
	JobID        string    `json:"jobId"`
	BookingID    string    `json:"bookingId"`
	ParkingLotID string    `json:"parkingLotId"`
	Direction    string    `json:"direction"`
	Delta        int       `json:"delta"`
	Reason       string    `json:"reason,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func BookingEvent(eventType string, b *model.Booking, actorID string) Event {
	return Event{
		Type: eventType,
		Key:  b.ID,
		Payload: BookingPayload{
			Booking:    b,
			ActorID:    actorID,
			OccurredAt: time.Now().UTC(),
		},
	}
}

func CapacityEvent(eventType string, job *model.CapacityJob, reason string) Event {
	return Event{
		Type: eventType,
		Key:  job.BookingID,
		Payload: CapacityPayload{
			JobID:        job.ID,
			BookingID:    job.BookingID,
			ParkingLotID: job.ParkingLotID,
			Direction:    job.Direction,
			Delta:        job.Delta(),
			Reason:       reason,
			OccurredAt:   time.Now().UTC(),
		},
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that accepts and discards every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

func (noopPublisher) Close() error { return nil }
