package model

import "time"

const (
	DirectionDecrement = "decrement"
	DirectionIncrement = "increment"

	JobStatusScheduled = "scheduled"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusCancelled = "cancelled"
	JobStatusFailed    = "failed"
)

// CapacityJob is a deferred change to a lot's available spaces. Jobs are
// created in pairs per booking: a decrement at entry and an increment at exit.
// Both jobs of a pair share a PairID; a booking that is modified accumulates
// one pair per revision.
type CapacityJob struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty"`
	PairID         string     `json:"pairId" bson:"pair_id"`
	BookingID      string     `json:"bookingId" bson:"booking_id"`
	ParkingLotID   string     `json:"parkingLotId" bson:"parking_lot_id"`
	Spaces         int        `json:"spaces" bson:"spaces"`
	Direction      string     `json:"direction" bson:"direction"`
	FiresAt        time.Time  `json:"firesAt" bson:"fires_at"`
	Status         string     `json:"status" bson:"status"`
	Token          string     `json:"token,omitempty" bson:"token,omitempty"`
	LeaseExpiresAt *time.Time `json:"leaseExpiresAt,omitempty" bson:"lease_expires_at,omitempty"`
	Attempts       int        `json:"attempts" bson:"attempts"`
	LastError      string     `json:"lastError,omitempty" bson:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" bson:"updated_at"`
	CompletedAt    *time.Time `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
}

// Delta is the signed change applied to available spaces when the job fires.
func (j *CapacityJob) Delta() int {
	if j.Direction == DirectionDecrement {
		return -j.Spaces
	}
	return j.Spaces
}

func (j *CapacityJob) IsPending() bool {
	return j.Status == JobStatusScheduled || j.Status == JobStatusRunning
}
