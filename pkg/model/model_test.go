package model

import (
	"testing"
	"time"
)

func TestBookingUpdate_Apply(t *testing.T) {
	entry := time.Date(2021, 8, 22, 11, 30, 0, 0, time.UTC)
	base := Booking{
		ID:           "64b7f0c2a1b2c3d4e5f60718",
		ParkingLotID: "64b7f0c2a1b2c3d4e5f60719",
		EntryTime:    entry,
		ExitTime:     entry.Add(time.Hour),
		Spaces:       2,
	}

	newExit := entry.Add(3 * time.Hour)
	spaces := 5
	patch := &BookingUpdate{ExitTime: &newExit, Spaces: &spaces}

	got := patch.Apply(base)

	if !got.ExitTime.Equal(newExit) {
		t.Errorf("ExitTime = %v, want %v", got.ExitTime, newExit)
	}
	if got.Spaces != 5 {
		t.Errorf("Spaces = %d, want 5", got.Spaces)
	}
	if !got.EntryTime.Equal(entry) || got.ParkingLotID != base.ParkingLotID {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if base.Spaces != 2 {
		t.Errorf("Apply must not mutate the original booking")
	}
	if patch.IsEmpty() {
		t.Errorf("patch with fields should not be empty")
	}
	if !(&BookingUpdate{}).IsEmpty() {
		t.Errorf("zero patch should be empty")
	}
}

func TestCapacityJob_Delta(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		spaces    int
		want      int
	}{
		{"decrement at entry", DirectionDecrement, 3, -3},
		{"increment at exit", DirectionIncrement, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &CapacityJob{Direction: tt.direction, Spaces: tt.spaces}
			if got := job.Delta(); got != tt.want {
				t.Errorf("Delta() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCapacityJob_IsPending(t *testing.T) {
	for status, want := range map[string]bool{
		JobStatusScheduled: true,
		JobStatusRunning:   true,
		JobStatusCompleted: false,
		JobStatusCancelled: false,
		JobStatusFailed:    false,
	} {
		job := &CapacityJob{Status: status}
		if job.IsPending() != want {
			t.Errorf("IsPending() for %s = %v, want %v", status, job.IsPending(), want)
		}
	}
}

func TestPageOptions_Skip(t *testing.T) {
	tests := []struct {
		page, limit int
		want        int64
	}{
		{1, 10, 0},
		{0, 10, 0},
		{3, 10, 20},
		{2, 25, 25},
	}
	for _, tt := range tests {
		if got := (PageOptions{Page: tt.page, Limit: tt.limit}).Skip(); got != tt.want {
			t.Errorf("Skip(page=%d, limit=%d) = %d, want %d", tt.page, tt.limit, got, tt.want)
		}
	}
}
