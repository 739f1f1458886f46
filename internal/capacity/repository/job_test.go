package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/model"
)

func TestTruncate(t *testing.T) {
	short := "lot missing"
	if got := truncate(short); got != short {
		t.Errorf("truncate(%q) = %q", short, got)
	}

	long := strings.Repeat("x", maxErrorLength+10)
	if got := truncate(long); len(got) != maxErrorLength {
		t.Errorf("expected %d bytes, got %d", maxErrorLength, len(got))
	}
}

func TestJobDocument(t *testing.T) {
	fires := time.Date(2021, 8, 22, 11, 30, 0, 0, time.FixedZone("EAT", 3*60*60))
	job := &model.CapacityJob{
		PairID:       "p1",
		BookingID:    "b1",
		ParkingLotID: "l1",
		Spaces:       2,
		Direction:    model.DirectionDecrement,
		FiresAt:      fires,
		Status:       model.JobStatusScheduled,
	}

	doc := newJobDocument(job)
	if doc.ID.IsZero() {
		t.Fatal("expected a generated id")
	}
	if doc.FiresAt.Location() != time.UTC {
		t.Errorf("expected fires_at stored in UTC, got %v", doc.FiresAt.Location())
	}

	back := doc.toModel()
	if back.ID != doc.ID.Hex() || back.BookingID != "b1" || back.PairID != "p1" || back.Delta() != -2 {
		t.Errorf("unexpected round trip: %+v", back)
	}
	if !back.FiresAt.Equal(fires) {
		t.Errorf("fires_at changed: %v != %v", back.FiresAt, fires)
	}
}
