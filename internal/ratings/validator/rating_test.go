package validator

import (
	"errors"
	"testing"

	"github.com/Developer-Square/Park254-Backend/pkg/model"
)

func TestValidate(t *testing.T) {
	v := NewRatingValidator()

	tests := []struct {
		name      string
		rating    model.Rating
		wantField string
	}{
		{"valid", model.Rating{UserID: "64b7f0c2a1b2c3d4e5f60101", ParkingLotID: "64b7f0c2a1b2c3d4e5f60001", Value: 5}, ""},
		{"value too high", model.Rating{UserID: "64b7f0c2a1b2c3d4e5f60101", ParkingLotID: "64b7f0c2a1b2c3d4e5f60001", Value: 6}, "value"},
		{"missing value", model.Rating{UserID: "64b7f0c2a1b2c3d4e5f60101", ParkingLotID: "64b7f0c2a1b2c3d4e5f60001"}, "value"},
		{"bad lot id", model.Rating{UserID: "64b7f0c2a1b2c3d4e5f60101", ParkingLotID: "lot-1", Value: 3}, "parkingLotId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.rating)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := verrs.Details()[tt.wantField]; !ok {
				t.Errorf("expected error on %s, got %v", tt.wantField, verrs.Details())
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewRatingValidator()
	valid, tooLow := 3, 0

	if err := v.ValidateUpdate(&model.RatingUpdate{Value: &valid}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for name, update := range map[string]model.RatingUpdate{
		"missing value": {},
		"value too low": {Value: &tooLow},
	} {
		var verrs ValidationErrors
		if err := v.ValidateUpdate(&update); !errors.As(err, &verrs) {
			t.Fatalf("%s: expected ValidationErrors, got %v", name, err)
		}
		if _, ok := verrs.Details()["value"]; !ok {
			t.Errorf("%s: expected error on value, got %v", name, verrs.Details())
		}
	}
}
