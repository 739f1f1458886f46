package validator

import (
	"errors"
	"testing"

	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/model"
)

func newValidator() *VehicleValidator {
	return NewVehicleValidator(logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}))
}

func TestValidate(t *testing.T) {
	v := newValidator()
	owner := "64b7f0c2a1b2c3d4e5f60101"

	tests := []struct {
		name      string
		vehicle   model.Vehicle
		wantField string
	}{
		{"valid", model.Vehicle{Model: "Toyota Axio", Plate: "KCA 123A", Owner: owner}, ""},
		{"missing plate", model.Vehicle{Model: "Toyota Axio", Owner: owner}, "plate"},
		{"missing model", model.Vehicle{Plate: "KCA 123A", Owner: owner}, "model"},
		{"bad owner", model.Vehicle{Model: "Toyota Axio", Plate: "KCA 123A", Owner: "me"}, "owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.vehicle)
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

func TestValidateUpdate_RequiresAField(t *testing.T) {
	v := newValidator()

	var verrs ValidationErrors
	if err := v.ValidateUpdate(&model.VehicleUpdate{}); !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if _, ok := verrs.Details()["body"]; !ok {
		t.Errorf("expected body error, got %v", verrs.Details())
	}

	owner := "not-an-id"
	if err := v.ValidateUpdate(&model.VehicleUpdate{Owner: &owner}); err == nil {
		t.Error("expected owner to be rejected")
	}
}
