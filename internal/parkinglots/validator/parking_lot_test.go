package validator

import (
	"errors"
	"testing"

	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/model"
)

func newValidator() *ParkingLotValidator {
	return NewParkingLotValidator(logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}))
}

func validLot() *model.ParkingLot {
	return &model.ParkingLot{
		Name:            "Sarit Centre",
		Spaces:          800,
		AvailableSpaces: 800,
		Location:        model.NewGeoPoint(36.8028, -1.2608),
		Owner:           "64b7f0c2a1b2c3d4e5f60201",
		Price:           200,
		City:            model.DefaultCity,
		Address:         "Karuna Rd, Westlands",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	out := map[string]string{}
	for _, e := range verrs {
		out[e.Field] = e.Message
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(l *model.ParkingLot)
		wantField string
	}{
		{"valid", func(l *model.ParkingLot) {}, ""},
		{"missing name", func(l *model.ParkingLot) { l.Name = "" }, "name"},
		{"zero spaces", func(l *model.ParkingLot) { l.Spaces = 0; l.AvailableSpaces = 0 }, "spaces"},
		{"available above spaces", func(l *model.ParkingLot) { l.AvailableSpaces = 801 }, "availableSpaces"},
		{"price below one", func(l *model.ParkingLot) { l.Price = 0.5 }, "price"},
		{"latitude out of range", func(l *model.ParkingLot) { l.Location = model.NewGeoPoint(36.8, -91) }, "coordinates"},
		{"not a point", func(l *model.ParkingLot) { l.Location.Type = "Polygon" }, "type"},
		{"bad owner", func(l *model.ParkingLot) { l.Owner = "vendor-1" }, "owner"},
		{"bad image url", func(l *model.ParkingLot) { l.Images = []string{"not a url"} }, "images[0]"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := validLot()
			tt.mutate(lot)
			err := v.Validate(lot)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if _, ok := fieldErrors(t, err)[tt.wantField]; !ok {
				t.Errorf("expected an error on %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newValidator()

	if _, ok := fieldErrors(t, v.ValidateUpdate(&model.ParkingLotUpdate{}))["body"]; !ok {
		t.Error("expected empty update to be rejected")
	}

	spaces := 0
	if _, ok := fieldErrors(t, v.ValidateUpdate(&model.ParkingLotUpdate{Spaces: &spaces}))["spaces"]; !ok {
		t.Error("expected spaces=0 to be rejected")
	}

	bad := model.NewGeoPoint(181, 0)
	if _, ok := fieldErrors(t, v.ValidateUpdate(&model.ParkingLotUpdate{Location: &bad}))["coordinates"]; !ok {
		t.Error("expected out of range location to be rejected")
	}

	price := 350.0
	if err := v.ValidateUpdate(&model.ParkingLotUpdate{Price: &price}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateNearby(t *testing.T) {
	v := newValidator()

	if err := v.ValidateNearby(model.NearbyQuery{Longitude: 36.8, Latitude: -1.26, MaxDistanceKm: 5}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	errs := fieldErrors(t, v.ValidateNearby(model.NearbyQuery{Longitude: 200, Latitude: -100, MaxDistanceKm: 0}))
	for _, field := range []string{"longitude", "latitude", "maxDistance"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected an error on %q", field)
		}
	}
}
