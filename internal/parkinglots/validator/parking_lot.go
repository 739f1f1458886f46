package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type ParkingLotValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewParkingLotValidator(log *logger.Logger) *ParkingLotValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("lng_lat", validateLngLat); err != nil {
		log.Fatal("Failed to register 'lng_lat' validator", "error", err)
	}

	log.Debug("Parking lot validator initialized successfully")

	return &ParkingLotValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ParkingLotValidator) Validate(lot *model.ParkingLot) error {
	return v.validateStruct(lot)
}

func (v *ParkingLotValidator) ValidateUpdate(update *model.ParkingLotUpdate) error {
	if isEmptyUpdate(update) {
		return ValidationErrors{{Field: "body", Message: "at least one field must be provided"}}
	}
	return v.validateStruct(update)
}

// ValidateNearby checks a proximity query's coordinates and radius.
func (v *ParkingLotValidator) ValidateNearby(query model.NearbyQuery) error {
	var errs ValidationErrors
	if query.Longitude < -180 || query.Longitude > 180 {
		errs = append(errs, ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"})
	}
	if query.Latitude < -90 || query.Latitude > 90 {
		errs = append(errs, ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"})
	}
	if query.MaxDistanceKm <= 0 {
		errs = append(errs, ValidationError{Field: "maxDistance", Message: "maxDistance must be positive"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ParkingLotValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ParkingLotValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min", "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "ltefield":
			message = fmt.Sprintf("%s cannot exceed %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "eq":
			message = fmt.Sprintf("%s must be %s", err.Field(), err.Param())
		case "len", "lng_lat":
			message = fmt.Sprintf("%s must be [longitude, latitude] within valid ranges", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// validateLngLat accepts a [longitude, latitude] pair within WGS84 bounds.
func validateLngLat(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice || field.Len() != 2 {
		return false
	}
	lng, lat := field.Index(0).Float(), field.Index(1).Float()
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

func isEmptyUpdate(u *model.ParkingLotUpdate) bool {
	return u.Name == nil && u.Spaces == nil && u.Images == nil && u.Location == nil &&
		u.Price == nil && u.City == nil && u.Address == nil
}
