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

type VehicleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewVehicleValidator(log *logger.Logger) *VehicleValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	log.Debug("Vehicle validator initialized successfully")

	return &VehicleValidator{
		validate: v,
		logger:   log,
	}
}

func (v *VehicleValidator) Validate(vehicle *model.Vehicle) error {
	return v.validateStruct(vehicle)
}

func (v *VehicleValidator) ValidateUpdate(update *model.VehicleUpdate) error {
	if update.Model == nil && update.Plate == nil && update.Owner == nil {
		return ValidationErrors{{Field: "body", Message: "at least one field must be provided"}}
	}
	return v.validateStruct(update)
}

func (v *VehicleValidator) validateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", fe.Field())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: message})
	}
	return out
}
