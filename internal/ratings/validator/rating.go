package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string
	Message string
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, e := range v {
		details[e.Field] = e.Message
	}
	return details
}

type RatingValidator struct {
	validate *validator.Validate
}

func NewRatingValidator() *RatingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &RatingValidator{validate: v}
}

func (v *RatingValidator) Validate(rating *model.Rating) error {
	return v.check(rating)
}

func (v *RatingValidator) ValidateUpdate(update *model.RatingUpdate) error {
	return v.check(update)
}

func (v *RatingValidator) check(target any) error {
	err := v.validate.Struct(target)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", fe.Field())
		case "min", "max":
			msg = fmt.Sprintf("%s must be between 1 and 5", fe.Field())
		case "mongodb":
			msg = fmt.Sprintf("%s must be a valid MongoDB ObjectID", fe.Field())
		default:
			msg = fe.Error()
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
