package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on a request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages holds the user-facing text per field and rule
var fieldMessages = map[string]map[string]string{
	"experienceId": {"required": "Experience ID is required"},
	"slotId":       {"required": "Slot ID is required"},
	"userName":     {"required": "Name is required", "min": "Name must be at least 2 characters"},
	"userEmail":    {"required": "Email is required", "email": "Invalid email format"},
	"userPhone":    {"required": "Phone number is required", "min": "Phone number must be at least 10 digits"},
	"participants": {
		"required": "At least 1 participant required",
		"min":      "At least 1 participant required",
		"max":      "Maximum 10 participants allowed",
	},
	"code": {"required": "Promo code is required"},
}

// validateStruct returns nil or one FieldError per failed rule
func validateStruct(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Field() + " failed " + fe.Tag() + " validation"
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
