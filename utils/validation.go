package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance used by the request validators.
var Validate = validator.New()

// FormatValidationErrors converts validator errors to a field->message map
// suitable for the uniform validation error envelope.
func FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field := strings.ToLower(e.Field())
			switch e.Tag() {
			case "required":
				errors[field] = fmt.Sprintf("%s is required!", e.Field())
			case "email":
				errors[field] = "Invalid email format!"
			case "min":
				errors[field] = fmt.Sprintf("%s must be at least %s characters long!", e.Field(), e.Param())
			case "max":
				errors[field] = fmt.Sprintf("%s must be at most %s characters long!", e.Field(), e.Param())
			case "gt":
				errors[field] = fmt.Sprintf("%s must be greater than %s!", e.Field(), e.Param())
			case "oneof":
				errors[field] = fmt.Sprintf("%s must be one of: %s!", e.Field(), e.Param())
			default:
				errors[field] = fmt.Sprintf("%s is invalid!", e.Field())
			}
		}
	}

	return errors
}
