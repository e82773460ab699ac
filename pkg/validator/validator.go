package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError flattens binding errors into a single message.
func FormatValidationError(err error) string {
	fields := FieldErrors(err)
	if len(fields) == 0 {
		return err.Error()
	}

	var validationErrors validator.ValidationErrors
	errors.As(err, &validationErrors)

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, getFieldErrorMessage(fe))
	}
	return strings.Join(messages, "; ")
}

// FieldErrors maps form field names (lower case) to a human readable message.
// Non-validation errors yield an empty map.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return out
	}
	for _, fe := range validationErrors {
		key := strings.ToLower(fe.Field())
		if _, exists := out[key]; !exists {
			out[key] = getFieldErrorMessage(fe)
		}
	}
	return out
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "alphanumunicode", "excludesall":
		return fmt.Sprintf("%s contains invalid characters", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username":        "Username",
		"Email":           "Email",
		"Password":        "Password",
		"PasswordConfirm": "Password confirmation",
		"Title":           "Title",
		"Content":         "Content",
		"Technologies":    "Technologies",
		"Date":            "Date",
		"Bio":             "Bio",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
