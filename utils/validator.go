// utils/validator.go
package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// FormatValidationErrors flattens validator errors into one message safe to
// return to the admin UI.
func FormatValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errMsg string
		for i, e := range validationErrors {
			if i > 0 {
				errMsg += "; "
			}
			switch e.Tag() {
			case "required":
				errMsg += e.Field() + " is required"
			case "uuid":
				errMsg += e.Field() + " must be a UUID"
			case "oneof":
				errMsg += e.Field() + " must be one of: " + e.Param()
			case "gte":
				errMsg += e.Field() + " must be at least " + e.Param()
			case "lte":
				errMsg += e.Field() + " must be at most " + e.Param()
			default:
				errMsg += e.Field() + " is invalid"
			}
		}
		return errMsg
	}
	return err.Error()
}
