package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validate returns the shared validator; struct rules use the `validate` tag.
func Validate() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates v and returns a readable error, or nil.
func Struct(v any) error {
	if err := Validate().Struct(v); err != nil {
		return errors.New(GetErrorMsg(err))
	}
	return nil
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Namespace()
			tag := e.Tag()
			param := e.Param()

			switch tag {
			case "required", "required_if":
				errMsgs = append(errMsgs, fmt.Sprintf("%s is required", field))
			case "min":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must be at least %s", field, param))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must be at most %s", field, param))
			case "oneof":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must be one of [%s]", field, param))
			case "gtefield":
				errMsgs = append(errMsgs, fmt.Sprintf("%s must not be less than %s", field, param))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s failed validation (%s)", field, tag))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "invalid request: " + err.Error()
}
