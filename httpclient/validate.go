package httpclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one invalid RequestOptions field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors is returned when RequestOptions fail validation.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("invalid request options: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RequestValidator checks RequestOptions before a request is built.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a RequestValidator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate returns ValidationErrors describing every invalid field of opts.
func (v *RequestValidator) Validate(opts *RequestOptions) error {
	if err := v.validate.Struct(opts); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}
		out = append(out, ValidationError{Field: err.Field(), Message: message})
	}
	return out
}
