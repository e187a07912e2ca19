// Package validator adapts go-playground/validator to echo's Validator hook.
package validator

import (
	"net/http"

	domainerrors "taskboard/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps a validator.Validate instance for echo.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates the validator used by the HTTP server.
func New() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate implements echo.Validator. Struct tag violations surface as the
// standard validation error, with the validator's detail string attached.
func (v *CustomValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.NewBaseError(
			http.StatusBadRequest,
			"VALIDATION_FAILED",
			"Input validation failed",
			err.Error(),
		)
	}

	return nil
}
