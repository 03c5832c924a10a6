package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

// Validator wraps go-playground/validator and reports failures as
// VALIDATION_FAILED domain errors.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct validates a request payload.
func (v *Validator) Struct(req any) error {
	return toValidationError(v.validate.Struct(req), "invalid request body")
}

// ID validates a resource identifier taken from the path.
func (v *Validator) ID(field, value string) error {
	if err := v.validate.Var(value, "required,uuid"); err != nil {
		return apperrors.NewValidationError("invalid "+field, map[string]any{field: "must be a uuid"})
	}
	return nil
}

func toValidationError(err error, message string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(message, nil)
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details[strings.ToLower(fe.Field())] = rule
	}
	return apperrors.NewValidationError(message, details)
}
