package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validator validates request DTOs using `validate` struct tags.
type Validator struct {
	v *validator.Validate
}

// New builds a validator with the custom rules the booking API needs.
// The `hhmm` rule accepts wall-clock times like "09:30".
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		return nil, fmt.Errorf("failed to register hhmm rule: %w", err)
	}
	return &Validator{v: v}, nil
}

func (val *Validator) Validate(obj interface{}) error {
	if err := val.v.Struct(obj); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("field %s failed validation on %s", e.Field(), e.Tag())
		}
		return err
	}
	return nil
}

func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmPattern.MatchString(fl.Field().String())
}
