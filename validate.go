package khata

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// check validates the struct tags of an operation input.
// All failures are reported at once, each wrapping ErrInvalidInput.
func check(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%w: %s %s", ErrInvalidInput, fe.Namespace(), describe(fe)))
	}
	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "needs at least " + fe.Param() + " element(s)"
	case "oneof":
		return "must be one of " + fe.Param()
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return "fails " + fe.Tag()
	}
}

// positive returns an error if m is not strictly positive.
func positive(field string, m Money) error {
	if !m.IsPositive() {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidInput, field, m.Plain())
	}
	return nil
}
