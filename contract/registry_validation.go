package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/saurabh-7797/landnft/landerr"
)

const (
	docHashLength = 46
	docHashPrefix = "Qm"

	// Area bounds keep the normalised decimal short.
	maxAreaLength   = 32
	maxAreaScale    = 10 // Digits after the decimal point
	maxAreaExponent = 12
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegisterValidation(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegisterValidation(v, "dochash", func(fl validator.FieldLevel) bool {
		return ValidateDocumentHash(fl.Field().String()) == nil
	})
	return v
}

// mustRegisterValidation panics when a custom tag cannot be registered. It
// only runs at package init.
func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register validation tag '%s': %v", tag, err))
	}
}

// ValidateDocumentHash checks the content-hash format: exactly 46 characters
// with a "Qm" prefix.
func ValidateDocumentHash(h string) error {
	if len(h) != docHashLength {
		return landerr.ErrInvalidDocumentHashLength.Withf("expected %d characters, got %d", docHashLength, len(h))
	}
	if !strings.HasPrefix(h, docHashPrefix) {
		return landerr.ErrInvalidDocumentHashPrefix.Withf("expected prefix %q", docHashPrefix)
	}
	return nil
}

// validateInput runs the struct tags of in and maps the first failing field
// to its specific failure reason.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return landerr.ErrInvalidInput.Withf("%v", err)
	}
	fe := verrs[0]

	if fe.StructField() == "Area" {
		return landerr.ErrInvalidArea.Withf("area failed '%s'", fe.Tag())
	}

	if fe.Tag() == "dochash" {
		s, _ := fe.Value().(string)
		return ValidateDocumentHash(s)
	}
	if fe.Tag() == "notblank" {
		switch fe.StructField() {
		case "Name":
			return landerr.ErrEmptyName.Withf("name cannot be empty")
		case "NationalID":
			return landerr.ErrEmptyNationalID.Withf("national id cannot be empty")
		case "Identity", "Owner":
			return landerr.ErrZeroIdentity.Withf("%s cannot be empty", strings.ToLower(fe.StructField()))
		case "NewOwner":
			return landerr.ErrInvalidNewOwner.Withf("new owner cannot be empty")
		case "Role":
			return landerr.ErrInvalidRole.Withf("role cannot be empty")
		}
		return landerr.ErrInvalidInput.Withf("%s cannot be empty", fe.StructField())
	}
	return landerr.ErrInvalidInput.Withf("%s failed '%s=%s'", fe.StructField(), fe.Tag(), fe.Param())
}

// parseArea parses a land area as a decimal string and returns its
// normalised form. Area must be strictly positive and within the length,
// scale and exponent bounds.
func parseArea(area string) (string, error) {
	a := strings.TrimSpace(area)
	if len(a) > maxAreaLength {
		return "", landerr.ErrInvalidArea.Withf("area exceeds %d characters", maxAreaLength)
	}
	d, err := decimal.NewFromString(a)
	if err != nil {
		return "", landerr.ErrInvalidArea.Withf("'%s' is not a decimal number", a)
	}
	if exp := d.Exponent(); exp < -maxAreaScale || exp > maxAreaExponent {
		return "", landerr.ErrInvalidArea.Withf("'%s' is out of range", a)
	}
	if !d.IsPositive() {
		return "", landerr.ErrInvalidArea.Withf("area must be positive, got '%s'", a)
	}
	return d.String(), nil
}

func validateReason(reason string) (string, error) {
	r := strings.TrimSpace(reason)
	if r == "" {
		return "", landerr.ErrEmptyReason.Withf("reason cannot be empty")
	}
	if len(r) > maxReasonLength {
		return "", landerr.ErrInvalidInput.Withf("reason exceeds max length of %d", maxReasonLength)
	}
	return r, nil
}
