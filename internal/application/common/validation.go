package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator checks request structs before they reach the domain
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator that reports JSON field names, compares
// decimal fields numerically and knows the payment_method tag
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return valueobject.PaymentMethod(fl.Field().String()).IsValid()
	})

	return &Validator{validate: v}
}

// Validate returns a validation error listing every invalid field
func (v *Validator) Validate(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return shared.NewValidationError("INVALID_REQUEST", err.Error())
	}

	details := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, fmt.Sprintf("%s: %s", e.Field(), validationMessage(e)))
	}
	return shared.NewValidationError("INVALID_REQUEST", strings.Join(details, "; "))
}

// validationMessage returns a human-readable validation message
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "payment_method":
		return "Unknown payment method"
	default:
		return "Invalid value"
	}
}
