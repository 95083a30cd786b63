package validator

import (
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/dental-api/pkg/errors"
)

// Validator checks `validate` struct tags and reports failures as field errors.
type Validator interface {
	Validate(interface{}) error
}

type goValidator struct {
	v *validator.Validate
}

// New builds a validator. Each valuer type is validated through its driver.Value,
// so a zero value that maps to NULL fails a required check.
func New(valuers ...driver.Valuer) Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if len(valuers) > 0 {
		types := make([]interface{}, len(valuers))
		for i, t := range valuers {
			types[i] = t
		}
		v.RegisterCustomTypeFunc(valuerValue, types...)
	}

	return &goValidator{v: v}
}

func valuerValue(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		val, err := valuer.Value()
		if err == nil {
			return val
		}
	}
	return nil
}

func (g *goValidator) Validate(obj interface{}) error {
	err := g.v.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.BadRequest("invalid input", err)
	}

	fields := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errors.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return errors.Validation(fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "e164":
		return "must be a phone number in E.164 format"
	case "ip":
		return "must be a valid IPv4 or IPv6 address"
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
