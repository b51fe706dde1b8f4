// internal/loan/validate-application/validator.go
package validateapplication

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"loan-approval-client/internal/models"
	"loan-approval-client/pkg/registry"
)

const formOptionTag = "formoption"

var validate = newValidator()

type registryKey struct{}

func registryFrom(ctx context.Context) *registry.FormRegistry {
	if reg, ok := ctx.Value(registryKey{}).(*registry.FormRegistry); ok && reg != nil {
		return reg
	}
	return registry.Default()
}

// isFormOption accepts values listed in the registry section named by the tag parameter.
func isFormOption(ctx context.Context, fl validator.FieldLevel) bool {
	opts, err := registryFrom(ctx).Section(fl.Param())
	if err != nil {
		return false
	}
	value := fl.Field().String()
	for _, o := range *opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidationCtx(formOptionTag, isFormOption); err != nil {
		panic(err)
	}
	// report fields by their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks app against the built-in form options.
func Validate(app models.LoanApplication) ValidationErrors {
	return ValidateWith(app, registry.Default())
}

// ValidateWith checks every required field of app and returns one message per
// failing field. Employment type and income source must be values offered by reg.
// Optional fields (existing_loans, emi_existing, language) never produce an error.
func ValidateWith(app models.LoanApplication, reg *registry.FormRegistry) ValidationErrors {
	errs := ValidationErrors{}
	if reg == nil {
		reg = registry.Default()
	}

	err := validate.StructCtx(context.WithValue(context.Background(), registryKey{}, reg), app)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// only reachable with a non-struct argument
		errs["_"] = err.Error()
		return errs
	}

	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = messageFor(field, fe, reg)
	}
	return errs
}

func messageFor(field string, fe validator.FieldError, reg *registry.FormRegistry) string {
	if fe.Tag() == formOptionTag {
		if opts, err := reg.Section(fe.Param()); err == nil {
			return fmt.Sprintf("%s must be one of: %s", label(field), strings.Join(registry.Values(*opts), ", "))
		}
	}
	if msg := Message(field); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s is invalid", label(field))
}

func label(field string) string {
	switch field {
	case models.FieldEmploymentType:
		return "Employment type"
	case models.FieldIncomeSource:
		return "Income source"
	}
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
