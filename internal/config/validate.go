package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists every problem found in a Config, one entry per field.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their TOML key.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate returns a *ValidationError describing every invalid field, or nil.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fieldPath(fe)+": "+friendlyMessage(fe))
	}
	return &ValidationError{Problems: problems}
}

// fieldPath drops the root struct name, e.g. "Config.server.port" becomes
// "server.port".
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Namespace()
	}
	return path
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_if", "required_unless", "required_with":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s; got %q", strings.ReplaceAll(fe.Param(), " ", ", "), fmt.Sprint(fe.Value()))
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must not exceed " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "cidr|ip":
		return fmt.Sprintf("must be an IP address or CIDR range; got %q", fmt.Sprint(fe.Value()))
	case "url":
		return fmt.Sprintf("must be a valid URL; got %q", fmt.Sprint(fe.Value()))
	default:
		return "failed " + fe.Tag() + " check"
	}
}
