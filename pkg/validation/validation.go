// Package validation wraps go-playground/validator with the conventions the
// API uses: fields are named by their JSON tag, and every violated field is
// reported with a user-facing message instead of stopping at the first one.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "eventreg/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (64 KB).
	MaxBodySize = 64 * 1024
)

// MessageFunc returns the message for a failed (field, tag) pair; field is the JSON name.
type MessageFunc func(field, tag string) string

// New returns a validator that reports JSON field names. Callers register
// their own tags on the result.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors converts a validator error into ordered field errors.
// The validator stops at the first failing tag of each field, so there is at
// most one entry per field, in struct declaration order.
func FieldErrors(err error, message MessageFunc) []dErrors.FieldError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make([]dErrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := fe.Field()
		if field == "" {
			field = fe.StructField()
		}
		fields = append(fields, dErrors.FieldError{
			Field:   field,
			Message: message(field, fe.Tag()),
		})
	}
	return fields
}

// HasField reports whether fields already flags name.
func HasField(fields []dErrors.FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}
