// Package validation wraps go-playground/validator so that services can
// validate input structs declaratively (via `validate:"..."` struct tags)
// and get back the application's own error type.
//
// The validator instance is package-level and created once in init —
// validator.New caches struct metadata, so sharing one instance is both the
// documented usage and much faster than creating one per call.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/manterx/codesnip/internal/apperror"
)

var validate *validator.Validate

// displayColorRe matches the #RGB and #RRGGBB forms only. The stock
// hexcolor tag also accepts the 4- and 8-digit alpha variants, which
// catalog colors do not allow.
var displayColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func init() {
	validate = validator.New()

	// Report field names from the json tag, not the Go field name, so error
	// messages line up with what API clients actually sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("displaycolor", isDisplayColor); err != nil {
		panic(fmt.Sprintf("validation: registering displaycolor: %v", err))
	}
}

func isDisplayColor(fl validator.FieldLevel) bool {
	return displayColorRe.MatchString(fl.Field().String())
}

// Struct validates the given struct against its `validate` tags.
// Returns nil on success, or an apperror.ValidationFailed describing the
// FIRST failing field — one clear message beats a wall of them.
func Struct(data any) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		// Non-field error (e.g. passing a non-struct) — a programming bug,
		// not bad user input.
		return fmt.Errorf("validation: %w", err)
	}

	first := validationErrs[0]
	return apperror.ValidationFailed(first.Field(), message(first))
}

// message translates a validator tag failure into a human-readable sentence.
func message(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be %s characters or fewer", field, err.Param())
	case "displaycolor":
		return fmt.Sprintf("%s must be a hex color like #00ADD8 or #FFF", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, err.Tag())
	}
}
