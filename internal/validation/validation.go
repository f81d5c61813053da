// Package validation wraps go-playground/validator with the field naming and messages used
// across the applicant engine and the API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ifscRegex = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// New returns a validator that reports fields by their json names and knows the "ifsc" tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return ValidIFSC(fl.Field().String())
	})
	return v
}

// ValidIFSC reports whether code looks like an Indian bank branch IFSC code.
func ValidIFSC(code string) bool {
	return ifscRegex.MatchString(code)
}

// Fields flattens validator errors into a field -> message map keyed by the json path
// without the root struct, e.g. "personal.full_name". Other errors yield nil.
func Fields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		out[key] = Message(fe)
	}
	return out
}

// Message renders one field error.
func Message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain digits only", field)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	case "ifsc":
		return "IFSC code is invalid"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
