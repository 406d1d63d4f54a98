// Package validation collects field-scoped violations for request payloads.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldError is a single violation attached to a request field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is an ordered list of field errors.
type Violations []FieldError

func (v Violations) Empty() bool { return len(v) == 0 }

// Add appends a violation for field.
func (v *Violations) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Has reports whether field has at least one violation.
func (v Violations) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Basic validators
func Required(field, value string, v *Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "Required")
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so violations match the request payload.
	vd.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// Accept every form uuid.Parse accepts (upper case included) so request
	// bodies and path parameters agree on what an id is.
	_ = vd.RegisterValidation("uuid", func(fl validator.FieldLevel) bool {
		_, err := uuid.Parse(fl.Field().String())
		return err == nil
	})
	return vd
}

// Struct runs the `validate` struct tags of s and returns the violations found.
// Messages can be overridden per tag through messages (e.g. "max" -> "...").
func Struct(s any, messages map[string]string) Violations {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Violations{{Field: "", Message: err.Error()}}
	}
	out := make(Violations, 0, len(verrs))
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe, messages))
	}
	return out
}

func message(fe validator.FieldError, messages map[string]string) string {
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		return fmt.Sprintf("Must contain at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("Must contain at most %s item(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return "Invalid identifier"
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "email":
		return "Invalid email"
	case "datetime":
		return fmt.Sprintf("Must be a date formatted as %s", fe.Param())
	case "numeric":
		return "Must be a number"
	}
	return fmt.Sprintf("Failed on %s", fe.Tag())
}
