package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (fe FieldErrors) Add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	_, exists := fe[field]
	return exists
}

// Form is a submitted HTML form.
type Form interface {
	// Normalize trims submitted values in place
	Normalize()

	// Validate returns the field errors of a normalized form, or nil
	Validate() FieldErrors
}

// Bind maps the request onto form, normalizes it and validates it.
func Bind(c *gin.Context, form Form) FieldErrors {
	if err := c.ShouldBindWith(form, binding.Form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return FieldErrors{"form": "The form could not be read"}
		}
	}
	form.Normalize()
	return form.Validate()
}

// validateStruct runs the binding tags of form and converts failures into
// field errors keyed by the form tag.
func validateStruct(form interface{}) FieldErrors {
	errs := FieldErrors{}

	err := binding.Validator.ValidateStruct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("form", "The form could not be validated")
		return errs
	}

	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for _, fe := range verrs {
		name, label := fe.Field(), fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if tag := sf.Tag.Get("form"); tag != "" {
				name = tag
			}
			if tag := sf.Tag.Get("label"); tag != "" {
				label = tag
			}
		}
		errs.Add(name, message(label, fe))
	}

	return errs
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Enter a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "number":
		return "Choose a valid " + strings.ToLower(label)
	default:
		return label + " is invalid"
	}
}

func orNil(errs FieldErrors) FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
