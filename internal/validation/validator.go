// Package validation provides request validation built on go-playground/validator
// plus the account rules shared by registration and password changes.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/YURESSA/foodgram-st/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator instance. Field names in errors
// follow the json tags so messages line up with request bodies.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
	})
	return validate
}

// Fields validates s and returns one message per failing field, keyed by the
// json path of the field (for example "ingredients[1].amount"). It returns nil
// when s is valid.
func Fields(s any) map[string]string {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"non_field_errors": err.Error()}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		path := fieldPath(fe)
		if _, seen := fields[path]; !seen {
			fields[path] = translateError(fe)
		}
	}
	return fields
}

// Struct validates s and wraps failures in a field validation AppError.
func Struct(s any) error {
	if fields := Fields(s); fields != nil {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var errorMessageTemplates = map[string]string{
	"required": "This field is required",
	"email":    "Enter a valid email address",
	"username": "Username may contain only letters, digits and @/./+/-/_ and must not be \"me\"",
	"password": "Password is too weak",
	"datauri":  "Expected a base64 encoded data URI",
	"numeric":  "Expected a number",
}

var errorMessageWithParam = map[string]string{
	"oneof": "Must be one of: %s",
	"gte":   "Ensure this value is greater than or equal to %s",
	"lte":   "Ensure this value is less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	tag := fe.Tag()
	if msg, ok := errorMessageTemplates[tag]; ok {
		return msg
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, fe.Param())
	}

	isString := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	switch tag {
	case "min":
		switch {
		case isString:
			return fmt.Sprintf("Ensure this field has at least %s characters", fe.Param())
		case isList:
			return fmt.Sprintf("Ensure this list has at least %s items", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s", fe.Param())
	case "max":
		switch {
		case isString:
			return fmt.Sprintf("Ensure this field has no more than %s characters", fe.Param())
		case isList:
			return fmt.Sprintf("Ensure this list has no more than %s items", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s", fe.Param())
	}
	return fmt.Sprintf("Failed %s validation", tag)
}
