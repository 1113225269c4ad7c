package handler

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/userdesk/userdesk/internal/i18n"
)

// validate is the shared validator instance. Custom rules mirror the
// password policy the front-end forms enforce: at least one letter, one
// digit and one special character.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "hasletter", func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), unicode.IsLetter)
	})
	mustRegister(v, "hasdigit", func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), unicode.IsDigit)
	})
	mustRegister(v, "hasspecial", func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("handler: register validation " + tag + ": " + err.Error())
	}
}

type signInPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,hasletter,hasdigit,hasspecial"`
}

type signUpPayload struct {
	Name     string `json:"name" validate:"required,min=2"`
	LastName string `json:"lastname" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,hasletter,hasdigit,hasspecial"`
}

type forgotPasswordPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type changePasswordPayload struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,hasletter,hasdigit,hasspecial"`
}

type updateProfilePayload struct {
	Name     string `json:"name" validate:"omitempty,min=2"`
	LastName string `json:"lastname" validate:"omitempty,min=2"`
}

// fieldErrors validates the payload and localizes failures per field.
// Returns nil when the payload is valid.
func fieldErrors(payload any, locale string, locales *i18n.Locales) map[string][]string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"": {locales.T(locale, "auth.validation_failed")}}
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], locales.T(locale, messageKey(fe)))
	}
	return out
}

// messageKey maps a validation failure to its catalog key.
func messageKey(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "validation.required"
	case "email":
		return "validation.email"
	case "min":
		if strings.Contains(strings.ToLower(fe.Field()), "password") {
			return "validation.password_short"
		}
		return "validation.min"
	case "hasletter", "hasdigit", "hasspecial":
		return "validation.password_weak"
	default:
		return "auth.validation_failed"
	}
}
