package validator

import (
	"log"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterGinValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		for tag, fn := range map[string]validator.Func{
			"nic":         nicValidator,
			"phonenumber": phoneNumberValidator,
			"password":    passwordValidator,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				log.Fatalf("register %s validator failed", tag)
			}
		}
	}
}

// Sri Lankan NIC: legacy 9 digits + V/X suffix, or the new 12 digit form.
var nicPattern = regexp.MustCompile(`^(\d{9}[VvXx]|\d{12})$`)

var nicValidator validator.Func = func(fl validator.FieldLevel) bool {
	return nicPattern.MatchString(fl.Field().String())
}

var phonePattern = regexp.MustCompile(`^0\d{9}$`)

var phoneNumberValidator validator.Func = func(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// passwordValidator enforces at least 8 characters with upper, lower,
// digit and special character classes all present.
var passwordValidator validator.Func = func(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}
