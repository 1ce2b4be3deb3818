package utils

import (
	"time"

	"citamed-service/internal/pkg/constvars"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("hhmm", validateClock)
	validate.RegisterValidation("dateiso", validateDate)
	validate.RegisterValidation("payer_class", validatePayerClass)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateClock(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len(constvars.ClockLayout) {
		return false
	}
	_, err := time.Parse(constvars.ClockLayout, value)
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len(constvars.DateLayout) {
		return false
	}
	_, err := time.Parse(constvars.DateLayout, value)
	return err == nil
}

func validatePayerClass(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == constvars.PayerClassContributivo ||
		value == constvars.PayerClassSubsidiado ||
		value == constvars.PayerClassParticular
}
