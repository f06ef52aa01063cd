package create_reservation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phoneRegex     = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	phoneSeparator = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// contactInput поля, которые проверяет validator
type contactInput struct {
	CustomerName    string  `validate:"required,min=2,max=100"`
	CustomerEmail   string  `validate:"required,email,max=254"`
	CustomerPhone   string  `validate:"required,phone"`
	SpecialRequests *string `validate:"omitempty,max=500"`
}

// fieldNames имена полей в ответе API
var fieldNames = map[string]string{
	"CustomerName":    "customerName",
	"CustomerEmail":   "customerEmail",
	"CustomerPhone":   "customerPhone",
	"SpecialRequests": "specialRequests",
}

// ContactValidator проверяет контактные данные гостя
type ContactValidator struct {
	validate *validator.Validate
}

// NewContactValidator создает валидатор с правилом "phone"
func NewContactValidator() *ContactValidator {
	v := validator.New()
	// Ошибка возможна только при пустом теге или nil функции
	_ = v.RegisterValidation("phone", validatePhone)
	return &ContactValidator{validate: v}
}

// validatePhone номер в форме, близкой к E.164; пробелы, дефисы, точки и скобки допускаются
func validatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(NormalizePhone(fl.Field().String()))
}

// NormalizePhone убирает разделители из номера
func NormalizePhone(phone string) string {
	return phoneSeparator.Replace(strings.TrimSpace(phone))
}

// Validate возвращает ValidationErrors со всеми нарушениями
func (v *ContactValidator) Validate(req *Request) error {
	input := contactInput{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   req.CustomerPhone,
		SpecialRequests: req.SpecialRequests,
	}

	if err := v.validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	result := make(ValidationErrors, 0, len(errs))
	for _, e := range errs {
		field := fieldNames[e.Field()]
		if field == "" {
			field = e.Field()
		}
		result = append(result, FieldError{Field: field, Message: messageFor(e)})
	}
	return result
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number, e.g. +15551234567"
	default:
		return fmt.Sprintf("failed on '%s' validation", e.Tag())
	}
}
