package create_reservation

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки политики (TooSoon, OutOfWindow, SlotFull, ...) возвращаются
// как sentinel-ошибки пакета availability.

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = errors.New("create_reservation: internal error")

// FieldError нарушение правила для одного поля контактов
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors все нарушения по полям запроса
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}
