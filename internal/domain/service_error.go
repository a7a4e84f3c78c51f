package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedPayload ошибка, когда тело запроса не является JSON-объектом.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrInvalidPolicy ошибка невалидной политики отправки.
	ErrInvalidPolicy = errors.New("invalid dispatch policy")
)

// MissingFieldsError ошибка отсутствия обязательных полей.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ProviderError ошибка, которую вернул push-провайдер.
type ProviderError struct {
	StatusCode int
	Errors     []string
}

func (e *ProviderError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("provider rejected notification: status %d", e.StatusCode)
	}
	return "provider rejected notification: " + strings.Join(e.Errors, ", ")
}
