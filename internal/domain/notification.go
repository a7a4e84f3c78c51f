package domain

import "time"

// DefaultCategory подставляется, когда тип уведомления не указан.
const DefaultCategory = "general"

// DispatchPolicy определяет, когда уведомление отправляется провайдеру.
type DispatchPolicy string

// String возвращает строковое представление политики.
func (p DispatchPolicy) String() string {
	return string(p)
}

// IsValid проверяет, является ли политика валидной.
func (p DispatchPolicy) IsValid() bool {
	switch p {
	case PolicyLogOnly, PolicyAlways, PolicyConditional:
		return true
	default:
		return false
	}
}

const (
	// PolicyLogOnly только логирует уведомление, провайдер не вызывается.
	PolicyLogOnly DispatchPolicy = "log_only"
	// PolicyAlways всегда вызывает провайдера.
	PolicyAlways DispatchPolicy = "always"
	// PolicyConditional вызывает провайдера, только если заданы app id и api key.
	PolicyConditional DispatchPolicy = "conditional"
)

// NotificationRequest входящий запрос на push-уведомление.
type NotificationRequest struct {
	RecipientID string
	Title       string
	Body        string
	Category    string
	Metadata    map[string]interface{}
}

// WithDefaults возвращает копию запроса с подставленными значениями по умолчанию.
func (r NotificationRequest) WithDefaults() NotificationRequest {
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	if r.Metadata == nil {
		r.Metadata = map[string]interface{}{}
	}
	return r
}

// MissingFields возвращает имена незаполненных обязательных полей.
func (r NotificationRequest) MissingFields() []string {
	var missing []string
	if r.RecipientID == "" {
		missing = append(missing, FieldRecipientID)
	}
	if r.Title == "" {
		missing = append(missing, FieldTitle)
	}
	if r.Body == "" {
		missing = append(missing, FieldBody)
	}
	return missing
}

// Echo копия принятого уведомления, возвращаемая клиенту.
type Echo struct {
	RecipientID string
	Title       string
	Body        string
	Category    string
	IssuedAt    time.Time
}

// NotificationResult нормализованный результат обработки запроса.
type NotificationResult struct {
	Succeeded         bool
	Message           string
	ProviderMessageID string
	Echo              Echo
}

// PushMessage сообщение, передаваемое провайдеру.
type PushMessage struct {
	RecipientID string
	Title       string
	Body        string
	Data        map[string]interface{}
}

// Имена полей во входящем JSON.
const (
	FieldRecipientID = "userId"
	FieldTitle       = "title"
	FieldBody        = "message"
	FieldCategory    = "type"
	FieldTimestamp   = "timestamp"
)

// TimestampLayout формат ISO-8601 с миллисекундами в UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
