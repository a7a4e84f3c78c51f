package handlers

// SendRequest тело запроса на отправку push-уведомления.
type SendRequest struct {
	UserID  string                 `json:"userId" validate:"required"`
	Title   string                 `json:"title" validate:"required"`
	Message string                 `json:"message" validate:"required"`
	Type    string                 `json:"type"`
	Data    map[string]interface{} `json:"data"`
}

// SendResponse успешный ответ.
type SendResponse struct {
	Success           bool         `json:"success"`
	Message           string       `json:"message"`
	ProviderMessageID string       `json:"providerMessageId,omitempty"`
	Data              EchoResponse `json:"data"`
}

// EchoResponse копия принятого уведомления.
type EchoResponse struct {
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse ответ с ошибкой.
type ErrorResponse struct {
	Success          bool   `json:"success"`
	Error            string `json:"error"`
	DiagnosticDetail string `json:"diagnosticDetail,omitempty"`
}

// HealthResponse ответ проверки состояния.
type HealthResponse struct {
	Status      string `json:"status"`
	Policy      string `json:"policy"`
	Dispatching bool   `json:"dispatching"`
}
