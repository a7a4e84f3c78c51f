package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"PushRelay/internal/domain"
	"PushRelay/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const (
	msgMalformedPayload = "malformed payload: request body must be a JSON object"
	msgInternalError    = "internal server error"
)

type Handler struct {
	service domain.RelayService
	metrics *metrics.RelayMetrics
}

func NewHandlersSet(service domain.RelayService, m *metrics.RelayMetrics) *Handler {
	return &Handler{
		service: service,
		metrics: m,
	}
}

var validate = validator.New()

func init() {
	// В ошибках валидации используем имена полей из JSON.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// SendPushNotificationHandler принимает уведомление и пересылает его провайдеру.
func (h *Handler) SendPushNotificationHandler(c *gin.Context) {
	var req SendRequest

	raw, err := c.GetRawData()
	if err != nil {
		h.writeError(c, fmt.Errorf("read request body: %w", err))
		return
	}
	// Данные после JSON-объекта тоже считаются ошибкой формата.
	if err := json.Unmarshal(raw, &req); err != nil {
		h.writeError(c, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err))
		return
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, e := range verrs {
				fields = append(fields, e.Field())
			}
			h.writeError(c, &domain.MissingFieldsError{Fields: fields})
			return
		}
		h.writeError(c, err)
		return
	}

	res, err := h.service.Relay(c.Request.Context(), domain.NotificationRequest{
		RecipientID: req.UserID,
		Title:       req.Title,
		Body:        req.Message,
		Category:    req.Type,
		Metadata:    req.Data,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	if res.ProviderMessageID != "" || h.service.Dispatching() {
		h.metrics.RecordOutcome(metrics.OutcomeSent)
	} else {
		h.metrics.RecordOutcome(metrics.OutcomeLogged)
	}

	c.JSON(http.StatusOK, SendResponse{
		Success:           res.Succeeded,
		Message:           res.Message,
		ProviderMessageID: res.ProviderMessageID,
		Data: EchoResponse{
			UserID:    res.Echo.RecipientID,
			Title:     res.Echo.Title,
			Message:   res.Echo.Body,
			Type:      res.Echo.Category,
			Timestamp: res.Echo.IssuedAt.Format(domain.TimestampLayout),
		},
	})
}

// PreflightHandler отвечает на CORS preflight без разбора тела.
func (h *Handler) PreflightHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// HealthHandler сообщает политику отправки и доступность провайдера.
func (h *Handler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Policy:      h.service.Policy().String(),
		Dispatching: h.service.Dispatching(),
	})
}

// writeError переводит ошибку в конверт с success=false.
func (h *Handler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var missing *domain.MissingFieldsError
	var perr *domain.ProviderError

	switch {
	case errors.Is(err, domain.ErrMalformedPayload):
		h.metrics.RecordOutcome(metrics.OutcomeBadRequest)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMalformedPayload})
	case errors.As(err, &missing):
		h.metrics.RecordOutcome(metrics.OutcomeBadRequest)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: missing.Error()})
	case errors.As(err, &perr):
		h.metrics.RecordOutcome(metrics.OutcomeProviderRejected)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:            perr.Error(),
			DiagnosticDetail: fmt.Sprintf("provider responded with status %d", perr.StatusCode),
		})
	default:
		h.metrics.RecordOutcome(metrics.OutcomeInternalError)
		zlog.Logger.Error().Err(err).Msg("unexpected relay failure")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:            msgInternalError,
			DiagnosticDetail: err.Error(),
		})
	}
}
