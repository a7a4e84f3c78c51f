package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PushRelay/internal/domain"
	"PushRelay/internal/metrics"
	"github.com/wb-go/wbf/zlog"
)

const (
	// MessageRecorded ответ, когда уведомление только залогировано.
	MessageRecorded = "notification recorded (push provider not configured)"
	// MessageSent ответ, когда уведомление принято провайдером.
	MessageSent = "notification sent via push provider"
)

// Option функция для настройки RelayService.
type Option func(*RelayService)

// WithClock задает источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *RelayService) {
		s.now = now
	}
}

// WithMetrics задает метрики обращений к провайдеру.
func WithMetrics(m *metrics.RelayMetrics) Option {
	return func(s *RelayService) {
		s.metrics = m
	}
}

type RelayService struct {
	sender      domain.PushSender
	policy      domain.DispatchPolicy
	credentials bool
	metrics     *metrics.RelayMetrics
	now         func() time.Time
}

// NewRelayService создает сервис пересылки уведомлений.
// credentials сообщает, заданы ли одновременно app id и api key провайдера.
func NewRelayService(sender domain.PushSender, policy domain.DispatchPolicy, credentials bool,
	opts ...Option) (*RelayService, error) {
	if !policy.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPolicy, policy.String())
	}
	s := &RelayService{
		sender:      sender,
		policy:      policy,
		credentials: credentials,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Dispatching() && s.sender == nil {
		return nil, errors.New("push sender is required for policy " + policy.String())
	}
	return s, nil
}

// Policy возвращает политику отправки.
func (s *RelayService) Policy() domain.DispatchPolicy {
	return s.policy
}

// Dispatching сообщает, будет ли вызван провайдер.
func (s *RelayService) Dispatching() bool {
	switch s.policy {
	case domain.PolicyAlways:
		return true
	case domain.PolicyConditional:
		return s.credentials
	default:
		return false
	}
}

func (s *RelayService) Relay(ctx context.Context, req domain.NotificationRequest) (*domain.NotificationResult, error) {
	op := "Relay:"
	if missing := req.MissingFields(); len(missing) > 0 {
		zlog.Logger.Warn().Msgf("%s missing required fields %v", op, missing)
		return nil, &domain.MissingFieldsError{Fields: missing}
	}
	req = req.WithDefaults()
	issuedAt := s.now().UTC()

	result := &domain.NotificationResult{
		Echo: domain.Echo{
			RecipientID: req.RecipientID,
			Title:       req.Title,
			Body:        req.Body,
			Category:    req.Category,
			IssuedAt:    issuedAt,
		},
	}

	if !s.Dispatching() {
		zlog.Logger.Info().
			Str("user_id", req.RecipientID).
			Str("type", req.Category).
			Str("policy", s.policy.String()).
			Msg("notification recorded, provider dispatch disabled")
		result.Succeeded = true
		result.Message = MessageRecorded
		return result, nil
	}

	msg := &domain.PushMessage{
		RecipientID: req.RecipientID,
		Title:       req.Title,
		Body:        req.Body,
		Data:        buildData(req.Metadata, req.Category, issuedAt),
	}

	start := time.Now()
	id, err := s.sender.Send(ctx, msg)
	s.metrics.ObserveProviderCall(time.Since(start))
	if err != nil {
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			zlog.Logger.Error().Int("status_code", perr.StatusCode).
				Strs("errors", perr.Errors).
				Msgf("%s provider rejected notification for %s", op, req.RecipientID)
			return nil, err
		}
		zlog.Logger.Error().Err(err).Msgf("%s failed to send notification for %s", op, req.RecipientID)
		return nil, fmt.Errorf("failed to send notification: %w", err)
	}

	zlog.Logger.Info().Str("user_id", req.RecipientID).Str("provider_id", id).
		Msg("notification sent via push provider")
	result.Succeeded = true
	result.Message = MessageSent
	result.ProviderMessageID = id
	return result, nil
}

// buildData объединяет метаданные клиента с полями type и timestamp.
// При совпадении ключей побеждают служебные поля.
func buildData(metadata map[string]interface{}, category string, issuedAt time.Time) map[string]interface{} {
	data := make(map[string]interface{}, len(metadata)+2)
	for k, v := range metadata {
		data[k] = v
	}
	data[domain.FieldCategory] = category
	data[domain.FieldTimestamp] = issuedAt.Format(domain.TimestampLayout)
	return data
}
