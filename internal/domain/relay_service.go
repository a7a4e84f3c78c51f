package domain

import "context"

// RelayService интерфейс для пересылки уведомлений провайдеру.
type RelayService interface {
	// Relay валидирует запрос и, в зависимости от политики, отправляет его провайдеру
	Relay(ctx context.Context, req NotificationRequest) (*NotificationResult, error)
	// Dispatching сообщает, будет ли сервис обращаться к провайдеру
	Dispatching() bool
	// Policy возвращает текущую политику отправки
	Policy() DispatchPolicy
}
