package domain

import "context"

// PushSender интерфейс для отправки push-уведомлений провайдеру.
type PushSender interface {
	// Send отправляет уведомление и возвращает идентификатор, присвоенный провайдером.
	Send(ctx context.Context, msg *PushMessage) (string, error)
}
