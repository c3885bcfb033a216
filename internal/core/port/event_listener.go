package port

import "context"

// EventListenerPort - входящий адаптер, который слушает очередь и вызывает use case
type EventListenerPort interface {
	// Start блокируется до отмены ctx или потери соединения
	Start(ctx context.Context) error

	// Close дожидается активных обработчиков
	Close() error
}
