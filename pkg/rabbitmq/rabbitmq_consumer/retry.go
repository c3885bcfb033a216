package rabbitmq_consumer

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPermanent помечает ошибку, которую повтор не исправит (битое сообщение).
// Такое сообщение сразу уходит в финальный DLQ.
var ErrPermanent = errors.New("permanent message failure")

// failureAction - что делать с сообщением, обработчик которого вернул ошибку
type failureAction int

const (
	actionDrop       failureAction = iota // Nack без requeue, ретраи выключены
	actionRetry                           // Nack без requeue, сообщение уйдет в wait-очередь
	actionDeadLetter                      // публикация в финальный DLX и Ack оригинала
)

func decideFailureAction(err error, retryEnabled bool, deathCount int64, maxRetries int) failureAction {
	if !retryEnabled {
		return actionDrop
	}
	if errors.Is(err, ErrPermanent) {
		return actionDeadLetter
	}
	if deathCount < int64(maxRetries) {
		return actionRetry
	}
	return actionDeadLetter
}

// deathCount - сколько раз сообщение умирало в указанной очереди (по заголовку x-death)
func deathCount(d amqp.Delivery, queueName string) int64 {
	if d.Headers == nil {
		return 0
	}
	deaths, ok := d.Headers["x-death"].([]interface{})
	if !ok {
		return 0
	}

	// в x-death есть и записи retry-очереди, считаем только основную
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, ok := tbl["queue"].(string); ok && queue == queueName {
			if count, ok := tbl["count"].(int64); ok {
				return count
			}
		}
	}
	return 0
}
