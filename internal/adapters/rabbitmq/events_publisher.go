package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"property-service/internal/constants"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// MessagePublisher - то, что адаптеру нужно от rabbitmq_producer.Publisher
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// PropertyEventsPublisher публикует доменные события, routing key = тип события
type PropertyEventsPublisher struct {
	producer MessagePublisher
}

func NewPropertyEventsPublisher(producer MessagePublisher) (*PropertyEventsPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &PropertyEventsPublisher{producer: producer}, nil
}

func (a *PropertyEventsPublisher) Publish(ctx context.Context, event domain.PropertyEvent) error {
	routingKey := string(event.Type)
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "PropertyEventsPublisher",
		"routing_key": routingKey,
		"property_id": event.PropertyID.String(),
	})

	dto := toEventDTO(event)
	body, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal event: %w", err)
	}

	eventType, eventVersion := schemaHeaders(event.Type)
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    dto.EventID.String(),
		Headers: amqp.Table{
			constants.HeaderEventType:    eventType,
			constants.HeaderEventVersion: eventVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	// запрос клиента мог уже завершиться, событие публикуем со своим таймаутом
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s for property %s: %w", routingKey, event.PropertyID, err)
	}

	adapterLogger.Debug("Event published", port.Fields{"event_id": dto.EventID.String()})
	return nil
}

// NoopEventsPublisher используется, когда RabbitMQ выключен
type NoopEventsPublisher struct {
	logger port.LoggerPort
}

func NewNoopEventsPublisher(logger port.LoggerPort) *NoopEventsPublisher {
	return &NoopEventsPublisher{logger: logger}
}

func (n *NoopEventsPublisher) Publish(ctx context.Context, event domain.PropertyEvent) error {
	if n.logger != nil {
		n.logger.Debug("Event publishing is disabled, event dropped", port.Fields{
			"event_type":  string(event.Type),
			"property_id": event.PropertyID.String(),
		})
	}
	return nil
}
