package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"property-service/internal/constants"
	"property-service/internal/contextkeys"
	"property-service/internal/contracts"
	"property-service/internal/core/port"
	usecases_port "property-service/internal/core/port/usecases_port"
	"property-service/pkg/rabbitmq/rabbitmq_common"
	"property-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// OrphanedMediaConsumerAdapter слушает media.orphaned и повторяет удаление файлов
type OrphanedMediaConsumerAdapter struct {
	consumer *rabbitmq_consumer.Consumer
	useCase  usecases_port.CleanupOrphanedMediaUseCase
	logger   port.LoggerPort
}

func NewOrphanedMediaConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.CleanupOrphanedMediaUseCase,
	baseLogger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*OrphanedMediaConsumerAdapter, error) {
	if useCase == nil {
		return nil, fmt.Errorf("rabbitmq adapter: cleanup use case cannot be nil")
	}

	adapter := &OrphanedMediaConsumerAdapter{
		useCase: useCase,
		logger:  baseLogger.WithFields(port.Fields{"component": "OrphanedMediaConsumerAdapter"}),
	}

	consumerCfg.Logger = NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_consumer"}))

	consumer, err := rabbitmq_consumer.NewConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for orphaned media: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func (a *OrphanedMediaConsumerAdapter) messageHandler(d amqp.Delivery) error {
	traceID, ok := d.Headers[constants.HeaderTraceID].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
		"message_id":   d.MessageId,
	})

	ctx := context.Background()
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	return a.handle(ctx, d, msgLogger)
}

func (a *OrphanedMediaConsumerAdapter) handle(ctx context.Context, d amqp.Delivery, msgLogger port.LoggerPort) error {
	eventType, _ := d.Headers[constants.HeaderEventType].(string)
	eventVersion, _ := d.Headers[constants.HeaderEventVersion].(string)
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return fmt.Errorf("%w: %v", rabbitmq_consumer.ErrPermanent, err)
	}

	var dto PropertyEventDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return fmt.Errorf("%w: failed to unmarshal event: %v", rabbitmq_consumer.ErrPermanent, err)
	}

	taskLogger := msgLogger.WithFields(port.Fields{
		"property_id": dto.PropertyID.String(),
		"event_id":    dto.EventID.String(),
	})
	ctx = contextkeys.ContextWithLogger(ctx, taskLogger)

	if err := a.useCase.Execute(ctx, dto.MediaURIs); err != nil {
		taskLogger.Error("Cleanup failed, message will be retried", err, nil)
		return err
	}

	taskLogger.Info("Orphaned media cleaned up", port.Fields{"uris_count": len(dto.MediaURIs)})
	return nil
}

// Start реализует EventListenerPort
func (a *OrphanedMediaConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *OrphanedMediaConsumerAdapter) Close() error {
	return a.consumer.Close()
}
