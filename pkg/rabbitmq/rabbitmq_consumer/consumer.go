package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"property-service/pkg/rabbitmq/rabbitmq_common"
	"property-service/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение.
// Ack/Nack пакет делает сам по возвращенной ошибке.
type MessageHandler func(delivery amqp.Delivery) error

// Consumer читает очередь и запускает обработчик на каждое сообщение в отдельной горутине.
// Параллелизм ограничивается PrefetchCount.
type Consumer struct {
	config            ConsumerConfig
	handler           MessageHandler
	connection        *amqp.Connection
	channel           *amqp.Channel
	actualQueueName   string
	finalDlxPublisher *rabbitmq_producer.Publisher
	wg                sync.WaitGroup

	// mu защищает closing: wg.Add не должен пересекаться с wg.Wait в Close
	mu      sync.Mutex
	closing bool

	Logger rabbitmq_common.Logger
}

// NewConsumer объявляет всю топологию (очередь, привязку, ретраи) и возвращает готового потребителя
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	if connManager == nil {
		return nil, fmt.Errorf("consumer: connection manager is required")
	}

	c := &Consumer{
		config:  cfg,
		handler: handler,
		Logger:  logger,
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}
	c.connection = conn
	c.channel = ch
	c.Logger.Debug("Channel obtained from ConnectionManager")

	if err := c.setupTopology(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		dlxPublisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("consumer: failed to create final DLX publisher: %w", err)
		}
		c.finalDlxPublisher = dlxPublisher
	}

	return c, nil
}

func (c *Consumer) setupTopology() error {
	if c.config.PrefetchCount > 0 || c.config.PrefetchSize > 0 {
		c.Logger.Debug("Setting QoS",
			"prefetch_count", c.config.PrefetchCount,
			"prefetch_size", c.config.PrefetchSize,
			"global", c.config.QosGlobal,
		)
		if err := c.channel.Qos(c.config.PrefetchCount, c.config.PrefetchSize, c.config.QosGlobal); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	queueArgs := amqp.Table{}
	for k, v := range c.config.QueueArgs {
		queueArgs[k] = v
	}
	if c.config.EnableRetryMechanism {
		// упавшие сообщения из основной очереди уходят в retry-обменник
		queueArgs["x-dead-letter-exchange"] = c.config.RetryExchange
	}

	c.actualQueueName = c.config.QueueName
	if c.config.DeclareQueue {
		c.Logger.Debug("Declaring queue",
			"name", c.config.QueueName,
			"durable", c.config.DurableQueue,
			"exclusive", c.config.ExclusiveQueue,
			"autoDelete", c.config.AutoDeleteQueue,
		)
		q, err := c.channel.QueueDeclare(
			c.config.QueueName,
			c.config.DurableQueue,
			c.config.AutoDeleteQueue,
			c.config.ExclusiveQueue,
			false, // no-wait
			queueArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
		}
		c.actualQueueName = q.Name
	}

	if c.config.DeclareExchangeForBind {
		c.Logger.Debug("Declaring exchange",
			"name", c.config.ExchangeNameForBind,
			"type", c.config.ExchangeTypeForBind,
			"durable", c.config.DurableExchangeForBind,
		)
		err := c.channel.ExchangeDeclare(
			c.config.ExchangeNameForBind,
			c.config.ExchangeTypeForBind,
			c.config.DurableExchangeForBind,
			false, // auto-deleted
			false, // internal
			false, // no-wait
			c.config.ExchangeArgsForBind,
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s' for binding: %w", c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.ExchangeNameForBind != "" {
		c.Logger.Debug("Binding queue to exchange",
			"queue_name", c.actualQueueName,
			"exchange_name", c.config.ExchangeNameForBind,
			"routing_key", c.config.RoutingKeyForBind,
		)
		err := c.channel.QueueBind(
			c.actualQueueName,
			c.config.RoutingKeyForBind,
			c.config.ExchangeNameForBind,
			false,
			c.config.BindingArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.actualQueueName, c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.EnableRetryMechanism {
		if err := c.setupRetryTopology(); err != nil {
			return err
		}
	}

	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

func (c *Consumer) setupRetryTopology() error {
	c.Logger.Debug("Setting up retry mechanism", "retry_queue", c.config.RetryQueue, "final_dlq", c.config.FinalDLQ)

	err := c.channel.ExchangeDeclare(c.config.FinalDLXExchange, "direct", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err = c.channel.QueueDeclare(c.config.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err = c.channel.QueueBind(c.config.FinalDLQ, c.config.FinalDLQRoutingKey, c.config.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	if err = c.channel.ExchangeDeclare(c.config.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}

	// wait-очередь возвращает сообщения в основной обменник по истечении TTL
	_, err = c.channel.QueueDeclare(
		c.config.RetryQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{
			"x-message-ttl":          int32(c.config.RetryTTL),
			"x-dead-letter-exchange": c.config.ExchangeNameForBind,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}
	if err = c.channel.QueueBind(c.config.RetryQueue, "", c.config.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}
	return nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения.
// Отмена ctx - штатное завершение, возвращается nil.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(
		c.actualQueueName,
		c.config.ConsumerTag,
		false, // auto-ack
		c.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consumer %s: failed to register a consumer on queue '%s': %w", c.config.ConsumerTag, c.actualQueueName, err)
	}

	c.Logger.Info("[*] Waiting for messages on queue", "queue_name", c.actualQueueName)

	go c.dispatch(ctx, msgs)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case <-ctx.Done():
		c.Logger.Info("Context cancelled. Shutting down consumer.", "consumer_tag", c.config.ConsumerTag)
		return nil
	case amqpErr := <-notifyClose:
		c.Logger.Error(amqpErr, "Connection closed for consumer.", "consumer_tag", c.config.ConsumerTag)
		if amqpErr == nil {
			return fmt.Errorf("consumer: connection closed")
		}
		return amqpErr
	}
}

func (c *Consumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		// сначала неблокирующая проверка: после отмены новые обработчики не запускаем
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed by RabbitMQ. Exiting loop.", "consumer_tag", c.config.ConsumerTag)
				return
			}
			if ctx.Err() != nil || !c.beginHandler() {
				// сообщение вернется в очередь и будет доставлено после перезапуска
				_ = d.Nack(false, true)
				return
			}
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				c.handle(delivery)
			}(d)
		}
	}
}

// beginHandler регистрирует обработчик в wg. После Close возвращает false.
func (c *Consumer) beginHandler() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return false
	}
	c.wg.Add(1)
	return true
}

func (c *Consumer) handle(delivery amqp.Delivery) {
	c.Logger.Debug("[->] Started processing message", "delivery_tag", delivery.DeliveryTag)

	processErr := c.handler(delivery)
	if processErr == nil {
		_ = delivery.Ack(false)
		c.Logger.Debug("[+] Message Ack'd", "delivery_tag", delivery.DeliveryTag)
		return
	}

	c.Logger.Error(processErr, "Handler error for message", "delivery_tag", delivery.DeliveryTag)

	deaths := deathCount(delivery, c.actualQueueName)
	switch decideFailureAction(processErr, c.config.EnableRetryMechanism, deaths, c.config.MaxRetries) {
	case actionDrop:
		c.Logger.Info("Retry disabled. Nacking message without requeue.", "delivery_tag", delivery.DeliveryTag)
		_ = delivery.Nack(false, false)

	case actionRetry:
		c.Logger.Info("Retrying message", "delivery_tag", delivery.DeliveryTag, "death_count", deaths)
		_ = delivery.Nack(false, false)

	case actionDeadLetter:
		c.Logger.Warn("Max retries reached for message. Publishing to final DLX.", "delivery_tag", delivery.DeliveryTag)
		err := c.finalDlxPublisher.Publish(
			context.Background(),
			c.config.FinalDLQRoutingKey,
			amqp.Publishing{
				ContentType:  delivery.ContentType,
				Body:         delivery.Body,
				Headers:      delivery.Headers,
				Timestamp:    time.Now(),
				DeliveryMode: amqp.Persistent,
			},
		)
		if err != nil {
			// не смогли отправить в DLQ, пусть сообщение пройдет цикл ретрая еще раз
			c.Logger.Error(err, "Failed to publish to final DLX. Nacking to trigger retry loop again.", "delivery_tag", delivery.DeliveryTag)
			_ = delivery.Nack(false, false)
			return
		}
		_ = delivery.Ack(false)
	}
}

// Close ждет завершения запущенных обработчиков и закрывает канал
func (c *Consumer) Close() error {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()

	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()

	var firstErr error
	if c.finalDlxPublisher != nil {
		if err := c.finalDlxPublisher.Close(); err != nil {
			c.Logger.Error(err, "Error closing final DLX publisher")
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			c.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return firstErr
}
