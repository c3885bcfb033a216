package rabbitmq_consumer

import (
	"fmt"

	"property-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig конфигурация для потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config
	// Настройки очереди
	QueueName       string // Если пусто, имя сгенерирует сервер
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table
	// Обменник, к которому привязывается очередь (пусто - без привязки)
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	ExchangeArgsForBind    amqp.Table
	// Привязка
	RoutingKeyForBind string
	BindingArgs       amqp.Table
	// QoS
	PrefetchCount int // 0 или меньше - без ограничений
	PrefetchSize  int
	QosGlobal     bool
	// Потребитель
	ConsumerTag       string
	ExclusiveConsumer bool

	// Ретраи через wait-очередь с TTL и финальный DLX
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // миллисекунды
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("consumer: invalid base config: %w", err)
	}
	if !c.DeclareQueue && c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required if DeclareQueue is false")
	}
	if c.ExchangeNameForBind != "" && c.ExchangeTypeForBind == "" && c.DeclareExchangeForBind {
		return fmt.Errorf("consumer: exchange type is required if declaring an exchange for binding")
	}
	if c.EnableRetryMechanism {
		if c.RetryExchange == "" || c.RetryQueue == "" {
			return fmt.Errorf("consumer: retry exchange and retry queue are required when retries are enabled")
		}
		if c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("consumer: final DLX and DLQ are required when retries are enabled")
		}
		if c.ExchangeNameForBind == "" {
			return fmt.Errorf("consumer: retries require a bound exchange to return messages to")
		}
		if c.RetryTTL <= 0 {
			return fmt.Errorf("consumer: retry TTL must be positive")
		}
		if c.MaxRetries < 0 {
			return fmt.Errorf("consumer: max retries must not be negative")
		}
	}
	return nil
}
