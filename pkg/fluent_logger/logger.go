package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит настройки подключения к Fluent Bit
type Config struct {
	Host      string // "127.0.0.1" или "fluent-bit" в Docker
	Port      int    // 24224 по умолчанию
	TagPrefix string // общий префикс тегов сервиса

	// Async - не блокировать запись в лог, если Fluent Bit недоступен
	Async   bool
	Timeout time.Duration
}

func (c Config) Validate() error {
	if c.TagPrefix == "" {
		return fmt.Errorf("fluentd tag prefix is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("fluentd port %d is out of range", c.Port)
	}
	return nil
}

func (c Config) clientConfig() fluent.Config {
	return fluent.Config{
		FluentHost: c.Host,
		FluentPort: c.Port,
		TagPrefix:  c.TagPrefix,
		Async:      c.Async,
		Timeout:    c.Timeout,
	}
}

// NewClient создает клиент Fluent Bit.
// Соединение не проверяется: ошибки появятся при первой отправке записи.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := fluent.New(cfg.clientConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}
	return logger, nil
}
