package rabbitmq_consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"property-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestDeathCount(t *testing.T) {
	const queue = "media.orphaned.cleanup"

	tests := []struct {
		name    string
		headers amqp.Table
		want    int64
	}{
		{name: "no headers", headers: nil, want: 0},
		{name: "no x-death", headers: amqp.Table{"x-trace-id": "abc"}, want: 0},
		{name: "wrong type", headers: amqp.Table{"x-death": "oops"}, want: 0},
		{
			name: "counts only main queue",
			headers: amqp.Table{"x-death": []interface{}{
				amqp.Table{"queue": queue + ".wait", "count": int64(7)},
				amqp.Table{"queue": queue, "count": int64(2)},
			}},
			want: 2,
		},
		{
			name:    "other queue only",
			headers: amqp.Table{"x-death": []interface{}{amqp.Table{"queue": "other", "count": int64(3)}}},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deathCount(amqp.Delivery{Headers: tt.headers}, queue)
			if got != tt.want {
				t.Errorf("deathCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecideFailureAction(t *testing.T) {
	transient := errors.New("disk busy")
	permanent := fmt.Errorf("schema violation: %w", ErrPermanent)

	tests := []struct {
		name    string
		err     error
		enabled bool
		deaths  int64
		max     int
		want    failureAction
	}{
		{name: "retries disabled", err: transient, enabled: false, max: 3, want: actionDrop},
		{name: "below limit", err: transient, enabled: true, deaths: 2, max: 3, want: actionRetry},
		{name: "limit reached", err: transient, enabled: true, deaths: 3, max: 3, want: actionDeadLetter},
		{name: "zero retries", err: transient, enabled: true, max: 0, want: actionDeadLetter},
		{name: "permanent skips retries", err: permanent, enabled: true, max: 3, want: actionDeadLetter},
		{name: "permanent without retries", err: permanent, enabled: false, max: 3, want: actionDrop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decideFailureAction(tt.err, tt.enabled, tt.deaths, tt.max); got != tt.want {
				t.Errorf("decideFailureAction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConsumerConfig_Validate(t *testing.T) {
	base := rabbitmq_common.Config{URL: "amqp://localhost/"}
	retry := ConsumerConfig{
		Config:               base,
		QueueName:            "q",
		DeclareQueue:         true,
		ExchangeNameForBind:  "property.events",
		EnableRetryMechanism: true,
		RetryExchange:        "q.retry",
		RetryQueue:           "q.wait",
		RetryTTL:             5000,
		FinalDLXExchange:     "q.dlx",
		FinalDLQ:             "q.dlq",
		MaxRetries:           3,
	}

	if err := retry.validate(); err != nil {
		t.Fatalf("valid retry config rejected: %v", err)
	}

	noQueue := ConsumerConfig{Config: base}
	if err := noQueue.validate(); err == nil {
		t.Error("expected error for missing queue name")
	}

	noTTL := retry
	noTTL.RetryTTL = 0
	if err := noTTL.validate(); err == nil {
		t.Error("expected error for zero retry TTL")
	}

	noBind := retry
	noBind.ExchangeNameForBind = ""
	if err := noBind.validate(); err == nil {
		t.Error("expected error for retries without bound exchange")
	}

	noType := ConsumerConfig{Config: base, QueueName: "q", ExchangeNameForBind: "x", DeclareExchangeForBind: true}
	if err := noType.validate(); err == nil {
		t.Error("expected error for declared exchange without type")
	}
}

type recordingAcknowledger struct {
	mu       sync.Mutex
	acked    []uint64
	requeued []uint64
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if requeue {
		a.requeued = append(a.requeued, tag)
	}
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestDispatch_AfterCloseRequeuesWithoutHandling(t *testing.T) {
	handled := 0
	c := &Consumer{
		handler: func(amqp.Delivery) error { handled++; return nil },
		Logger:  rabbitmq_common.NewNoopLogger(),
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.beginHandler() {
		t.Fatal("no handler may start after Close")
	}

	ack := &recordingAcknowledger{}
	msgs := make(chan amqp.Delivery, 1)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 7}

	c.dispatch(context.Background(), msgs)

	if handled != 0 {
		t.Fatalf("handler must not run after Close, ran %d times", handled)
	}
	if len(ack.requeued) != 1 || ack.requeued[0] != 7 {
		t.Fatalf("delivery must be requeued, got %v", ack.requeued)
	}
}

func TestDispatch_HandlesUntilChannelCloses(t *testing.T) {
	var mu sync.Mutex
	handled := 0
	c := &Consumer{
		handler: func(amqp.Delivery) error {
			mu.Lock()
			handled++
			mu.Unlock()
			return nil
		},
		Logger: rabbitmq_common.NewNoopLogger(),
	}

	ack := &recordingAcknowledger{}
	msgs := make(chan amqp.Delivery, 3)
	for tag := uint64(1); tag <= 3; tag++ {
		msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: tag}
	}
	close(msgs)

	c.dispatch(context.Background(), msgs)
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if handled != 3 || len(ack.acked) != 3 {
		t.Fatalf("expected 3 handled and acked messages, got %d handled, %d acked", handled, len(ack.acked))
	}
}
