package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"property-service/internal/constants"
	"property-service/internal/contextkeys"
	"property-service/internal/contracts"
	"property-service/internal/core/domain"
	"property-service/pkg/rabbitmq/rabbitmq_consumer"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type capturedMessage struct {
	routingKey string
	msg        amqp.Publishing
	deadline   bool
}

type fakeProducer struct {
	published []capturedMessage
	err       error
}

func (p *fakeProducer) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	_, hasDeadline := ctx.Deadline()
	p.published = append(p.published, capturedMessage{routingKey: routingKey, msg: msg, deadline: hasDeadline})
	return p.err
}

func sampleEvent(t domain.PropertyEventType, media []string) domain.PropertyEvent {
	return domain.PropertyEvent{
		Type:       t,
		PropertyID: uuid.New(),
		OwnerID:    uuid.New(),
		MediaURIs:  media,
		OccurredAt: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
	}
}

func TestPropertyEventsPublisher_Publish(t *testing.T) {
	producer := &fakeProducer{}
	pub, err := NewPropertyEventsPublisher(producer)
	if err != nil {
		t.Fatal(err)
	}

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-42")
	event := sampleEvent(domain.EventPropertyCreated, nil)
	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(producer.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.published))
	}
	got := producer.published[0]
	if got.routingKey != constants.RoutingKeyPropertyCreated {
		t.Errorf("routing key = %q", got.routingKey)
	}
	if !got.deadline {
		t.Error("publish must run with a timeout")
	}
	if got.msg.DeliveryMode != amqp.Persistent || got.msg.ContentType != "application/json" {
		t.Errorf("unexpected message properties: %+v", got.msg)
	}
	if got.msg.Headers[constants.HeaderTraceID] != "trace-42" {
		t.Errorf("trace id header = %v", got.msg.Headers[constants.HeaderTraceID])
	}

	eventType := got.msg.Headers[constants.HeaderEventType].(string)
	eventVersion := got.msg.Headers[constants.HeaderEventVersion].(string)
	if err := contracts.ValidateEvent(eventType, eventVersion, got.msg.Body); err != nil {
		t.Fatalf("published body does not match its schema: %v", err)
	}

	var dto PropertyEventDTO
	if err := json.Unmarshal(got.msg.Body, &dto); err != nil {
		t.Fatal(err)
	}
	if dto.PropertyID != event.PropertyID || dto.MediaURIs == nil || len(dto.MediaURIs) != 0 {
		t.Errorf("unexpected body: %+v", dto)
	}
	if got.msg.MessageId != dto.EventID.String() {
		t.Error("message id must equal event id")
	}
}

func TestPropertyEventsPublisher_OrphanedUsesItsSchema(t *testing.T) {
	producer := &fakeProducer{}
	pub, _ := NewPropertyEventsPublisher(producer)

	if err := pub.Publish(context.Background(), sampleEvent(domain.EventMediaOrphaned, []string{"http://localhost:5000/uploads/a.jpg"})); err != nil {
		t.Fatal(err)
	}
	msg := producer.published[0].msg
	if msg.Headers[constants.HeaderEventType] != "MediaOrphanedEvent" {
		t.Fatalf("event-type header = %v", msg.Headers[constants.HeaderEventType])
	}
	if err := contracts.ValidateEvent("MediaOrphanedEvent", "1.0.0", msg.Body); err != nil {
		t.Fatalf("orphaned body does not match its schema: %v", err)
	}
}

func TestPropertyEventsPublisher_ErrorIsWrapped(t *testing.T) {
	broker := errors.New("channel closed")
	pub, _ := NewPropertyEventsPublisher(&fakeProducer{err: broker})

	err := pub.Publish(context.Background(), sampleEvent(domain.EventPropertyDeleted, nil))
	if !errors.Is(err, broker) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestNewPropertyEventsPublisher_RequiresProducer(t *testing.T) {
	if _, err := NewPropertyEventsPublisher(nil); err == nil {
		t.Fatal("expected error")
	}
}

type fakeCleanup struct {
	calls [][]string
	err   error
}

func (f *fakeCleanup) Execute(ctx context.Context, uris []string) error {
	f.calls = append(f.calls, uris)
	return f.err
}

func orphanedDelivery(t *testing.T, uris []string) amqp.Delivery {
	t.Helper()
	producer := &fakeProducer{}
	pub, _ := NewPropertyEventsPublisher(producer)
	if err := pub.Publish(context.Background(), sampleEvent(domain.EventMediaOrphaned, uris)); err != nil {
		t.Fatal(err)
	}
	msg := producer.published[0].msg
	return amqp.Delivery{Headers: msg.Headers, Body: msg.Body, MessageId: msg.MessageId}
}

func TestOrphanedMediaConsumer_CallsUseCase(t *testing.T) {
	uc := &fakeCleanup{}
	adapter := &OrphanedMediaConsumerAdapter{useCase: uc, logger: contextkeys.LoggerFromContext(context.Background())}

	uris := []string{"http://localhost:5000/uploads/a.jpg", "http://localhost:5000/uploads/b.jpg"}
	if err := adapter.messageHandler(orphanedDelivery(t, uris)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uc.calls) != 1 || !reflect.DeepEqual(uc.calls[0], uris) {
		t.Fatalf("use case calls = %v", uc.calls)
	}
}

func TestOrphanedMediaConsumer_UseCaseErrorIsRetryable(t *testing.T) {
	uc := &fakeCleanup{err: errors.New("disk busy")}
	adapter := &OrphanedMediaConsumerAdapter{useCase: uc, logger: contextkeys.LoggerFromContext(context.Background())}

	err := adapter.messageHandler(orphanedDelivery(t, []string{"http://localhost:5000/uploads/a.jpg"}))
	if err == nil || errors.Is(err, rabbitmq_consumer.ErrPermanent) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestOrphanedMediaConsumer_InvalidMessageIsPermanent(t *testing.T) {
	uc := &fakeCleanup{}
	adapter := &OrphanedMediaConsumerAdapter{useCase: uc, logger: contextkeys.LoggerFromContext(context.Background())}

	d := amqp.Delivery{
		Headers: amqp.Table{constants.HeaderEventType: "MediaOrphanedEvent", constants.HeaderEventVersion: "1.0.0"},
		Body:    []byte(`{"type":"media.orphaned"}`),
	}
	err := adapter.messageHandler(d)
	if !errors.Is(err, rabbitmq_consumer.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if len(uc.calls) != 0 {
		t.Fatal("use case must not run for an invalid message")
	}
}

func TestToFields(t *testing.T) {
	got := toFields("queue", "q1", 42, "skipped", "dangling")
	if len(got) != 1 || got["queue"] != "q1" {
		t.Errorf("toFields() = %v", got)
	}
	if toFields() != nil {
		t.Error("no pairs must give nil fields")
	}
}
