package constants

// Обменник доменных событий
const (
	DefaultEventsExchange = "property_events"
	EventsExchangeType    = "topic"
)

// Имена очередей
const (
	QueueOrphanedMediaCleanup = "media.orphaned.cleanup"
)

// Ключи маршрутизации совпадают с типом события
const (
	RoutingKeyPropertyCreated = "property.created"
	RoutingKeyPropertyUpdated = "property.updated"
	RoutingKeyPropertyDeleted = "property.deleted"
	RoutingKeyMediaOrphaned   = "media.orphaned"
)

// Ретраи очистки медиа
const (
	OrphanedMediaRetryExchange = QueueOrphanedMediaCleanup + "_retry_ex"
	OrphanedMediaRetryQueue    = QueueOrphanedMediaCleanup + "_retry_wait_30s"
	OrphanedMediaRetryTTL      = 30000 // мс
	OrphanedMediaMaxRetries    = 5
)

const (
	FinalDLXExchange   = "property_service_final_dlx"
	FinalDLQ           = "property_service_final_dlq"
	FinalDLQRoutingKey = "property_service.dlq.key"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)
