package rabbitmq

import (
	"property-service/internal/contracts"
	"property-service/internal/core/domain"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyEventDTO - тело сообщения о событии (схемы PropertyEvent и MediaOrphanedEvent)
type PropertyEventDTO struct {
	EventID    uuid.UUID `json:"eventId"`
	Type       string    `json:"type"`
	PropertyID uuid.UUID `json:"propertyId"`
	OwnerID    uuid.UUID `json:"ownerId"`
	MediaURIs  []string  `json:"mediaUris"`
	OccurredAt time.Time `json:"occurredAt"`
}

func toEventDTO(e domain.PropertyEvent) PropertyEventDTO {
	media := e.MediaURIs
	if media == nil {
		media = []string{}
	}
	return PropertyEventDTO{
		EventID:    uuid.New(),
		Type:       string(e.Type),
		PropertyID: e.PropertyID,
		OwnerID:    e.OwnerID,
		MediaURIs:  media,
		OccurredAt: e.OccurredAt,
	}
}

// schemaHeaders возвращает event-type и event-version, по которым получатель найдет схему
func schemaHeaders(t domain.PropertyEventType) (string, string) {
	key := contracts.PropertyEventV1
	if t == domain.EventMediaOrphaned {
		key = contracts.MediaOrphanedEventV1
	}
	name, version, _ := strings.Cut(key, "/")
	return name, version
}
