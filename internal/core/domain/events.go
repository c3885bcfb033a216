package domain

import (
	"time"

	"github.com/google/uuid"
)

// PropertyEventType - тип доменного события, он же routing key.
type PropertyEventType string

const (
	EventPropertyCreated PropertyEventType = "property.created"
	EventPropertyUpdated PropertyEventType = "property.updated"
	EventPropertyDeleted PropertyEventType = "property.deleted"
	// EventMediaOrphaned - файлы, которые не удалось удалить вместе с записью
	EventMediaOrphaned PropertyEventType = "media.orphaned"
)

// PropertyEvent - уведомление об изменении записи. Доставка best-effort.
type PropertyEvent struct {
	Type       PropertyEventType
	PropertyID uuid.UUID
	OwnerID    uuid.UUID
	MediaURIs  []string
	OccurredAt time.Time
}

func NewPropertyEvent(t PropertyEventType, p *Property, media []string) PropertyEvent {
	return PropertyEvent{
		Type:       t,
		PropertyID: p.ID,
		OwnerID:    p.CreatedBy,
		MediaURIs:  media,
		OccurredAt: time.Now().UTC(),
	}
}
