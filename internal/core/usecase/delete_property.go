package usecase

import (
	"context"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"

	"github.com/google/uuid"
)

type DeletePropertyUseCase struct {
	storage port.PropertyStoragePort
	media   port.MediaStoragePort
	events  port.EventPublisherPort
}

func NewDeletePropertyUseCase(storage port.PropertyStoragePort, media port.MediaStoragePort, events port.EventPublisherPort) *DeletePropertyUseCase {
	return &DeletePropertyUseCase{
		storage: storage,
		media:   media,
		events:  events,
	}
}

// Execute удаляет медиа, затем запись. Успех определяется только удалением записи.
func (uc *DeletePropertyUseCase) Execute(ctx context.Context, actor, id uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "DeleteProperty",
		"user_id":     actor.String(),
		"property_id": id.String(),
	})

	ucLogger.Info("Use case started", nil)

	existing, err := uc.storage.GetByID(ctx, id)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return err
	}

	if err := domain.CheckOwnership(existing, actor); err != nil {
		ucLogger.Warn("Ownership check failed", port.Fields{"owner_id": existing.CreatedBy.String()})
		return err
	}

	orphaned := discardUploads(ctx, uc.media, existing.Images, ucLogger)

	if err := uc.storage.Delete(ctx, id); err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return err
	}

	publish(ctx, uc.events, domain.NewPropertyEvent(domain.EventPropertyDeleted, existing, existing.Images), ucLogger)
	if len(orphaned) > 0 {
		publish(ctx, uc.events, domain.NewPropertyEvent(domain.EventMediaOrphaned, existing, orphaned), ucLogger)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"orphaned_media": len(orphaned)})
	return nil
}
