package usecase

import (
	"context"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"

	"github.com/google/uuid"
)

type UpdatePropertyUseCase struct {
	storage port.PropertyStoragePort
	media   port.MediaStoragePort
	events  port.EventPublisherPort
}

func NewUpdatePropertyUseCase(storage port.PropertyStoragePort, media port.MediaStoragePort, events port.EventPublisherPort) *UpdatePropertyUseCase {
	return &UpdatePropertyUseCase{
		storage: storage,
		media:   media,
		events:  events,
	}
}

// Execute: поиск -> проверка владельца -> валидация слияния -> загрузка файлов -> сохранение.
func (uc *UpdatePropertyUseCase) Execute(ctx context.Context, actor, id uuid.UUID, patch domain.PropertyPatch, files []port.UploadedFile) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "UpdateProperty",
		"user_id":     actor.String(),
		"property_id": id.String(),
		"files_count": len(files),
	})

	ucLogger.Info("Use case started", nil)

	existing, err := uc.storage.GetByID(ctx, id)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	if err := domain.CheckOwnership(existing, actor); err != nil {
		ucLogger.Warn("Ownership check failed", port.Fields{"owner_id": existing.CreatedBy.String()})
		return nil, err
	}

	next := existing.Clone()
	if err := next.ApplyPatch(patch); err != nil {
		ucLogger.Warn("Property patch rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	uris, err := uploadAll(ctx, uc.media, files, ucLogger)
	if err != nil {
		return nil, err
	}
	added := next.AppendImages(uris)

	saved, err := uc.storage.Update(ctx, &next)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		rollbackUploads(ctx, uc.media, uc.events, existing, uris, ucLogger)
		return nil, err
	}

	publish(ctx, uc.events, domain.NewPropertyEvent(domain.EventPropertyUpdated, saved, uris), ucLogger)

	ucLogger.Info("Use case finished successfully", port.Fields{"images_added": added})
	return saved, nil
}
