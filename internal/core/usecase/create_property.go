package usecase

import (
	"context"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"

	"github.com/google/uuid"
)

type CreatePropertyUseCase struct {
	storage port.PropertyStoragePort
	media   port.MediaStoragePort
	events  port.EventPublisherPort
}

func NewCreatePropertyUseCase(storage port.PropertyStoragePort, media port.MediaStoragePort, events port.EventPublisherPort) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{
		storage: storage,
		media:   media,
		events:  events,
	}
}

// Execute: поля проверяются до загрузки файлов, чтобы невалидный запрос ничего не оставлял в хранилище медиа.
func (uc *CreatePropertyUseCase) Execute(ctx context.Context, actor uuid.UUID, input domain.PropertyInput, files []port.UploadedFile) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "CreateProperty",
		"user_id":     actor.String(),
		"files_count": len(files),
	})

	if actor == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	ucLogger.Info("Use case started", nil)

	if err := input.Validate(); err != nil {
		ucLogger.Warn("Property input rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	uris, err := uploadAll(ctx, uc.media, files, ucLogger)
	if err != nil {
		return nil, err
	}

	p, err := domain.NewProperty(input, actor, uris)
	if err != nil {
		rollbackUploads(ctx, uc.media, uc.events, &domain.Property{CreatedBy: actor}, uris, ucLogger)
		return nil, err
	}

	saved, err := uc.storage.Create(ctx, p)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		rollbackUploads(ctx, uc.media, uc.events, p, uris, ucLogger)
		return nil, err
	}

	publish(ctx, uc.events, domain.NewPropertyEvent(domain.EventPropertyCreated, saved, saved.Images), ucLogger)

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": saved.ID.String()})
	return saved, nil
}
