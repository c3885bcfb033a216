package usecases_port

import (
	"context"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"

	"github.com/google/uuid"
)

type UpdatePropertyUseCase interface {
	Execute(ctx context.Context, actor, id uuid.UUID, patch domain.PropertyPatch, files []port.UploadedFile) (*domain.Property, error)
}
