package usecases_port

import (
	"context"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"

	"github.com/google/uuid"
)

type CreatePropertyUseCase interface {
	Execute(ctx context.Context, actor uuid.UUID, input domain.PropertyInput, files []port.UploadedFile) (*domain.Property, error)
}
