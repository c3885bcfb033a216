package usecases_port

import (
	"context"
	"property-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetMyPropertiesUseCase interface {
	Execute(ctx context.Context, owner uuid.UUID) ([]domain.Property, error)
}
