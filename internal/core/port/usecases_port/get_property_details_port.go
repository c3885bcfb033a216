package usecases_port

import (
	"context"
	"property-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetPropertyDetailsUseCase interface {
	Execute(ctx context.Context, id uuid.UUID) (*domain.PropertyDetails, error)
}
