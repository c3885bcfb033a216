package usecases_port

import (
	"context"
	"property-service/internal/core/domain"
)

type ListPropertiesUseCase interface {
	Execute(ctx context.Context, params domain.SearchParams) (*domain.PropertyPage, error)
}
