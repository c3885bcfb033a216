package usecase

import (
	"context"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"

	"github.com/google/uuid"
)

type GetMyPropertiesUseCase struct {
	storage port.PropertyStoragePort
}

func NewGetMyPropertiesUseCase(storage port.PropertyStoragePort) *GetMyPropertiesUseCase {
	return &GetMyPropertiesUseCase{storage: storage}
}

func (uc *GetMyPropertiesUseCase) Execute(ctx context.Context, owner uuid.UUID) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetMyProperties",
		"user_id":  owner.String(),
	})

	if owner == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	ucLogger.Info("Use case started", nil)

	items, err := uc.storage.Find(ctx, domain.OwnedBy(owner), domain.NewestFirst(), 0, 0)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}
	if items == nil {
		items = []domain.Property{}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(items)})
	return items, nil
}
