package usecase

import (
	"context"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"

	"github.com/google/uuid"
)

type GetPropertyDetailsUseCase struct {
	storage port.PropertyStoragePort
	users   port.UserDirectoryPort
}

func NewGetPropertyDetailsUseCase(storage port.PropertyStoragePort, users port.UserDirectoryPort) *GetPropertyDetailsUseCase {
	return &GetPropertyDetailsUseCase{storage: storage, users: users}
}

// Execute возвращает запись и контакты владельца. Сбой справочника пользователей
// не ломает ответ: владелец просто остается nil.
func (uc *GetPropertyDetailsUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.PropertyDetails, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "GetPropertyDetails",
		"property_id": id.String(),
	})

	ucLogger.Info("Use case started", nil)

	p, err := uc.storage.GetByID(ctx, id)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	details := &domain.PropertyDetails{Property: *p}

	if uc.users != nil {
		owner, err := uc.users.GetOwnerContact(ctx, p.CreatedBy)
		switch {
		case err != nil:
			ucLogger.Warn("Failed to resolve owner contact, returning property without it", port.Fields{
				"owner_id": p.CreatedBy.String(),
				"error":    err.Error(),
			})
		case owner == nil:
			ucLogger.Warn("Owner not found in user directory", port.Fields{"owner_id": p.CreatedBy.String()})
		default:
			details.Owner = owner
		}
	}

	ucLogger.Info("Use case finished successfully", nil)
	return details, nil
}
