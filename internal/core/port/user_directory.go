package port

import (
	"context"
	"property-service/internal/core/domain"

	"github.com/google/uuid"
)

// UserDirectoryPort отдает контакты владельца для карточки объекта.
// Неизвестный пользователь - (nil, nil).
type UserDirectoryPort interface {
	GetOwnerContact(ctx context.Context, userID uuid.UUID) (*domain.OwnerContact, error)
}
