package port

import (
	"context"
	"property-service/internal/core/domain"

	"github.com/google/uuid"
)

// PropertyStoragePort - хранилище объектов недвижимости.
// Ошибки движка оборачиваются в *domain.StoreError, отсутствие записи - domain.ErrPropertyNotFound.
type PropertyStoragePort interface {
	Count(ctx context.Context, pred domain.Predicate) (int, error)
	// Find возвращает записи в порядке sort; take <= 0 означает "без ограничения"
	Find(ctx context.Context, pred domain.Predicate, sort domain.SortOrder, skip, take int) ([]domain.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)

	// Create присваивает ID и временные метки и возвращает сохраненную запись
	Create(ctx context.Context, p *domain.Property) (*domain.Property, error)
	// Update перезаписывает изменяемые поля и обновляет updated_at
	Update(ctx context.Context, p *domain.Property) (*domain.Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
