package memory_adapter

import (
	"context"
	"property-service/internal/core/domain"
	"sync"

	"github.com/google/uuid"
)

// UserDirectory - справочник пользователей в памяти.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.OwnerContact
}

func NewUserDirectory(users ...domain.OwnerContact) *UserDirectory {
	d := &UserDirectory{users: make(map[uuid.UUID]domain.OwnerContact, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// Put добавляет или заменяет пользователя.
func (d *UserDirectory) Put(u domain.OwnerContact) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *UserDirectory) GetOwnerContact(ctx context.Context, userID uuid.UUID) (*domain.OwnerContact, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
