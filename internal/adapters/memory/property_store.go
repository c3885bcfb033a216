package memory_adapter

import (
	"context"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PropertyStore - хранилище в памяти для dev-режима и тестов.
// Мьютекс нужен только для безопасности памяти, транзакционной изоляции нет.
type PropertyStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Property
	// order - порядок вставки, на нем держится стабильная сортировка
	order []uuid.UUID
	last  time.Time
	now   func() time.Time
}

func NewPropertyStore() *PropertyStore {
	return &PropertyStore{
		items: make(map[uuid.UUID]domain.Property),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// tick возвращает строго возрастающее время, чтобы createdAt не совпадали.
func (s *PropertyStore) tick() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *PropertyStore) Count(ctx context.Context, pred domain.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStoreError("count", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, id := range s.order {
		if pred.Matches(s.items[id]) {
			n++
		}
	}
	return n, nil
}

func (s *PropertyStore) Find(ctx context.Context, pred domain.Predicate, order domain.SortOrder, skip, take int) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "MemoryPropertyStore",
		"method":    "Find",
	})

	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("find", err)
	}

	s.mu.RLock()
	matched := make([]domain.Property, 0)
	for _, id := range s.order {
		if p := s.items[id]; pred.Matches(p) {
			matched = append(matched, p.Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return order.Less(matched[i], matched[j])
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []domain.Property{}, nil
	}
	matched = matched[skip:]
	if take > 0 && take < len(matched) {
		matched = matched[:take]
	}

	repoLogger.Debug("Properties found", port.Fields{"count": len(matched)})
	return matched, nil
}

func (s *PropertyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("get", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	c := p.Clone()
	return &c, nil
}

func (s *PropertyStore) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("create", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := p.Clone()
	rec.ID = uuid.New()
	if rec.Images == nil {
		rec.Images = []string{}
	}
	rec.CreatedAt = s.tick()
	rec.UpdatedAt = rec.CreatedAt

	s.items[rec.ID] = rec
	s.order = append(s.order, rec.ID)

	out := rec.Clone()
	return &out, nil
}

// Update перезаписывает изменяемые поля. ID, владелец и createdAt берутся из сохраненной записи.
func (s *PropertyStore) Update(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("update", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[p.ID]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}

	rec := p.Clone()
	rec.CreatedBy = stored.CreatedBy
	rec.CreatedAt = stored.CreatedAt
	rec.UpdatedAt = s.tick()
	s.items[rec.ID] = rec

	out := rec.Clone()
	return &out, nil
}

func (s *PropertyStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrPropertyNotFound
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
