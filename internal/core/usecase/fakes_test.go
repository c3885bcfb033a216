package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	memory_adapter "property-service/internal/adapters/memory"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// fakeMedia хранит "загруженные" URI в памяти.
type fakeMedia struct {
	mu         sync.Mutex
	stored     map[string]bool
	n          int
	failOn     string
	failDelete bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{stored: make(map[string]bool)}
}

func (m *fakeMedia) Upload(ctx context.Context, f port.UploadedFile) (*port.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Filename == m.failOn {
		return nil, domain.NewValidationError("images", "unsupported image format")
	}
	if f.Content != nil {
		if _, err := io.Copy(io.Discard, f.Content); err != nil {
			return nil, err
		}
	}
	m.n++
	uri := fmt.Sprintf("/uploads/%d-%s", m.n, f.Filename)
	m.stored[uri] = true
	return &port.UploadResult{URI: uri, Key: uri}, nil
}

func (m *fakeMedia) Delete(ctx context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.HasPrefix(uri, "https://") {
		return domain.NewValidationError("uri", "not managed by this storage")
	}
	if m.failDelete {
		return errors.New("disk is read-only")
	}
	delete(m.stored, uri)
	return nil
}

func (m *fakeMedia) has(uri string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored[uri]
}

func (m *fakeMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stored)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.PropertyEvent
}

func (p *fakePublisher) Publish(ctx context.Context, e domain.PropertyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) types() []domain.PropertyEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.PropertyEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// brokenStore отказывает на выбранных операциях.
type brokenStore struct {
	port.PropertyStoragePort
	failCreate bool
	failCount  bool
}

var errEngine = errors.New("connection reset by peer")

func (s *brokenStore) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if s.failCreate {
		return nil, domain.NewStoreError("create", errEngine)
	}
	return s.PropertyStoragePort.Create(ctx, p)
}

func (s *brokenStore) Count(ctx context.Context, pred domain.Predicate) (int, error) {
	if s.failCount {
		return 0, domain.NewStoreError("count", errEngine)
	}
	return s.PropertyStoragePort.Count(ctx, pred)
}

type brokenDirectory struct{}

func (brokenDirectory) GetOwnerContact(ctx context.Context, id uuid.UUID) (*domain.OwnerContact, error) {
	return nil, errors.New("users table is unavailable")
}

func file(name string) port.UploadedFile {
	return port.UploadedFile{Filename: name, ContentType: "image/jpeg", Content: strings.NewReader("jpeg")}
}

type fixture struct {
	store  *memory_adapter.PropertyStore
	media  *fakeMedia
	events *fakePublisher
	create *CreatePropertyUseCase
	update *UpdatePropertyUseCase
	delete *DeletePropertyUseCase
	list   *ListPropertiesUseCase
	mine   *GetMyPropertiesUseCase
}

func newFixture() *fixture {
	f := &fixture{
		store:  memory_adapter.NewPropertyStore(),
		media:  newFakeMedia(),
		events: &fakePublisher{},
	}
	f.create = NewCreatePropertyUseCase(f.store, f.media, f.events)
	f.update = NewUpdatePropertyUseCase(f.store, f.media, f.events)
	f.delete = NewDeletePropertyUseCase(f.store, f.media, f.events)
	f.list = NewListPropertiesUseCase(f.store)
	f.mine = NewGetMyPropertiesUseCase(f.store)
	return f
}
