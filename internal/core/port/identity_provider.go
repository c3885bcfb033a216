package port

import (
	"context"

	"github.com/google/uuid"
)

// Credentials - то, что транспорт смог достать из запроса.
type Credentials struct {
	BearerToken   string
	GatewayUserID string
}

// IdentityProviderPort превращает учетные данные в идентификатор пользователя.
// Нет данных или они невалидны - domain.ErrUnauthenticated.
type IdentityProviderPort interface {
	Authenticate(ctx context.Context, creds Credentials) (uuid.UUID, error)
}
