package rest

import (
	"net/http"
	"property-service/internal/contextkeys"
	"property-service/internal/core/port"
	"strings"
)

const gatewayUserHeader = "X-User-ID"

// AuthMiddleware определяет пользователя через IdentityProviderPort
type AuthMiddleware struct {
	identity port.IdentityProviderPort
}

func NewAuthMiddleware(identity port.IdentityProviderPort) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

func credentialsFromRequest(r *http.Request) port.Credentials {
	var creds port.Credentials
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			creds.BearerToken = strings.TrimSpace(token)
		}
	}
	creds.GatewayUserID = strings.TrimSpace(r.Header.Get(gatewayUserHeader))
	return creds
}

// RequireIdentity пропускает только аутентифицированные запросы, иначе 401
func (m *AuthMiddleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := contextkeys.LoggerFromContext(r.Context())

		userID, err := m.identity.Authenticate(r.Context(), credentialsFromRequest(r))
		if err != nil {
			writeDomainError(w, err, logger.WithFields(port.Fields{"component": "AuthMiddleware"}))
			return
		}

		ctx := contextkeys.ContextWithUserID(r.Context(), userID)
		ctx = contextkeys.ContextWithLogger(ctx, logger.WithFields(port.Fields{"user_id": userID.String()}))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
