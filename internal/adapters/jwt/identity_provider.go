package token_adapter

import (
	"context"
	"errors"
	"fmt"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityProvider - реализация IdentityProviderPort.
// Принимает JWT (HS256, claim user_id) и, если разрешено, X-User-ID от API-шлюза.
type IdentityProvider struct {
	signingKey   []byte
	trustGateway bool
}

func NewIdentityProvider(signingKey string, trustGateway bool) (*IdentityProvider, error) {
	if signingKey == "" && !trustGateway {
		return nil, fmt.Errorf("either a JWT signing key or gateway trust must be configured")
	}
	return &IdentityProvider{
		signingKey:   []byte(signingKey),
		trustGateway: trustGateway,
	}, nil
}

// jwtCustomClaims совпадают с токенами, которые выпускает сервис аутентификации.
type jwtCustomClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (p *IdentityProvider) Authenticate(ctx context.Context, creds port.Credentials) (uuid.UUID, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	authLogger := logger.WithFields(port.Fields{
		"component": "IdentityProvider",
		"method":    "Authenticate",
	})

	if token := strings.TrimSpace(creds.BearerToken); token != "" && len(p.signingKey) > 0 {
		return p.validateToken(token, authLogger)
	}

	if p.trustGateway && creds.GatewayUserID != "" {
		userID, err := uuid.Parse(creds.GatewayUserID)
		if err != nil || userID == uuid.Nil {
			authLogger.Warn("Invalid X-User-ID header format", nil)
			return uuid.Nil, domain.ErrUnauthenticated
		}
		return userID, nil
	}

	return uuid.Nil, domain.ErrUnauthenticated
}

func (p *IdentityProvider) validateToken(tokenString string, authLogger port.LoggerPort) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем, что метод подписи - HMAC, как мы и ожидали
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			authLogger.Warn("Token has expired", nil)
		} else {
			authLogger.Warn("Invalid token format or signature", port.Fields{"error": err.Error()})
		}
		return uuid.Nil, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		authLogger.Warn("Token carries no user id", nil)
		return uuid.Nil, domain.ErrUnauthenticated
	}
	return claims.UserID, nil
}

// IssueToken подписывает токен тем же ключом. Нужен для локальной разработки и тестов.
func (p *IdentityProvider) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	if len(p.signingKey) == 0 {
		return "", fmt.Errorf("JWT signing key is not configured")
	}
	now := time.Now()
	claims := &jwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
