package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserDirectory читает контакты из таблицы users сервиса аутентификации.
type PostgresUserDirectory struct {
	pool *pgxpool.Pool
}

func NewPostgresUserDirectory(pool *pgxpool.Pool) (*PostgresUserDirectory, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresUserDirectory{pool: pool}, nil
}

func (d *PostgresUserDirectory) GetOwnerContact(ctx context.Context, userID uuid.UUID) (*domain.OwnerContact, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresUserDirectory",
		"method":    "GetOwnerContact",
		"user_id":   userID.String(),
	})

	query := `SELECT id, name, email FROM users WHERE id = $1`

	var c domain.OwnerContact
	err := d.pool.QueryRow(ctx, query, userID).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("User not found", nil)
			return nil, nil
		}
		repoLogger.Error("Failed to get user contact", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to get user contact: %w", err)
	}
	return &c, nil
}
