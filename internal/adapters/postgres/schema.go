package postgres_adapter

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema создает таблицу properties и индексы, если их еще нет.
// Таблица users принадлежит сервису аутентификации и здесь не создается.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply properties schema: %w", err)
	}
	return nil
}
