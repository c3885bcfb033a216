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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPropertyStore - реализация PropertyStoragePort для PostgreSQL.
type PostgresPropertyStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPropertyStore(pool *pgxpool.Pool) (*PostgresPropertyStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPropertyStore{pool: pool}, nil
}

func (s *PostgresPropertyStore) Count(ctx context.Context, pred domain.Predicate) (int, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyStore",
		"method":    "Count",
	})

	query, args := buildCountQuery(pred)

	var total int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		repoLogger.Error("Failed to count properties", err, port.Fields{"query": query})
		return 0, domain.NewStoreError("count", fmt.Errorf("failed to count properties: %w", err))
	}

	repoLogger.Debug("Properties counted", port.Fields{"total_count": total})
	return int(total), nil
}

func (s *PostgresPropertyStore) Find(ctx context.Context, pred domain.Predicate, sort domain.SortOrder, skip, take int) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyStore",
		"method":    "Find",
		"skip":      skip,
		"take":      take,
	})

	query, args := buildFindQuery(pred, sort, skip, take)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query properties", err, port.Fields{"query": query})
		return nil, domain.NewStoreError("find", fmt.Errorf("failed to query properties: %w", err))
	}
	defer rows.Close()

	capacity := take
	if capacity <= 0 {
		capacity = 16
	}
	items := make([]domain.Property, 0, capacity)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			repoLogger.Error("Failed to scan property row", err, nil)
			return nil, domain.NewStoreError("find", fmt.Errorf("failed to scan property: %w", err))
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during properties iteration", err, nil)
		return nil, domain.NewStoreError("find", fmt.Errorf("error during properties iteration: %w", err))
	}

	repoLogger.Debug("Properties found", port.Fields{"count": len(items)})
	return items, nil
}

func (s *PostgresPropertyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresPropertyStore",
		"method":      "GetByID",
		"property_id": id.String(),
	})

	query := "SELECT " + propertyColumns + " FROM properties WHERE id = $1"
	p, err := scanProperty(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Property not found", nil)
			return nil, domain.ErrPropertyNotFound
		}
		repoLogger.Error("Failed to get property", err, port.Fields{"query": query})
		return nil, domain.NewStoreError("get", fmt.Errorf("failed to get property: %w", err))
	}
	return p, nil
}

func (s *PostgresPropertyStore) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyStore",
		"method":    "Create",
		"owner_id":  p.CreatedBy.String(),
	})

	images := p.Images
	if images == nil {
		images = []string{}
	}

	query := `
		INSERT INTO properties (id, title, price, description, property_type, location, bedrooms, bathrooms, images, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + propertyColumns

	saved, err := scanProperty(s.pool.QueryRow(ctx, query,
		uuid.New(), p.Title, p.Price, p.Description, string(p.Type), p.Location,
		p.Bedrooms, p.Bathrooms, images, p.CreatedBy,
	))
	if err != nil {
		if vErr := constraintError(err); vErr != nil {
			repoLogger.Warn("Property violates a table constraint", port.Fields{"error": err.Error()})
			return nil, vErr
		}
		repoLogger.Error("Failed to insert property", err, nil)
		return nil, domain.NewStoreError("create", fmt.Errorf("failed to insert property: %w", err))
	}

	repoLogger.Debug("Property created", port.Fields{"property_id": saved.ID.String()})
	return saved, nil
}

// Update - одна UPDATE по строке: конкурентные изменения гоняются, выигрывает последняя запись.
func (s *PostgresPropertyStore) Update(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresPropertyStore",
		"method":      "Update",
		"property_id": p.ID.String(),
	})

	images := p.Images
	if images == nil {
		images = []string{}
	}

	query := `
		UPDATE properties SET
			title = $2, price = $3, description = $4, property_type = $5, location = $6,
			bedrooms = $7, bathrooms = $8, images = $9, updated_at = now()
		WHERE id = $1
		RETURNING ` + propertyColumns

	saved, err := scanProperty(s.pool.QueryRow(ctx, query,
		p.ID, p.Title, p.Price, p.Description, string(p.Type), p.Location,
		p.Bedrooms, p.Bathrooms, images,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		if vErr := constraintError(err); vErr != nil {
			repoLogger.Warn("Property violates a table constraint", port.Fields{"error": err.Error()})
			return nil, vErr
		}
		repoLogger.Error("Failed to update property", err, nil)
		return nil, domain.NewStoreError("update", fmt.Errorf("failed to update property: %w", err))
	}

	repoLogger.Debug("Property updated", nil)
	return saved, nil
}

func (s *PostgresPropertyStore) Delete(ctx context.Context, id uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresPropertyStore",
		"method":      "Delete",
		"property_id": id.String(),
	})

	query := `DELETE FROM properties WHERE id = $1`
	cmdTag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		repoLogger.Error("Failed to delete property", err, port.Fields{"query": query})
		return domain.NewStoreError("delete", fmt.Errorf("failed to delete property: %w", err))
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Attempted to delete a property that did not exist.", nil)
		return domain.ErrPropertyNotFound
	}

	repoLogger.Debug("Property deleted", nil)
	return nil
}

// scanProperty читает строку в порядке propertyColumns
func scanProperty(row pgx.Row) (*domain.Property, error) {
	var (
		p            domain.Property
		propertyType string
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Price, &p.Description, &propertyType, &p.Location,
		&p.Bedrooms, &p.Bathrooms, &p.Images, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Type = domain.PropertyType(propertyType)
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}

// constraintError - нарушение CHECK/NOT NULL означает невалидные данные, а не сбой БД
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case "23514", "23502": // check_violation, not_null_violation
		return domain.NewValidationError(pgErr.ColumnName, "violates constraint "+pgErr.ConstraintName)
	}
	return nil
}
