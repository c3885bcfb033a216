package usecase

import (
	"context"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
)

type ListPropertiesUseCase struct {
	storage port.PropertyStoragePort
}

func NewListPropertiesUseCase(storage port.PropertyStoragePort) *ListPropertiesUseCase {
	return &ListPropertiesUseCase{storage: storage}
}

// Execute: разбор параметров -> предикат -> сортировка -> страница -> Count + Find.
func (uc *ListPropertiesUseCase) Execute(ctx context.Context, params domain.SearchParams) (*domain.PropertyPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ListProperties",
	})

	query, err := domain.ParseSearchQuery(params)
	if err != nil {
		ucLogger.Warn("Invalid search parameters", port.Fields{"error": err.Error()})
		return nil, err
	}
	pageReq := query.PageRequest

	pred := domain.BuildPredicate(query)
	sortOrder := domain.ResolveSort(query.SortKey)

	ucLogger = ucLogger.WithFields(port.Fields{
		"predicate": pred.String(),
		"sort":      sortOrder.String(),
		"page":      pageReq.Page,
		"limit":     pageReq.Limit,
	})
	ucLogger.Info("Use case started", nil)

	page := &domain.PropertyPage{
		Page:       pageReq.Page,
		Properties: []domain.Property{},
	}

	if pred.MatchesNothing() {
		ucLogger.Info("Predicate matches nothing, storage is not queried", nil)
		return page, nil
	}

	total, err := uc.storage.Count(ctx, pred)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}
	page.Total = total
	page.Pages = domain.TotalPages(total, pageReq.Limit)

	// За пределами выборки второй запрос не нужен
	if total > 0 && pageReq.Skip() < total {
		items, err := uc.storage.Find(ctx, pred, sortOrder, pageReq.Skip(), pageReq.Take())
		if err != nil {
			ucLogger.Error("Storage returned an error", err, nil)
			return nil, err
		}
		page.Properties = items
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   page.Total,
		"items_on_page": len(page.Properties),
	})
	return page, nil
}
