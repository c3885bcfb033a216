package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage      = 1
	DefaultPageLimit = 6
)

// SearchParams - сырые query-параметры как они пришли от клиента. Пустая строка = параметра нет.
type SearchParams struct {
	Location string
	MinPrice string
	MaxPrice string
	Type     string
	Bedrooms string
	SortBy   string
	Page     string
	Limit    string
}

// SearchQuery - типизированный и провалидированный поисковый запрос.
type SearchQuery struct {
	LocationText string
	MinPrice     *float64
	MaxPrice     *float64
	// PropertyType хранится как есть: неизвестное значение не ошибка, а пустой результат
	PropertyType string
	Bedrooms     *int
	SortKey      string
	// PageRequest уже провалидирован, use case берет окно отсюда
	PageRequest
}

// ParseSearchQuery приводит сырые параметры к SearchQuery.
// Любое нечисловое значение в числовом поле - ValidationError, без тихого обнуления.
func ParseSearchQuery(p SearchParams) (SearchQuery, error) {
	q := SearchQuery{
		LocationText: strings.TrimSpace(p.Location),
		PropertyType: strings.TrimSpace(p.Type),
		SortKey:      strings.TrimSpace(p.SortBy),
	}

	var err error
	if q.MinPrice, err = parseOptionalFloat("minPrice", p.MinPrice); err != nil {
		return SearchQuery{}, err
	}
	if q.MaxPrice, err = parseOptionalFloat("maxPrice", p.MaxPrice); err != nil {
		return SearchQuery{}, err
	}
	if q.Bedrooms, err = parseOptionalInt("bedrooms", p.Bedrooms); err != nil {
		return SearchQuery{}, err
	}

	page, limit := DefaultPage, DefaultPageLimit
	rawPage, err := parseOptionalInt("page", p.Page)
	if err != nil {
		return SearchQuery{}, err
	}
	if rawPage != nil {
		page = *rawPage
	}
	rawLimit, err := parseOptionalInt("limit", p.Limit)
	if err != nil {
		return SearchQuery{}, err
	}
	if rawLimit != nil {
		limit = *rawLimit
	}

	if q.PageRequest, err = NewPageRequest(page, limit); err != nil {
		return SearchQuery{}, err
	}

	return q, nil
}

func parseOptionalFloat(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, NewValidationError(field, "must be a number")
	}
	return &v, nil
}

func parseOptionalInt(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, NewValidationError(field, "must be an integer")
	}
	return &v, nil
}
