package domain

import "math"

// PageRequest - окно выдачи, page считается с 1.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest проверяет только нижние границы. Верхней границы нет:
// страница за пределами выборки дает пустой список, а не ошибку.
func NewPageRequest(page, limit int) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, NewValidationError("page", "must be at least 1")
	}
	if limit < 1 {
		return PageRequest{}, NewValidationError("limit", "must be at least 1")
	}
	return PageRequest{Page: page, Limit: limit}, nil
}

// Skip - сколько записей пропустить. При переполнении int возвращает math.MaxInt,
// то есть заведомо за концом любой выборки.
func (r PageRequest) Skip() int {
	if r.Page <= 1 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.Limit {
		return math.MaxInt
	}
	return (r.Page - 1) * r.Limit
}

// Take - сколько записей вернуть.
func (r PageRequest) Take() int {
	return r.Limit
}

// TotalPages = ceil(total/limit), 0 для пустой выборки.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total-1)/limit + 1
}

// PropertyPage - одна страница результатов поиска.
type PropertyPage struct {
	Total      int
	Page       int
	Pages      int
	Properties []Property
}
