package domain

// SortField - поле, по которому хранилище упорядочивает выдачу.
type SortField string

const (
	SortFieldPrice     SortField = "price"
	SortFieldCreatedAt SortField = "created_at"
)

const (
	SortKeyPriceLow  = "price_low"
	SortKeyPriceHigh = "price_high"
)

// SortOrder - единственный ключ сортировки. Вторичного ключа нет: порядок равных
// записей определяет хранилище.
type SortOrder struct {
	Field      SortField
	Descending bool
}

// NewestFirst - порядок по умолчанию.
func NewestFirst() SortOrder {
	return SortOrder{Field: SortFieldCreatedAt, Descending: true}
}

// ResolveSort переводит токен sortBy в SortOrder. Неизвестный токен - порядок по умолчанию.
func ResolveSort(key string) SortOrder {
	switch key {
	case SortKeyPriceLow:
		return SortOrder{Field: SortFieldPrice}
	case SortKeyPriceHigh:
		return SortOrder{Field: SortFieldPrice, Descending: true}
	default:
		return NewestFirst()
	}
}

// Less - строгий порядок для сортировки в памяти (a идет раньше b).
func (s SortOrder) Less(a, b Property) bool {
	switch s.Field {
	case SortFieldPrice:
		if s.Descending {
			return a.Price > b.Price
		}
		return a.Price < b.Price
	default:
		if s.Descending {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (s SortOrder) String() string {
	if s.Descending {
		return string(s.Field) + " DESC"
	}
	return string(s.Field) + " ASC"
}
