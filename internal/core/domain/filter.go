package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// ClauseKind - вид условия в предикате.
type ClauseKind int

const (
	// ClauseTextContains - location ИЛИ title содержит текст, без учета регистра
	ClauseTextContains ClauseKind = iota + 1
	ClauseTypeEquals
	// ClausePriceRange - включительные границы по цене, любая может отсутствовать
	ClausePriceRange
	ClauseBedroomsEquals
	ClauseOwnerEquals
	// ClauseMatchNone - заведомо пустой результат (неизвестный тип, minPrice > maxPrice, bedrooms < 0)
	ClauseMatchNone
)

// Clause - одно условие конъюнкции. Используются только поля, относящиеся к Kind.
type Clause struct {
	Kind     ClauseKind
	Text     string
	Type     PropertyType
	MinPrice *float64
	MaxPrice *float64
	Bedrooms int
	Owner    uuid.UUID
	Reason   string
}

// Predicate - конъюнкция условий. Пустой список совпадает со всеми записями.
// Порядок условий стабилен: text, type, price, bedrooms, owner.
type Predicate struct {
	Clauses []Clause
}

// MatchAll - предикат без ограничений.
func MatchAll() Predicate {
	return Predicate{}
}

// OwnedBy - все записи, созданные пользователем.
func OwnedBy(owner uuid.UUID) Predicate {
	return MatchAll().And(Clause{Kind: ClauseOwnerEquals, Owner: owner})
}

// And возвращает новый предикат с добавленным условием.
func (p Predicate) And(c Clause) Predicate {
	clauses := make([]Clause, 0, len(p.Clauses)+1)
	clauses = append(clauses, p.Clauses...)
	clauses = append(clauses, c)
	return Predicate{Clauses: clauses}
}

// MatchesNothing - true, если результат заведомо пуст и хранилище можно не спрашивать.
func (p Predicate) MatchesNothing() bool {
	for _, c := range p.Clauses {
		if c.Kind == ClauseMatchNone {
			return true
		}
	}
	return false
}

// BuildPredicate переводит SearchQuery в канонический предикат.
func BuildPredicate(q SearchQuery) Predicate {
	p := MatchAll()

	if q.LocationText != "" {
		p = p.And(Clause{Kind: ClauseTextContains, Text: q.LocationText})
	}

	if q.PropertyType != "" {
		if t, ok := ParsePropertyType(q.PropertyType); ok {
			p = p.And(Clause{Kind: ClauseTypeEquals, Type: t})
		} else {
			// неизвестный тип не отбрасываем, иначе фильтр "протечет"
			p = p.And(Clause{Kind: ClauseMatchNone, Reason: fmt.Sprintf("unknown property type %q", q.PropertyType)})
		}
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
			p = p.And(Clause{Kind: ClauseMatchNone, Reason: "minPrice is greater than maxPrice"})
		} else {
			p = p.And(Clause{Kind: ClausePriceRange, MinPrice: q.MinPrice, MaxPrice: q.MaxPrice})
		}
	}

	if q.Bedrooms != nil {
		if *q.Bedrooms < 0 {
			p = p.And(Clause{Kind: ClauseMatchNone, Reason: "negative bedrooms count"})
		} else {
			p = p.And(Clause{Kind: ClauseBedroomsEquals, Bedrooms: *q.Bedrooms})
		}
	}

	return p
}

// Matches вычисляет предикат над записью в памяти.
func (p Predicate) Matches(prop Property) bool {
	for _, c := range p.Clauses {
		if !c.Matches(prop) {
			return false
		}
	}
	return true
}

func (c Clause) Matches(prop Property) bool {
	switch c.Kind {
	case ClauseTextContains:
		return containsFold(prop.Location, c.Text) || containsFold(prop.Title, c.Text)
	case ClauseTypeEquals:
		return prop.Type == c.Type
	case ClausePriceRange:
		if c.MinPrice != nil && prop.Price < *c.MinPrice {
			return false
		}
		if c.MaxPrice != nil && prop.Price > *c.MaxPrice {
			return false
		}
		return true
	case ClauseBedroomsEquals:
		return prop.Bedrooms == c.Bedrooms
	case ClauseOwnerEquals:
		return prop.CreatedBy == c.Owner
	case ClauseMatchNone:
		return false
	default:
		return false
	}
}

// String - читаемое представление для логов и тестов.
func (p Predicate) String() string {
	if len(p.Clauses) == 0 {
		return "TRUE"
	}
	parts := make([]string, len(p.Clauses))
	for i, c := range p.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

func (c Clause) String() string {
	switch c.Kind {
	case ClauseTextContains:
		return fmt.Sprintf("(location ~* %q OR title ~* %q)", c.Text, c.Text)
	case ClauseTypeEquals:
		return fmt.Sprintf("type = %q", c.Type)
	case ClausePriceRange:
		switch {
		case c.MinPrice != nil && c.MaxPrice != nil:
			return fmt.Sprintf("price BETWEEN %g AND %g", *c.MinPrice, *c.MaxPrice)
		case c.MinPrice != nil:
			return fmt.Sprintf("price >= %g", *c.MinPrice)
		case c.MaxPrice != nil:
			return fmt.Sprintf("price <= %g", *c.MaxPrice)
		}
		return "TRUE"
	case ClauseBedroomsEquals:
		return fmt.Sprintf("bedrooms = %d", c.Bedrooms)
	case ClauseOwnerEquals:
		return fmt.Sprintf("created_by = %s", c.Owner)
	case ClauseMatchNone:
		return "FALSE"
	}
	return "?"
}

// containsFold - подстрока без учета регистра. Caser не потокобезопасен, создаем на вызов.
func containsFold(s, substr string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(s), folder.String(substr))
}
