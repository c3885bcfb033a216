package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyType - закрытый список типов объектов.
type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeLand      PropertyType = "land"
	PropertyTypeVilla     PropertyType = "villa"
)

var propertyTypes = []PropertyType{
	PropertyTypeHouse,
	PropertyTypeApartment,
	PropertyTypeLand,
	PropertyTypeVilla,
}

// PropertyTypes возвращает все допустимые значения в фиксированном порядке.
func PropertyTypes() []PropertyType {
	out := make([]PropertyType, len(propertyTypes))
	copy(out, propertyTypes)
	return out
}

// ParsePropertyType проверяет, что строка - одно из значений перечисления.
func ParsePropertyType(s string) (PropertyType, bool) {
	for _, t := range propertyTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Property - объект недвижимости, принадлежащий пользователю.
type Property struct {
	ID          uuid.UUID
	Title       string
	Price       float64
	Description string
	Type        PropertyType
	Location    string
	Bedrooms    int
	Bathrooms   int
	Images      []string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone возвращает копию, не разделяющую слайс Images с оригиналом.
func (p Property) Clone() Property {
	c := p
	if p.Images != nil {
		c.Images = make([]string, len(p.Images))
		copy(c.Images, p.Images)
	}
	return c
}

// PropertyInput - поля, которые клиент передает при создании.
type PropertyInput struct {
	Title       string
	Price       float64
	Description string
	Type        string
	Location    string
	Bedrooms    int
	Bathrooms   int
}

// Validate проверяет обязательные поля и инварианты до загрузки файлов.
func (in PropertyInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title", "is required")
	}
	if err := validatePrice(in.Price); err != nil {
		return err
	}
	if in.Type == "" {
		return NewValidationError("type", "is required")
	}
	if _, ok := ParsePropertyType(in.Type); !ok {
		return NewValidationError("type", "must be one of house, apartment, land, villa")
	}
	if strings.TrimSpace(in.Location) == "" {
		return NewValidationError("location", "is required")
	}
	if in.Bedrooms < 0 {
		return NewValidationError("bedrooms", "must not be negative")
	}
	if in.Bathrooms < 0 {
		return NewValidationError("bathrooms", "must not be negative")
	}
	return nil
}

// NewProperty собирает новую запись. ID и временные метки проставляет хранилище.
func NewProperty(in PropertyInput, owner uuid.UUID, images []string) (*Property, error) {
	if owner == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, _ := ParsePropertyType(in.Type)

	p := &Property{
		Title:       strings.TrimSpace(in.Title),
		Price:       in.Price,
		Description: in.Description,
		Type:        t,
		Location:    strings.TrimSpace(in.Location),
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Images:      []string{},
		CreatedBy:   owner,
	}
	p.AppendImages(images)
	return p, nil
}

// PropertyPatch - частичное обновление: nil означает "поле не передано".
type PropertyPatch struct {
	Title       *string
	Price       *float64
	Description *string
	Type        *string
	Location    *string
	Bedrooms    *int
	Bathrooms   *int
}

// IsEmpty - ни одного скалярного поля не передано.
func (pt PropertyPatch) IsEmpty() bool {
	return pt.Title == nil && pt.Price == nil && pt.Description == nil && pt.Type == nil &&
		pt.Location == nil && pt.Bedrooms == nil && pt.Bathrooms == nil
}

// ApplyPatch применяет переданные поля (last-write-wins по каждому полю).
// Запись меняется только если результат валиден.
func (p *Property) ApplyPatch(pt PropertyPatch) error {
	next := p.Clone()

	if pt.Title != nil {
		next.Title = strings.TrimSpace(*pt.Title)
		if next.Title == "" {
			return NewValidationError("title", "must not be empty")
		}
	}
	if pt.Price != nil {
		if err := validatePrice(*pt.Price); err != nil {
			return err
		}
		next.Price = *pt.Price
	}
	if pt.Description != nil {
		next.Description = *pt.Description
	}
	if pt.Type != nil {
		t, ok := ParsePropertyType(*pt.Type)
		if !ok {
			return NewValidationError("type", "must be one of house, apartment, land, villa")
		}
		next.Type = t
	}
	if pt.Location != nil {
		next.Location = strings.TrimSpace(*pt.Location)
		if next.Location == "" {
			return NewValidationError("location", "must not be empty")
		}
	}
	if pt.Bedrooms != nil {
		if *pt.Bedrooms < 0 {
			return NewValidationError("bedrooms", "must not be negative")
		}
		next.Bedrooms = *pt.Bedrooms
	}
	if pt.Bathrooms != nil {
		if *pt.Bathrooms < 0 {
			return NewValidationError("bathrooms", "must not be negative")
		}
		next.Bathrooms = *pt.Bathrooms
	}

	*p = next
	return nil
}

// AppendImages дописывает новые URI в конец, сохраняя порядок.
// URI, которые уже есть у записи, повторно не добавляются (повтор запроса не плодит дубли).
func (p *Property) AppendImages(uris []string) int {
	seen := make(map[string]struct{}, len(p.Images))
	for _, u := range p.Images {
		seen[u] = struct{}{}
	}
	added := 0
	for _, u := range uris {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		p.Images = append(p.Images, u)
		added++
	}
	return added
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return NewValidationError("price", "must be a finite number")
	}
	if price < 0 {
		return NewValidationError("price", "must not be negative")
	}
	return nil
}

// OwnerContact - данные владельца для карточки объекта.
type OwnerContact struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// PropertyDetails - запись вместе с владельцем (владелец может быть не найден).
type PropertyDetails struct {
	Property Property
	Owner    *OwnerContact
}

// MaxImagesPerRequest - сколько файлов можно приложить к одному запросу.
const MaxImagesPerRequest = 5
