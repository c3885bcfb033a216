package rest

import (
	"property-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// MessageResponse - тело ошибок и простых подтверждений
type MessageResponse struct {
	Message string `json:"message"`
}

// PropertyResponse - запись в ответах API. Поле _id оставлено для совместимости с фронтендом.
type PropertyResponse struct {
	ID          uuid.UUID `json:"_id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Images      []string  `json:"images"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnerResponse - createdBy в карточке объекта. Имя и email опускаются, если владелец не найден.
type OwnerResponse struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

type PropertyDetailsResponse struct {
	PropertyResponse
	CreatedBy OwnerResponse `json:"createdBy"`
}

type PropertyPageResponse struct {
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Pages      int                `json:"pages"`
	Properties []PropertyResponse `json:"properties"`
}

// PropertyRequest - поля формы/JSON. Указатели отличают "не передано" от нулевого значения.
type PropertyRequest struct {
	Title       *string  `json:"title,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty"`
	Bathrooms   *int     `json:"bathrooms,omitempty"`
}

func (r PropertyRequest) toInput() domain.PropertyInput {
	var in domain.PropertyInput
	if r.Title != nil {
		in.Title = *r.Title
	}
	if r.Price != nil {
		in.Price = *r.Price
	}
	if r.Description != nil {
		in.Description = *r.Description
	}
	if r.Type != nil {
		in.Type = *r.Type
	}
	if r.Location != nil {
		in.Location = *r.Location
	}
	if r.Bedrooms != nil {
		in.Bedrooms = *r.Bedrooms
	}
	if r.Bathrooms != nil {
		in.Bathrooms = *r.Bathrooms
	}
	return in
}

func (r PropertyRequest) toPatch() domain.PropertyPatch {
	return domain.PropertyPatch{
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Type:        r.Type,
		Location:    r.Location,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
	}
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return PropertyResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Type:        string(p.Type),
		Location:    p.Location,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Images:      images,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPropertyResponses(props []domain.Property) []PropertyResponse {
	out := make([]PropertyResponse, len(props))
	for i, p := range props {
		out[i] = toPropertyResponse(p)
	}
	return out
}

func toDetailsResponse(d domain.PropertyDetails) PropertyDetailsResponse {
	owner := OwnerResponse{ID: d.Property.CreatedBy}
	if d.Owner != nil {
		owner.Name = d.Owner.Name
		owner.Email = d.Owner.Email
	}
	return PropertyDetailsResponse{
		PropertyResponse: toPropertyResponse(d.Property),
		CreatedBy:        owner,
	}
}

func toPageResponse(p domain.PropertyPage) PropertyPageResponse {
	return PropertyPageResponse{
		Total:      p.Total,
		Page:       p.Page,
		Pages:      p.Pages,
		Properties: toPropertyResponses(p.Properties),
	}
}
