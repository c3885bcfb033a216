package domain

import (
	"errors"
	"testing"
)

func TestParseSearchQuery_Defaults(t *testing.T) {
	q, err := ParseSearchQuery(SearchParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != DefaultPage || q.Limit != DefaultPageLimit {
		t.Fatalf("expected page=%d limit=%d, got page=%d limit=%d", DefaultPage, DefaultPageLimit, q.Page, q.Limit)
	}
	if q.MinPrice != nil || q.MaxPrice != nil || q.Bedrooms != nil {
		t.Fatal("absent numeric params must stay nil")
	}
	if q.LocationText != "" || q.PropertyType != "" || q.SortKey != "" {
		t.Fatal("absent text params must stay empty")
	}
}

func TestParseSearchQuery_Values(t *testing.T) {
	q, err := ParseSearchQuery(SearchParams{
		Location: " goa ",
		MinPrice: "100000",
		MaxPrice: "500000.5",
		Type:     "villa",
		Bedrooms: "3",
		SortBy:   "price_low",
		Page:     "2",
		Limit:    "10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.LocationText != "goa" {
		t.Errorf("LocationText = %q", q.LocationText)
	}
	if q.MinPrice == nil || *q.MinPrice != 100000 {
		t.Errorf("MinPrice = %v", q.MinPrice)
	}
	if q.MaxPrice == nil || *q.MaxPrice != 500000.5 {
		t.Errorf("MaxPrice = %v", q.MaxPrice)
	}
	if q.Bedrooms == nil || *q.Bedrooms != 3 {
		t.Errorf("Bedrooms = %v", q.Bedrooms)
	}
	if q.PropertyType != "villa" || q.SortKey != "price_low" || q.Page != 2 || q.Limit != 10 {
		t.Errorf("unexpected query: %+v", q)
	}
}

func TestParseSearchQuery_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		in    SearchParams
		field string
	}{
		{"non-numeric minPrice", SearchParams{MinPrice: "cheap"}, "minPrice"},
		{"NaN maxPrice", SearchParams{MaxPrice: "NaN"}, "maxPrice"},
		{"Inf minPrice", SearchParams{MinPrice: "+Inf"}, "minPrice"},
		{"fractional bedrooms", SearchParams{Bedrooms: "2.5"}, "bedrooms"},
		{"non-numeric page", SearchParams{Page: "two"}, "page"},
		{"zero page", SearchParams{Page: "0"}, "page"},
		{"zero limit", SearchParams{Limit: "0"}, "limit"},
		{"negative limit", SearchParams{Limit: "-5"}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSearchQuery(tt.in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if vErr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, vErr.Field)
			}
		})
	}
}

func TestParseSearchQuery_UnknownTypeIsNotAnError(t *testing.T) {
	q, err := ParseSearchQuery(SearchParams{Type: "castle"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.PropertyType != "castle" {
		t.Fatalf("raw type must be kept, got %q", q.PropertyType)
	}
}

func TestParseSearchQuery_NoUpperBoundOnWindow(t *testing.T) {
	q, err := ParseSearchQuery(SearchParams{Page: "400000000", Limit: "500", Bedrooms: "-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != 400000000 || q.Limit != 500 {
		t.Fatalf("window must be kept as given, got page=%d limit=%d", q.Page, q.Limit)
	}
	if q.Bedrooms == nil || *q.Bedrooms != -1 {
		t.Fatalf("negative bedrooms must be kept for the predicate, got %v", q.Bedrooms)
	}
}
