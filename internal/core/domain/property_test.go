package domain

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func validInput() PropertyInput {
	return PropertyInput{
		Title:    "Sea View",
		Price:    450000,
		Type:     "villa",
		Location: "Goa",
		Bedrooms: 3,
	}
}

func TestNewProperty(t *testing.T) {
	owner := uuid.New()
	p, err := NewProperty(validInput(), owner, []string{"/uploads/a.jpg", "/uploads/a.jpg", "/uploads/b.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CreatedBy != owner || p.Type != PropertyTypeVilla {
		t.Fatalf("unexpected property: %+v", p)
	}
	if len(p.Images) != 2 || p.Images[0] != "/uploads/a.jpg" || p.Images[1] != "/uploads/b.jpg" {
		t.Fatalf("unexpected images: %v", p.Images)
	}

	if _, err := NewProperty(validInput(), uuid.Nil, nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPropertyInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PropertyInput)
		field  string
	}{
		{"empty title", func(in *PropertyInput) { in.Title = "  " }, "title"},
		{"negative price", func(in *PropertyInput) { in.Price = -1 }, "price"},
		{"NaN price", func(in *PropertyInput) { in.Price = math.NaN() }, "price"},
		{"missing type", func(in *PropertyInput) { in.Type = "" }, "type"},
		{"unknown type", func(in *PropertyInput) { in.Type = "castle" }, "type"},
		{"empty location", func(in *PropertyInput) { in.Location = "" }, "location"},
		{"negative bedrooms", func(in *PropertyInput) { in.Bedrooms = -2 }, "bedrooms"},
		{"negative bathrooms", func(in *PropertyInput) { in.Bathrooms = -2 }, "bathrooms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			var vErr *ValidationError
			if err := in.Validate(); !errors.As(err, &vErr) || vErr.Field != tt.field {
				t.Fatalf("expected validation error on %q, got %v", tt.field, err)
			}
		})
	}
}

func TestApplyPatch(t *testing.T) {
	p, _ := NewProperty(validInput(), uuid.New(), nil)
	before := p.Clone()

	bad := -5.0
	if err := p.ApplyPatch(PropertyPatch{Title: strPtr("New"), Price: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if p.Title != before.Title || p.Price != before.Price {
		t.Fatal("failed patch must leave the record untouched")
	}

	price := 500000.0
	if err := p.ApplyPatch(PropertyPatch{Price: &price, Type: strPtr("house")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Price != price || p.Type != PropertyTypeHouse || p.Title != before.Title {
		t.Fatalf("unexpected patched property: %+v", p)
	}
}

func TestAppendImages_Idempotent(t *testing.T) {
	p := &Property{Images: []string{"/uploads/a.jpg"}}
	if n := p.AppendImages([]string{"/uploads/b.jpg", ""}); n != 1 {
		t.Fatalf("expected 1 added, got %d", n)
	}
	if n := p.AppendImages([]string{"/uploads/a.jpg", "/uploads/b.jpg"}); n != 0 {
		t.Fatalf("expected 0 added, got %d", n)
	}
	if len(p.Images) != 2 || p.Images[0] != "/uploads/a.jpg" {
		t.Fatalf("order must be preserved, got %v", p.Images)
	}
}

func TestCheckOwnership(t *testing.T) {
	owner := uuid.New()
	p := &Property{CreatedBy: owner}

	if err := CheckOwnership(p, owner); err != nil {
		t.Fatalf("owner must be allowed, got %v", err)
	}
	if err := CheckOwnership(p, uuid.New()); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := CheckOwnership(p, uuid.Nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	// идентификатор из строки в другом регистре - тот же пользователь
	same := uuid.MustParse(strings.ToUpper(owner.String()))
	if err := CheckOwnership(p, same); err != nil {
		t.Fatalf("canonical ids must compare equal, got %v", err)
	}
}

func strPtr(s string) *string { return &s }
