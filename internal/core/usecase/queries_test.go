package usecase

import (
	"context"
	"errors"
	"math"
	memory_adapter "property-service/internal/adapters/memory"
	"property-service/internal/core/domain"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"pgregory.net/rapid"
)

func TestListProperties_Scenarios(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	owner := uuid.New()

	if _, err := f.create.Execute(ctx, owner, seaView(), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other := seaView()
	other.Title = "City Flat"
	other.Location = "Mumbai"
	other.Type = "apartment"
	other.Price = 120000
	if _, err := f.create.Execute(ctx, owner, other, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	page, err := f.list.Execute(ctx, domain.SearchParams{Location: "goa"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 || page.Properties[0].Title != "Sea View" {
		t.Fatalf("expected Sea View only, got %+v", page)
	}

	page, err = f.list.Execute(ctx, domain.SearchParams{MinPrice: "600000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 0 || page.Pages != 0 || len(page.Properties) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}

	page, err = f.list.Execute(ctx, domain.SearchParams{Type: "castle"})
	if err != nil || page.Total != 0 {
		t.Fatalf("unknown type must give an empty result, got %+v (%v)", page, err)
	}
}

func TestListProperties_WindowBeyondEndIsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	owner := uuid.New()
	for i := 0; i < 3; i++ {
		if _, err := f.create.Execute(ctx, owner, seaView(), nil); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	for _, raw := range []string{"2", "400000000", strconv.Itoa(math.MaxInt)} {
		page, err := f.list.Execute(ctx, domain.SearchParams{Page: raw})
		if err != nil {
			t.Fatalf("page=%s: unexpected error: %v", raw, err)
		}
		if page.Total != 3 || page.Pages != 1 || len(page.Properties) != 0 {
			t.Fatalf("page=%s: expected empty page with total 3, got %+v", raw, page)
		}
	}

	for _, raw := range []string{"101", "500"} {
		page, err := f.list.Execute(ctx, domain.SearchParams{Limit: raw})
		if err != nil {
			t.Fatalf("limit=%s: unexpected error: %v", raw, err)
		}
		if page.Total != 3 || page.Pages != 1 || len(page.Properties) != 3 {
			t.Fatalf("limit=%s: expected all records on one page, got %+v", raw, page)
		}
	}

	page, err := f.list.Execute(ctx, domain.SearchParams{Bedrooms: "-1"})
	if err != nil || page.Total != 0 || len(page.Properties) != 0 {
		t.Fatalf("negative bedrooms must give an empty result, got %+v (%v)", page, err)
	}
}

func TestListProperties_ValidationErrorPropagates(t *testing.T) {
	f := newFixture()
	_, err := f.list.Execute(context.Background(), domain.SearchParams{MinPrice: "cheap"})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "minPrice" {
		t.Fatalf("expected validation error on minPrice, got %v", err)
	}
}

func TestListProperties_StoreFailure(t *testing.T) {
	uc := NewListPropertiesUseCase(&brokenStore{PropertyStoragePort: memory_adapter.NewPropertyStore(), failCount: true})
	if _, err := uc.Execute(context.Background(), domain.SearchParams{}); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestGetMyProperties(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u1, u2 := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		f.create.Execute(ctx, u1, seaView(), nil)
	}
	f.create.Execute(ctx, u2, seaView(), nil)

	mine, err := f.mine.Execute(ctx, u1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("expected 3 records, got %d", len(mine))
	}
	for i := 1; i < len(mine); i++ {
		if mine[i].CreatedAt.After(mine[i-1].CreatedAt) {
			t.Fatal("expected newest first")
		}
	}

	none, err := f.mine.Execute(ctx, uuid.New())
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v (%v)", none, err)
	}
}

func TestGetPropertyDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	owner := uuid.New()
	p, _ := f.create.Execute(ctx, owner, seaView(), nil)

	users := memory_adapter.NewUserDirectory(domain.OwnerContact{ID: owner, Name: "Asha", Email: "asha@example.com"})
	d, err := NewGetPropertyDetailsUseCase(f.store, users).Execute(ctx, p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Owner == nil || d.Owner.Email != "asha@example.com" {
		t.Fatalf("expected owner contact, got %+v", d.Owner)
	}

	d, err = NewGetPropertyDetailsUseCase(f.store, brokenDirectory{}).Execute(ctx, p.ID)
	if err != nil {
		t.Fatalf("directory failure must degrade, got %v", err)
	}
	if d.Owner != nil || d.Property.CreatedBy != owner {
		t.Fatalf("expected owner=nil with createdBy kept, got %+v", d)
	}

	if _, err := NewGetPropertyDetailsUseCase(f.store, users).Execute(ctx, uuid.New()); !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

// =============================================================================
// Property: поиск согласован с предикатом, сортировкой и пагинацией
// =============================================================================

func testListProperties_Properties(t *rapid.T) {
	ctx := context.Background()
	f := newFixture()
	owner := uuid.New()

	n := rapid.IntRange(0, 25).Draw(t, "n")
	for i := 0; i < n; i++ {
		in := domain.PropertyInput{
			Title:    rapid.SampledFrom([]string{"Sea View", "Hill Top", "City Flat"}).Draw(t, "title"),
			Price:    float64(rapid.IntRange(0, 1000).Draw(t, "price")),
			Type:     string(rapid.SampledFrom(domain.PropertyTypes()).Draw(t, "type")),
			Location: rapid.SampledFrom([]string{"Goa", "Pune", "Mumbai"}).Draw(t, "location"),
			Bedrooms: rapid.IntRange(0, 4).Draw(t, "bedrooms"),
		}
		if _, err := f.create.Execute(ctx, owner, in, nil); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	var params domain.SearchParams
	var lo, hi *float64
	if rapid.Bool().Draw(t, "withMin") {
		v := rapid.IntRange(0, 1000).Draw(t, "minPrice")
		params.MinPrice = strconv.Itoa(v)
		fv := float64(v)
		lo = &fv
	}
	if rapid.Bool().Draw(t, "withMax") {
		v := rapid.IntRange(0, 1000).Draw(t, "maxPrice")
		params.MaxPrice = strconv.Itoa(v)
		fv := float64(v)
		hi = &fv
	}
	params.SortBy = rapid.SampledFrom([]string{"", "price_low", "price_high", "bogus"}).Draw(t, "sortBy")
	limit := rapid.IntRange(1, 10).Draw(t, "limit")
	page := rapid.IntRange(1, 5).Draw(t, "page")
	params.Limit = strconv.Itoa(limit)
	params.Page = strconv.Itoa(page)

	res, err := f.list.Execute(ctx, params)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if lo != nil && hi != nil && *lo > *hi && res.Total != 0 {
		t.Fatalf("inverted range must be empty, got total %d", res.Total)
	}
	if res.Pages != domain.TotalPages(res.Total, limit) {
		t.Fatalf("pages mismatch: total=%d limit=%d pages=%d", res.Total, limit, res.Pages)
	}
	if page > res.Pages && len(res.Properties) != 0 {
		t.Fatalf("page beyond range must be empty, got %d items", len(res.Properties))
	}
	if len(res.Properties) > limit {
		t.Fatalf("page overflow: %d > %d", len(res.Properties), limit)
	}

	for i, p := range res.Properties {
		if lo != nil && p.Price < *lo {
			t.Fatalf("price %v below min %v", p.Price, *lo)
		}
		if hi != nil && p.Price > *hi {
			t.Fatalf("price %v above max %v", p.Price, *hi)
		}
		if i == 0 {
			continue
		}
		prev := res.Properties[i-1]
		switch params.SortBy {
		case "price_low":
			if p.Price < prev.Price {
				t.Fatal("price_low must be non-decreasing")
			}
		case "price_high":
			if p.Price > prev.Price {
				t.Fatal("price_high must be non-increasing")
			}
		default:
			if p.CreatedAt.After(prev.CreatedAt) {
				t.Fatal("default order must be newest first")
			}
		}
	}

	if params.MinPrice == "" && params.MaxPrice == "" && res.Total != n {
		t.Fatalf("no filters must count every record: %d != %d", res.Total, n)
	}
}

func TestListProperties_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testListProperties_Properties)
}
