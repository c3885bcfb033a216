package domain

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestNewPageRequest(t *testing.T) {
	r, err := NewPageRequest(3, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Skip() != 12 || r.Take() != 6 {
		t.Fatalf("expected skip=12 take=6, got skip=%d take=%d", r.Skip(), r.Take())
	}

	for _, tc := range [][2]int{{0, 6}, {-1, 6}, {1, 0}, {1, -3}} {
		if _, err := NewPageRequest(tc[0], tc[1]); !errors.Is(err, ErrValidation) {
			t.Errorf("NewPageRequest(%d, %d): expected validation error, got %v", tc[0], tc[1], err)
		}
	}

	for _, tc := range [][2]int{{1, 500}, {400000000, 6}, {math.MaxInt, math.MaxInt}} {
		if _, err := NewPageRequest(tc[0], tc[1]); err != nil {
			t.Errorf("NewPageRequest(%d, %d): unexpected error %v", tc[0], tc[1], err)
		}
	}
}

func TestPageRequest_SkipSaturates(t *testing.T) {
	r, _ := NewPageRequest(400000000, 6)
	if r.Skip() != 399999999*6 {
		t.Fatalf("unexpected skip %d", r.Skip())
	}

	r, _ = NewPageRequest(math.MaxInt, 100)
	if r.Skip() != math.MaxInt {
		t.Fatalf("overflowing skip must saturate, got %d", r.Skip())
	}

	r, _ = NewPageRequest(1, math.MaxInt)
	if r.Skip() != 0 {
		t.Fatalf("first page must not skip, got %d", r.Skip())
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, limit, want int }{
		{0, 6, 0},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{12, 5, 3},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func testTotalPages_Properties(t *rapid.T) {
	total := rapid.IntRange(0, 100000).Draw(t, "total")
	limit := rapid.IntRange(1, 1000).Draw(t, "limit")

	pages := TotalPages(total, limit)
	if pages*limit < total {
		t.Fatalf("pages*limit must cover total: pages=%d limit=%d total=%d", pages, limit, total)
	}
	if pages > 0 && (pages-1)*limit >= total {
		t.Fatalf("last page must be non-empty: pages=%d limit=%d total=%d", pages, limit, total)
	}
}

func TestTotalPages_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testTotalPages_Properties)
}
