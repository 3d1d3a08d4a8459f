package services

import (
	"testing"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
)

func TestBuildProductProjectsFields(t *testing.T) {
	item := domain.Item{
		Name:        "Red shoe",
		Price:       floatPtr(15.5),
		Description: "Comfortable\r\nred shoe",
		Code:        "SKU-1",
		Stock:       domain.Stock{Infinite: true},
		Weight:      floatPtr(0.8),
		Photo:       &domain.Photo{Image: domain.PhotoImage{URL: "https://feed.example.com/images/abc123.jpg"}},
	}

	input := BuildProduct(item, 10, 11, []int64{12, 13})

	if input.Name != "Red shoe" || input.SKU != "SKU-1" {
		t.Fatalf("unexpected identity fields: %+v", input)
	}
	if input.RegularPrice != "15.5" {
		t.Fatalf("expected price 15.5, got %q", input.RegularPrice)
	}
	if input.Description != "<p>Comfortable<br/>red shoe</p>" {
		t.Fatalf("unexpected description: %q", input.Description)
	}
	if input.StockQuantity != 1000000 {
		t.Fatalf("expected sentinel stock, got %d", input.StockQuantity)
	}
	if input.Weight != "0.8" {
		t.Fatalf("expected weight 0.8, got %q", input.Weight)
	}
	if len(input.Images) != 1 || input.Images[0].Src == nil || *input.Images[0].Src != item.Photo.Image.URL {
		t.Fatalf("unexpected images: %+v", input.Images)
	}

	wantCategories := []int64{10, 11, 12, 13}
	if len(input.Categories) != len(wantCategories) {
		t.Fatalf("expected %d categories, got %+v", len(wantCategories), input.Categories)
	}
	for i, want := range wantCategories {
		if input.Categories[i].ID != want {
			t.Fatalf("category %d: expected id %d, got %d", i, want, input.Categories[i].ID)
		}
	}
}

func TestBuildProductFiltersAndDeduplicatesCategories(t *testing.T) {
	item := domain.Item{Name: "Thing", Code: "SKU-2"}

	input := BuildProduct(item, 10, 0, []int64{10, 0, 12, 12})

	want := []int64{10, 12}
	if len(input.Categories) != len(want) {
		t.Fatalf("expected %v, got %+v", want, input.Categories)
	}
	for i, id := range want {
		if input.Categories[i].ID != id {
			t.Fatalf("expected category order %v, got %+v", want, input.Categories)
		}
	}
}

func TestBuildProductWithoutOptionalFields(t *testing.T) {
	item := domain.Item{Name: "Bare", Code: "SKU-3", Stock: domain.Stock{Quantity: 4}}

	input := BuildProduct(item, 10, 11, nil)

	if input.RegularPrice != "" {
		t.Fatalf("expected empty price, got %q", input.RegularPrice)
	}
	if input.Weight != "" {
		t.Fatalf("expected empty weight, got %q", input.Weight)
	}
	if len(input.Images) != 1 || input.Images[0].Src != nil {
		t.Fatalf("expected single null-src image, got %+v", input.Images)
	}
}
