package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientDeps{Config: Config{
		BaseURL:        server.URL + "/",
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(ClientDeps{Config: Config{ConsumerKey: "ck", ConsumerSecret: "cs"}}); err == nil {
		t.Fatal("expected error for missing base url")
	}
	if _, err := NewClient(ClientDeps{Config: Config{BaseURL: "https://shop.example.com"}}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestSearchCategoriesSendsQueryAndAuth(t *testing.T) {
	var gotPath, gotSearch string
	var gotKey, gotSecret string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSearch = r.URL.Query().Get("search")
		gotKey, gotSecret, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 7, "name": "Shoes", "parent": 29}]`))
	}))

	categories, err := client.SearchCategories(context.Background(), "Shoes")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotPath != "/products/categories" || gotSearch != "Shoes" {
		t.Fatalf("unexpected request: path=%q search=%q", gotPath, gotSearch)
	}
	if gotKey != "ck_test" || gotSecret != "cs_test" {
		t.Fatalf("expected basic auth credentials, got %q/%q", gotKey, gotSecret)
	}
	if len(categories) != 1 || categories[0].ID != 7 || categories[0].Parent != 29 {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}

func TestCreateCategoryPostsNameAndParent(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 12, "name": "Shoes", "parent": 29}`))
	}))

	created, err := client.CreateCategory(context.Background(), "Shoes", 29)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotBody["name"] != "Shoes" || gotBody["parent"] != float64(29) {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
	if created.ID != 12 {
		t.Fatalf("unexpected created category: %+v", created)
	}
}

func TestUpdateCategoryParentPutsToCategoryPath(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 12, "name": "Shoes", "parent": 29}`))
	}))

	if _, err := client.UpdateCategoryParent(context.Background(), 12, 29); err != nil {
		t.Fatalf("update: %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/products/categories/12" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotBody["parent"] != float64(29) {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestProductsBySKUFiltersBySKU(t *testing.T) {
	var gotSKU string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSKU = r.URL.Query().Get("sku")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 42, "sku": "SKU-1", "regular_price": "15.5"}]`))
	}))

	products, err := client.ProductsBySKU(context.Background(), "SKU-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if gotSKU != "SKU-1" {
		t.Fatalf("expected sku filter, got %q", gotSKU)
	}
	if len(products) != 1 || products[0].ID != 42 || products[0].RegularPrice != "15.5" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestCreateProductSendsPayload(t *testing.T) {
	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 100, "sku": "SKU-1"}`))
	}))

	input := domain.ProductInput{
		Name:          "Red shoe",
		RegularPrice:  "15.5",
		SKU:           "SKU-1",
		StockQuantity: 7,
		Categories:    []domain.CategoryRef{{ID: 10}},
		Images:        []domain.ProductImage{{Src: nil}},
	}
	created, err := client.CreateProduct(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.ID != 100 {
		t.Fatalf("unexpected created product: %+v", created)
	}
	if gotBody["sku"] != "SKU-1" || gotBody["regular_price"] != "15.5" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
	images, ok := gotBody["images"].([]any)
	if !ok || len(images) != 1 {
		t.Fatalf("expected one image in payload, got %+v", gotBody["images"])
	}
	if src := images[0].(map[string]any)["src"]; src != nil {
		t.Fatalf("expected explicit null src, got %v", src)
	}
}

func TestUpdateProductPutsToProductPath(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 42, "sku": "SKU-1"}`))
	}))

	if _, err := client.UpdateProduct(context.Background(), 42, domain.ProductInput{SKU: "SKU-1"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/products/42" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestErrorResponsesMapToAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code": "woocommerce_rest_term_invalid", "message": "Resource does not exist."}`))
	}))

	_, err := client.SearchCategories(context.Background(), "Ghost")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "woocommerce_rest_term_invalid" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !apiErr.IsNotFound() {
		t.Fatal("expected IsNotFound to report true for 404")
	}
}
