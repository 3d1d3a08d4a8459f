package services

import (
	"context"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
)

// FeedClient fetches the full source catalog in one authenticated read.
type FeedClient interface {
	FetchCatalog(ctx context.Context) (domain.Catalog, error)
}

// StoreClient is the storefront REST surface the engine writes through.
// Category search is a substring match on the store side, not exact
// equality; the resolver takes the first hit.
type StoreClient interface {
	SearchCategories(ctx context.Context, name string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string, parent int64) (domain.Category, error)
	UpdateCategoryParent(ctx context.Context, id int64, parent int64) (domain.Category, error)

	ProductsBySKU(ctx context.Context, sku string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (domain.Product, error)
}

// CategoryResolver maps a (name, forced parent) pair to a store category id,
// creating or re-parenting the category as needed. ok is false when the name
// is empty or the store write failed; the failure is memoized so the pair is
// not retried within the run.
type CategoryResolver interface {
	Resolve(ctx context.Context, name string, parent int64) (id int64, ok bool)
}

// SyncService executes one full synchronization pass over the source catalog.
type SyncService interface {
	Run(ctx context.Context) (domain.RunReport, error)
}
