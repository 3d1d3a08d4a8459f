package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
	"github.com/mercala-commerce/catalog-sync/internal/platform/runctx"
)

var tracer = otel.Tracer("github.com/mercala-commerce/catalog-sync/internal/services")

// TaxonomyGroups holds the configured forced-parent ids partitioning the
// store's category tree.
type TaxonomyGroups struct {
	CategoryParent int64
	VendorParent   int64
	TagParent      int64
}

// SyncServiceDeps bundles the collaborators required to construct the
// synchronizer.
type SyncServiceDeps struct {
	Feed     FeedClient
	Store    StoreClient
	Taxonomy TaxonomyGroups
	Clock    func() time.Time
	RunIDs   func() string
	Logger   *zap.Logger
}

type syncService struct {
	feed     FeedClient
	store    StoreClient
	taxonomy TaxonomyGroups
	clock    func() time.Time
	newRunID func() string
	logger   *zap.Logger

	itemCounter metric.Int64Counter
}

// NewSyncService wires dependencies into a SyncService implementation.
func NewSyncService(deps SyncServiceDeps) (SyncService, error) {
	if deps.Feed == nil {
		return nil, errors.New("sync service: feed client is required")
	}
	if deps.Store == nil {
		return nil, errors.New("sync service: store client is required")
	}
	if deps.Taxonomy.CategoryParent == 0 || deps.Taxonomy.VendorParent == 0 || deps.Taxonomy.TagParent == 0 {
		return nil, errors.New("sync service: all taxonomy parent ids are required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	runIDs := deps.RunIDs
	if runIDs == nil {
		runIDs = func() string {
			return ulid.Make().String()
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter("github.com/mercala-commerce/catalog-sync/internal/services")
	itemCounter, err := meter.Int64Counter("catalog_sync.items",
		metric.WithDescription("Feed items processed, partitioned by outcome."))
	if err != nil {
		return nil, fmt.Errorf("sync service: init item counter: %w", err)
	}

	return &syncService{
		feed:     deps.Feed,
		store:    deps.Store,
		taxonomy: deps.Taxonomy,
		clock: func() time.Time {
			return clock().UTC()
		},
		newRunID:    runIDs,
		logger:      logger,
		itemCounter: itemCounter,
	}, nil
}

// Run performs one full pass: fetch the catalog once, then walk categories
// and items sequentially, one resolve/compare/write cycle per item. Only a
// feed fetch failure aborts the run; item-level failures are recorded and
// skipped over.
func (s *syncService) Run(ctx context.Context) (domain.RunReport, error) {
	runID := s.newRunID()
	logger := s.logger.With(zap.String("run_id", runID))
	ctx = runctx.WithRunID(runctx.WithLogger(ctx, logger), runID)

	ctx, span := tracer.Start(ctx, "catalog_sync.run", trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	report := domain.RunReport{RunID: runID, StartedAt: s.clock()}

	catalog, err := s.feed.FetchCatalog(ctx)
	if err != nil {
		report.FinishedAt = s.clock()
		logger.Error("catalog fetch failed, aborting run", zap.Error(err))
		return report, fmt.Errorf("sync: fetch catalog: %w", err)
	}
	logger.Info("catalog fetched", zap.Int("categories", len(catalog)))

	resolver, err := NewCategoryResolver(CategoryResolverDeps{Store: s.store, Logger: logger})
	if err != nil {
		report.FinishedAt = s.clock()
		return report, fmt.Errorf("sync: %w", err)
	}

	// The feed arrives as JSON objects, so its ordering is not observable
	// here; sorted iteration keeps runs deterministic.
	categoryNames := sortedKeys(catalog)

	// Pre-pass: make sure every top-level category exists under the
	// category group before any item is written.
	for _, categoryName := range categoryNames {
		resolver.Resolve(ctx, categoryName, s.taxonomy.CategoryParent)
	}

	for _, categoryName := range categoryNames {
		items := catalog[categoryName]
		for _, itemKey := range sortedKeys(items) {
			result := s.syncItem(ctx, resolver, categoryName, items[itemKey])
			report.Record(result)
			s.itemCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(result.Outcome))))
		}
	}

	report.FinishedAt = s.clock()
	logger.Info("run finished",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *syncService) syncItem(ctx context.Context, resolver CategoryResolver, categoryName string, item domain.Item) domain.ItemResult {
	logger := runctx.Logger(ctx).With(zap.String("sku", item.Code), zap.String("item", item.Name))
	result := domain.ItemResult{SKU: item.Code, Name: item.Name, Category: categoryName}

	existing, err := s.store.ProductsBySKU(ctx, item.Code)
	if err != nil {
		logger.Error("product lookup failed", zap.Error(err))
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
		return result
	}

	// Vendor and tags are resolved regardless of whether the item needs a
	// write; the memo keeps repeats cheap.
	categoryID, _ := resolver.Resolve(ctx, categoryName, s.taxonomy.CategoryParent)
	vendorID, _ := resolver.Resolve(ctx, item.Vendor, s.taxonomy.VendorParent)
	tagIDs := make([]int64, 0, len(item.Tags))
	for _, tag := range item.Tags {
		// Unresolved tags stay as zeros; the builder drops them.
		tagID, _ := resolver.Resolve(ctx, tag, s.taxonomy.TagParent)
		tagIDs = append(tagIDs, tagID)
	}

	if len(existing) > 0 {
		if len(existing) > 1 {
			logger.Warn("multiple products share sku, using first", zap.Int("matches", len(existing)))
		}
		current := existing[0]
		result.ProductID = current.ID

		if !NeedsUpdate(current, item) {
			result.Outcome = domain.OutcomeUnchanged
			return result
		}

		input := BuildProduct(item, categoryID, vendorID, tagIDs)
		updated, err := s.store.UpdateProduct(ctx, current.ID, input)
		if err != nil {
			logger.Error("product update failed", zap.Int64("product_id", current.ID), zap.Error(err))
			result.Outcome = domain.OutcomeFailed
			result.Error = err.Error()
			return result
		}
		logger.Info("product updated", zap.Int64("product_id", updated.ID))
		result.Outcome = domain.OutcomeUpdated
		return result
	}

	input := BuildProduct(item, categoryID, vendorID, tagIDs)
	created, err := s.store.CreateProduct(ctx, input)
	if err != nil {
		logger.Error("product create failed", zap.Error(err))
		result.Outcome = domain.OutcomeFailed
		result.Error = err.Error()
		return result
	}
	logger.Info("product created", zap.Int64("product_id", created.ID))
	result.ProductID = created.ID
	result.Outcome = domain.OutcomeCreated
	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
