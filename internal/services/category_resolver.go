package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CategoryResolverDeps bundles constructor inputs for the category resolver.
type CategoryResolverDeps struct {
	Store  StoreClient
	Logger *zap.Logger
}

type memoKey struct {
	name   string
	parent int64
}

type memoEntry struct {
	id int64
	ok bool
}

// categoryResolver owns the per-run resolution memo. A resolver instance is
// constructed fresh at run start and discarded with the run, so state never
// leaks between runs.
type categoryResolver struct {
	store  StoreClient
	logger *zap.Logger

	mu   sync.Mutex
	memo map[memoKey]memoEntry
}

// NewCategoryResolver constructs a resolver with an empty memo.
func NewCategoryResolver(deps CategoryResolverDeps) (CategoryResolver, error) {
	if deps.Store == nil {
		return nil, errors.New("category resolver: store client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &categoryResolver{
		store:  deps.Store,
		logger: logger,
		memo:   make(map[memoKey]memoEntry),
	}, nil
}

// Resolve returns the store category id for (name, parent). Outcomes,
// including failures, are memoized: at most one create-or-update round-trip
// happens per distinct pair per run.
func (r *categoryResolver) Resolve(ctx context.Context, name string, parent int64) (int64, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}

	key := memoKey{name: name, parent: parent}
	r.mu.Lock()
	if entry, hit := r.memo[key]; hit {
		r.mu.Unlock()
		return entry.id, entry.ok
	}
	r.mu.Unlock()

	id, ok := r.resolve(ctx, name, parent)

	r.mu.Lock()
	r.memo[key] = memoEntry{id: id, ok: ok}
	r.mu.Unlock()

	return id, ok
}

func (r *categoryResolver) resolve(ctx context.Context, name string, parent int64) (int64, bool) {
	logger := r.logger.With(zap.String("category", name), zap.Int64("parent", parent))

	matches, err := r.store.SearchCategories(ctx, name)
	if err != nil {
		logger.Error("category search failed", zap.Error(err))
		return 0, false
	}

	if len(matches) == 0 {
		created, err := r.store.CreateCategory(ctx, name, parent)
		if err != nil {
			logger.Error("category create failed", zap.Error(err))
			return 0, false
		}
		logger.Info("category created", zap.Int64("id", created.ID))
		return created.ID, true
	}

	if len(matches) > 1 {
		logger.Warn("multiple categories matched name, using first", zap.Int("matches", len(matches)))
	}

	first := matches[0]
	if first.Parent != parent {
		updated, err := r.store.UpdateCategoryParent(ctx, first.ID, parent)
		if err != nil {
			logger.Error("category re-parent failed", zap.Int64("id", first.ID), zap.Error(err))
			return 0, false
		}
		logger.Info("category re-parented", zap.Int64("id", updated.ID), zap.Int64("previous_parent", first.Parent))
		return updated.ID, true
	}

	return first.ID, true
}
