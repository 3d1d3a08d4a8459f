package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
	"github.com/mercala-commerce/catalog-sync/internal/platform/httpx"
	"github.com/mercala-commerce/catalog-sync/internal/services"
)

// RunCoordinator is the slice of the scheduler the ops API needs: inspect
// the latest run and trigger one on demand.
type RunCoordinator interface {
	Latest() (domain.RunReport, bool)
	Trigger(ctx context.Context) (domain.RunReport, error)
}

// RunHandlers exposes synchronization runs over the ops API.
type RunHandlers struct {
	runs   RunCoordinator
	logger *zap.Logger
}

// NewRunHandlers constructs run handlers backed by the given coordinator.
func NewRunHandlers(runs RunCoordinator, logger *zap.Logger) (*RunHandlers, error) {
	if runs == nil {
		return nil, errors.New("handlers: run coordinator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunHandlers{runs: runs, logger: logger}, nil
}

// Register mounts the run routes on the given router group.
func (h *RunHandlers) Register(r chi.Router) {
	r.Get("/runs/latest", h.latest)
	r.Post("/runs", h.trigger)
}

func (h *RunHandlers) latest(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runs.Latest()
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("no_runs", "no synchronization run has completed yet", http.StatusNotFound))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *RunHandlers) trigger(w http.ResponseWriter, r *http.Request) {
	report, err := h.runs.Trigger(r.Context())
	if errors.Is(err, services.ErrRunInFlight) {
		httpx.WriteError(r.Context(), w, httpx.NewError("run_in_flight", "a synchronization run is already active", http.StatusConflict))
		return
	}
	if err != nil {
		h.logger.Error("triggered run failed", zap.Error(err))
		httpx.WriteError(r.Context(), w, httpx.NewError("run_failed", err.Error(), http.StatusBadGateway).
			WithDetails(map[string]any{"run_id": report.RunID}))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
