package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/core/domain"
	"github.com/julianszw/inventory-management-system/internal/core/service"
	"github.com/julianszw/inventory-management-system/internal/metrics"
)

// CentralHandler exposes the central node's HTTP surface.
type CentralHandler struct {
	merge    *service.MergeService
	products *service.ProductService
	metrics  *metrics.Collector
}

func NewCentralHandler(merge *service.MergeService, products *service.ProductService, collector *metrics.Collector) *CentralHandler {
	return &CentralHandler{merge: merge, products: products, metrics: collector}
}

func (h *CentralHandler) Routes(logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(TraceMiddleware(logger))

	r.Get("/health", h.Health)
	r.Get("/metrics", h.Metrics)
	r.Get("/products", h.ListProducts)
	r.Get("/stock/{productId}", h.GetStock)
	r.Post("/sync/pull", h.Pull)
	return r
}

func (h *CentralHandler) Pull(w http.ResponseWriter, r *http.Request) {
	var batch domain.SyncBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(batch.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}

	result, err := h.merge.ApplyBatch(r.Context(), batch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.metrics.RecordMergeResult(result.Applied, result.Skipped)
	writeJSON(w, http.StatusOK, result)
}

func (h *CentralHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	snap, err := h.merge.GetSnapshot(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "stock not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *CentralHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CentralHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CentralHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.GetStats())
}
