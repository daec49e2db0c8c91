package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/core/service"
	"github.com/julianszw/inventory-management-system/internal/metrics"
	"github.com/julianszw/inventory-management-system/internal/port"
)

// StoreHandler exposes the store node's HTTP surface.
type StoreHandler struct {
	stock    *service.StockService
	products *service.ProductService
	sync     *service.SyncService
	metrics  *metrics.Collector
}

func NewStoreHandler(stock *service.StockService, products *service.ProductService, sync *service.SyncService, collector *metrics.Collector) *StoreHandler {
	return &StoreHandler{stock: stock, products: products, sync: sync, metrics: collector}
}

func (h *StoreHandler) Routes(logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(TraceMiddleware(logger))

	r.Get("/health", h.Health)
	r.Get("/metrics", h.Metrics)
	r.Get("/products", h.ListProducts)
	r.Get("/stock/{productId}", h.GetStock)
	r.Post("/stock/adjust", h.Adjust)
	r.Post("/stock/allocate", h.Allocate)
	r.Post("/stock/commit", h.Commit)
	r.Post("/stock/release", h.Release)
	r.Post("/sync/push", h.Push)
	return r
}

type adjustRequest struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
}

type reservationRequest struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *StoreHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	snap, err := h.stock.GetSnapshot(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeStockError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *StoreHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	snap, err := h.stock.Adjust(r.Context(), req.ProductID, req.Delta)
	if err != nil {
		h.metrics.RecordMutationFailure()
		h.writeStockError(w, err)
		return
	}
	h.metrics.RecordMutationSuccess()
	writeJSON(w, http.StatusOK, snap)
}

func (h *StoreHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReservation(w, r)
	if !ok {
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	result, err := h.stock.Allocate(r.Context(), idemKey, req.OrderID, req.ProductID, req.Quantity)
	if err != nil {
		h.metrics.RecordMutationFailure()
		h.writeStockError(w, err)
		return
	}
	h.metrics.RecordMutationSuccess()
	writeJSON(w, http.StatusOK, result)
}

func (h *StoreHandler) Commit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReservation(w, r)
	if !ok {
		return
	}

	result, err := h.stock.Commit(r.Context(), req.OrderID, req.ProductID, req.Quantity)
	if err != nil {
		h.metrics.RecordMutationFailure()
		h.writeStockError(w, err)
		return
	}
	h.metrics.RecordMutationSuccess()
	writeJSON(w, http.StatusOK, result)
}

func (h *StoreHandler) Release(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReservation(w, r)
	if !ok {
		return
	}

	result, err := h.stock.Release(r.Context(), req.OrderID, req.ProductID, req.Quantity)
	if err != nil {
		h.metrics.RecordMutationFailure()
		h.writeStockError(w, err)
		return
	}
	h.metrics.RecordMutationSuccess()
	writeJSON(w, http.StatusOK, result)
}

func (h *StoreHandler) Push(w http.ResponseWriter, r *http.Request) {
	result, err := h.sync.PushNow(r.Context())
	if err != nil {
		h.metrics.RecordPushFailure()
		if errors.Is(err, port.ErrCentralUnavailable) {
			writeError(w, http.StatusBadGateway, "central sync endpoint unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.metrics.RecordPushSuccess()
	writeJSON(w, http.StatusOK, result)
}

func (h *StoreHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *StoreHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StoreHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.GetStats())
}

func (h *StoreHandler) decodeReservation(w http.ResponseWriter, r *http.Request) (reservationRequest, bool) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.OrderID == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "orderId and productId are required")
		return req, false
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be greater than zero")
		return req, false
	}
	return req, true
}

func (h *StoreHandler) writeStockError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "stock not found")
	case errors.Is(err, service.ErrInvalidAdjustment),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInsufficientReservation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConcurrencyExhausted):
		h.metrics.RecordConcurrencyExhausted()
		writeError(w, http.StatusInternalServerError, "concurrent update conflict, retry the request")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
