package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/catalog"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/domain"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/outbox"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/remote"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/service"
)

// ProductFinder resolves the catalog product a line item snapshots from.
type ProductFinder interface {
	DealByID(ctx context.Context, id string) (domain.Product, error)
}

// SyncInfo reports background sync state for the summary endpoint.
type SyncInfo interface {
	Status() outbox.Status
	PendingCount() int
}

type CartHandler struct {
	svc     *service.CartService
	finder  ProductFinder
	sync    SyncInfo
	timeout time.Duration
}

func NewCartHandler(svc *service.CartService, finder ProductFinder, sync SyncInfo, timeout time.Duration) *CartHandler {
	return &CartHandler{
		svc:     svc,
		finder:  finder,
		sync:    sync,
		timeout: timeout,
	}
}

type SessionRequestDTO struct {
	UserID string `json:"user_id"`
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	UserID    string            `json:"user_id,omitempty"`
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Total     string            `json:"total"`
}

type SummaryResponse struct {
	ItemCount    int    `json:"item_count"`
	Total        string `json:"total"`
	SyncStatus   string `json:"sync_status"`
	PendingSyncs int    `json:"pending_syncs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) LoadSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user_id is required")
		return
	}

	cart, err := h.svc.Load(ctx, req.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart.UserID, cart.Items))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	items := h.svc.Items()
	respondJSON(w, http.StatusOK, cartResponseFromService(h.svc, items))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.finder.DealByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "failed to resolve product")
		return
	}

	item, err := h.svc.AddItem(product, req.Quantity, req.Color, req.Size)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
			return
		}
		respondError(w, http.StatusUnprocessableEntity, "invalid_product", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Zero or negative quantity removes the item, matching UpdateQuantity
	// semantics in the service.
	h.svc.UpdateQuantity(itemID, req.Quantity)
	respondJSON(w, http.StatusOK, cartResponseFromService(h.svc, h.svc.Items()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	h.svc.RemoveItem(itemID)
	respondJSON(w, http.StatusOK, cartResponseFromService(h.svc, h.svc.Items()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.svc.Clear()
	respondJSON(w, http.StatusOK, cartResponseFromService(h.svc, h.svc.Items()))
}

func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SummaryResponse{
		ItemCount:    h.svc.ItemCount(),
		Total:        h.svc.Total().Display(),
		SyncStatus:   string(h.sync.Status()),
		PendingSyncs: h.sync.PendingCount(),
	})
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snapshot, err := h.svc.Checkout(ctx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
		case errors.Is(err, remote.ErrUnavailable):
			respondError(w, http.StatusServiceUnavailable, "backend_unavailable", "order could not be submitted")
		default:
			respondError(w, http.StatusBadGateway, "checkout_failed", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(snapshot.UserID, snapshot.Items))
}

func cartResponse(userID string, items []domain.LineItem) CartResponse {
	c := domain.Cart{Items: items}
	return CartResponse{
		UserID:    userID,
		Items:     items,
		ItemCount: c.ItemCount(),
		Total:     c.Total().Display(),
	}
}

func cartResponseFromService(svc *service.CartService, items []domain.LineItem) CartResponse {
	return CartResponse{
		Items:     items,
		ItemCount: svc.ItemCount(),
		Total:     svc.Total().Display(),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
