package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/trackshop-system/internal/middleware"
)

type wishlistItemResponse struct {
	ProductID    int64   `json:"productId"`
	Name         string  `json:"name"`
	ImageURL     string  `json:"imageUrl"`
	PriceAtAdd   float64 `json:"priceAtAdd"`
	CurrentPrice float64 `json:"currentPrice"`
	PriceDropped bool    `json:"priceDropped"`
	Active       bool    `json:"active"`
	AddedAt      string  `json:"addedAt"`
}

// GetWishlist возвращает список желаний текущего пользователя.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	items, err := h.service.GetWishlist(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]wishlistItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, wishlistItemResponse{
			ProductID:    it.ProductID,
			Name:         it.Name,
			ImageURL:     it.ImageURL,
			PriceAtAdd:   centsToRupees(it.PriceAtAddCents),
			CurrentPrice: centsToRupees(it.CurrentCents),
			PriceDropped: it.PriceDropped(),
			Active:       it.Active,
			AddedAt:      it.AddedAt.Format(time.RFC3339),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "wishlist": resp})
}

type wishlistRequest struct {
	ProductID int64 `json:"productId"`
}

// AddToWishlist добавляет товар в список желаний текущего пользователя.
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req wishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID == 0 {
		h.writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	if err := h.service.AddToWishlist(r.Context(), user.ID, req.ProductID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// RemoveFromWishlist удаляет товар из списка желаний текущего пользователя.
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID == 0 {
		h.writeError(w, http.StatusBadRequest, "product id is invalid")
		return
	}

	if err := h.service.RemoveFromWishlist(r.Context(), user.ID, productID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
