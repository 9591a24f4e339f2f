package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mmeshcher/trackshop-system/internal/middleware"
	"github.com/mmeshcher/trackshop-system/internal/model"
)

type cartItemResponse struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
	AddedAt   string  `json:"addedAt"`
}

type cartResponse struct {
	Items       []cartItemResponse `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
	TotalItems  int                `json:"totalItems"`
}

func toCartResponse(cart *model.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, cartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
			Price:     centsToRupees(it.PriceCents),
			Subtotal:  centsToRupees(it.PriceCents * int64(it.Quantity)),
			AddedAt:   it.AddedAt.Format(time.RFC3339),
		})
	}
	return cartResponse{
		Items:       items,
		TotalAmount: centsToRupees(cart.TotalCents),
		TotalItems:  cart.TotalItems,
	}
}

// GetCart возвращает корзину текущего пользователя.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	cart, err := h.service.GetCart(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "cart": toCartResponse(cart)})
}

type cartMutationRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddToCart добавляет товар в корзину текущего пользователя.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req cartMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID == 0 {
		h.writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	if err := h.service.AddCartItem(r.Context(), user.ID, req.ProductID, req.Quantity); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	cart, err := h.service.GetCart(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "cart": toCartResponse(cart)})
}

// UpdateCart устанавливает количество товара в корзине.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req cartMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID == 0 {
		h.writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	if err := h.service.UpdateCartQuantity(r.Context(), user.ID, req.ProductID, req.Quantity); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	cart, err := h.service.GetCart(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "cart": toCartResponse(cart)})
}

// RemoveFromCart удаляет строку корзины по productId из query-параметра.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	productID, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
	if err != nil || productID == 0 {
		h.writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	if err := h.service.RemoveCartItem(r.Context(), user.ID, productID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ClearCart очищает корзину текущего пользователя.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	if err := h.service.ClearCart(r.Context(), user.ID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type promoRequest struct {
	PromoCode string `json:"promoCode"`
}

type discountResponse struct {
	Code          string   `json:"code"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discountType"`
	DiscountValue float64  `json:"discountValue"`
	MaxDiscount   *float64 `json:"maxDiscount,omitempty"`
	Amount        float64  `json:"amount"`
}

// ApplyPromo валидирует промокод против корзины текущего пользователя.
func (h *Handler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req promoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PromoCode == "" {
		h.writeError(w, http.StatusBadRequest, "promoCode is required")
		return
	}

	discount, err := h.service.ApplyPromo(r.Context(), user.ID, req.PromoCode)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := discountResponse{
		Code:          discount.Code,
		Description:   discount.Description,
		DiscountType:  string(discount.DiscountType),
		Amount:        centsToRupees(discount.AmountCents),
		DiscountValue: float64(discount.DiscountValue),
	}
	if discount.DiscountType == model.DiscountFixed {
		resp.DiscountValue = centsToRupees(discount.DiscountValue)
	}
	if discount.MaxDiscountCents != nil {
		v := centsToRupees(*discount.MaxDiscountCents)
		resp.MaxDiscount = &v
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "discount": resp})
}
