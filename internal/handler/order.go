package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/trackshop-system/internal/middleware"
	"github.com/mmeshcher/trackshop-system/internal/model"
	"github.com/mmeshcher/trackshop-system/internal/service"
	"github.com/mmeshcher/trackshop-system/internal/validation"
)

type shippingAddressRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

func (a shippingAddressRequest) validate() string {
	switch {
	case a.FullName == "":
		return "fullName is required"
	case a.Phone == "":
		return "phone is required"
	case a.Line1 == "":
		return "line1 is required"
	case a.City == "":
		return "city is required"
	case a.State == "":
		return "state is required"
	case !validation.IsValidPincode(a.Pincode):
		return "pincode is invalid"
	}
	return ""
}

func (a shippingAddressRequest) toAddress() model.Address {
	return model.Address{
		FullName: a.FullName,
		Phone:    a.Phone,
		Line1:    a.Line1,
		Line2:    a.Line2,
		City:     a.City,
		State:    a.State,
		Pincode:  a.Pincode,
	}
}

type checkoutRequest struct {
	Product struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	} `json:"product"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	OrderSummary    struct {
		Subtotal     float64 `json:"subtotal"`
		Tax          float64 `json:"tax"`
		ShippingCost float64 `json:"shippingCost"`
		Discount     float64 `json:"discount"`
		Total        float64 `json:"total"`
		PromoCode    string  `json:"promoCode"`
	} `json:"orderSummary"`
}

type orderItemResponse struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type orderResponse struct {
	Number          string              `json:"orderNumber"`
	Items           []orderItemResponse `json:"items"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	Subtotal        float64             `json:"subtotal"`
	Tax             float64             `json:"tax"`
	ShippingCost    float64             `json:"shippingCost"`
	Discount        float64             `json:"discount"`
	Total           float64             `json:"total"`
	PromoCode       string              `json:"promoCode,omitempty"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	PaidAt          string              `json:"paidAt,omitempty"`
	CancelReason    string              `json:"cancelReason,omitempty"`
	CreatedAt       string              `json:"createdAt"`
}

func toOrderResponse(o *model.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			Price:     centsToRupees(it.PriceCents),
			Quantity:  it.Quantity,
			Subtotal:  centsToRupees(it.SubtotalCents),
		})
	}

	resp := orderResponse{
		Number: o.Number,
		Items:  items,
		ShippingAddress: shippingAddressRequest{
			FullName: o.ShippingAddress.FullName,
			Phone:    o.ShippingAddress.Phone,
			Line1:    o.ShippingAddress.Line1,
			Line2:    o.ShippingAddress.Line2,
			City:     o.ShippingAddress.City,
			State:    o.ShippingAddress.State,
			Pincode:  o.ShippingAddress.Pincode,
		},
		Subtotal:      centsToRupees(o.SubtotalCents),
		Tax:           centsToRupees(o.TaxCents),
		ShippingCost:  centsToRupees(o.ShippingCents),
		Discount:      centsToRupees(o.DiscountCents),
		Total:         centsToRupees(o.TotalCents),
		PromoCode:     o.PromoCode,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		CancelReason:  o.CancelReason,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
	if o.PaidAt != nil {
		resp.PaidAt = o.PaidAt.Format(time.RFC3339)
	}
	return resp
}

// CreateOrder оформляет заказ и создаёт парный заказ в платёжном шлюзе.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Product.ID == 0 {
		h.writeError(w, http.StatusBadRequest, "product id is required")
		return
	}
	if msg := req.ShippingAddress.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	order, gwOrder, err := h.service.CreateOrder(r.Context(), user.ID, service.CheckoutRequest{
		ProductID:        req.Product.ID,
		Quantity:         req.Product.Quantity,
		Address:          req.ShippingAddress.toAddress(),
		PromoCode:        req.OrderSummary.PromoCode,
		ClientTotalCents: rupeesToCents(req.OrderSummary.Total),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"gatewayOrder": map[string]any{
			"id":       gwOrder.ID,
			"amount":   gwOrder.Amount,
			"currency": gwOrder.Currency,
		},
		"order": toOrderResponse(order),
	})
}

type verifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderData         struct {
		OrderNumber string `json:"orderNumber"`
	} `json:"orderData"`
}

// VerifyPayment проверяет подпись платежа и подтверждает заказ.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		h.writeError(w, http.StatusBadRequest, "payment fields are required")
		return
	}
	if !validation.IsValidOrderNumber(req.OrderData.OrderNumber) {
		h.writeError(w, http.StatusBadRequest, "order number is invalid")
		return
	}

	order, err := h.service.VerifyPayment(r.Context(), user.ID,
		req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, req.OrderData.OrderNumber)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": toOrderResponse(order)})
}

// ListOrders возвращает заказы текущего пользователя.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": resp})
}

// GetOrder возвращает заказ текущего пользователя по номеру.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	number := chi.URLParam(r, "number")

	order, err := h.service.GetOrder(r.Context(), user.ID, number)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": toOrderResponse(order)})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder отменяет заказ текущего пользователя.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	number := chi.URLParam(r, "number")

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.CancelOrder(r.Context(), user.ID, number, req.Reason); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
