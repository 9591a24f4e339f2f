package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/trackshop-system/internal/model"
)

// Dashboard возвращает агрегированные показатели магазина.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

type adminProductRequest struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Active      *bool   `json:"active"`
}

func (req adminProductRequest) validate() string {
	switch {
	case req.Slug == "":
		return "slug is required"
	case req.Name == "":
		return "name is required"
	case req.Price <= 0:
		return "price must be positive"
	case req.Stock < 0:
		return "stock must not be negative"
	}
	return ""
}

// AdminCreateProduct добавляет товар в каталог.
func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req adminProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product := &model.Product{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		PriceCents:  rupeesToCents(req.Price),
		Stock:       req.Stock,
		Active:      active,
	}

	id, err := h.service.CreateProduct(r.Context(), product)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

// AdminUpdateProduct обновляет товар каталога.
func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		h.writeError(w, http.StatusBadRequest, "product id is invalid")
		return
	}

	var req adminProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product := &model.Product{
		ID:          id,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		PriceCents:  rupeesToCents(req.Price),
		Stock:       req.Stock,
		Active:      active,
	}

	if err := h.service.UpdateProduct(r.Context(), product); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// AdminDeleteProduct скрывает товар из каталога.
func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		h.writeError(w, http.StatusBadRequest, "product id is invalid")
		return
	}

	if err := h.service.DeactivateProduct(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type statusRequest struct {
	Status string `json:"status"`
}

// AdminUpdateOrderStatus переводит заказ в следующий статус исполнения.
func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.AdvanceOrderStatus(r.Context(), number, model.OrderStatus(req.Status)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type promoPayload struct {
	Code          string   `json:"code"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discountType"`
	DiscountValue float64  `json:"discountValue"`
	MaxDiscount   *float64 `json:"maxDiscount"`
	MinPurchase   *float64 `json:"minPurchase"`
	ValidFrom     *string  `json:"validFrom"`
	ValidUntil    *string  `json:"validUntil"`
	UsageLimit    *int     `json:"usageLimit"`
	Active        *bool    `json:"active"`
}

func (req promoPayload) toPromo() (*model.Promo, string) {
	p := &model.Promo{
		Code:         req.Code,
		Description:  req.Description,
		DiscountType: model.DiscountType(req.DiscountType),
		Active:       true,
		UsageLimit:   req.UsageLimit,
	}

	if p.DiscountType == model.DiscountFixed {
		p.DiscountValue = rupeesToCents(req.DiscountValue)
	} else {
		p.DiscountValue = int64(req.DiscountValue)
	}

	if req.MaxDiscount != nil {
		v := rupeesToCents(*req.MaxDiscount)
		p.MaxDiscountCents = &v
	}
	if req.MinPurchase != nil {
		v := rupeesToCents(*req.MinPurchase)
		p.MinPurchaseCents = &v
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if req.ValidFrom != nil {
		t, err := time.Parse(time.RFC3339, *req.ValidFrom)
		if err != nil {
			return nil, "validFrom is invalid"
		}
		p.ValidFrom = &t
	}
	if req.ValidUntil != nil {
		t, err := time.Parse(time.RFC3339, *req.ValidUntil)
		if err != nil {
			return nil, "validUntil is invalid"
		}
		p.ValidUntil = &t
	}

	return p, ""
}

type promoResponse struct {
	Code          string   `json:"code"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discountType"`
	DiscountValue float64  `json:"discountValue"`
	MaxDiscount   *float64 `json:"maxDiscount,omitempty"`
	MinPurchase   *float64 `json:"minPurchase,omitempty"`
	ValidFrom     string   `json:"validFrom,omitempty"`
	ValidUntil    string   `json:"validUntil,omitempty"`
	UsageLimit    *int     `json:"usageLimit,omitempty"`
	UsedCount     int      `json:"usedCount"`
	Active        bool     `json:"active"`
}

func toPromoResponse(p model.Promo) promoResponse {
	resp := promoResponse{
		Code:         p.Code,
		Description:  p.Description,
		DiscountType: string(p.DiscountType),
		UsageLimit:   p.UsageLimit,
		UsedCount:    p.UsedCount,
		Active:       p.Active,
	}

	if p.DiscountType == model.DiscountFixed {
		resp.DiscountValue = centsToRupees(p.DiscountValue)
	} else {
		resp.DiscountValue = float64(p.DiscountValue)
	}

	if p.MaxDiscountCents != nil {
		v := centsToRupees(*p.MaxDiscountCents)
		resp.MaxDiscount = &v
	}
	if p.MinPurchaseCents != nil {
		v := centsToRupees(*p.MinPurchaseCents)
		resp.MinPurchase = &v
	}
	if p.ValidFrom != nil {
		resp.ValidFrom = p.ValidFrom.Format(time.RFC3339)
	}
	if p.ValidUntil != nil {
		resp.ValidUntil = p.ValidUntil.Format(time.RFC3339)
	}

	return resp
}

// AdminListPromos возвращает все промокоды.
func (h *Handler) AdminListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.ListPromos(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]promoResponse, 0, len(promos))
	for _, p := range promos {
		resp = append(resp, toPromoResponse(p))
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "promos": resp})
}

// AdminCreatePromo добавляет промокод.
func (h *Handler) AdminCreatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promo, msg := req.toPromo()
	if msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.service.CreatePromo(r.Context(), promo)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

// AdminUpdatePromo обновляет промокод.
func (h *Handler) AdminUpdatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Code = chi.URLParam(r, "code")

	promo, msg := req.toPromo()
	if msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.service.UpdatePromo(r.Context(), promo); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// AdminDeletePromo удаляет промокод.
func (h *Handler) AdminDeletePromo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.service.DeletePromo(r.Context(), code); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type quoteResponse struct {
	Reference string `json:"reference"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Quantity  int    `json:"quantity"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

func toQuoteResponse(q model.Quote) quoteResponse {
	return quoteResponse{
		Reference: q.Reference,
		Name:      q.Name,
		Email:     q.Email,
		Phone:     q.Phone,
		Company:   q.Company,
		Quantity:  q.Quantity,
		Message:   q.Message,
		Status:    string(q.Status),
		CreatedAt: q.CreatedAt.Format(time.RFC3339),
	}
}

// AdminListQuotes возвращает заявки на оптовые предложения.
func (h *Handler) AdminListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.ListQuotes(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]quoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp = append(resp, toQuoteResponse(q))
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "quotes": resp})
}

// AdminGetQuote возвращает заявку по её ссылке.
func (h *Handler) AdminGetQuote(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	quote, err := h.service.GetQuote(r.Context(), reference)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "quote": toQuoteResponse(*quote)})
}

// AdminUpdateQuoteStatus меняет статус заявки.
func (h *Handler) AdminUpdateQuoteStatus(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateQuoteStatus(r.Context(), reference, model.QuoteStatus(req.Status)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type contactResponse struct {
	Reference string `json:"reference"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// AdminListContacts возвращает сообщения обратной связи.
func (h *Handler) AdminListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.ListContacts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		resp = append(resp, contactResponse{
			Reference: c.Reference,
			Name:      c.Name,
			Email:     c.Email,
			Subject:   c.Subject,
			Message:   c.Message,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "contacts": resp})
}
