// Package handler содержит HTTP-обработчики API магазина trackshop.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/trackshop-system/internal/gateway"
	"github.com/mmeshcher/trackshop-system/internal/middleware"
	"github.com/mmeshcher/trackshop-system/internal/model"
	"github.com/mmeshcher/trackshop-system/internal/repository"
	"github.com/mmeshcher/trackshop-system/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	RegisterUser(ctx context.Context, email, name, password string) (int64, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)

	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) (int64, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeactivateProduct(ctx context.Context, id int64) error

	GetCart(ctx context.Context, userID int64) (*model.Cart, error)
	AddCartItem(ctx context.Context, userID, productID int64, quantity int) error
	UpdateCartQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveCartItem(ctx context.Context, userID, productID int64) error
	ClearCart(ctx context.Context, userID int64) error
	ApplyPromo(ctx context.Context, userID int64, code string) (*model.Discount, error)

	CreateOrder(ctx context.Context, userID int64, req service.CheckoutRequest) (*model.Order, *gateway.Order, error)
	VerifyPayment(ctx context.Context, userID int64, gatewayOrderID, gatewayPaymentID, signature, orderNumber string) (*model.Order, error)
	GetOrder(ctx context.Context, userID int64, number string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	CancelOrder(ctx context.Context, userID int64, number, reason string) error

	AddToWishlist(ctx context.Context, userID, productID int64) error
	RemoveFromWishlist(ctx context.Context, userID, productID int64) error
	GetWishlist(ctx context.Context, userID int64) ([]model.WishlistItem, error)

	CreateQuote(ctx context.Context, q *model.Quote) error
	ListQuotes(ctx context.Context) ([]model.Quote, error)
	GetQuote(ctx context.Context, reference string) (*model.Quote, error)
	UpdateQuoteStatus(ctx context.Context, reference string, status model.QuoteStatus) error
	CreateContact(ctx context.Context, c *model.ContactMessage) error
	ListContacts(ctx context.Context) ([]model.ContactMessage, error)

	GetDashboardStats(ctx context.Context) (*model.DashboardStats, error)
	AdvanceOrderStatus(ctx context.Context, number string, status model.OrderStatus) error
	CreatePromo(ctx context.Context, p *model.Promo) (int64, error)
	UpdatePromo(ctx context.Context, p *model.Promo) error
	DeletePromo(ctx context.Context, code string) error
	ListPromos(ctx context.Context) ([]model.Promo, error)
}

// Handler реализует HTTP-обработчики API магазина trackshop.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, errorResponse{Success: false, Message: message})
}

// writeServiceError переводит ошибку бизнес-логики в HTTP-статус с JSON-конвертом.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrTotalMismatch),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrPromoInactive),
		errors.Is(err, service.ErrPromoNotStarted),
		errors.Is(err, service.ErrPromoExpired),
		errors.Is(err, service.ErrPromoMinPurchase),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPromo),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, repository.ErrPromoLimitReached),
		errors.Is(err, repository.ErrOrderTerminal):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotOrderOwner):
		h.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCartItemNotFound),
		errors.Is(err, repository.ErrWishlistItemNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrPromoNotFound),
		errors.Is(err, repository.ErrQuoteNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrUserExists),
		errors.Is(err, repository.ErrProductExists),
		errors.Is(err, repository.ErrPromoExists):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("internal error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func centsToRupees(cents int64) float64 {
	return float64(cents) / 100
}

func rupeesToCents(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

// Health проверяет доступность сервиса и его базы данных.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		h.writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
}
