// Package service реализует бизнес-логику магазина trackshop.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mmeshcher/trackshop-system/internal/gateway"
	"github.com/mmeshcher/trackshop-system/internal/model"
)

// Налог и допуск на расхождение итогов фиксированы: 18% и 1 рупия (100 пайс).
const (
	taxRatePercent      = 18
	totalToleranceCents = 100
	currency            = "INR"
)

// ErrInvalidCredentials возвращается при неверной паре почта/пароль.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidEmail возвращается при структурно некорректном адресе почты.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidQuantity возвращается при количестве меньше единицы.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrProductUnavailable возвращается для неактивного товара.
	ErrProductUnavailable = errors.New("product is not available")
	// ErrInsufficientStock возвращается, когда запрошенное количество превышает остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmptyCart возвращается для операций, требующих непустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrTotalMismatch возвращается при расхождении клиентского и серверного итогов.
	ErrTotalMismatch = errors.New("order total mismatch")
	// ErrInvalidSignature возвращается при неверной подписи платежа.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrNotOrderOwner возвращается, если заказ принадлежит другому пользователю.
	ErrNotOrderOwner = errors.New("order belongs to another user")
	// ErrPromoInactive возвращается для выключенного промокода.
	ErrPromoInactive = errors.New("promo code is not active")
	// ErrPromoNotStarted возвращается до начала окна действия промокода.
	ErrPromoNotStarted = errors.New("promo code is not active yet")
	// ErrPromoExpired возвращается после окончания окна действия промокода.
	ErrPromoExpired = errors.New("promo code has expired")
	// ErrPromoMinPurchase возвращается, если корзина не добирает минимальной суммы.
	ErrPromoMinPurchase = errors.New("cart subtotal below minimum purchase")
	// ErrInvalidStatusTransition возвращается при недопустимой смене статуса заказа.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	// ErrInvalidPromo возвращается при некорректных параметрах промокода.
	ErrInvalidPromo = errors.New("invalid promo parameters")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, email, name string, passwordHash []byte, role model.Role) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)

	CreateProduct(ctx context.Context, p *model.Product) (int64, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeactivateProduct(ctx context.Context, id int64) error
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListActiveProducts(ctx context.Context) ([]model.Product, error)
	CountActiveProducts(ctx context.Context) (int64, error)

	GetCart(ctx context.Context, userID int64) (*model.Cart, error)
	GetCartQuantity(ctx context.Context, userID, productID int64) (int, error)
	UpsertCartItem(ctx context.Context, userID, productID int64, quantity int, priceCents int64) error
	SetCartItemQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveCartItem(ctx context.Context, userID, productID int64) error
	ClearCart(ctx context.Context, userID int64) error

	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByNumber(ctx context.Context, number string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	SetOrderPaid(ctx context.Context, number, gatewayOrderID, gatewayPaymentID string) error
	SetGatewayOrderID(ctx context.Context, number, gatewayOrderID string) error
	MarkPaymentFailed(ctx context.Context, number string) error
	CancelOrder(ctx context.Context, userID int64, number, reason string) error
	UpdateOrderStatus(ctx context.Context, number string, status model.OrderStatus) error
	FailStalePendingPayments(ctx context.Context, deadline time.Duration) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	SumPaidRevenue(ctx context.Context) (int64, error)

	GetPromoByCode(ctx context.Context, code string) (*model.Promo, error)
	CreatePromo(ctx context.Context, p *model.Promo) (int64, error)
	UpdatePromo(ctx context.Context, p *model.Promo) error
	DeletePromo(ctx context.Context, code string) error
	ListPromos(ctx context.Context) ([]model.Promo, error)

	AddWishlistItem(ctx context.Context, userID, productID, priceCents int64) error
	RemoveWishlistItem(ctx context.Context, userID, productID int64) error
	GetWishlist(ctx context.Context, userID int64) ([]model.WishlistItem, error)

	CreateQuote(ctx context.Context, q *model.Quote) error
	ListQuotes(ctx context.Context) ([]model.Quote, error)
	GetQuoteByReference(ctx context.Context, reference string) (*model.Quote, error)
	UpdateQuoteStatus(ctx context.Context, reference string, status model.QuoteStatus) error
	CountQuotes(ctx context.Context) (int64, error)

	CreateContact(ctx context.Context, c *model.ContactMessage) error
	ListContacts(ctx context.Context) ([]model.ContactMessage, error)
}

// Gateway описывает контракт платёжного шлюза, используемый сервисом.
type Gateway interface {
	CreateOrder(ctx context.Context, receipt string, amountCents int64, currency string) (*gateway.Order, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

// Service содержит бизнес-логику магазина trackshop.
type Service struct {
	repo    Repository
	gateway Gateway

	freeShippingCents int64
	shippingFeeCents  int64

	reconcileEvery time.Duration
}

// NewService создаёт новый сервис с указанным репозиторием и клиентом шлюза.
func NewService(repo Repository, gw Gateway, freeShippingCents, shippingFeeCents int64) *Service {
	return &Service{
		repo:              repo,
		gateway:           gw,
		freeShippingCents: freeShippingCents,
		shippingFeeCents:  shippingFeeCents,
		reconcileEvery:    reconcileInterval,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func hashPassword(email, password string) []byte {
	sum := sha256.Sum256([]byte(email + ":" + password))
	return sum[:]
}

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newOrderNumber генерирует номер заказа ORD-<millis>-<6 символов base36>.
// Уникальность обеспечивается временной меткой и случайным суффиксом,
// уникальный индекс в БД ловит маловероятную коллизию.
func newOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random suffix: %w", err)
	}
	for i, b := range buf {
		buf[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), string(buf)), nil
}

func passwordsEqual(hashed, stored []byte) bool {
	return hex.EncodeToString(hashed) == hex.EncodeToString(stored)
}
