package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmeshcher/trackshop-system/internal/gateway"
	"github.com/mmeshcher/trackshop-system/internal/model"
	"github.com/mmeshcher/trackshop-system/internal/repository"
	"github.com/mmeshcher/trackshop-system/internal/validation"
)

func TestHashPasswordDeterministic(t *testing.T) {
	a := hashPassword("user@mail.test", "pass")
	b := hashPassword("user@mail.test", "pass")
	c := hashPassword("user@mail.test", "other")

	if string(a) != string(b) {
		t.Fatalf("hashPassword must be deterministic, got %x and %x", a, b)
	}
	if string(a) == string(c) {
		t.Fatalf("different passwords must produce different hashes")
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	number, err := newOrderNumber(time.Now())
	if err != nil {
		t.Fatalf("newOrderNumber error: %v", err)
	}
	if !validation.IsValidOrderNumber(number) {
		t.Fatalf("generated number %q does not match expected format", number)
	}
}

type stubRepo struct {
	createUserID  int64
	createUserErr error

	getUser    *model.User
	getUserErr error

	product    *model.Product
	productErr error

	cart    *model.Cart
	cartErr error

	cartQuantity    int
	cartQuantityErr error

	upsertCalls int
	upsertErr   error

	order    *model.Order
	orderErr error

	createdOrder     *model.Order
	createOrderCalls int
	createOrderErr   error

	setPaidNumber string
	setPaidErr    error

	markFailedNumber string
	markFailedErr    error

	gatewayOrderID string

	updatedStatus model.OrderStatus
	updateStatErr error

	cancelNumber string
	cancelReason string
	cancelErr    error

	failStaleCalls atomic.Int32

	promo    *model.Promo
	promoErr error

	counts struct {
		orders   int64
		users    int64
		products int64
		quotes   int64
		revenue  int64
	}

	wishlist    []model.WishlistItem
	wishlistErr error

	quote    *model.Quote
	quoteErr error
}

func (s *stubRepo) Close() error                   { return nil }
func (s *stubRepo) Ping(ctx context.Context) error { return nil }

func (s *stubRepo) CreateUser(ctx context.Context, email, name string, passwordHash []byte, role model.Role) (int64, error) {
	return s.createUserID, s.createUserErr
}

func (s *stubRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser, s.getUserErr
}

func (s *stubRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getUser, s.getUserErr
}

func (s *stubRepo) CountUsers(ctx context.Context) (int64, error) {
	return s.counts.users, nil
}

func (s *stubRepo) CreateProduct(ctx context.Context, p *model.Product) (int64, error) {
	return 1, nil
}

func (s *stubRepo) UpdateProduct(ctx context.Context, p *model.Product) error { return nil }
func (s *stubRepo) DeactivateProduct(ctx context.Context, id int64) error     { return nil }

func (s *stubRepo) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubRepo) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return s.product, s.productErr
}

func (s *stubRepo) ListActiveProducts(ctx context.Context) ([]model.Product, error) {
	return nil, nil
}

func (s *stubRepo) CountActiveProducts(ctx context.Context) (int64, error) {
	return s.counts.products, nil
}

func (s *stubRepo) GetCart(ctx context.Context, userID int64) (*model.Cart, error) {
	return s.cart, s.cartErr
}

func (s *stubRepo) GetCartQuantity(ctx context.Context, userID, productID int64) (int, error) {
	return s.cartQuantity, s.cartQuantityErr
}

func (s *stubRepo) UpsertCartItem(ctx context.Context, userID, productID int64, quantity int, priceCents int64) error {
	s.upsertCalls++
	return s.upsertErr
}

func (s *stubRepo) SetCartItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	return nil
}

func (s *stubRepo) RemoveCartItem(ctx context.Context, userID, productID int64) error { return nil }
func (s *stubRepo) ClearCart(ctx context.Context, userID int64) error                 { return nil }

func (s *stubRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	s.createdOrder = order
	s.createOrderCalls++
	return s.createOrderErr
}

func (s *stubRepo) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubRepo) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return nil, nil
}

func (s *stubRepo) SetOrderPaid(ctx context.Context, number, gatewayOrderID, gatewayPaymentID string) error {
	s.setPaidNumber = number
	return s.setPaidErr
}

func (s *stubRepo) SetGatewayOrderID(ctx context.Context, number, gatewayOrderID string) error {
	s.gatewayOrderID = gatewayOrderID
	return nil
}

func (s *stubRepo) MarkPaymentFailed(ctx context.Context, number string) error {
	s.markFailedNumber = number
	return s.markFailedErr
}

func (s *stubRepo) CancelOrder(ctx context.Context, userID int64, number, reason string) error {
	s.cancelNumber = number
	s.cancelReason = reason
	return s.cancelErr
}

func (s *stubRepo) UpdateOrderStatus(ctx context.Context, number string, status model.OrderStatus) error {
	s.updatedStatus = status
	return s.updateStatErr
}

func (s *stubRepo) FailStalePendingPayments(ctx context.Context, deadline time.Duration) (int64, error) {
	s.failStaleCalls.Add(1)
	return 0, nil
}

func (s *stubRepo) CountOrders(ctx context.Context) (int64, error) {
	return s.counts.orders, nil
}

func (s *stubRepo) SumPaidRevenue(ctx context.Context) (int64, error) {
	return s.counts.revenue, nil
}

func (s *stubRepo) GetPromoByCode(ctx context.Context, code string) (*model.Promo, error) {
	return s.promo, s.promoErr
}

func (s *stubRepo) CreatePromo(ctx context.Context, p *model.Promo) (int64, error) { return 1, nil }
func (s *stubRepo) UpdatePromo(ctx context.Context, p *model.Promo) error          { return nil }
func (s *stubRepo) DeletePromo(ctx context.Context, code string) error             { return nil }
func (s *stubRepo) ListPromos(ctx context.Context) ([]model.Promo, error)          { return nil, nil }

func (s *stubRepo) AddWishlistItem(ctx context.Context, userID, productID, priceCents int64) error {
	return nil
}

func (s *stubRepo) RemoveWishlistItem(ctx context.Context, userID, productID int64) error {
	return nil
}

func (s *stubRepo) GetWishlist(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	return s.wishlist, s.wishlistErr
}

func (s *stubRepo) CreateQuote(ctx context.Context, q *model.Quote) error  { return nil }
func (s *stubRepo) ListQuotes(ctx context.Context) ([]model.Quote, error)  { return nil, nil }
func (s *stubRepo) GetQuoteByReference(ctx context.Context, reference string) (*model.Quote, error) {
	return s.quote, s.quoteErr
}

func (s *stubRepo) UpdateQuoteStatus(ctx context.Context, reference string, status model.QuoteStatus) error {
	return nil
}

func (s *stubRepo) CountQuotes(ctx context.Context) (int64, error) {
	return s.counts.quotes, nil
}

func (s *stubRepo) CreateContact(ctx context.Context, c *model.ContactMessage) error { return nil }
func (s *stubRepo) ListContacts(ctx context.Context) ([]model.ContactMessage, error) {
	return nil, nil
}

type stubGateway struct {
	order    *gateway.Order
	orderErr error

	signatureValid bool
}

func (g *stubGateway) CreateOrder(ctx context.Context, receipt string, amountCents int64, currency string) (*gateway.Order, error) {
	if g.order != nil {
		return g.order, g.orderErr
	}
	return &gateway.Order{ID: "gw_order_1", Amount: amountCents, Currency: currency, Receipt: receipt}, g.orderErr
}

func (g *stubGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return g.signatureValid
}

func newTestService(repo *stubRepo, gw Gateway) *Service {
	return NewService(repo, gw, 500000, 9900)
}

func TestRegisterUser_PropagatesDuplicateError(t *testing.T) {
	repo := &stubRepo{
		createUserErr: repository.ErrUserExists,
	}
	svc := newTestService(repo, nil)

	_, err := svc.RegisterUser(context.Background(), "user@mail.test", "User", "pass")
	if !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterUser_RejectsInvalidEmail(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	_, err := svc.RegisterUser(context.Background(), "not-an-email", "User", "pass")
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestAuthenticateUser_InvalidCredentials(t *testing.T) {
	hashed := hashPassword("user@mail.test", "correct")
	repo := &stubRepo{
		getUser: &model.User{
			ID:           1,
			Email:        "user@mail.test",
			PasswordHash: hashed,
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.AuthenticateUser(context.Background(), "user@mail.test", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAddCartItem_RejectsExceedingStock(t *testing.T) {
	repo := &stubRepo{
		product:      &model.Product{ID: 1, PriceCents: 100000, Stock: 5, Active: true},
		cartQuantity: 4,
	}
	svc := newTestService(repo, nil)

	err := svc.AddCartItem(context.Background(), 1, 1, 2)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if repo.upsertCalls != 0 {
		t.Fatalf("cart must not be modified on rejected add, got %d upserts", repo.upsertCalls)
	}
}

func TestAddCartItem_AccumulatesWithinStock(t *testing.T) {
	repo := &stubRepo{
		product:      &model.Product{ID: 1, PriceCents: 100000, Stock: 5, Active: true},
		cartQuantity: 2,
	}
	svc := newTestService(repo, nil)

	if err := svc.AddCartItem(context.Background(), 1, 1, 3); err != nil {
		t.Fatalf("AddCartItem error: %v", err)
	}
	if repo.upsertCalls != 1 {
		t.Fatalf("upsertCalls = %d, want 1", repo.upsertCalls)
	}
}

func TestAddCartItem_RejectsInactiveProduct(t *testing.T) {
	repo := &stubRepo{
		product: &model.Product{ID: 1, PriceCents: 100000, Stock: 5, Active: false},
	}
	svc := newTestService(repo, nil)

	err := svc.AddCartItem(context.Background(), 1, 1, 1)
	if !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
}

func TestCartRecalculate(t *testing.T) {
	cart := &model.Cart{
		Items: []model.CartItem{
			{ProductID: 1, Quantity: 2, PriceCents: 150000},
			{ProductID: 2, Quantity: 1, PriceCents: 99900},
		},
	}
	cart.Recalculate()

	if cart.TotalCents != 399900 {
		t.Fatalf("TotalCents = %d, want 399900", cart.TotalCents)
	}
	if cart.TotalItems != 3 {
		t.Fatalf("TotalItems = %d, want 3", cart.TotalItems)
	}
}

func TestPriceOrder_FreeShippingAboveThreshold(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	p := svc.priceOrder(500000, 0)
	if p.ShippingCents != 0 {
		t.Fatalf("shipping = %d, want 0 at threshold", p.ShippingCents)
	}
	if p.TaxCents != 90000 {
		t.Fatalf("tax = %d, want 90000", p.TaxCents)
	}

	p = svc.priceOrder(499999, 0)
	if p.ShippingCents != 9900 {
		t.Fatalf("shipping = %d, want 9900 below threshold", p.ShippingCents)
	}
}

func TestCreateOrder_TotalMismatch(t *testing.T) {
	repo := &stubRepo{
		product: &model.Product{ID: 1, Name: "GT06 Tracker", PriceCents: 100000, Stock: 10, Active: true},
	}
	svc := newTestService(repo, &stubGateway{})

	// Серверный итог: 100000 + 18000 налога + 9900 доставки = 127900.
	_, _, err := svc.CreateOrder(context.Background(), 1, CheckoutRequest{
		ProductID:        1,
		Quantity:         1,
		ClientTotalCents: 127700,
	})
	if !errors.Is(err, ErrTotalMismatch) {
		t.Fatalf("expected ErrTotalMismatch, got %v", err)
	}
	if repo.createdOrder != nil {
		t.Fatalf("order must not be persisted on total mismatch")
	}
}

func TestCreateOrder_AcceptsWithinTolerance(t *testing.T) {
	repo := &stubRepo{
		product: &model.Product{ID: 1, Name: "GT06 Tracker", PriceCents: 100000, Stock: 10, Active: true},
	}
	svc := newTestService(repo, &stubGateway{})

	order, gwOrder, err := svc.CreateOrder(context.Background(), 1, CheckoutRequest{
		ProductID:        1,
		Quantity:         1,
		ClientTotalCents: 127850,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// Сохраняется серверный итог, а не клиентский.
	if order.TotalCents != 127900 {
		t.Fatalf("TotalCents = %d, want 127900", order.TotalCents)
	}
	if order.Status != model.OrderStatusPending || order.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("new order must be pending/pending, got %s/%s", order.Status, order.PaymentStatus)
	}
	if gwOrder.Amount != order.TotalCents {
		t.Fatalf("gateway amount = %d, want %d", gwOrder.Amount, order.TotalCents)
	}
	if repo.gatewayOrderID != gwOrder.ID {
		t.Fatalf("gateway order id not persisted")
	}
	if len(order.Items) != 1 || order.Items[0].Name != "GT06 Tracker" {
		t.Fatalf("order must snapshot product data, got %+v", order.Items)
	}
}

func TestCreateOrder_AppliesPromoDiscount(t *testing.T) {
	minPurchase := int64(50000)
	repo := &stubRepo{
		product: &model.Product{ID: 1, Name: "GT06 Tracker", PriceCents: 100000, Stock: 10, Active: true},
		promo: &model.Promo{
			Code:             "SAVE10",
			DiscountType:     model.DiscountPercentage,
			DiscountValue:    10,
			MinPurchaseCents: &minPurchase,
			Active:           true,
		},
	}
	svc := newTestService(repo, &stubGateway{})

	// 200000 + 36000 налога + 9900 доставки - 20000 скидки = 225900.
	order, _, err := svc.CreateOrder(context.Background(), 1, CheckoutRequest{
		ProductID:        1,
		Quantity:         2,
		PromoCode:        "SAVE10",
		ClientTotalCents: 225900,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if order.DiscountCents != 20000 {
		t.Fatalf("DiscountCents = %d, want 20000", order.DiscountCents)
	}
	if order.TotalCents != 225900 {
		t.Fatalf("TotalCents = %d, want 225900", order.TotalCents)
	}

	// Промокод потребляется в той же транзакции, что сохраняет заказ:
	// ровно одна запись заказа и код на ней.
	if repo.createOrderCalls != 1 {
		t.Fatalf("createOrderCalls = %d, want 1", repo.createOrderCalls)
	}
	if repo.createdOrder.PromoCode != "SAVE10" {
		t.Fatalf("persisted PromoCode = %q, want SAVE10", repo.createdOrder.PromoCode)
	}
}

func TestCreateOrder_PromoLimitBlocksCheckout(t *testing.T) {
	limit := 5
	repo := &stubRepo{
		product: &model.Product{ID: 1, Name: "GT06 Tracker", PriceCents: 100000, Stock: 10, Active: true},
		promo: &model.Promo{
			Code:          "SAVE10",
			DiscountType:  model.DiscountPercentage,
			DiscountValue: 10,
			UsageLimit:    &limit,
			UsedCount:     5,
			Active:        true,
		},
	}
	svc := newTestService(repo, &stubGateway{})

	_, _, err := svc.CreateOrder(context.Background(), 1, CheckoutRequest{
		ProductID:        1,
		Quantity:         1,
		PromoCode:        "SAVE10",
		ClientTotalCents: 127900,
	})
	if !errors.Is(err, repository.ErrPromoLimitReached) {
		t.Fatalf("expected ErrPromoLimitReached, got %v", err)
	}
	if repo.createOrderCalls != 0 {
		t.Fatalf("exhausted promo must not produce an order, createOrderCalls = %d", repo.createOrderCalls)
	}
}

func TestValidatePromo(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := 5
	minPurchase := int64(50000)

	tests := []struct {
		name     string
		promo    model.Promo
		subtotal int64
		wantErr  error
	}{
		{
			name:     "inactive",
			promo:    model.Promo{Active: false},
			subtotal: 100000,
			wantErr:  ErrPromoInactive,
		},
		{
			name:     "not started",
			promo:    model.Promo{Active: true, ValidFrom: &future},
			subtotal: 100000,
			wantErr:  ErrPromoNotStarted,
		},
		{
			name:     "expired",
			promo:    model.Promo{Active: true, ValidUntil: &past},
			subtotal: 100000,
			wantErr:  ErrPromoExpired,
		},
		{
			name:     "usage limit reached",
			promo:    model.Promo{Active: true, UsageLimit: &limit, UsedCount: 5},
			subtotal: 100000,
			wantErr:  repository.ErrPromoLimitReached,
		},
		{
			name:     "empty cart",
			promo:    model.Promo{Active: true},
			subtotal: 0,
			wantErr:  ErrEmptyCart,
		},
		{
			name:     "below min purchase",
			promo:    model.Promo{Active: true, MinPurchaseCents: &minPurchase},
			subtotal: 10000,
			wantErr:  ErrPromoMinPurchase,
		},
		{
			name:     "valid",
			promo:    model.Promo{Active: true, UsageLimit: &limit, UsedCount: 4, MinPurchaseCents: &minPurchase},
			subtotal: 200000,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePromo(&tt.promo, tt.subtotal, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("validatePromo() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComputeDiscount(t *testing.T) {
	maxDiscount := int64(15000)

	tests := []struct {
		name     string
		promo    model.Promo
		subtotal int64
		want     int64
	}{
		{
			name:     "percentage",
			promo:    model.Promo{DiscountType: model.DiscountPercentage, DiscountValue: 10},
			subtotal: 200000,
			want:     20000,
		},
		{
			name:     "percentage capped by max",
			promo:    model.Promo{DiscountType: model.DiscountPercentage, DiscountValue: 10, MaxDiscountCents: &maxDiscount},
			subtotal: 200000,
			want:     15000,
		},
		{
			name:     "fixed",
			promo:    model.Promo{DiscountType: model.DiscountFixed, DiscountValue: 5000},
			subtotal: 200000,
			want:     5000,
		},
		{
			name:     "fixed capped by subtotal",
			promo:    model.Promo{DiscountType: model.DiscountFixed, DiscountValue: 300000},
			subtotal: 200000,
			want:     200000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeDiscount(&tt.promo, tt.subtotal); got != tt.want {
				t.Fatalf("computeDiscount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApplyPromo_DoesNotConsumeUsage(t *testing.T) {
	repo := &stubRepo{
		promo: &model.Promo{
			Code:          "SAVE10",
			DiscountType:  model.DiscountPercentage,
			DiscountValue: 10,
			Active:        true,
		},
		cart: &model.Cart{TotalCents: 200000, TotalItems: 2},
	}
	svc := newTestService(repo, nil)

	discount, err := svc.ApplyPromo(context.Background(), 1, "SAVE10")
	if err != nil {
		t.Fatalf("ApplyPromo error: %v", err)
	}
	if discount.AmountCents != 20000 {
		t.Fatalf("AmountCents = %d, want 20000", discount.AmountCents)
	}
	if repo.promo.UsedCount != 0 {
		t.Fatalf("ApplyPromo must not consume usage, UsedCount = %d", repo.promo.UsedCount)
	}
}

func TestVerifyPayment_InvalidSignature(t *testing.T) {
	repo := &stubRepo{
		order: &model.Order{Number: "ORD-1700000000000-A1B2C3", UserID: 1},
	}
	svc := newTestService(repo, &stubGateway{signatureValid: false})

	_, err := svc.VerifyPayment(context.Background(), 1, "gw_1", "pay_1", "bad", "ORD-1700000000000-A1B2C3")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if repo.setPaidNumber != "" || repo.markFailedNumber != "" {
		t.Fatalf("order state must not change on invalid signature")
	}
}

func TestVerifyPayment_RejectsForeignOrder(t *testing.T) {
	repo := &stubRepo{
		order: &model.Order{Number: "ORD-1700000000000-A1B2C3", UserID: 2},
	}
	svc := newTestService(repo, &stubGateway{signatureValid: true})

	_, err := svc.VerifyPayment(context.Background(), 1, "gw_1", "pay_1", "sig", "ORD-1700000000000-A1B2C3")
	if !errors.Is(err, ErrNotOrderOwner) {
		t.Fatalf("expected ErrNotOrderOwner, got %v", err)
	}
}

func TestVerifyPayment_Success(t *testing.T) {
	repo := &stubRepo{
		order: &model.Order{
			Number:        "ORD-1700000000000-A1B2C3",
			UserID:        1,
			Status:        model.OrderStatusPending,
			PaymentStatus: model.PaymentStatusPending,
		},
	}
	svc := newTestService(repo, &stubGateway{signatureValid: true})

	order, err := svc.VerifyPayment(context.Background(), 1, "gw_1", "pay_1", "sig", "ORD-1700000000000-A1B2C3")
	if err != nil {
		t.Fatalf("VerifyPayment error: %v", err)
	}
	if order.Status != model.OrderStatusConfirmed {
		t.Fatalf("Status = %s, want confirmed", order.Status)
	}
	if order.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("PaymentStatus = %s, want paid", order.PaymentStatus)
	}
	if order.PaidAt == nil {
		t.Fatalf("PaidAt must be set")
	}
	if repo.setPaidNumber != "ORD-1700000000000-A1B2C3" {
		t.Fatalf("SetOrderPaid not called with order number")
	}
}

func TestVerifyPayment_MarksFailedOnPersistError(t *testing.T) {
	repo := &stubRepo{
		order:      &model.Order{Number: "ORD-1700000000000-A1B2C3", UserID: 1},
		setPaidErr: errors.New("write failed"),
	}
	svc := newTestService(repo, &stubGateway{signatureValid: true})

	_, err := svc.VerifyPayment(context.Background(), 1, "gw_1", "pay_1", "sig", "ORD-1700000000000-A1B2C3")
	if err == nil {
		t.Fatalf("expected error from failed persist")
	}
	if repo.markFailedNumber != "ORD-1700000000000-A1B2C3" {
		t.Fatalf("order must be marked failed after persist error")
	}
}

func TestAdvanceOrderStatus_ForwardOnly(t *testing.T) {
	repo := &stubRepo{
		order: &model.Order{Number: "ORD-1700000000000-A1B2C3", Status: model.OrderStatusShipped},
	}
	svc := newTestService(repo, nil)

	err := svc.AdvanceOrderStatus(context.Background(), "ORD-1700000000000-A1B2C3", model.OrderStatusProcessing)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition for backward move, got %v", err)
	}

	if err := svc.AdvanceOrderStatus(context.Background(), "ORD-1700000000000-A1B2C3", model.OrderStatusDelivered); err != nil {
		t.Fatalf("forward move error: %v", err)
	}
	if repo.updatedStatus != model.OrderStatusDelivered {
		t.Fatalf("updatedStatus = %s, want delivered", repo.updatedStatus)
	}
}

func TestAdvanceOrderStatus_RejectsTerminalTarget(t *testing.T) {
	repo := &stubRepo{
		order: &model.Order{Number: "ORD-1700000000000-A1B2C3", Status: model.OrderStatusConfirmed},
	}
	svc := newTestService(repo, nil)

	err := svc.AdvanceOrderStatus(context.Background(), "ORD-1700000000000-A1B2C3", model.OrderStatusCancelled)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition for cancelled target, got %v", err)
	}
}

func TestGetDashboardStats(t *testing.T) {
	repo := &stubRepo{}
	repo.counts.orders = 12
	repo.counts.users = 7
	repo.counts.products = 4
	repo.counts.quotes = 2
	repo.counts.revenue = 1500050

	svc := newTestService(repo, nil)

	stats, err := svc.GetDashboardStats(context.Background())
	if err != nil {
		t.Fatalf("GetDashboardStats error: %v", err)
	}
	if stats.Orders != 12 || stats.Users != 7 || stats.Products != 4 || stats.Quotes != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.RevenueTotal != 15000.5 {
		t.Fatalf("RevenueTotal = %v, want 15000.5", stats.RevenueTotal)
	}
}

func TestCreatePromo_RejectsBadPercentage(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	_, err := svc.CreatePromo(context.Background(), &model.Promo{
		Code:          "SAVE200",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 200,
	})
	if !errors.Is(err, ErrInvalidPromo) {
		t.Fatalf("expected ErrInvalidPromo, got %v", err)
	}
}

func TestCreateQuote_AssignsReference(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	q := &model.Quote{
		Name:     "Fleet Co",
		Email:    "fleet@mail.test",
		Quantity: 50,
	}
	if err := svc.CreateQuote(context.Background(), q); err != nil {
		t.Fatalf("CreateQuote error: %v", err)
	}
	if q.Reference == "" {
		t.Fatalf("quote reference must be assigned")
	}
	if q.Status != model.QuoteStatusNew {
		t.Fatalf("Status = %s, want new", q.Status)
	}
}

func TestStartPaymentReconciler_StopsOnCancel(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	svc.StartPaymentReconciler(ctx)

	// Горутина должна завершиться по отмене контекста, не дождавшись тика.
	time.Sleep(100 * time.Millisecond)
}

func TestStartPaymentReconciler_FailsStaleOrders(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)
	svc.reconcileEvery = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	svc.StartPaymentReconciler(ctx)

	deadline := time.After(time.Second)
	for repo.failStaleCalls.Load() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("reconciler never swept stale pending payments")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
}

func TestCancelOrder_PassesReasonThrough(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	if err := svc.CancelOrder(context.Background(), 1, "ORD-1700000000000-A1B2C3", "wrong model ordered"); err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if repo.cancelNumber != "ORD-1700000000000-A1B2C3" {
		t.Fatalf("cancelNumber = %q", repo.cancelNumber)
	}
	if repo.cancelReason != "wrong model ordered" {
		t.Fatalf("cancelReason = %q, want the supplied reason stored", repo.cancelReason)
	}
}

func TestVerifyPayment_ReportsCompensationFailure(t *testing.T) {
	persistErr := errors.New("write failed")
	repo := &stubRepo{
		order:         &model.Order{Number: "ORD-1700000000000-A1B2C3", UserID: 1},
		setPaidErr:    persistErr,
		markFailedErr: errors.New("also failed"),
	}
	svc := newTestService(repo, &stubGateway{signatureValid: true})

	_, err := svc.VerifyPayment(context.Background(), 1, "gw_1", "pay_1", "sig", "ORD-1700000000000-A1B2C3")
	if !errors.Is(err, persistErr) {
		t.Fatalf("expected original persist error, got %v", err)
	}
	if !strings.Contains(err.Error(), "mark payment failed") {
		t.Fatalf("compensation failure must be reported, got %v", err)
	}
}

func TestGetUser_PassThrough(t *testing.T) {
	repo := &stubRepo{
		getUser: &model.User{ID: 7, Email: "user@mail.test", Role: model.RoleUser},
	}
	svc := newTestService(repo, nil)

	u, err := svc.GetUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUser error: %v", err)
	}
	if u.Email != "user@mail.test" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestGetQuote_PassThrough(t *testing.T) {
	repo := &stubRepo{
		quote: &model.Quote{Reference: "ref-1", Name: "Fleet Co", Status: model.QuoteStatusNew},
	}
	svc := newTestService(repo, nil)

	q, err := svc.GetQuote(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("GetQuote error: %v", err)
	}
	if q.Reference != "ref-1" {
		t.Fatalf("unexpected quote: %+v", q)
	}
}
