// Package model содержит доменные сущности магазина GPS-трекеров.
package model

import "time"

// Role определяет уровень доступа пользователя.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User представляет зарегистрированного покупателя или администратора.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

// Product описывает позицию каталога.
type Product struct {
	ID          int64
	Slug        string
	Name        string
	Description string
	ImageURL    string
	PriceCents  int64
	Stock       int
	Active      bool
	CreatedAt   time.Time
}

// CartItem описывает строку корзины с зафиксированной на момент добавления ценой.
type CartItem struct {
	ProductID  int64
	Name       string
	ImageURL   string
	Quantity   int
	PriceCents int64
	AddedAt    time.Time
}

// Cart представляет корзину пользователя. Итоги всегда пересчитываются
// по строкам и никогда не принимаются от клиента.
type Cart struct {
	UserID     int64
	Items      []CartItem
	TotalCents int64
	TotalItems int
}

// Recalculate пересчитывает производные итоги корзины по её строкам.
func (c *Cart) Recalculate() {
	c.TotalCents = 0
	c.TotalItems = 0
	for _, it := range c.Items {
		c.TotalCents += it.PriceCents * int64(it.Quantity)
		c.TotalItems += it.Quantity
	}
}

// OrderStatus описывает статус исполнения заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsTerminal сообщает, является ли статус заказа конечным.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// PaymentStatus описывает статус оплаты заказа. Оплата и исполнение
// отслеживаются независимо.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// OrderItem содержит снимок купленной позиции. Последующие изменения
// каталога не влияют на историю заказов.
type OrderItem struct {
	ProductID     int64
	Name          string
	ImageURL      string
	PriceCents    int64
	Quantity      int
	SubtotalCents int64
}

// Address содержит снимок адреса доставки заказа.
type Address struct {
	FullName string
	Phone    string
	Line1    string
	Line2    string
	City     string
	State    string
	Pincode  string
}

// Order описывает заказ пользователя с зафиксированной разбивкой стоимости.
type Order struct {
	ID               int64
	Number           string
	UserID           int64
	Items            []OrderItem
	ShippingAddress  Address
	SubtotalCents    int64
	TaxCents         int64
	ShippingCents    int64
	DiscountCents    int64
	TotalCents       int64
	PromoCode        string
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	GatewayOrderID   string
	GatewayPaymentID string
	PaidAt           *time.Time
	CancelReason     string
	CreatedAt        time.Time
}

// DiscountType определяет способ расчёта скидки промокода.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Promo описывает промокод каталога.
type Promo struct {
	ID               int64
	Code             string
	Description      string
	DiscountType     DiscountType
	DiscountValue    int64
	MaxDiscountCents *int64
	MinPurchaseCents *int64
	ValidFrom        *time.Time
	ValidUntil       *time.Time
	UsageLimit       *int
	UsedCount        int
	Active           bool
	CreatedAt        time.Time
}

// Discount описывает рассчитанную скидку по промокоду для конкретной корзины.
// Расчёт не меняет состояние промокода: счётчик использований увеличивается
// только при оформлении заказа.
type Discount struct {
	Code             string
	Description      string
	DiscountType     DiscountType
	DiscountValue    int64
	MaxDiscountCents *int64
	AmountCents      int64
}

// WishlistItem описывает позицию списка желаний с ценой на момент добавления.
type WishlistItem struct {
	ProductID       int64
	Name            string
	ImageURL        string
	PriceAtAddCents int64
	CurrentCents    int64
	Active          bool
	AddedAt         time.Time
}

// PriceDropped сообщает, подешевел ли товар с момента добавления в список.
func (w WishlistItem) PriceDropped() bool {
	return w.CurrentCents < w.PriceAtAddCents
}

// QuoteStatus описывает статус заявки на оптовое предложение.
type QuoteStatus string

const (
	QuoteStatusNew       QuoteStatus = "new"
	QuoteStatusContacted QuoteStatus = "contacted"
	QuoteStatusClosed    QuoteStatus = "closed"
)

// Quote описывает заявку на оптовое предложение.
type Quote struct {
	Reference string
	Name      string
	Email     string
	Phone     string
	Company   string
	Quantity  int
	Message   string
	Status    QuoteStatus
	CreatedAt time.Time
}

// ContactMessage описывает сообщение из формы обратной связи.
type ContactMessage struct {
	Reference string
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// DashboardStats содержит агрегированные показатели для админ-панели.
type DashboardStats struct {
	Orders       int64   `json:"orders"`
	Users        int64   `json:"users"`
	Products     int64   `json:"products"`
	Quotes       int64   `json:"quotes"`
	RevenueTotal float64 `json:"revenue_total"`
}
