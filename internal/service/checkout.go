package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/trackshop-system/internal/gateway"
	"github.com/mmeshcher/trackshop-system/internal/model"
)

// CheckoutRequest описывает проверенный ввод оформления заказа.
type CheckoutRequest struct {
	ProductID        int64
	Quantity         int
	Address          model.Address
	PromoCode        string
	ClientTotalCents int64
}

// PriceBreakdown содержит серверную разбивку стоимости заказа.
type PriceBreakdown struct {
	SubtotalCents int64
	TaxCents      int64
	ShippingCents int64
	DiscountCents int64
	TotalCents    int64
}

// priceOrder независимо пересчитывает стоимость на сервере: клиентским
// суммам не доверяем, они используются только для сверки.
func (s *Service) priceOrder(subtotalCents, discountCents int64) PriceBreakdown {
	taxCents := subtotalCents * taxRatePercent / 100

	var shippingCents int64
	if subtotalCents < s.freeShippingCents {
		shippingCents = s.shippingFeeCents
	}

	return PriceBreakdown{
		SubtotalCents: subtotalCents,
		TaxCents:      taxCents,
		ShippingCents: shippingCents,
		DiscountCents: discountCents,
		TotalCents:    subtotalCents + taxCents + shippingCents - discountCents,
	}
}

// CreateOrder оформляет заказ: пересчитывает стоимость, сверяет итог
// с клиентским с допуском в одну рупию, сохраняет заказ со снимком
// позиций и создаёт парный заказ в платёжном шлюзе на ту же сумму.
func (s *Service) CreateOrder(ctx context.Context, userID int64, req CheckoutRequest) (*model.Order, *gateway.Order, error) {
	if req.Quantity < 1 {
		return nil, nil, ErrInvalidQuantity
	}

	product, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if !product.Active {
		return nil, nil, ErrProductUnavailable
	}
	if req.Quantity > product.Stock {
		return nil, nil, ErrInsufficientStock
	}

	subtotalCents := product.PriceCents * int64(req.Quantity)

	var discountCents int64
	if req.PromoCode != "" {
		promo, err := s.repo.GetPromoByCode(ctx, req.PromoCode)
		if err != nil {
			return nil, nil, err
		}
		if err := validatePromo(promo, subtotalCents, time.Now()); err != nil {
			return nil, nil, err
		}
		discountCents = computeDiscount(promo, subtotalCents)
	}

	pricing := s.priceOrder(subtotalCents, discountCents)

	diff := pricing.TotalCents - req.ClientTotalCents
	if diff < 0 {
		diff = -diff
	}
	if diff > totalToleranceCents {
		return nil, nil, ErrTotalMismatch
	}

	number, err := newOrderNumber(time.Now())
	if err != nil {
		return nil, nil, err
	}

	order := &model.Order{
		Number: number,
		UserID: userID,
		Items: []model.OrderItem{
			{
				ProductID:     product.ID,
				Name:          product.Name,
				ImageURL:      product.ImageURL,
				PriceCents:    product.PriceCents,
				Quantity:      req.Quantity,
				SubtotalCents: subtotalCents,
			},
		},
		ShippingAddress: req.Address,
		SubtotalCents:   pricing.SubtotalCents,
		TaxCents:        pricing.TaxCents,
		ShippingCents:   pricing.ShippingCents,
		DiscountCents:   pricing.DiscountCents,
		TotalCents:      pricing.TotalCents,
		PromoCode:       req.PromoCode,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, nil, err
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, order.Number, order.TotalCents, currency)
	if err != nil {
		// Заказ уже сохранён в ожидании оплаты: фоновый процесс пометит
		// его неуспешным, если оплата так и не начнётся.
		return nil, nil, fmt.Errorf("create gateway order: %w", err)
	}

	if err := s.repo.SetGatewayOrderID(ctx, order.Number, gwOrder.ID); err != nil {
		return nil, nil, err
	}
	order.GatewayOrderID = gwOrder.ID

	return order, gwOrder, nil
}

// GetOrder возвращает заказ пользователя по номеру.
func (s *Service) GetOrder(ctx context.Context, userID int64, number string) (*model.Order, error) {
	order, err := s.repo.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

// GetOrdersByUser возвращает список заказов пользователя.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

// CancelOrder отменяет заказ пользователя с указанием причины.
// Заказ в конечном статусе отменить нельзя.
func (s *Service) CancelOrder(ctx context.Context, userID int64, number, reason string) error {
	return s.repo.CancelOrder(ctx, userID, number, reason)
}
