package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/trackshop-system/internal/model"
	"github.com/mmeshcher/trackshop-system/internal/validation"
)

// fulfillmentRank задаёт порядок статусов исполнения: админ может двигать
// заказ только вперёд; отмена и возврат идут отдельными путями.
var fulfillmentRank = map[model.OrderStatus]int{
	model.OrderStatusPending:    0,
	model.OrderStatusConfirmed:  1,
	model.OrderStatusProcessing: 2,
	model.OrderStatusShipped:    3,
	model.OrderStatusDelivered:  4,
}

// AdvanceOrderStatus переводит заказ в следующий статус исполнения
// (админ-операция). Допустимы только движения вперёд по цепочке.
func (s *Service) AdvanceOrderStatus(ctx context.Context, number string, status model.OrderStatus) error {
	newRank, ok := fulfillmentRank[status]
	if !ok {
		return ErrInvalidStatusTransition
	}

	order, err := s.repo.GetOrderByNumber(ctx, number)
	if err != nil {
		return err
	}

	currentRank, ok := fulfillmentRank[order.Status]
	if !ok || newRank <= currentRank {
		return ErrInvalidStatusTransition
	}

	return s.repo.UpdateOrderStatus(ctx, number, status)
}

// GetDashboardStats собирает показатели админ-панели. Счётчики независимы
// и только читают, поэтому запрашиваются параллельно.
func (s *Service) GetDashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	var revenueCents int64

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountOrders(ctx)
		stats.Orders = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountUsers(ctx)
		stats.Users = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountActiveProducts(ctx)
		stats.Products = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountQuotes(ctx)
		stats.Quotes = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.SumPaidRevenue(ctx)
		revenueCents = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.RevenueTotal = float64(revenueCents) / 100

	return &stats, nil
}

func validatePromoParams(p *model.Promo) error {
	if !validation.IsValidPromoCode(p.Code) {
		return ErrInvalidPromo
	}
	switch p.DiscountType {
	case model.DiscountPercentage:
		if p.DiscountValue <= 0 || p.DiscountValue > 100 {
			return ErrInvalidPromo
		}
	case model.DiscountFixed:
		if p.DiscountValue <= 0 {
			return ErrInvalidPromo
		}
	default:
		return ErrInvalidPromo
	}
	if p.ValidFrom != nil && p.ValidUntil != nil && p.ValidUntil.Before(*p.ValidFrom) {
		return ErrInvalidPromo
	}
	if p.UsageLimit != nil && *p.UsageLimit < 1 {
		return ErrInvalidPromo
	}
	return nil
}

// CreatePromo добавляет промокод (админ-операция).
func (s *Service) CreatePromo(ctx context.Context, p *model.Promo) (int64, error) {
	if err := validatePromoParams(p); err != nil {
		return 0, err
	}
	return s.repo.CreatePromo(ctx, p)
}

// UpdatePromo обновляет промокод (админ-операция).
func (s *Service) UpdatePromo(ctx context.Context, p *model.Promo) error {
	if err := validatePromoParams(p); err != nil {
		return err
	}
	return s.repo.UpdatePromo(ctx, p)
}

// DeletePromo удаляет промокод (админ-операция).
func (s *Service) DeletePromo(ctx context.Context, code string) error {
	return s.repo.DeletePromo(ctx, code)
}

// ListPromos возвращает все промокоды (админ-операция).
func (s *Service) ListPromos(ctx context.Context) ([]model.Promo, error) {
	return s.repo.ListPromos(ctx)
}
