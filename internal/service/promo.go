package service

import (
	"context"
	"time"

	"github.com/mmeshcher/trackshop-system/internal/model"
	"github.com/mmeshcher/trackshop-system/internal/repository"
)

// validatePromo прогоняет промокод через последовательные проверки
// против суммы корзины. Первая непройденная проверка прерывает
// валидацию со своей причиной; состояние промокода не меняется.
func validatePromo(promo *model.Promo, subtotalCents int64, now time.Time) error {
	if !promo.Active {
		return ErrPromoInactive
	}

	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return ErrPromoNotStarted
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return ErrPromoExpired
	}

	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return repository.ErrPromoLimitReached
	}

	if subtotalCents <= 0 {
		return ErrEmptyCart
	}

	if promo.MinPurchaseCents != nil && subtotalCents < *promo.MinPurchaseCents {
		return ErrPromoMinPurchase
	}

	return nil
}

// computeDiscount рассчитывает размер скидки в пайсах для указанной суммы.
// Скидка не превышает ни сумму, ни дополнительный потолок промокода.
func computeDiscount(promo *model.Promo, subtotalCents int64) int64 {
	var discount int64
	switch promo.DiscountType {
	case model.DiscountPercentage:
		discount = subtotalCents * promo.DiscountValue / 100
	case model.DiscountFixed:
		discount = promo.DiscountValue
	default:
		return 0
	}

	if promo.MaxDiscountCents != nil && discount > *promo.MaxDiscountCents {
		discount = *promo.MaxDiscountCents
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}

	return discount
}

// ApplyPromo валидирует промокод против корзины пользователя и возвращает
// описание скидки. Счётчик использований не увеличивается: промокод
// потребляется только при оформлении заказа.
func (s *Service) ApplyPromo(ctx context.Context, userID int64, code string) (*model.Discount, error) {
	promo, err := s.repo.GetPromoByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := validatePromo(promo, cart.TotalCents, time.Now()); err != nil {
		return nil, err
	}

	return &model.Discount{
		Code:             promo.Code,
		Description:      promo.Description,
		DiscountType:     promo.DiscountType,
		DiscountValue:    promo.DiscountValue,
		MaxDiscountCents: promo.MaxDiscountCents,
		AmountCents:      computeDiscount(promo, cart.TotalCents),
	}, nil
}
