package service

import (
	"context"

	"github.com/mmeshcher/trackshop-system/internal/model"
)

// GetCart возвращает корзину пользователя с пересчитанными итогами.
func (s *Service) GetCart(ctx context.Context, userID int64) (*model.Cart, error) {
	return s.repo.GetCart(ctx, userID)
}

// AddCartItem добавляет товар в корзину. Если товар уже есть, количество
// накапливается; превышение остатка на складе отклоняется без частичного
// изменения корзины. Цена фиксируется из каталога на момент добавления.
func (s *Service) AddCartItem(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Active {
		return ErrProductUnavailable
	}

	existing, err := s.repo.GetCartQuantity(ctx, userID, productID)
	if err != nil {
		return err
	}

	if existing+quantity > product.Stock {
		return ErrInsufficientStock
	}

	return s.repo.UpsertCartItem(ctx, userID, productID, quantity, product.PriceCents)
}

// UpdateCartQuantity устанавливает количество товара в корзине.
func (s *Service) UpdateCartQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}

	if quantity > product.Stock {
		return ErrInsufficientStock
	}

	return s.repo.SetCartItemQuantity(ctx, userID, productID, quantity)
}

// RemoveCartItem удаляет строку корзины.
func (s *Service) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	return s.repo.RemoveCartItem(ctx, userID, productID)
}

// ClearCart очищает корзину пользователя.
func (s *Service) ClearCart(ctx context.Context, userID int64) error {
	return s.repo.ClearCart(ctx, userID)
}
