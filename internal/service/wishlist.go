package service

import (
	"context"

	"github.com/mmeshcher/trackshop-system/internal/model"
)

// AddToWishlist добавляет товар в список желаний, фиксируя текущую цену
// для последующего сравнения "подешевел с момента добавления".
func (s *Service) AddToWishlist(ctx context.Context, userID, productID int64) error {
	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Active {
		return ErrProductUnavailable
	}

	return s.repo.AddWishlistItem(ctx, userID, productID, product.PriceCents)
}

// RemoveFromWishlist удаляет товар из списка желаний.
func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID int64) error {
	return s.repo.RemoveWishlistItem(ctx, userID, productID)
}

// GetWishlist возвращает список желаний пользователя.
func (s *Service) GetWishlist(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	return s.repo.GetWishlist(ctx, userID)
}
