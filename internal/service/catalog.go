package service

import (
	"context"

	"github.com/mmeshcher/trackshop-system/internal/model"
	"github.com/mmeshcher/trackshop-system/internal/repository"
)

// ListProducts возвращает активные товары каталога.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListActiveProducts(ctx)
}

// GetProductBySlug возвращает товар по slug. Неактивный товар для
// покупателя не существует.
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

// CreateProduct добавляет товар в каталог (админ-операция).
func (s *Service) CreateProduct(ctx context.Context, p *model.Product) (int64, error) {
	return s.repo.CreateProduct(ctx, p)
}

// UpdateProduct обновляет товар каталога (админ-операция).
func (s *Service) UpdateProduct(ctx context.Context, p *model.Product) error {
	return s.repo.UpdateProduct(ctx, p)
}

// DeactivateProduct скрывает товар из каталога (админ-операция).
func (s *Service) DeactivateProduct(ctx context.Context, id int64) error {
	return s.repo.DeactivateProduct(ctx, id)
}
