package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/trackshop-system/internal/model"
)

// AddWishlistItem добавляет товар в список желаний с фиксацией текущей цены.
// Повторное добавление того же товара — no-op, исходная цена сохраняется.
func (r *PostgresRepository) AddWishlistItem(ctx context.Context, userID, productID, priceCents int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wishlist_items (user_id, product_id, price_at_add_cents)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID, priceCents,
	)
	if err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

// RemoveWishlistItem удаляет товар из списка желаний.
func (r *PostgresRepository) RemoveWishlistItem(ctx context.Context, userID, productID int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrWishlistItemNotFound
	}
	return nil
}

// GetWishlist возвращает список желаний пользователя с текущими ценами каталога.
func (r *PostgresRepository) GetWishlist(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT wi.product_id, p.name, p.image_url, wi.price_at_add_cents, p.price_cents, p.active, wi.added_at
		 FROM wishlist_items wi
		 JOIN products p ON p.id = wi.product_id
		 WHERE wi.user_id = $1
		 ORDER BY wi.added_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select wishlist: %w", err)
	}
	defer rows.Close()

	var items []model.WishlistItem
	for rows.Next() {
		var it model.WishlistItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.ImageURL, &it.PriceAtAddCents, &it.CurrentCents, &it.Active, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
