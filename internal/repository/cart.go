package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/trackshop-system/internal/model"
)

// GetCart возвращает корзину пользователя. Строки, товар которых стал
// неактивен или закончился на складе, отфильтровываются на чтении,
// поэтому представление корзины всегда согласовано с каталогом.
func (r *PostgresRepository) GetCart(ctx context.Context, userID int64) (*model.Cart, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ci.product_id, p.name, p.image_url, ci.quantity, ci.price_cents, ci.added_at
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.user_id = $1 AND p.active = TRUE AND p.stock > 0
		 ORDER BY ci.added_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	cart := &model.Cart{UserID: userID}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.ImageURL, &it.Quantity, &it.PriceCents, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	cart.Recalculate()
	return cart, nil
}

// GetCartQuantity возвращает текущее количество товара в корзине пользователя
// (0, если строки нет).
func (r *PostgresRepository) GetCartQuantity(ctx context.Context, userID, productID int64) (int, error) {
	var qty int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(
		    (SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2), 0)`,
		userID, productID,
	).Scan(&qty)
	if err != nil {
		return 0, fmt.Errorf("select cart quantity: %w", err)
	}
	return qty, nil
}

// UpsertCartItem добавляет строку корзины или увеличивает количество
// существующей, сохраняя цену, зафиксированную при первом добавлении.
func (r *PostgresRepository) UpsertCartItem(ctx context.Context, userID, productID int64, quantity int, priceCents int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity, price_cents)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity, priceCents,
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

// SetCartItemQuantity устанавливает количество товара в корзине.
func (r *PostgresRepository) SetCartItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		userID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// RemoveCartItem удаляет строку корзины.
func (r *PostgresRepository) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// ClearCart удаляет все строки корзины пользователя.
func (r *PostgresRepository) ClearCart(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
