package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mmeshcher/trackshop-system/internal/model"
)

const orderColumns = `id, number, user_id, subtotal_cents, tax_cents, shipping_cents, discount_cents,
	total_cents, promo_code, status, payment_status, gateway_order_id, gateway_payment_id, paid_at,
	cancel_reason, ship_full_name, ship_phone, ship_line1, ship_line2, ship_city, ship_state,
	ship_pincode, created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var status, paymentStatus string
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.SubtotalCents, &o.TaxCents, &o.ShippingCents, &o.DiscountCents,
		&o.TotalCents, &o.PromoCode, &status, &paymentStatus, &o.GatewayOrderID, &o.GatewayPaymentID, &o.PaidAt,
		&o.CancelReason, &o.ShippingAddress.FullName, &o.ShippingAddress.Phone, &o.ShippingAddress.Line1,
		&o.ShippingAddress.Line2, &o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.Pincode, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Status = model.OrderStatus(status)
	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	return &o, nil
}

// CreateOrder сохраняет заказ со строками-снимками в одной транзакции.
// Если заказ оформлен с промокодом, счётчик использований промокода
// увеличивается в той же транзакции под блокировкой строки промокода,
// с повторной проверкой лимита — чтобы при конкурентном оформлении код
// нельзя было использовать чаще лимита.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		if order.PromoCode != "" {
			var usageLimit *int
			var usedCount int
			err = tx.QueryRow(ctx,
				`SELECT usage_limit, used_count FROM promos WHERE code = $1 AND active = TRUE FOR UPDATE`,
				order.PromoCode,
			).Scan(&usageLimit, &usedCount)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrPromoNotFound
				}
				return fmt.Errorf("lock promo: %w", err)
			}

			if usageLimit != nil && usedCount >= *usageLimit {
				return ErrPromoLimitReached
			}

			_, err = tx.Exec(ctx,
				`UPDATE promos SET used_count = used_count + 1 WHERE code = $1`,
				order.PromoCode,
			)
			if err != nil {
				return fmt.Errorf("consume promo: %w", err)
			}
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO orders (number, user_id, subtotal_cents, tax_cents, shipping_cents,
			     discount_cents, total_cents, promo_code, status, payment_status,
			     ship_full_name, ship_phone, ship_line1, ship_line2, ship_city, ship_state, ship_pincode)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			 RETURNING id, created_at`,
			order.Number, order.UserID, order.SubtotalCents, order.TaxCents, order.ShippingCents,
			order.DiscountCents, order.TotalCents, order.PromoCode,
			string(order.Status), string(order.PaymentStatus),
			order.ShippingAddress.FullName, order.ShippingAddress.Phone,
			order.ShippingAddress.Line1, order.ShippingAddress.Line2,
			order.ShippingAddress.City, order.ShippingAddress.State, order.ShippingAddress.Pincode,
		).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range order.Items {
			_, err = tx.Exec(ctx,
				`INSERT INTO order_items (order_id, product_id, name, image_url, price_cents, quantity, subtotal_cents)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				order.ID, it.ProductID, it.Name, it.ImageURL, it.PriceCents, it.Quantity, it.SubtotalCents,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}

func (r *PostgresRepository) loadOrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, name, image_url, price_cents, quantity, subtotal_cents
		 FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.ImageURL, &it.PriceCents, &it.Quantity, &it.SubtotalCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// GetOrderByNumber возвращает заказ со строками по его номеру.
func (r *PostgresRepository) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE number = $1`,
		number,
	)

	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	order.Items, err = r.loadOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrdersByUser возвращает список заказов пользователя без строк.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// SetOrderPaid помечает заказ оплаченным и подтверждённым, сохраняя
// идентификаторы шлюза и время оплаты.
func (r *PostgresRepository) SetOrderPaid(ctx context.Context, number, gatewayOrderID, gatewayPaymentID string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET payment_status = $2, status = $3, gateway_payment_id = $4, gateway_order_id = $5, paid_at = now()
		 WHERE number = $1`,
		number, string(model.PaymentStatusPaid), string(model.OrderStatusConfirmed),
		gatewayPaymentID, gatewayOrderID,
	)
	if err != nil {
		return fmt.Errorf("set order paid: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SetGatewayOrderID сохраняет идентификатор заказа на стороне шлюза.
func (r *PostgresRepository) SetGatewayOrderID(ctx context.Context, number, gatewayOrderID string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET gateway_order_id = $2 WHERE number = $1`,
		number, gatewayOrderID,
	)
	if err != nil {
		return fmt.Errorf("set gateway order id: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaymentFailed помечает оплату заказа неуспешной, статус исполнения
// остаётся pending.
func (r *PostgresRepository) MarkPaymentFailed(ctx context.Context, number string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_status = $2 WHERE number = $1`,
		number, string(model.PaymentStatusFailed),
	)
	if err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// CancelOrder отменяет заказ пользователя. Блокировка строки заказа
// сериализует отмену с параллельными сменами статуса; заказ в конечном
// статусе отменить нельзя.
func (r *PostgresRepository) CancelOrder(ctx context.Context, userID int64, number, reason string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID int64
	var status string
	err = tx.QueryRow(ctx,
		`SELECT user_id, status FROM orders WHERE number = $1 FOR UPDATE`,
		number,
	).Scan(&ownerID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("lock order: %w", err)
	}

	if ownerID != userID {
		return ErrOrderNotFound
	}

	if model.OrderStatus(status).IsTerminal() {
		return ErrOrderTerminal
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status = $2, cancel_reason = $3 WHERE number = $1`,
		number, string(model.OrderStatusCancelled), reason,
	)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// UpdateOrderStatus меняет статус исполнения заказа (админ-операция).
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, number string, status model.OrderStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM orders WHERE number = $1 FOR UPDATE`,
		number,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("lock order: %w", err)
	}

	if model.OrderStatus(current).IsTerminal() {
		return ErrOrderTerminal
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE number = $1`,
		number, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// FailStalePendingPayments помечает неуспешной оплату заказов, зависших
// в ожидании оплаты дольше deadline. Возвращает число затронутых заказов.
func (r *PostgresRepository) FailStalePendingPayments(ctx context.Context, deadline time.Duration) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_status = $1
		 WHERE payment_status = $2 AND created_at < now() - $3::interval`,
		string(model.PaymentStatusFailed), string(model.PaymentStatusPending),
		fmt.Sprintf("%d seconds", int64(deadline.Seconds())),
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale payments: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// CountOrders возвращает общее число заказов.
func (r *PostgresRepository) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// SumPaidRevenue возвращает сумму оплаченных заказов в пайсах.
func (r *PostgresRepository) SumPaidRevenue(ctx context.Context) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_cents), 0) FROM orders WHERE payment_status = $1`,
		string(model.PaymentStatusPaid),
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return sum, nil
}
