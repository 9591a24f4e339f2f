package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mmeshcher/trackshop-system/internal/model"
)

const promoColumns = `id, code, description, discount_type, discount_value, max_discount_cents,
	min_purchase_cents, valid_from, valid_until, usage_limit, used_count, active, created_at`

func scanPromo(row pgx.Row) (*model.Promo, error) {
	var p model.Promo
	var discountType string
	err := row.Scan(
		&p.ID, &p.Code, &p.Description, &discountType, &p.DiscountValue, &p.MaxDiscountCents,
		&p.MinPurchaseCents, &p.ValidFrom, &p.ValidUntil, &p.UsageLimit, &p.UsedCount, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("scan promo: %w", err)
	}
	p.DiscountType = model.DiscountType(discountType)
	return &p, nil
}

// GetPromoByCode возвращает промокод по коду.
func (r *PostgresRepository) GetPromoByCode(ctx context.Context, code string) (*model.Promo, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+promoColumns+` FROM promos WHERE code = $1`,
		code,
	)
	return scanPromo(row)
}

// CreatePromo добавляет промокод.
func (r *PostgresRepository) CreatePromo(ctx context.Context, p *model.Promo) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO promos (code, description, discount_type, discount_value, max_discount_cents,
		     min_purchase_cents, valid_from, valid_until, usage_limit, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		p.Code, p.Description, string(p.DiscountType), p.DiscountValue, p.MaxDiscountCents,
		p.MinPurchaseCents, p.ValidFrom, p.ValidUntil, p.UsageLimit, p.Active,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrPromoExists, p.Code)
		}
		return 0, fmt.Errorf("create promo: %w", err)
	}
	return id, nil
}

// UpdatePromo обновляет параметры промокода. Счётчик использований не трогаем.
func (r *PostgresRepository) UpdatePromo(ctx context.Context, p *model.Promo) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE promos
		 SET description = $2, discount_type = $3, discount_value = $4, max_discount_cents = $5,
		     min_purchase_cents = $6, valid_from = $7, valid_until = $8, usage_limit = $9, active = $10
		 WHERE code = $1`,
		p.Code, p.Description, string(p.DiscountType), p.DiscountValue, p.MaxDiscountCents,
		p.MinPurchaseCents, p.ValidFrom, p.ValidUntil, p.UsageLimit, p.Active,
	)
	if err != nil {
		return fmt.Errorf("update promo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPromoNotFound
	}
	return nil
}

// DeletePromo удаляет промокод.
func (r *PostgresRepository) DeletePromo(ctx context.Context, code string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM promos WHERE code = $1`,
		code,
	)
	if err != nil {
		return fmt.Errorf("delete promo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPromoNotFound
	}
	return nil
}

// ListPromos возвращает все промокоды.
func (r *PostgresRepository) ListPromos(ctx context.Context) ([]model.Promo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+promoColumns+` FROM promos ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select promos: %w", err)
	}
	defer rows.Close()

	var promos []model.Promo
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return promos, nil
}
