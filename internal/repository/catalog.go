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

const productColumns = `id, slug, name, description, image_url, price_cents, stock, active, created_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.ImageURL, &p.PriceCents, &p.Stock, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// CreateProduct добавляет товар в каталог.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (slug, name, description, image_url, price_cents, stock, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		p.Slug, p.Name, p.Description, p.ImageURL, p.PriceCents, p.Stock, p.Active,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrProductExists, p.Slug)
		}
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

// UpdateProduct обновляет данные товара.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET name = $2, description = $3, image_url = $4, price_cents = $5, stock = $6, active = $7
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.ImageURL, p.PriceCents, p.Stock, p.Active,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeactivateProduct скрывает товар из каталога. Записи не удаляются,
// чтобы не ломать снимки заказов.
func (r *PostgresRepository) DeactivateProduct(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE products SET active = FALSE WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// GetProductByID возвращает товар по идентификатору.
func (r *PostgresRepository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`,
		id,
	)
	return scanProduct(row)
}

// GetProductBySlug возвращает товар по slug.
func (r *PostgresRepository) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`,
		slug,
	)
	return scanProduct(row)
}

// ListActiveProducts возвращает активные товары каталога.
func (r *PostgresRepository) ListActiveProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE active = TRUE ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.ImageURL, &p.PriceCents, &p.Stock, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// CountActiveProducts возвращает число активных товаров.
func (r *PostgresRepository) CountActiveProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE active = TRUE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
