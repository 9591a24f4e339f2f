package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mmeshcher/trackshop-system/internal/model"
)

// CreateQuote сохраняет заявку на оптовое предложение.
func (r *PostgresRepository) CreateQuote(ctx context.Context, q *model.Quote) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quotes (reference, name, email, phone, company, quantity, message, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`,
		q.Reference, q.Name, q.Email, q.Phone, q.Company, q.Quantity, q.Message, string(q.Status),
	).Scan(&q.CreatedAt)
	if err != nil {
		return fmt.Errorf("create quote: %w", err)
	}
	return nil
}

// ListQuotes возвращает заявки, новые первыми.
func (r *PostgresRepository) ListQuotes(ctx context.Context) ([]model.Quote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT reference, name, email, phone, company, quantity, message, status, created_at
		 FROM quotes ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select quotes: %w", err)
	}
	defer rows.Close()

	var quotes []model.Quote
	for rows.Next() {
		var q model.Quote
		var status string
		if err := rows.Scan(&q.Reference, &q.Name, &q.Email, &q.Phone, &q.Company, &q.Quantity, &q.Message, &status, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.Status = model.QuoteStatus(status)
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return quotes, nil
}

// UpdateQuoteStatus меняет статус заявки.
func (r *PostgresRepository) UpdateQuoteStatus(ctx context.Context, reference string, status model.QuoteStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE quotes SET status = $2 WHERE reference = $1`,
		reference, string(status),
	)
	if err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

// CountQuotes возвращает число заявок в статусе new.
func (r *PostgresRepository) CountQuotes(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotes WHERE status = $1`,
		string(model.QuoteStatusNew),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count quotes: %w", err)
	}
	return n, nil
}

// CreateContact сохраняет сообщение формы обратной связи.
func (r *PostgresRepository) CreateContact(ctx context.Context, c *model.ContactMessage) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO contacts (reference, name, email, subject, message)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		c.Reference, c.Name, c.Email, c.Subject, c.Message,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

// ListContacts возвращает сообщения обратной связи, новые первыми.
func (r *PostgresRepository) ListContacts(ctx context.Context) ([]model.ContactMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT reference, name, email, subject, message, created_at
		 FROM contacts ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.ContactMessage
	for rows.Next() {
		var c model.ContactMessage
		if err := rows.Scan(&c.Reference, &c.Name, &c.Email, &c.Subject, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return contacts, nil
}

// GetQuoteByReference возвращает заявку по её ссылке.
func (r *PostgresRepository) GetQuoteByReference(ctx context.Context, reference string) (*model.Quote, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT reference, name, email, phone, company, quantity, message, status, created_at
		 FROM quotes WHERE reference = $1`,
		reference,
	)

	var q model.Quote
	var status string
	err := row.Scan(&q.Reference, &q.Name, &q.Email, &q.Phone, &q.Company, &q.Quantity, &q.Message, &status, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	q.Status = model.QuoteStatus(status)

	return &q, nil
}
