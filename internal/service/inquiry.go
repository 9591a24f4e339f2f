package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mmeshcher/trackshop-system/internal/model"
	"github.com/mmeshcher/trackshop-system/internal/validation"
)

// CreateQuote сохраняет заявку на оптовое предложение и возвращает её ссылку.
func (s *Service) CreateQuote(ctx context.Context, q *model.Quote) error {
	if !validation.IsValidEmail(q.Email) {
		return ErrInvalidEmail
	}
	if q.Quantity < 1 {
		return ErrInvalidQuantity
	}

	q.Reference = uuid.NewString()
	q.Status = model.QuoteStatusNew

	return s.repo.CreateQuote(ctx, q)
}

// GetQuote возвращает заявку по её ссылке (админ-операция).
func (s *Service) GetQuote(ctx context.Context, reference string) (*model.Quote, error) {
	return s.repo.GetQuoteByReference(ctx, reference)
}

// ListQuotes возвращает все заявки (админ-операция).
func (s *Service) ListQuotes(ctx context.Context) ([]model.Quote, error) {
	return s.repo.ListQuotes(ctx)
}

// UpdateQuoteStatus меняет статус заявки (админ-операция).
func (s *Service) UpdateQuoteStatus(ctx context.Context, reference string, status model.QuoteStatus) error {
	switch status {
	case model.QuoteStatusNew, model.QuoteStatusContacted, model.QuoteStatusClosed:
	default:
		return ErrInvalidStatusTransition
	}

	return s.repo.UpdateQuoteStatus(ctx, reference, status)
}

// CreateContact сохраняет сообщение формы обратной связи.
func (s *Service) CreateContact(ctx context.Context, c *model.ContactMessage) error {
	if !validation.IsValidEmail(c.Email) {
		return ErrInvalidEmail
	}

	c.Reference = uuid.NewString()

	return s.repo.CreateContact(ctx, c)
}

// ListContacts возвращает сообщения обратной связи (админ-операция).
func (s *Service) ListContacts(ctx context.Context) ([]model.ContactMessage, error) {
	return s.repo.ListContacts(ctx)
}
