package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmeshcher/trackshop-system/internal/model"
)

// Параметры фонового процесса: оплата, не завершившаяся за полчаса,
// считается неуспешной.
const (
	reconcileInterval = time.Minute
	paymentDeadline   = 30 * time.Minute
)

// VerifyPayment проверяет подпись платежа и при успехе переводит заказ
// в confirmed/paid. Несовпадение подписи не меняет состояние заказа.
func (s *Service) VerifyPayment(ctx context.Context, userID int64, gatewayOrderID, gatewayPaymentID, signature, orderNumber string) (*model.Order, error) {
	if !s.gateway.VerifySignature(gatewayOrderID, gatewayPaymentID, signature) {
		return nil, ErrInvalidSignature
	}

	order, err := s.repo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	// Повторная авторизация: аутентифицированный пользователь мог
	// подставить чужой номер заказа.
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}

	if err := s.repo.SetOrderPaid(ctx, orderNumber, gatewayOrderID, gatewayPaymentID); err != nil {
		// Компенсация по принципу "лучшее из возможного": заказ не должен
		// молча остаться в ожидании оплаты. Неудача самой компенсации
		// присоединяется к ошибке и попадает в журнал вместе с ней.
		if failErr := s.repo.MarkPaymentFailed(ctx, orderNumber); failErr != nil {
			return nil, errors.Join(err, fmt.Errorf("mark payment failed: %w", failErr))
		}
		return nil, err
	}

	order.PaymentStatus = model.PaymentStatusPaid
	order.Status = model.OrderStatusConfirmed
	order.GatewayOrderID = gatewayOrderID
	order.GatewayPaymentID = gatewayPaymentID
	now := time.Now()
	order.PaidAt = &now

	return order, nil
}

// StartPaymentReconciler запускает фоновый процесс, помечающий неуспешной
// оплату заказов, зависших в ожидании дольше допустимого.
func (s *Service) StartPaymentReconciler(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.reconcileEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = s.repo.FailStalePendingPayments(ctx, paymentDeadline)
			}
		}
	}()
}
