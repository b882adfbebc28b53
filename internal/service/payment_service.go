package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentInput - новая оплата по пакету
type PaymentInput struct {
	PackageID int64
	Amount    int64 // в копейках
	Method    model.PaymentMethod
	Plan      model.PaymentPlan
	Status    model.PaymentStatus // пусто - completed
	PaidAt    time.Time           // нулевое значение - сейчас
}

// PaymentCommit - результат записанной оплаты. LedgerErr: оплата сохранена,
// а баланс не пересчитан
type PaymentCommit struct {
	Payment   *model.Payment `json:"payment"`
	Ledger    *ledger.Stats  `json:"ledger,omitempty"`
	LedgerErr error          `json:"-"`
}

// PaymentService записывает оплаты. Каждая запись - отдельная операция,
// баланс после неё пересчитывается заново
type PaymentService struct {
	payments PaymentStore
	packages PackageStore
	ledgers  *LedgerService
	now      func() time.Time
	logger   *zap.Logger
}

func NewPaymentService(payments PaymentStore, packages PackageStore, ledgers *LedgerService, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		packages: packages,
		ledgers:  ledgers,
		now:      time.Now,
		logger:   logger,
	}
}

// Record записывает оплату и возвращает новый баланс пакета
func (s *PaymentService) Record(ctx context.Context, in PaymentInput) (*PaymentCommit, error) {
	if in.Status == "" {
		in.Status = model.PaymentStatusCompleted
	}
	switch {
	case in.PackageID <= 0:
		return nil, invalid("package_id", "не выбран пакет")
	case in.Amount <= 0:
		return nil, invalid("amount", "сумма должна быть положительной")
	case !in.Method.Valid():
		return nil, invalid("method", "неизвестный способ оплаты")
	case !in.Plan.Valid():
		return nil, invalid("plan", "неизвестный тип оплаты")
	case !in.Status.Valid():
		return nil, invalid("status", "неизвестный статус оплаты")
	}

	pkg, err := s.packages.GetPackage(ctx, in.PackageID)
	if err != nil {
		return nil, persistence("get package", err)
	}
	if pkg == nil {
		return nil, notFound("package", in.PackageID)
	}

	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}

	payment := &model.Payment{
		PackageID: pkg.ID,
		Amount:    in.Amount,
		Method:    in.Method,
		Plan:      in.Plan,
		Status:    in.Status,
		Reference: uuid.New(),
		PaidAt:    paidAt,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		s.logger.Error("Failed to record payment", zap.Int64("package_id", pkg.ID), zap.Error(err))
		return nil, persistence("create payment", err)
	}

	s.logger.Info("Payment recorded",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("package_id", pkg.ID),
		zap.Int64("amount", payment.Amount),
		zap.String("status", string(payment.Status)),
		zap.String("reference", payment.Reference.String()),
	)

	return s.commit(ctx, payment), nil
}

// SetStatus меняет статус оплаты (например pending -> completed)
func (s *PaymentService) SetStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) (*PaymentCommit, error) {
	if !status.Valid() {
		return nil, invalid("status", "неизвестный статус оплаты")
	}

	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, persistence("get payment", err)
	}
	if payment == nil {
		return nil, notFound("payment", paymentID)
	}

	if err := s.payments.UpdatePaymentStatus(ctx, paymentID, status); err != nil {
		return nil, persistence("update payment status", err)
	}
	previous := payment.Status
	payment.Status = status

	s.logger.Info("Payment status changed",
		zap.Int64("payment_id", paymentID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	return s.commit(ctx, payment), nil
}

// commit пересчитывает баланс после записи. Ошибка пересчёта не отменяет оплату
func (s *PaymentService) commit(ctx context.Context, payment *model.Payment) *PaymentCommit {
	stats, err := s.ledgers.Recompute(ctx, payment.PackageID)
	if err != nil {
		s.logger.Error("Ledger recompute failed after payment",
			zap.Int64("payment_id", payment.ID),
			zap.Int64("package_id", payment.PackageID),
			zap.Error(err),
		)
		return &PaymentCommit{Payment: payment, LedgerErr: err}
	}
	return &PaymentCommit{Payment: payment, Ledger: stats}
}

// List возвращает оплаты пакета
func (s *PaymentService) List(ctx context.Context, packageID int64) ([]*model.Payment, error) {
	payments, err := s.payments.ListPayments(ctx, packageID)
	if err != nil {
		return nil, persistence("list payments", err)
	}
	return payments, nil
}
