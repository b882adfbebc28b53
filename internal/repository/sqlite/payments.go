package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/google/uuid"
)

const paymentColumns = `id, package_id, amount, method, plan, status, reference, paid_at, created_at`

// ListPayments возвращает оплаты пакета
func (s *Store) ListPayments(ctx context.Context, packageID int64) ([]*model.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE package_id = ? ORDER BY paid_at, id`, packageID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

// GetPayment получает оплату по ID
func (s *Store) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	payment, err := scanPayment(s.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}
	return payment, nil
}

// CreatePayment записывает оплату
func (s *Store) CreatePayment(ctx context.Context, payment *model.Payment) error {
	now := nowMillis()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (package_id, amount, method, plan, status, reference, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.PackageID,
		payment.Amount,
		string(payment.Method),
		string(payment.Plan),
		string(payment.Status),
		payment.Reference.String(),
		toMillis(payment.PaidAt),
		now,
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	payment.ID = id
	payment.CreatedAt = fromMillis(now)
	return nil
}

// UpdatePaymentStatus меняет статус оплаты
func (s *Store) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	if err := execOne(ctx, s.db, `UPDATE payments SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return fmt.Errorf("update payment status %d: %w", id, err)
	}
	return nil
}

func scanPayment(row rowScanner) (*model.Payment, error) {
	var (
		payment           model.Payment
		reference         string
		paidAt, createdAt int64
	)
	err := row.Scan(
		&payment.ID,
		&payment.PackageID,
		&payment.Amount,
		&payment.Method,
		&payment.Plan,
		&payment.Status,
		&reference,
		&paidAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	payment.Reference, err = uuid.Parse(reference)
	if err != nil {
		return nil, fmt.Errorf("parse payment reference: %w", err)
	}
	payment.PaidAt = fromMillis(paidAt)
	payment.CreatedAt = fromMillis(createdAt)
	return &payment, nil
}
