package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, package_id, amount, method, plan, status, reference, paid_at, created_at`

type PaymentRepository struct {
	db *base.Repository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: base.NewRepository(pool)}
}

// ListPayments возвращает оплаты пакета
func (r *PaymentRepository) ListPayments(ctx context.Context, packageID int64) ([]*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE package_id = $1 ORDER BY paid_at, id`

	rows, err := r.db.Query(ctx, query, packageID)
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
func (r *PaymentRepository) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}

	return payment, nil
}

// CreatePayment записывает оплату
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (package_id, amount, method, plan, status, reference, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		payment.PackageID,
		payment.Amount,
		payment.Method,
		payment.Plan,
		payment.Status,
		payment.Reference,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt)

	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

// UpdatePaymentStatus меняет статус оплаты
func (r *PaymentRepository) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	if err := r.db.ExecOne(ctx, `UPDATE payments SET status = $2 WHERE id = $1`, id, status); err != nil {
		return fmt.Errorf("update payment status %d: %w", id, err)
	}
	return nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var payment model.Payment
	err := row.Scan(
		&payment.ID,
		&payment.PackageID,
		&payment.Amount,
		&payment.Method,
		&payment.Plan,
		&payment.Status,
		&payment.Reference,
		&payment.PaidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
