package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

type PaymentPlan string

const (
	PaymentPlanFull        PaymentPlan = "full"
	PaymentPlanInstallment PaymentPlan = "installment"
	PaymentPlanDeposit     PaymentPlan = "deposit"
)

// Payment - оплата, зачисляемая в счёт стоимости пакета
type Payment struct {
	ID        int64         `json:"id"`
	PackageID int64         `json:"package_id"`
	Amount    int64         `json:"amount"` // в копейках
	Method    PaymentMethod `json:"method"`
	Plan      PaymentPlan   `json:"plan"`
	Status    PaymentStatus `json:"status"`
	Reference uuid.UUID     `json:"reference"` // номер квитанции
	PaidAt    time.Time     `json:"paid_at"`
	CreatedAt time.Time     `json:"created_at"`
}

// IsCompleted: только завершённые оплаты учитываются в сумме оплат
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// Valid проверяет что статус известен
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusPending, PaymentStatusFailed:
		return true
	}
	return false
}

// Valid проверяет что способ оплаты известен
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// Valid проверяет что тип оплаты известен
func (p PaymentPlan) Valid() bool {
	switch p {
	case PaymentPlanFull, PaymentPlanInstallment, PaymentPlanDeposit:
		return true
	}
	return false
}
