package httpapi

import (
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/grid"
	"github.com/Freeeeeet/autoschool_bot/internal/ledger"
	"github.com/Freeeeeet/autoschool_bot/internal/model"
	"github.com/Freeeeeet/autoschool_bot/internal/service"
)

type lessonRequest struct {
	PackageID       int64              `json:"package_id" validate:"required,gt=0"`
	InstructorID    int64              `json:"instructor_id" validate:"omitempty,gt=0"` // 0 - текущий инструктор
	SessionDate     time.Time          `json:"session_date" validate:"required"`
	DurationMinutes int                `json:"duration_minutes" validate:"required,gt=0,lte=480"`
	Location        string             `json:"location" validate:"max=200"`
	Summary         string             `json:"summary" validate:"max=2000"`
	Status          model.LessonStatus `json:"status" validate:"omitempty,oneof=planned completed cancelled"`
}

func (req lessonRequest) lesson(id int64) *model.Lesson {
	return &model.Lesson{
		ID:              id,
		PackageID:       req.PackageID,
		InstructorID:    req.InstructorID,
		SessionDate:     req.SessionDate,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Summary:         req.Summary,
		Status:          req.Status,
	}
}

type sessionRequest struct {
	Hours    float64    `json:"hours" validate:"required,gt=0,lte=8"`
	Date     *time.Time `json:"date"` // nil - сейчас
	Location string     `json:"location" validate:"max=200"`
	Summary  string     `json:"summary" validate:"max=2000"`
}

type enrollRequest struct {
	ClientID     int64  `json:"client_id" validate:"required,gt=0"`
	CourseID     int64  `json:"course_id" validate:"required,gt=0"`
	InstructorID *int64 `json:"instructor_id" validate:"omitempty,gt=0"`
}

type assignRequest struct {
	InstructorID *int64 `json:"instructor_id" validate:"omitempty,gt=0"` // null - снять инструктора
}

type paymentRequest struct {
	Amount int64               `json:"amount" validate:"required,gt=0"`
	Method model.PaymentMethod `json:"method" validate:"required,oneof=cash card transfer"`
	Plan   model.PaymentPlan   `json:"plan" validate:"required,oneof=full installment deposit"`
	Status model.PaymentStatus `json:"status" validate:"omitempty,oneof=completed pending failed"`
	PaidAt *time.Time          `json:"paid_at"`
}

type paymentStatusRequest struct {
	Status model.PaymentStatus `json:"status" validate:"required,oneof=completed pending failed"`
}

type clientRequest struct {
	FullName string               `json:"full_name" validate:"required,max=200"`
	Phone    string               `json:"phone" validate:"max=32"`
	Email    string               `json:"email" validate:"omitempty,email"`
	Gear     model.GearPreference `json:"gear" validate:"omitempty,oneof=manual automatic"`
}

type courseRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Category        string  `json:"category" validate:"required,max=8"`
	TotalHours      float64 `json:"total_hours" validate:"required,gt=0"`
	BasePrice       int64   `json:"base_price" validate:"gte=0"`
	DiscountedPrice *int64  `json:"discounted_price" validate:"omitempty,gte=0"`
}

type staffRequest struct {
	FullName   string     `json:"full_name" validate:"required,max=200"`
	Role       model.Role `json:"role" validate:"required,oneof=admin instructor"`
	TelegramID *int64     `json:"telegram_id" validate:"omitempty,gt=0"`
}

type scheduleResponse struct {
	View         service.ViewMode `json:"view"`
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	InstructorID *int64           `json:"instructor_id"`
	Grid         grid.Config      `json:"grid"`
	Lessons      []*model.Lesson  `json:"lessons"`
	Blocks       []grid.Block     `json:"blocks"`
}

type commitResponse struct {
	*service.Commit
	LedgerError string `json:"ledger_error,omitempty"`
}

func newCommitResponse(c *service.Commit) commitResponse {
	resp := commitResponse{Commit: c}
	if c.LedgerErr != nil {
		resp.LedgerError = c.LedgerErr.Error()
	}
	return resp
}

type ledgerResponse struct {
	*ledger.Stats
	Warning *ledger.OverageWarning `json:"warning,omitempty"`
}

type paymentResponse struct {
	*service.PaymentCommit
	LedgerError string `json:"ledger_error,omitempty"`
}

func newPaymentResponse(c *service.PaymentCommit) paymentResponse {
	resp := paymentResponse{PaymentCommit: c}
	if c.LedgerErr != nil {
		resp.LedgerError = c.LedgerErr.Error()
	}
	return resp
}
