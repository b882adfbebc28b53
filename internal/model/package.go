package model

import (
	"math"
	"time"
)

type PackageStatus string

const (
	PackageStatusActive   PackageStatus = "active"
	PackageStatusArchived PackageStatus = "archived"
)

// Package - купленный клиентом пакет часов (договор на обучение)
type Package struct {
	ID            int64         `json:"id"`
	ClientID      int64         `json:"client_id"`
	CourseID      *int64        `json:"course_id"` // nil - пакет оформлен вне каталога
	TotalHours    float64       `json:"total_hours"`
	ContractPrice int64         `json:"contract_price"` // в копейках
	Status        PackageStatus `json:"status"`
	InstructorID  *int64        `json:"instructor_id"` // nil - инструктор не назначен
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TotalMinutes возвращает контрактный объём в минутах
func (p *Package) TotalMinutes() int {
	return int(math.Round(p.TotalHours * 60))
}

// IsArchived проверяет что обучение по пакету завершено
func (p *Package) IsArchived() bool {
	return p.Status == PackageStatusArchived
}

// HasInstructor проверяет назначен ли инструктор
func (p *Package) HasInstructor() bool {
	return p.InstructorID != nil
}
