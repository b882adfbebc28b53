package model

import "time"

// Course - программа обучения из каталога
type Course struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"` // категория прав: B, A, ...
	TotalHours      float64   `json:"total_hours"`
	BasePrice       int64     `json:"base_price"`       // в копейках
	DiscountedPrice *int64    `json:"discounted_price"` // nil - скидки нет
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// EffectivePrice возвращает цену договора: со скидкой, если она задана
func (c *Course) EffectivePrice() int64 {
	if c.DiscountedPrice != nil {
		return *c.DiscountedPrice
	}
	return c.BasePrice
}
