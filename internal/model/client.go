package model

import "time"

type GearPreference string

const (
	GearManual    GearPreference = "manual"
	GearAutomatic GearPreference = "automatic"
)

// Client - ученик автошколы. Не удаляется, только деактивируется
type Client struct {
	ID        int64          `json:"id"`
	FullName  string         `json:"full_name"`
	Phone     string         `json:"phone"`
	Email     string         `json:"email"`
	Gear      GearPreference `json:"gear"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
}

// Valid проверяет что тип коробки известен
func (g GearPreference) Valid() bool {
	return g == GearManual || g == GearAutomatic
}
