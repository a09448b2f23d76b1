package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is a maintained site: a campus, park, or commercial grounds.
type Property struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	AddressLine1 string          `gorm:"column:address_line1;not null"`
	AddressLine2 *string         `gorm:"column:address_line2"`
	City         string          `gorm:"column:city;not null"`
	State        string          `gorm:"column:state;not null"`
	PostalCode   string          `gorm:"column:postal_code;not null"`
	Lat          float64         `gorm:"column:lat"`
	Lng          float64         `gorm:"column:lng"`
	Acreage      decimal.Decimal `gorm:"column:acreage;type:numeric(10,2);not null;default:0"`
	Notes        *string         `gorm:"column:notes"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the plural table name explicit.
func (Property) TableName() string {
	return "properties"
}
