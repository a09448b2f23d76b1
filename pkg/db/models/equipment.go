package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// Equipment is a serviceable asset: mowers, aerators, irrigation
// controllers and the like. A unit may be parked at a property but is
// not required to be.
type Equipment struct {
	ID           uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string                `gorm:"column:name;not null"`
	SerialNumber *string               `gorm:"column:serial_number;uniqueIndex"`
	Status       enums.EquipmentStatus `gorm:"column:status;type:varchar(32);not null;default:'operational'"`
	PropertyID   *uuid.UUID            `gorm:"column:property_id;type:uuid;index"`
	PurchaseCost decimal.Decimal       `gorm:"column:purchase_cost;type:numeric(12,2);not null;default:0"`
	PurchasedAt  *time.Time            `gorm:"column:purchased_at"`
	Notes        *string               `gorm:"column:notes"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Equipment) TableName() string {
	return "equipment"
}
