package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// Task is a unit of scheduled work against a property, optionally tied
// to a specific piece of equipment.
type Task struct {
	ID            uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string             `gorm:"column:title;not null"`
	Description   *string            `gorm:"column:description"`
	Status        enums.TaskStatus   `gorm:"column:status;type:varchar(32);not null;default:'pending'"`
	Priority      enums.TaskPriority `gorm:"column:priority;type:varchar(16);not null;default:'medium'"`
	PropertyID    uuid.UUID          `gorm:"column:property_id;type:uuid;not null;index"`
	EquipmentID   *uuid.UUID         `gorm:"column:equipment_id;type:uuid;index"`
	EstimatedCost decimal.Decimal    `gorm:"column:estimated_cost;type:numeric(12,2);not null;default:0"`
	DueDate       *time.Time         `gorm:"column:due_date"`
	CompletedAt   *time.Time         `gorm:"column:completed_at"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Task) TableName() string {
	return "tasks"
}
