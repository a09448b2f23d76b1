package equipment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// EquipmentDTO is the API representation of a serviceable asset.
type EquipmentDTO struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	SerialNumber *string               `json:"serial_number,omitempty"`
	Status       enums.EquipmentStatus `json:"status"`
	PropertyID   *uuid.UUID            `json:"property_id,omitempty"`
	PurchaseCost decimal.Decimal       `json:"purchase_cost"`
	PurchasedAt  *time.Time            `json:"purchased_at,omitempty"`
	Notes        *string               `json:"notes,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// CreateEquipmentInput holds the validated payload to register a unit.
type CreateEquipmentInput struct {
	Name         string
	SerialNumber *string
	Status       enums.EquipmentStatus
	PropertyID   *uuid.UUID
	PurchaseCost decimal.Decimal
	PurchasedAt  *time.Time
	Notes        *string
}

// UpdateEquipmentInput holds optional mutation values.
type UpdateEquipmentInput struct {
	Name         *string
	SerialNumber *string
	Status       *enums.EquipmentStatus
	PropertyID   *uuid.UUID
	PurchaseCost *decimal.Decimal
	PurchasedAt  *time.Time
	Notes        *string
}

// EquipmentListResult carries one page of equipment.
type EquipmentListResult struct {
	Items      []EquipmentDTO `json:"items"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

// FromModel maps a database row to its DTO.
func FromModel(row *models.Equipment) EquipmentDTO {
	return EquipmentDTO{
		ID:           row.ID,
		Name:         row.Name,
		SerialNumber: row.SerialNumber,
		Status:       row.Status,
		PropertyID:   row.PropertyID,
		PurchaseCost: row.PurchaseCost,
		PurchasedAt:  row.PurchasedAt,
		Notes:        row.Notes,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
