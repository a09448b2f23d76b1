package properties

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/pkg/db/models"
)

// PropertyDTO is the API representation of a maintained site.
type PropertyDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	AddressLine1 string          `json:"address_line1"`
	AddressLine2 *string         `json:"address_line2,omitempty"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	PostalCode   string          `json:"postal_code"`
	Lat          float64         `json:"lat"`
	Lng          float64         `json:"lng"`
	Acreage      decimal.Decimal `json:"acreage"`
	Notes        *string         `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreatePropertyInput holds the validated payload to create a property.
type CreatePropertyInput struct {
	Name         string
	AddressLine1 string
	AddressLine2 *string
	City         string
	State        string
	PostalCode   string
	Lat          float64
	Lng          float64
	Acreage      decimal.Decimal
	Notes        *string
}

// UpdatePropertyInput holds optional mutation values.
type UpdatePropertyInput struct {
	Name         *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Lat          *float64
	Lng          *float64
	Acreage      *decimal.Decimal
	Notes        *string
}

// PropertyListResult carries one page of properties.
type PropertyListResult struct {
	Items      []PropertyDTO `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// FromModel maps a database row to its DTO.
func FromModel(row *models.Property) PropertyDTO {
	return PropertyDTO{
		ID:           row.ID,
		Name:         row.Name,
		AddressLine1: row.AddressLine1,
		AddressLine2: row.AddressLine2,
		City:         row.City,
		State:        row.State,
		PostalCode:   row.PostalCode,
		Lat:          row.Lat,
		Lng:          row.Lng,
		Acreage:      row.Acreage,
		Notes:        row.Notes,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
