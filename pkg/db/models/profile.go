package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// Profile holds the application-level data attached to an identity.
type Profile struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null"`
	Phone     *string        `gorm:"column:phone"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
