package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the credential record known to the backing auth store. It is
// deliberately separate from Profile: an identity can exist without a usable
// profile when signup fails halfway.
type Identity struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the identities table name explicit.
func (Identity) TableName() string {
	return "identities"
}
