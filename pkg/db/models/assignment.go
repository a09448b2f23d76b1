package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// Assignment grants a user access to a single resource. Kind selects
// which table ResourceID points into; one row per (user, kind,
// resource) triple.
type Assignment struct {
	ID         uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_assignments_user_kind_resource"`
	Kind       enums.AssignmentKind `gorm:"column:kind;type:varchar(32);not null;uniqueIndex:idx_assignments_user_kind_resource"`
	ResourceID uuid.UUID            `gorm:"column:resource_id;type:uuid;not null;uniqueIndex:idx_assignments_user_kind_resource"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (Assignment) TableName() string {
	return "assignments"
}
