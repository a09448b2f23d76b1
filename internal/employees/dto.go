package employees

import (
	"time"

	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// EmployeeDTO joins an identity with its profile for the crew roster.
type EmployeeDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Role        enums.UserRole `json:"role"`
	Phone       *string        `json:"phone,omitempty"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// EmployeeListResult carries one page of the roster.
type EmployeeListResult struct {
	Items      []EmployeeDTO `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}
