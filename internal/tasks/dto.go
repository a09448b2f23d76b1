package tasks

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// TaskDTO is the API representation of a unit of scheduled work.
type TaskDTO struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Description   *string            `json:"description,omitempty"`
	Status        enums.TaskStatus   `json:"status"`
	Priority      enums.TaskPriority `json:"priority"`
	PropertyID    uuid.UUID          `json:"property_id"`
	EquipmentID   *uuid.UUID         `json:"equipment_id,omitempty"`
	EstimatedCost decimal.Decimal    `json:"estimated_cost"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CreateTaskInput holds the validated payload to schedule a task.
type CreateTaskInput struct {
	Title         string
	Description   *string
	Priority      enums.TaskPriority
	PropertyID    uuid.UUID
	EquipmentID   *uuid.UUID
	EstimatedCost decimal.Decimal
	DueDate       *time.Time
}

// UpdateTaskInput holds optional mutation values.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *enums.TaskPriority
	EquipmentID   *uuid.UUID
	EstimatedCost *decimal.Decimal
	DueDate       *time.Time
}

// TaskListResult carries one page of tasks.
type TaskListResult struct {
	Items      []TaskDTO `json:"items"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

// FromModel maps a database row to its DTO.
func FromModel(row *models.Task) TaskDTO {
	return TaskDTO{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		Status:        row.Status,
		Priority:      row.Priority,
		PropertyID:    row.PropertyID,
		EquipmentID:   row.EquipmentID,
		EstimatedCost: row.EstimatedCost,
		DueDate:       row.DueDate,
		CompletedAt:   row.CompletedAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
