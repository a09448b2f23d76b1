package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

// Service exposes task management. Task visibility is assignment
// scoped for managers and technicians alike; only admins see the whole
// board.
type Service interface {
	Create(ctx context.Context, caller *access.User, input CreateTaskInput) (*TaskDTO, error)
	Update(ctx context.Context, caller *access.User, id uuid.UUID, input UpdateTaskInput) (*TaskDTO, error)
	UpdateStatus(ctx context.Context, caller *access.User, id uuid.UUID, status enums.TaskStatus) (*TaskDTO, error)
	Delete(ctx context.Context, caller *access.User, id uuid.UUID) error
	Get(ctx context.Context, caller *access.User, id uuid.UUID) (*TaskDTO, error)
	List(ctx context.Context, caller *access.User, params pagination.Params) (*TaskListResult, error)
}

type taskRepository interface {
	Create(ctx context.Context, row *models.Task) (*models.Task, error)
	Update(ctx context.Context, row *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, idFilter []uuid.UUID, params pagination.Params) ([]models.Task, *pagination.Cursor, error)
}

type service struct {
	repo taskRepository
}

// ServiceParams bundles the dependencies for a task service.
type ServiceParams struct {
	Repo taskRepository
}

// NewService constructs the task service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("task repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, caller *access.User, input CreateTaskInput) (*TaskDTO, error) {
	evaluator := access.NewEvaluator(caller)
	if !evaluator.IsAdmin() && !evaluator.IsManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "technicians cannot schedule tasks")
	}
	// Managers schedule work only on properties they are assigned to.
	if !evaluator.CanAccessProperty(input.PropertyID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this property")
	}

	priority := input.Priority
	if priority == "" {
		priority = enums.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid task priority")
	}

	row := &models.Task{
		ID:            uuid.New(),
		Title:         input.Title,
		Description:   input.Description,
		Status:        enums.TaskStatusPending,
		Priority:      priority,
		PropertyID:    input.PropertyID,
		EquipmentID:   input.EquipmentID,
		EstimatedCost: input.EstimatedCost,
		DueDate:       input.DueDate,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create task")
	}
	dto := FromModel(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, caller *access.User, id uuid.UUID, input UpdateTaskInput) (*TaskDTO, error) {
	if !access.NewEvaluator(caller).CanAccessTask(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this task")
	}

	row, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid task priority")
	}
	applyUpdate(row, input)

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update task")
	}
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, caller *access.User, id uuid.UUID, status enums.TaskStatus) (*TaskDTO, error) {
	if !access.NewEvaluator(caller).CanAccessTask(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this task")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid task status")
	}

	row, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status == enums.TaskStatusCompleted || row.Status == enums.TaskStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("task is already %s", row.Status))
	}

	row.Status = status
	if status == enums.TaskStatusCompleted {
		now := time.Now().UTC()
		row.CompletedAt = &now
	}

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update task status")
	}
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, caller *access.User, id uuid.UUID) error {
	if !access.NewEvaluator(caller).IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete tasks")
	}
	if _, err := s.loadTask(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete task")
	}
	return nil
}

func (s *service) Get(ctx context.Context, caller *access.User, id uuid.UUID) (*TaskDTO, error) {
	if !access.NewEvaluator(caller).CanAccessTask(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this task")
	}
	row, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) List(ctx context.Context, caller *access.User, params pagination.Params) (*TaskListResult, error) {
	if caller == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	evaluator := access.NewEvaluator(caller)

	// Managers do not get a blanket view here, unlike equipment.
	var idFilter []uuid.UUID
	if !evaluator.IsAdmin() {
		idFilter = append([]uuid.UUID{}, caller.AssignedTaskIDs...)
	}

	rows, next, err := s.repo.List(ctx, idFilter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tasks")
	}

	items := make([]TaskDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	result := &TaskListResult{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *service) loadTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load task")
	}
	return row, nil
}

func applyUpdate(row *models.Task, input UpdateTaskInput) {
	if input.Title != nil {
		row.Title = *input.Title
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.Priority != nil {
		row.Priority = *input.Priority
	}
	if input.EquipmentID != nil {
		row.EquipmentID = input.EquipmentID
	}
	if input.EstimatedCost != nil {
		row.EstimatedCost = *input.EstimatedCost
	}
	if input.DueDate != nil {
		row.DueDate = input.DueDate
	}
}
