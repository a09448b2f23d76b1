package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/api/responses"
	"github.com/terra-cloud/terra-backend/api/validators"
	tasksvc "github.com/terra-cloud/terra-backend/internal/tasks"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/logger"
)

type createTaskRequest struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Description   *string         `json:"description,omitempty"`
	Priority      *string         `json:"priority,omitempty"`
	PropertyID    string          `json:"property_id" validate:"required"`
	EquipmentID   *string         `json:"equipment_id,omitempty"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

type updateTaskRequest struct {
	Title         *string          `json:"title,omitempty" validate:"omitempty,max=200"`
	Description   *string          `json:"description,omitempty"`
	Priority      *string          `json:"priority,omitempty"`
	EquipmentID   *string          `json:"equipment_id,omitempty"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost,omitempty"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func parseOptionalTaskPriority(raw *string) (*enums.TaskPriority, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	priority, err := enums.ParseTaskPriority(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
	}
	return &priority, nil
}

// TaskCreate schedules a unit of work against a property.
func TaskCreate(svc tasksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createTaskRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		propertyID, err := uuid.Parse(strings.TrimSpace(payload.PropertyID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": "property_id"}))
			return
		}
		equipmentID, err := parseOptionalUUID(payload.EquipmentID, "equipment_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priority, err := parseOptionalTaskPriority(payload.Priority)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := tasksvc.CreateTaskInput{
			Title:         strings.TrimSpace(payload.Title),
			Description:   payload.Description,
			PropertyID:    propertyID,
			EquipmentID:   equipmentID,
			EstimatedCost: payload.EstimatedCost,
			DueDate:       payload.DueDate,
		}
		if priority != nil {
			input.Priority = *priority
		}

		task, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, task)
	}
}

// TaskList returns the page of tasks the caller can see.
func TaskList(svc tasksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// TaskDetail returns a single task when the caller may see it.
func TaskDetail(svc tasksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, task)
	}
}

// TaskUpdate applies a partial mutation to a task.
func TaskUpdate(svc tasksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTaskRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		equipmentID, err := parseOptionalUUID(payload.EquipmentID, "equipment_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priority, err := parseOptionalTaskPriority(payload.Priority)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.Update(r.Context(), actor, id, tasksvc.UpdateTaskInput{
			Title:         payload.Title,
			Description:   payload.Description,
			Priority:      priority,
			EquipmentID:   equipmentID,
			EstimatedCost: payload.EstimatedCost,
			DueDate:       payload.DueDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, task)
	}
}

// TaskUpdateStatus transitions a task through its lifecycle.
func TaskUpdateStatus(svc tasksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTaskStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseTaskStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		task, err := svc.UpdateStatus(r.Context(), actor, id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, task)
	}
}

// TaskDelete removes a task.
func TaskDelete(svc tasksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
