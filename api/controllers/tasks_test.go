package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/api/middleware"
	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/internal/tasks"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

type stubTaskService struct {
	dto        *tasks.TaskDTO
	list       *tasks.TaskListResult
	err        error
	lastStatus enums.TaskStatus
}

func (s *stubTaskService) Create(ctx context.Context, caller *access.User, input tasks.CreateTaskInput) (*tasks.TaskDTO, error) {
	return s.dto, s.err
}

func (s *stubTaskService) Update(ctx context.Context, caller *access.User, id uuid.UUID, input tasks.UpdateTaskInput) (*tasks.TaskDTO, error) {
	return s.dto, s.err
}

func (s *stubTaskService) UpdateStatus(ctx context.Context, caller *access.User, id uuid.UUID, status enums.TaskStatus) (*tasks.TaskDTO, error) {
	s.lastStatus = status
	return s.dto, s.err
}

func (s *stubTaskService) Delete(ctx context.Context, caller *access.User, id uuid.UUID) error {
	return s.err
}

func (s *stubTaskService) Get(ctx context.Context, caller *access.User, id uuid.UUID) (*tasks.TaskDTO, error) {
	return s.dto, s.err
}

func (s *stubTaskService) List(ctx context.Context, caller *access.User, params pagination.Params) (*tasks.TaskListResult, error) {
	return s.list, s.err
}

func taskRequestWithID(req *http.Request, taskID string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("taskId", taskID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	return req.WithContext(middleware.WithActor(req.Context(), adminActor()))
}

func TestTaskCreateRejectsBadPropertyID(t *testing.T) {
	handler := TaskCreate(&stubTaskService{}, nil)

	body := `{"title":"Mow front nine","property_id":"nope"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithActor(req.Context(), adminActor()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestTaskUpdateStatusForwardsParsedStatus(t *testing.T) {
	taskID := uuid.New()
	svc := &stubTaskService{dto: &tasks.TaskDTO{ID: taskID, Status: enums.TaskStatusInProgress}}
	handler := TaskUpdateStatus(svc, nil)

	body := `{"status":"in_progress"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = taskRequestWithID(req, taskID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastStatus != enums.TaskStatusInProgress {
		t.Fatalf("expected in_progress forwarded got %s", svc.lastStatus)
	}
}

func TestTaskUpdateStatusRejectsUnknownStatus(t *testing.T) {
	taskID := uuid.New()
	handler := TaskUpdateStatus(&stubTaskService{}, nil)

	body := `{"status":"archived"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = taskRequestWithID(req, taskID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestTaskUpdateStatusTerminalConflict(t *testing.T) {
	taskID := uuid.New()
	svc := &stubTaskService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "task already completed")}
	handler := TaskUpdateStatus(svc, nil)

	body := `{"status":"in_progress"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = taskRequestWithID(req, taskID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}
