package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terra-cloud/terra-backend/api/middleware"
	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/internal/properties"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

type stubPropertyService struct {
	dto        *properties.PropertyDTO
	list       *properties.PropertyListResult
	err        error
	lastParams pagination.Params
}

func (s *stubPropertyService) Create(ctx context.Context, caller *access.User, input properties.CreatePropertyInput) (*properties.PropertyDTO, error) {
	return s.dto, s.err
}

func (s *stubPropertyService) Update(ctx context.Context, caller *access.User, id uuid.UUID, input properties.UpdatePropertyInput) (*properties.PropertyDTO, error) {
	return s.dto, s.err
}

func (s *stubPropertyService) Delete(ctx context.Context, caller *access.User, id uuid.UUID) error {
	return s.err
}

func (s *stubPropertyService) Get(ctx context.Context, caller *access.User, id uuid.UUID) (*properties.PropertyDTO, error) {
	return s.dto, s.err
}

func (s *stubPropertyService) List(ctx context.Context, caller *access.User, params pagination.Params) (*properties.PropertyListResult, error) {
	s.lastParams = params
	return s.list, s.err
}

func adminActor() *access.User {
	return &access.User{
		ID:    uuid.New(),
		Name:  "Ops Admin",
		Email: "admin@terra.test",
		Role:  enums.UserRoleAdmin,
	}
}

func TestPropertyCreateSuccess(t *testing.T) {
	propertyID := uuid.New()
	svc := &stubPropertyService{dto: &properties.PropertyDTO{
		ID:      propertyID,
		Name:    "North Campus",
		Acreage: decimal.RequireFromString("12.50"),
	}}
	handler := PropertyCreate(svc, nil)

	body := `{"name":"North Campus","address_line1":"100 Main St","city":"Tulsa","state":"OK","postal_code":"74101","lat":36.15,"lng":-95.99,"acreage":"12.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithActor(req.Context(), adminActor()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data properties.PropertyDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != propertyID {
		t.Fatalf("expected id %s got %s", propertyID, envelope.Data.ID)
	}
}

func TestPropertyCreateMissingActor(t *testing.T) {
	handler := PropertyCreate(&stubPropertyService{}, nil)

	body := `{"name":"North Campus","address_line1":"100 Main St","city":"Tulsa","state":"OK","postal_code":"74101"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestPropertyCreateForbidden(t *testing.T) {
	svc := &stubPropertyService{err: pkgerrors.New(pkgerrors.CodeForbidden, "only admins can create properties")}
	handler := PropertyCreate(svc, nil)

	body := `{"name":"North Campus","address_line1":"100 Main St","city":"Tulsa","state":"OK","postal_code":"74101"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithActor(req.Context(), &access.User{ID: uuid.New(), Role: enums.UserRoleManager}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestPropertyListPassesPagination(t *testing.T) {
	svc := &stubPropertyService{list: &properties.PropertyListResult{Items: []properties.PropertyDTO{}}}
	handler := PropertyList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?limit=5&cursor=abc", nil)
	req = req.WithContext(middleware.WithActor(req.Context(), adminActor()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastParams.Limit != 5 || svc.lastParams.Cursor != "abc" {
		t.Fatalf("expected pagination params forwarded, got %+v", svc.lastParams)
	}
}

func TestPropertyDetailInvalidID(t *testing.T) {
	handler := PropertyDetail(&stubPropertyService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/not-a-uuid", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("propertyId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	req = req.WithContext(middleware.WithActor(req.Context(), adminActor()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPropertyDeleteSuccess(t *testing.T) {
	handler := PropertyDelete(&stubPropertyService{}, nil)

	propertyID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/properties/"+propertyID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("propertyId", propertyID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	req = req.WithContext(middleware.WithActor(req.Context(), adminActor()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
