package properties

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

type stubPropertyRepo struct {
	rows map[uuid.UUID]*models.Property

	lastIDFilter []uuid.UUID
	listAll      bool
}

func newStubPropertyRepo() *stubPropertyRepo {
	return &stubPropertyRepo{rows: make(map[uuid.UUID]*models.Property)}
}

func (s *stubPropertyRepo) Create(_ context.Context, row *models.Property) (*models.Property, error) {
	s.rows[row.ID] = row
	return row, nil
}

func (s *stubPropertyRepo) Update(_ context.Context, row *models.Property) (*models.Property, error) {
	s.rows[row.ID] = row
	return row, nil
}

func (s *stubPropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

func (s *stubPropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubPropertyRepo) List(_ context.Context, idFilter []uuid.UUID, _ pagination.Params) ([]models.Property, *pagination.Cursor, error) {
	s.lastIDFilter = idFilter
	s.listAll = idFilter == nil

	var out []models.Property
	for _, row := range s.rows {
		if idFilter == nil {
			out = append(out, *row)
			continue
		}
		for _, id := range idFilter {
			if id == row.ID {
				out = append(out, *row)
			}
		}
	}
	return out, nil, nil
}

func caller(role enums.UserRole, propertyIDs ...uuid.UUID) *access.User {
	return &access.User{
		ID:                  uuid.New(),
		Name:                "Test Caller",
		Email:               "caller@terra.example",
		Role:                role,
		AssignedPropertyIDs: propertyIDs,
	}
}

func buildService(t *testing.T, repo *stubPropertyRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc := buildService(t, newStubPropertyRepo())

	_, err := svc.Create(context.Background(), caller(enums.UserRoleManager), CreatePropertyInput{Name: "Northside Campus"})
	expectCode(t, err, pkgerrors.CodeForbidden)

	dto, err := svc.Create(context.Background(), caller(enums.UserRoleAdmin), CreatePropertyInput{Name: "Northside Campus"})
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if dto.Name != "Northside Campus" {
		t.Fatalf("unexpected name %q", dto.Name)
	}
}

func TestGetEnforcesPropertyAssignment(t *testing.T) {
	repo := newStubPropertyRepo()
	assigned := &models.Property{ID: uuid.New(), Name: "East Park"}
	other := &models.Property{ID: uuid.New(), Name: "West Park"}
	repo.rows[assigned.ID] = assigned
	repo.rows[other.ID] = other

	svc := buildService(t, repo)
	manager := caller(enums.UserRoleManager, assigned.ID)

	dto, err := svc.Get(context.Background(), manager, assigned.ID)
	if err != nil {
		t.Fatalf("get assigned: %v", err)
	}
	if dto.Name != "East Park" {
		t.Fatalf("unexpected property %q", dto.Name)
	}

	_, err = svc.Get(context.Background(), manager, other.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestGetUnauthenticatedIsForbidden(t *testing.T) {
	svc := buildService(t, newStubPropertyRepo())
	_, err := svc.Get(context.Background(), nil, uuid.New())
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestListScopesNonAdminsToAssignments(t *testing.T) {
	repo := newStubPropertyRepo()
	assigned := &models.Property{ID: uuid.New(), Name: "East Park"}
	repo.rows[assigned.ID] = assigned
	repo.rows[uuid.New()] = &models.Property{ID: uuid.New(), Name: "Hidden"}

	svc := buildService(t, repo)

	result, err := svc.List(context.Background(), caller(enums.UserRoleFieldTechnician, assigned.ID), pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != assigned.ID {
		t.Fatalf("expected only the assigned property, got %d items", len(result.Items))
	}
	if repo.listAll {
		t.Fatal("non-admin list must pass an id filter")
	}
}

func TestListAdminSeesEverything(t *testing.T) {
	repo := newStubPropertyRepo()
	repo.rows[uuid.New()] = &models.Property{ID: uuid.New(), Name: "A"}

	svc := buildService(t, repo)
	if _, err := svc.List(context.Background(), caller(enums.UserRoleAdmin), pagination.Params{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !repo.listAll {
		t.Fatal("admin list must not be filtered")
	}
}

func TestListEmptyAssignmentsReturnsNoRows(t *testing.T) {
	repo := newStubPropertyRepo()
	repo.rows[uuid.New()] = &models.Property{ID: uuid.New(), Name: "A"}

	svc := buildService(t, repo)
	result, err := svc.List(context.Background(), caller(enums.UserRoleManager), pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected no rows for an empty assignment list, got %d", len(result.Items))
	}
}

func TestUpdateBlocksTechnicians(t *testing.T) {
	repo := newStubPropertyRepo()
	row := &models.Property{ID: uuid.New(), Name: "East Park"}
	repo.rows[row.ID] = row

	svc := buildService(t, repo)
	tech := caller(enums.UserRoleFieldTechnician, row.ID)

	name := "Renamed"
	_, err := svc.Update(context.Background(), tech, row.ID, UpdatePropertyInput{Name: &name})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeleteMissingPropertyIsNotFound(t *testing.T) {
	svc := buildService(t, newStubPropertyRepo())
	err := svc.Delete(context.Background(), caller(enums.UserRoleAdmin), uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}
