package equipment

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

type stubEquipmentRepo struct {
	rows    map[uuid.UUID]*models.Equipment
	listAll bool
}

func newStubEquipmentRepo() *stubEquipmentRepo {
	return &stubEquipmentRepo{rows: make(map[uuid.UUID]*models.Equipment)}
}

func (s *stubEquipmentRepo) Create(_ context.Context, row *models.Equipment) (*models.Equipment, error) {
	s.rows[row.ID] = row
	return row, nil
}

func (s *stubEquipmentRepo) Update(_ context.Context, row *models.Equipment) (*models.Equipment, error) {
	s.rows[row.ID] = row
	return row, nil
}

func (s *stubEquipmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

func (s *stubEquipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Equipment, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubEquipmentRepo) List(_ context.Context, idFilter []uuid.UUID, _ pagination.Params) ([]models.Equipment, *pagination.Cursor, error) {
	s.listAll = idFilter == nil
	var out []models.Equipment
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

func caller(role enums.UserRole, equipmentIDs ...uuid.UUID) *access.User {
	return &access.User{
		ID:                   uuid.New(),
		Role:                 role,
		AssignedEquipmentIDs: equipmentIDs,
	}
}

func buildService(t *testing.T, repo *stubEquipmentRepo) Service {
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

func TestManagerHasBlanketEquipmentAccess(t *testing.T) {
	repo := newStubEquipmentRepo()
	row := &models.Equipment{ID: uuid.New(), Name: "Aerator", Status: enums.EquipmentStatusOperational}
	repo.rows[row.ID] = row

	svc := buildService(t, repo)

	// A manager with no equipment assignments still reads any unit.
	dto, err := svc.Get(context.Background(), caller(enums.UserRoleManager), row.ID)
	if err != nil {
		t.Fatalf("manager get: %v", err)
	}
	if dto.Name != "Aerator" {
		t.Fatalf("unexpected name %q", dto.Name)
	}
}

func TestTechnicianEquipmentAccessIsScoped(t *testing.T) {
	repo := newStubEquipmentRepo()
	assigned := &models.Equipment{ID: uuid.New(), Name: "Mower", Status: enums.EquipmentStatusOperational}
	other := &models.Equipment{ID: uuid.New(), Name: "Trencher", Status: enums.EquipmentStatusOperational}
	repo.rows[assigned.ID] = assigned
	repo.rows[other.ID] = other

	svc := buildService(t, repo)
	tech := caller(enums.UserRoleFieldTechnician, assigned.ID)

	if _, err := svc.Get(context.Background(), tech, assigned.ID); err != nil {
		t.Fatalf("assigned get: %v", err)
	}
	_, err := svc.Get(context.Background(), tech, other.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestListScopesTechniciansOnly(t *testing.T) {
	repo := newStubEquipmentRepo()
	assigned := &models.Equipment{ID: uuid.New(), Name: "Mower"}
	repo.rows[assigned.ID] = assigned
	hidden := &models.Equipment{ID: uuid.New(), Name: "Trencher"}
	repo.rows[hidden.ID] = hidden

	svc := buildService(t, repo)

	result, err := svc.List(context.Background(), caller(enums.UserRoleFieldTechnician, assigned.ID), pagination.Params{})
	if err != nil {
		t.Fatalf("technician list: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != assigned.ID {
		t.Fatalf("expected only assigned unit, got %d items", len(result.Items))
	}
	if repo.listAll {
		t.Fatal("technician list must pass an id filter")
	}

	if _, err := svc.List(context.Background(), caller(enums.UserRoleManager), pagination.Params{}); err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if !repo.listAll {
		t.Fatal("manager list must not be filtered")
	}
}

func TestCreateRejectsTechniciansAndBadStatus(t *testing.T) {
	svc := buildService(t, newStubEquipmentRepo())

	_, err := svc.Create(context.Background(), caller(enums.UserRoleFieldTechnician), CreateEquipmentInput{Name: "Mower"})
	expectCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.Create(context.Background(), caller(enums.UserRoleManager), CreateEquipmentInput{
		Name:   "Mower",
		Status: enums.EquipmentStatus("borrowed"),
	})
	expectCode(t, err, pkgerrors.CodeValidation)

	dto, err := svc.Create(context.Background(), caller(enums.UserRoleManager), CreateEquipmentInput{Name: "Mower"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != enums.EquipmentStatusOperational {
		t.Fatalf("expected operational default, got %s", dto.Status)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	repo := newStubEquipmentRepo()
	row := &models.Equipment{ID: uuid.New(), Name: "Mower"}
	repo.rows[row.ID] = row

	svc := buildService(t, repo)
	err := svc.Delete(context.Background(), caller(enums.UserRoleManager), row.ID)
	expectCode(t, err, pkgerrors.CodeForbidden)

	if err := svc.Delete(context.Background(), caller(enums.UserRoleAdmin), row.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}
