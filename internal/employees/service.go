package employees

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

// Service exposes the crew roster to admins and managers.
type Service interface {
	List(ctx context.Context, caller *access.User, params pagination.Params) (*EmployeeListResult, error)
	Get(ctx context.Context, caller *access.User, id uuid.UUID) (*EmployeeDTO, error)
}

type employeeRepository interface {
	List(ctx context.Context, params pagination.Params) ([]EmployeeRow, *pagination.Cursor, error)
	Get(ctx context.Context, id uuid.UUID) (*EmployeeRow, error)
}

type service struct {
	repo employeeRepository
}

// ServiceParams bundles the dependencies for an employee service.
type ServiceParams struct {
	Repo employeeRepository
}

// NewService constructs the employee service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("employee repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, caller *access.User, params pagination.Params) (*EmployeeListResult, error) {
	if !access.NewEvaluator(caller).CanViewEmployees() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to the employee roster")
	}

	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list employees")
	}

	items := make([]EmployeeDTO, 0, len(rows))
	for i := range rows {
		items = append(items, fromRow(&rows[i]))
	}
	result := &EmployeeListResult{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, caller *access.User, id uuid.UUID) (*EmployeeDTO, error) {
	if !access.NewEvaluator(caller).CanViewEmployees() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to the employee roster")
	}

	row, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load employee")
	}
	dto := fromRow(row)
	return &dto, nil
}

func fromRow(row *EmployeeRow) EmployeeDTO {
	return EmployeeDTO{
		ID:          row.ID,
		Name:        row.Name,
		Email:       row.Email,
		Role:        enums.UserRole(row.Role),
		Phone:       row.Phone,
		IsActive:    row.IsActive,
		LastLoginAt: row.LastLoginAt,
		CreatedAt:   row.CreatedAt,
	}
}
