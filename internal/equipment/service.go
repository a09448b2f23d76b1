package equipment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

// Service exposes equipment management. The equipment pool is shared:
// managers get blanket access, technicians only what they are assigned.
type Service interface {
	Create(ctx context.Context, caller *access.User, input CreateEquipmentInput) (*EquipmentDTO, error)
	Update(ctx context.Context, caller *access.User, id uuid.UUID, input UpdateEquipmentInput) (*EquipmentDTO, error)
	Delete(ctx context.Context, caller *access.User, id uuid.UUID) error
	Get(ctx context.Context, caller *access.User, id uuid.UUID) (*EquipmentDTO, error)
	List(ctx context.Context, caller *access.User, params pagination.Params) (*EquipmentListResult, error)
}

type equipmentRepository interface {
	Create(ctx context.Context, row *models.Equipment) (*models.Equipment, error)
	Update(ctx context.Context, row *models.Equipment) (*models.Equipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Equipment, error)
	List(ctx context.Context, idFilter []uuid.UUID, params pagination.Params) ([]models.Equipment, *pagination.Cursor, error)
}

type service struct {
	repo equipmentRepository
}

// ServiceParams bundles the dependencies for an equipment service.
type ServiceParams struct {
	Repo equipmentRepository
}

// NewService constructs the equipment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("equipment repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, caller *access.User, input CreateEquipmentInput) (*EquipmentDTO, error) {
	evaluator := access.NewEvaluator(caller)
	if !evaluator.IsAdmin() && !evaluator.IsManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "technicians cannot register equipment")
	}

	status := input.Status
	if status == "" {
		status = enums.EquipmentStatusOperational
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid equipment status")
	}

	row := &models.Equipment{
		ID:           uuid.New(),
		Name:         input.Name,
		SerialNumber: input.SerialNumber,
		Status:       status,
		PropertyID:   input.PropertyID,
		PurchaseCost: input.PurchaseCost,
		PurchasedAt:  input.PurchasedAt,
		Notes:        input.Notes,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create equipment")
	}
	dto := FromModel(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, caller *access.User, id uuid.UUID, input UpdateEquipmentInput) (*EquipmentDTO, error) {
	if !access.NewEvaluator(caller).CanAccessEquipment(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this equipment")
	}

	row, err := s.loadEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid equipment status")
	}
	applyUpdate(row, input)

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update equipment")
	}
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, caller *access.User, id uuid.UUID) error {
	if !access.NewEvaluator(caller).IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can retire equipment records")
	}
	if _, err := s.loadEquipment(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete equipment")
	}
	return nil
}

func (s *service) Get(ctx context.Context, caller *access.User, id uuid.UUID) (*EquipmentDTO, error) {
	if !access.NewEvaluator(caller).CanAccessEquipment(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this equipment")
	}
	row, err := s.loadEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) List(ctx context.Context, caller *access.User, params pagination.Params) (*EquipmentListResult, error) {
	if caller == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	evaluator := access.NewEvaluator(caller)

	// Admins and managers browse the whole pool; technicians only
	// their assigned units.
	var idFilter []uuid.UUID
	if evaluator.IsFieldTechnician() {
		idFilter = append([]uuid.UUID{}, caller.AssignedEquipmentIDs...)
	}

	rows, next, err := s.repo.List(ctx, idFilter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list equipment")
	}

	items := make([]EquipmentDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	result := &EquipmentListResult{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *service) loadEquipment(ctx context.Context, id uuid.UUID) (*models.Equipment, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load equipment")
	}
	return row, nil
}

func applyUpdate(row *models.Equipment, input UpdateEquipmentInput) {
	if input.Name != nil {
		row.Name = *input.Name
	}
	if input.SerialNumber != nil {
		row.SerialNumber = input.SerialNumber
	}
	if input.Status != nil {
		row.Status = *input.Status
	}
	if input.PropertyID != nil {
		row.PropertyID = input.PropertyID
	}
	if input.PurchaseCost != nil {
		row.PurchaseCost = *input.PurchaseCost
	}
	if input.PurchasedAt != nil {
		row.PurchasedAt = input.PurchasedAt
	}
	if input.Notes != nil {
		row.Notes = input.Notes
	}
}
