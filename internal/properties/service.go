package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/pkg/db/models"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

// Service exposes property management operations. Every method takes
// the calling user; gating runs through the access evaluator so the
// flat two-tier property rule holds at the API boundary too.
type Service interface {
	Create(ctx context.Context, caller *access.User, input CreatePropertyInput) (*PropertyDTO, error)
	Update(ctx context.Context, caller *access.User, id uuid.UUID, input UpdatePropertyInput) (*PropertyDTO, error)
	Delete(ctx context.Context, caller *access.User, id uuid.UUID) error
	Get(ctx context.Context, caller *access.User, id uuid.UUID) (*PropertyDTO, error)
	List(ctx context.Context, caller *access.User, params pagination.Params) (*PropertyListResult, error)
}

type propertyRepository interface {
	Create(ctx context.Context, row *models.Property) (*models.Property, error)
	Update(ctx context.Context, row *models.Property) (*models.Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	List(ctx context.Context, idFilter []uuid.UUID, params pagination.Params) ([]models.Property, *pagination.Cursor, error)
}

type service struct {
	repo propertyRepository
}

// ServiceParams bundles the dependencies for a property service.
type ServiceParams struct {
	Repo propertyRepository
}

// NewService constructs the property service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("property repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, caller *access.User, input CreatePropertyInput) (*PropertyDTO, error) {
	if !access.NewEvaluator(caller).IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can create properties")
	}

	row := &models.Property{
		ID:           uuid.New(),
		Name:         input.Name,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Acreage:      input.Acreage,
		Notes:        input.Notes,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create property")
	}
	dto := FromModel(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, caller *access.User, id uuid.UUID, input UpdatePropertyInput) (*PropertyDTO, error) {
	evaluator := access.NewEvaluator(caller)
	if evaluator.IsFieldTechnician() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "technicians cannot modify properties")
	}
	if !evaluator.CanAccessProperty(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this property")
	}

	row, err := s.loadProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(row, input)

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update property")
	}
	dto := FromModel(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, caller *access.User, id uuid.UUID) error {
	if !access.NewEvaluator(caller).IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete properties")
	}
	if _, err := s.loadProperty(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete property")
	}
	return nil
}

func (s *service) Get(ctx context.Context, caller *access.User, id uuid.UUID) (*PropertyDTO, error) {
	if !access.NewEvaluator(caller).CanAccessProperty(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to this property")
	}
	row, err := s.loadProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) List(ctx context.Context, caller *access.User, params pagination.Params) (*PropertyListResult, error) {
	evaluator := access.NewEvaluator(caller)
	if caller == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	// Admins see everything; everyone else is limited to their
	// assignment list, which may legitimately be empty.
	var idFilter []uuid.UUID
	if !evaluator.IsAdmin() {
		idFilter = evaluator.UserProperties()
	}

	rows, next, err := s.repo.List(ctx, idFilter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list properties")
	}

	items := make([]PropertyDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	result := &PropertyListResult{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *service) loadProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load property")
	}
	return row, nil
}

func applyUpdate(row *models.Property, input UpdatePropertyInput) {
	if input.Name != nil {
		row.Name = *input.Name
	}
	if input.AddressLine1 != nil {
		row.AddressLine1 = *input.AddressLine1
	}
	if input.AddressLine2 != nil {
		row.AddressLine2 = input.AddressLine2
	}
	if input.City != nil {
		row.City = *input.City
	}
	if input.State != nil {
		row.State = *input.State
	}
	if input.PostalCode != nil {
		row.PostalCode = *input.PostalCode
	}
	if input.Lat != nil {
		row.Lat = *input.Lat
	}
	if input.Lng != nil {
		row.Lng = *input.Lng
	}
	if input.Acreage != nil {
		row.Acreage = *input.Acreage
	}
	if input.Notes != nil {
		row.Notes = input.Notes
	}
}
