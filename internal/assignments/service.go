package assignments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
)

// AssignmentDTO is the API representation of one access grant.
type AssignmentDTO struct {
	ID         uuid.UUID            `json:"id"`
	UserID     uuid.UUID            `json:"user_id"`
	Kind       enums.AssignmentKind `json:"kind"`
	ResourceID uuid.UUID            `json:"resource_id"`
	CreatedAt  time.Time            `json:"created_at"`
}

// GrantInput names the triple to grant.
type GrantInput struct {
	UserID     uuid.UUID
	Kind       enums.AssignmentKind
	ResourceID uuid.UUID
}

// Service manages access grants. Only admins may change who sees what;
// role changes themselves stay outside this surface.
type Service interface {
	Grant(ctx context.Context, caller *access.User, input GrantInput) (*AssignmentDTO, error)
	Revoke(ctx context.Context, caller *access.User, input GrantInput) error
	ListForUser(ctx context.Context, caller *access.User, userID uuid.UUID) ([]AssignmentDTO, error)
}

type assignmentRepository interface {
	Create(ctx context.Context, row *models.Assignment) (*models.Assignment, error)
	Delete(ctx context.Context, userID uuid.UUID, kind enums.AssignmentKind, resourceID uuid.UUID) (int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Assignment, error)
	Exists(ctx context.Context, userID uuid.UUID, kind enums.AssignmentKind, resourceID uuid.UUID) (bool, error)
}

type service struct {
	repo assignmentRepository
}

// ServiceParams bundles the dependencies for an assignment service.
type ServiceParams struct {
	Repo assignmentRepository
}

// NewService constructs the assignment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("assignment repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Grant(ctx context.Context, caller *access.User, input GrantInput) (*AssignmentDTO, error) {
	if !access.NewEvaluator(caller).IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can grant access")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid assignment kind")
	}

	exists, err := s.repo.Exists(ctx, input.UserID, input.Kind, input.ResourceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check assignment")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "assignment already exists")
	}

	row := &models.Assignment{
		ID:         uuid.New(),
		UserID:     input.UserID,
		Kind:       input.Kind,
		ResourceID: input.ResourceID,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create assignment")
	}
	dto := fromModel(created)
	return &dto, nil
}

func (s *service) Revoke(ctx context.Context, caller *access.User, input GrantInput) error {
	if !access.NewEvaluator(caller).IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can revoke access")
	}
	if !input.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid assignment kind")
	}

	affected, err := s.repo.Delete(ctx, input.UserID, input.Kind, input.ResourceID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete assignment")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}
	return nil
}

func (s *service) ListForUser(ctx context.Context, caller *access.User, userID uuid.UUID) ([]AssignmentDTO, error) {
	evaluator := access.NewEvaluator(caller)
	// Admins may inspect anyone; everyone else only their own grants.
	if !evaluator.IsAdmin() && (caller == nil || caller.ID != userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to these assignments")
	}

	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assignments")
	}
	out := make([]AssignmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func fromModel(row *models.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:         row.ID,
		UserID:     row.UserID,
		Kind:       row.Kind,
		ResourceID: row.ResourceID,
		CreatedAt:  row.CreatedAt,
	}
}
