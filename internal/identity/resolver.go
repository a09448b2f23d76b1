package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/internal/access"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
	"github.com/terra-cloud/terra-backend/pkg/logger"
)

type profileSource interface {
	Profile(ctx context.Context, identityID uuid.UUID) (*Profile, error)
	ListAssignments(ctx context.Context, kind enums.AssignmentKind, userID uuid.UUID) ([]uuid.UUID, error)
}

// Resolver builds the per-request actor from the profile and
// assignment tables.
type Resolver struct {
	store profileSource
	logg  *logger.Logger
}

func NewResolver(store profileSource, logg *logger.Logger) *Resolver {
	return &Resolver{store: store, logg: logg}
}

// ResolveActor assembles the access.User for an authenticated request.
// An identity without a profile row resolves to unauthorized; failures
// loading assignments degrade to a user with all three lists empty
// rather than a partially filled one.
func (r *Resolver) ResolveActor(ctx context.Context, identityID uuid.UUID, email string) (*access.User, error) {
	profile, err := r.store.Profile(ctx, identityID)
	if err != nil {
		if errors.Is(err, ErrProfileMissing) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "account setup incomplete")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	name := profile.Name
	if name == "" {
		name = LocalPart(email)
	}
	user := &access.User{
		ID:                   identityID,
		Name:                 name,
		Email:                email,
		Role:                 profile.Role,
		AssignedPropertyIDs:  []uuid.UUID{},
		AssignedEquipmentIDs: []uuid.UUID{},
		AssignedTaskIDs:      []uuid.UUID{},
	}

	properties, err := r.store.ListAssignments(ctx, enums.AssignmentKindProperty, identityID)
	if err != nil {
		r.logError(ctx, "list property assignments", err)
		return user, nil
	}
	equipment, err := r.store.ListAssignments(ctx, enums.AssignmentKindEquipment, identityID)
	if err != nil {
		r.logError(ctx, "list equipment assignments", err)
		return user, nil
	}
	tasks, err := r.store.ListAssignments(ctx, enums.AssignmentKindTask, identityID)
	if err != nil {
		r.logError(ctx, "list task assignments", err)
		return user, nil
	}

	user.AssignedPropertyIDs = properties
	user.AssignedEquipmentIDs = equipment
	user.AssignedTaskIDs = tasks
	return user, nil
}

func (r *Resolver) logError(ctx context.Context, msg string, err error) {
	if r.logg != nil {
		r.logg.Error(ctx, msg, err)
	}
}
