package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/terra-cloud/terra-backend/pkg/enums"
	pkgerrors "github.com/terra-cloud/terra-backend/pkg/errors"
)

type stubProfileSource struct {
	profile    *Profile
	profileErr error

	assignments map[enums.AssignmentKind][]uuid.UUID
	failKind    enums.AssignmentKind
}

func (s *stubProfileSource) Profile(_ context.Context, _ uuid.UUID) (*Profile, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.profile, nil
}

func (s *stubProfileSource) ListAssignments(_ context.Context, kind enums.AssignmentKind, _ uuid.UUID) ([]uuid.UUID, error) {
	if s.failKind == kind {
		return nil, errors.New("assignment query failed")
	}
	return s.assignments[kind], nil
}

func TestResolveActorMissingProfileIsUnauthorized(t *testing.T) {
	r := NewResolver(&stubProfileSource{profileErr: ErrProfileMissing}, nil)

	_, err := r.ResolveActor(context.Background(), uuid.New(), "crew@terra.example")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrProfileMissing)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestResolveActorProfileFailureIsDependency(t *testing.T) {
	r := NewResolver(&stubProfileSource{profileErr: errors.New("db offline")}, nil)

	_, err := r.ResolveActor(context.Background(), uuid.New(), "crew@terra.example")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestResolveActorBuildsFullUser(t *testing.T) {
	id := uuid.New()
	propertyID := uuid.New()
	taskID := uuid.New()
	src := &stubProfileSource{
		profile: &Profile{Name: "Ana Torres", Role: enums.UserRoleFieldTechnician},
		assignments: map[enums.AssignmentKind][]uuid.UUID{
			enums.AssignmentKindProperty: {propertyID},
			enums.AssignmentKindTask:     {taskID},
		},
	}
	r := NewResolver(src, nil)

	user, err := r.ResolveActor(context.Background(), id, "ana@terra.example")
	require.NoError(t, err)
	require.Equal(t, id, user.ID)
	require.Equal(t, "Ana Torres", user.Name)
	require.Equal(t, enums.UserRoleFieldTechnician, user.Role)
	require.Equal(t, []uuid.UUID{propertyID}, user.AssignedPropertyIDs)
	require.Empty(t, user.AssignedEquipmentIDs)
	require.Equal(t, []uuid.UUID{taskID}, user.AssignedTaskIDs)
}

func TestResolveActorFallsBackToEmailLocalPart(t *testing.T) {
	src := &stubProfileSource{profile: &Profile{Role: enums.UserRoleManager}}
	r := NewResolver(src, nil)

	user, err := r.ResolveActor(context.Background(), uuid.New(), "lee.ops@terra.example")
	require.NoError(t, err)
	require.Equal(t, "lee.ops", user.Name)
}

func TestResolveActorAssignmentFailureDegradesToEmptyLists(t *testing.T) {
	propertyID := uuid.New()
	src := &stubProfileSource{
		profile: &Profile{Name: "Ana Torres", Role: enums.UserRoleFieldTechnician},
		assignments: map[enums.AssignmentKind][]uuid.UUID{
			enums.AssignmentKindProperty: {propertyID},
		},
		failKind: enums.AssignmentKindTask,
	}
	r := NewResolver(src, nil)

	user, err := r.ResolveActor(context.Background(), uuid.New(), "ana@terra.example")
	require.NoError(t, err)
	// A partial view could leak or hide resources; all three lists
	// stay empty when any lookup fails.
	require.Empty(t, user.AssignedPropertyIDs)
	require.Empty(t, user.AssignedEquipmentIDs)
	require.Empty(t, user.AssignedTaskIDs)
}
